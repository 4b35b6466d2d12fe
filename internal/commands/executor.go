// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultHintLimit is the number of "did you mean" names for unknown commands.
const DefaultHintLimit = 3

// =============================================================================
// EXECUTOR
// =============================================================================

// Executor runs a line through the pipeline:
//
//	tokenize -> lookup -> resolve target -> convert args -> gate -> invoke -> report
//
// Execute never panics and never returns an error; every failure is a Result
// with StatusError. Observers see every Result in registration order.
type Executor struct {
	registry  *Registry
	converter *Converter
	resolver  *TargetResolver
	space     ObjectSpace
	log       *zap.Logger
	strict    bool
	fuzzy     bool
	hintLimit int
	now       func() time.Time

	mu        sync.Mutex
	observers []observerEntry
	nextID    uint64
}

type observerEntry struct {
	id       uint64
	observer Observer
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the diagnostics logger.
func WithLogger(log *zap.Logger) ExecutorOption {
	return func(e *Executor) {
		if log != nil {
			e.log = log
		}
	}
}

// WithObjectSpace sets the collaborator used for target resolution.
func WithObjectSpace(space ObjectSpace) ExecutorOption {
	return func(e *Executor) {
		e.space = space
	}
}

// WithConverter replaces the parameter converter.
func WithConverter(c *Converter) ExecutorOption {
	return func(e *Executor) {
		e.converter = c
	}
}

// WithStrictConversion makes a malformed argument fail the command instead
// of silently falling back to the zero value. Missing trailing arguments
// still fall back.
func WithStrictConversion(strict bool) ExecutorOption {
	return func(e *Executor) {
		e.strict = strict
	}
}

// WithFuzzyHints enables subsequence matching for unknown-command hints
// when no registered name has the typed prefix.
func WithFuzzyHints(enabled bool) ExecutorOption {
	return func(e *Executor) {
		e.fuzzy = enabled
	}
}

// WithHintLimit sets how many names an unknown-command error suggests.
func WithHintLimit(n int) ExecutorOption {
	return func(e *Executor) {
		if n >= 0 {
			e.hintLimit = n
		}
	}
}

// WithClock overrides the time source used for execution timing.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// NewExecutor creates an executor over registry.
func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry:  registry,
		log:       zap.NewNop(),
		fuzzy:     true,
		hintLimit: DefaultHintLimit,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.converter == nil {
		e.converter = NewConverter(e.log)
	}
	e.resolver = NewTargetResolver(e.space, e.log)
	return e
}

// Registry returns the command registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Converter returns the parameter converter, e.g. to register enums.
func (e *Executor) Converter() *Converter {
	return e.converter
}

// ObjectSpace returns the target collaborator, possibly nil.
func (e *Executor) ObjectSpace() ObjectSpace {
	return e.space
}

// Execute interprets one line and returns its Result.
func (e *Executor) Execute(line string) Result {
	start := e.now()
	result := e.run(line, start)
	e.notify(result)
	return result
}

// run performs every step up to building the Result.
func (e *Executor) run(line string, start time.Time) (result Result) {
	name := ""
	var inv *Invocation

	finish := func(status Status, message string, cause error) Result {
		r := Result{
			ID:            uuid.New(),
			Status:        status,
			Message:       message,
			Cause:         cause,
			Command:       name,
			Input:         line,
			ExecutionTime: e.now().Sub(start),
			At:            start,
		}
		if inv != nil {
			r.Output = append([]Line(nil), inv.output...)
		}
		return r
	}

	defer func() {
		if p := recover(); p != nil {
			e.log.Error("command pipeline panicked", zap.String("input", line), zap.Any("panic", p))
			err := panicError(p)
			result = finish(StatusError, "command execution failed: "+err.Error(), err)
		}
	}()

	if strings.TrimSpace(line) == "" {
		return finish(StatusError, ErrEmptyInput.Error(), ErrEmptyInput)
	}

	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return finish(StatusError, ErrEmptyInput.Error(), ErrEmptyInput)
	}
	name = foldName(tokens[0])

	cmd := e.registry.Get(name)
	if cmd == nil {
		err := &UnknownCommandError{Name: name, Suggestions: e.hints(name)}
		return finish(StatusError, err.Error(), err)
	}

	rest := tokens[1:]
	var target Target
	if !cmd.Untargeted {
		target = e.resolver.Resolve(cmd, rest)
	}
	if target != nil {
		rest = rest[1:]
	}

	args, convErr := e.converter.Convert(cmd.Params, rest)
	if convErr != nil && e.strict {
		if bad := firstMalformed(convErr); bad != nil {
			return finish(StatusError, fmt.Sprintf("command '%s': %v", name, bad), bad)
		}
	}

	if !cmd.allowed(target) {
		return finish(StatusError,
			fmt.Sprintf("command '%s' %s", name, ErrCannotExecute.Error()), ErrCannotExecute)
	}

	inv = &Invocation{Command: cmd, Target: target, Args: args, Input: line, missing: missingSlots(convErr)}
	ok, err := e.invoke(cmd, inv)
	if err != nil {
		ierr := &InvocationError{Command: name, Err: err}
		return finish(StatusError, fmt.Sprintf("error in command '%s': %v", name, err), ierr)
	}
	if !ok {
		return finish(StatusError, fmt.Sprintf("command '%s' failed", name), nil)
	}
	return finish(StatusSuccess, fmt.Sprintf("command '%s' executed", name), nil)
}

// invoke calls the handler, turning a panic into an error.
func (e *Executor) invoke(cmd *Command, inv *Invocation) (ok bool, err error) {
	if cmd.Handler == nil {
		return false, errors.New("no handler")
	}
	defer func() {
		if p := recover(); p != nil {
			ok, err = false, panicError(p)
		}
	}()
	return cmd.Handler(inv)
}

// hints returns prefix suggestions, falling back to fuzzy matches.
func (e *Executor) hints(name string) []string {
	if e.hintLimit == 0 {
		return nil
	}
	hints := e.registry.Suggestions(name)
	if len(hints) == 0 && e.fuzzy {
		hints = e.registry.Closest(name, e.hintLimit)
	}
	if len(hints) > e.hintLimit {
		hints = hints[:e.hintLimit]
	}
	return hints
}

// firstMalformed returns the first conversion failure that was not just a
// missing trailing argument.
func firstMalformed(err error) *ConversionError {
	for _, cerr := range conversionErrors(err) {
		if !errors.Is(cerr.Err, ErrMissingArgument) {
			return cerr
		}
	}
	return nil
}

// missingSlots returns the slots that had no token to convert.
func missingSlots(err error) map[int]bool {
	missing := make(map[int]bool)
	for _, cerr := range conversionErrors(err) {
		if errors.Is(cerr.Err, ErrMissingArgument) {
			missing[cerr.Slot] = true
		}
	}
	return missing
}

// conversionErrors flattens the joined error returned by Convert.
func conversionErrors(err error) []*ConversionError {
	if err == nil {
		return nil
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	var out []*ConversionError
	for _, err := range errs {
		var cerr *ConversionError
		if errors.As(err, &cerr) {
			out = append(out, cerr)
		}
	}
	return out
}

// =============================================================================
// OBSERVERS
// =============================================================================

// AddObserver registers o and returns a function that removes it. Adding
// the same observer twice keeps a single registration. Function observers
// are never considered equal to each other.
func (e *Executor) AddObserver(o Observer) (remove func()) {
	if o == nil {
		return func() {}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, entry := range e.observers {
		if sameObserver(entry.observer, o) {
			return e.remover(entry.id)
		}
	}
	e.nextID++
	e.observers = append(e.observers, observerEntry{id: e.nextID, observer: o})
	return e.remover(e.nextID)
}

// RemoveObserver unregisters o. Function observers can only be removed with
// the function returned by AddObserver.
func (e *Executor) RemoveObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, entry := range e.observers {
		if sameObserver(entry.observer, o) {
			e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
			return
		}
	}
}

func (e *Executor) remover(id uint64) func() {
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, entry := range e.observers {
			if entry.id == id {
				e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
				return
			}
		}
	}
}

// notify delivers result to a snapshot of the observers. A panicking
// observer is logged and skipped.
func (e *Executor) notify(result Result) {
	e.mu.Lock()
	observers := make([]Observer, len(e.observers))
	for i, entry := range e.observers {
		observers[i] = entry.observer
	}
	e.mu.Unlock()

	for i, o := range observers {
		e.deliver(i, o, result)
	}
}

func (e *Executor) deliver(index int, o Observer, result Result) {
	defer func() {
		if p := recover(); p != nil {
			e.log.Error("observer panicked",
				zap.Int("observer", index),
				zap.String("command", result.Command),
				zap.Any("panic", p))
		}
	}()
	result.Output = result.Lines()
	o.OnCommandExecuted(result)
}

func sameObserver(a, b Observer) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	// Value.Comparable looks inside interface fields; a struct holding a
	// func would panic on ==.
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}
