// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	errInvalidBool  = errors.New("invalid boolean")
	errInvalidColor = errors.New("invalid color")
	errUnknownEnum  = errors.New("unknown enum")
	errNotMember    = errors.New("not a member")
	errBadKey       = errors.New("key kind is not usable as a map key")
)

// namedColors is the fixed palette accepted by ColorParam.
var namedColors = map[string]Color{
	"red":     ColorRed,
	"green":   ColorGreen,
	"blue":    ColorBlue,
	"white":   ColorWhite,
	"black":   ColorBlack,
	"yellow":  ColorYellow,
	"cyan":    ColorCyan,
	"magenta": ColorMagenta,
	"gray":    ColorGray,
	"grey":    ColorGray,
}

// =============================================================================
// CONVERTER
// =============================================================================

// Converter turns tokens into typed values according to a Signature.
//
// Conversion never aborts: a slot that is missing or malformed receives its
// kind's zero value. The degraded slots are reported back as a joined error
// of *ConversionError so the caller can decide whether to care.
type Converter struct {
	mu    sync.RWMutex
	enums map[string][]string
	log   *zap.Logger
}

// NewConverter creates a converter with no enums registered.
func NewConverter(log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{
		enums: make(map[string][]string),
		log:   log,
	}
}

// RegisterEnum declares the members of a named enum. Re-registering replaces
// the member set.
func (c *Converter) RegisterEnum(name string, members ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enums[foldName(name)] = append([]string(nil), members...)
}

// EnumMembers returns the members of a named enum.
func (c *Converter) EnumMembers(name string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.enums[foldName(name)]...)
}

// Zero returns the fallback value for a kind, resolving enums to their
// first member.
func (c *Converter) Zero(kind ParameterKind) any {
	if kind.Kind == KindEnum {
		if members := c.EnumMembers(kind.EnumName); len(members) > 0 {
			return members[0]
		}
	}
	return kind.Zero()
}

// Convert builds the argument list for sig from tokens, left to right.
// The returned slice always has len(sig) entries. A malformed token is still
// consumed by its slot, so later slots never shift onto it.
func (c *Converter) Convert(sig Signature, tokens []string) (Args, error) {
	values := make(Args, len(sig))
	var errs []error
	cursor := 0

	for slot, kind := range sig {
		remaining := tokens[min(cursor, len(tokens)):]
		value, used, err := c.consume(kind, remaining)
		cursor += used
		if err != nil {
			cerr := &ConversionError{Slot: slot, Kind: kind, Err: err}
			if len(remaining) > 0 {
				cerr.Token = remaining[0]
			}
			c.log.Debug("parameter degraded",
				zap.Int("slot", slot),
				zap.String("kind", kind.String()),
				zap.String("token", cerr.Token),
				zap.Error(err))
			errs = append(errs, cerr)
			// Collections keep the elements that did convert.
			if value == nil || !kind.IsCollection() {
				value = c.Zero(kind)
			}
		}
		values[slot] = value
	}

	return values, errors.Join(errs...)
}

// consume converts the head of tokens for one slot and reports how many
// tokens it used. A failed slot still consumes the tokens it looked at so
// the following slots stay aligned.
func (c *Converter) consume(kind ParameterKind, tokens []string) (any, int, error) {
	if len(tokens) == 0 {
		return nil, 0, ErrMissingArgument
	}

	switch kind.Kind {
	case KindVector2, KindVector3:
		n := kind.Arity()
		// Packed form: a single "x,y,z" token.
		if parts := splitVector(tokens[0]); len(parts) == n {
			v, err := vectorFromParts(kind, parts)
			return v, 1, err
		}
		if len(tokens) < n {
			return nil, len(tokens), fmt.Errorf("needs %d values, got %d", n, len(tokens))
		}
		v, err := vectorFromParts(kind, tokens[:n])
		return v, n, err
	default:
		v, err := c.ConvertToken(kind, tokens[0])
		return v, 1, err
	}
}

// ConvertToken converts a single token. Vector kinds accept the packed
// "x,y[,z]" form only.
func (c *Converter) ConvertToken(kind ParameterKind, token string) (any, error) {
	switch kind.Kind {
	case KindText:
		return token, nil
	case KindInteger:
		return parseInteger(token)
	case KindDecimal:
		return parseDecimal(token)
	case KindBoolean:
		return parseBool(token)
	case KindColor:
		return parseColor(token)
	case KindVector2, KindVector3:
		parts := splitVector(token)
		if len(parts) != kind.Arity() {
			return nil, fmt.Errorf("needs %d components, got %d", kind.Arity(), len(parts))
		}
		return vectorFromParts(kind, parts)
	case KindEnum:
		return c.parseEnum(kind.EnumName, token)
	case KindArray, KindList:
		return c.parseSequence(kind, token)
	case KindMap:
		return c.parseMap(kind, token)
	default:
		return nil, fmt.Errorf("unsupported kind %d", kind.Kind)
	}
}

func (c *Converter) parseEnum(name, token string) (any, error) {
	members := c.EnumMembers(name)
	if members == nil {
		return nil, fmt.Errorf("%w %q", errUnknownEnum, name)
	}
	token = strings.TrimSpace(token)
	for _, m := range members {
		if strings.EqualFold(m, token) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w of %s (want one of %s)", errNotMember, name, strings.Join(members, ", "))
}

// parseSequence converts "a,b;c". Each element degrades on its own.
func (c *Converter) parseSequence(kind ParameterKind, token string) (any, error) {
	elem := kind.elem()
	out := []any{}
	var errs []error
	for _, part := range splitTrim(token, ",;") {
		v, err := c.ConvertToken(elem, part)
		if err != nil {
			errs = append(errs, fmt.Errorf("element %q: %w", part, err))
			v = c.Zero(elem)
		}
		out = append(out, v)
	}
	return out, errors.Join(errs...)
}

// parseMap converts "k:v;k2:v2". Pairs split on the first ':'; pairs
// without a ':' are skipped. Later keys overwrite earlier ones.
func (c *Converter) parseMap(kind ParameterKind, token string) (any, error) {
	keyKind, valueKind := kind.key(), kind.elem()
	out := map[any]any{}
	if keyKind.IsCollection() {
		return out, errBadKey
	}

	var errs []error
	for _, pair := range splitTrim(token, ";") {
		rawKey, rawValue, ok := strings.Cut(pair, ":")
		if !ok {
			errs = append(errs, fmt.Errorf("pair %q: missing ':'", pair))
			continue
		}
		key, err := c.ConvertToken(keyKind, strings.TrimSpace(rawKey))
		if err != nil {
			errs = append(errs, fmt.Errorf("key %q: %w", rawKey, err))
			continue
		}
		value, err := c.ConvertToken(valueKind, strings.TrimSpace(rawValue))
		if err != nil {
			errs = append(errs, fmt.Errorf("value %q: %w", rawValue, err))
			value = c.Zero(valueKind)
		}
		out[key] = value
	}
	return out, errors.Join(errs...)
}

// =============================================================================
// SCALAR PARSERS
// =============================================================================

func parseInteger(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "on", "yes":
		return true, nil
	case "false", "0", "off", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%w %q", errInvalidBool, s)
	}
}

func parseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	return Color{}, fmt.Errorf("%w %q", errInvalidColor, s)
}

// parseHexColor accepts RGB, RGBA, RRGGBB and RRGGBBAA.
func parseHexColor(hex string) (Color, error) {
	var digits []uint64
	switch len(hex) {
	case 3, 4:
		for i := 0; i < len(hex); i++ {
			v, err := strconv.ParseUint(hex[i:i+1], 16, 8)
			if err != nil {
				return Color{}, fmt.Errorf("%w #%s", errInvalidColor, hex)
			}
			digits = append(digits, v*17)
		}
	case 6, 8:
		for i := 0; i < len(hex); i += 2 {
			v, err := strconv.ParseUint(hex[i:i+2], 16, 8)
			if err != nil {
				return Color{}, fmt.Errorf("%w #%s", errInvalidColor, hex)
			}
			digits = append(digits, v)
		}
	default:
		return Color{}, fmt.Errorf("%w #%s", errInvalidColor, hex)
	}

	c := Color{A: 1}
	c.R = float64(digits[0]) / 255
	c.G = float64(digits[1]) / 255
	c.B = float64(digits[2]) / 255
	if len(digits) == 4 {
		c.A = float64(digits[3]) / 255
	}
	return c, nil
}

// splitVector splits a packed vector token on ',', ';' or whitespace and
// strips surrounding parentheses: "(1,2,3)" -> [1 2 3].
func splitVector(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
}

func vectorFromParts(kind ParameterKind, parts []string) (any, error) {
	comps := make([]float64, len(parts))
	for i, p := range parts {
		f, err := parseDecimal(p)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i+1, err)
		}
		comps[i] = f
	}
	if kind.Kind == KindVector2 {
		return Vector2{X: comps[0], Y: comps[1]}, nil
	}
	return Vector3{X: comps[0], Y: comps[1], Z: comps[2]}, nil
}

func splitTrim(s, seps string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	}) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
