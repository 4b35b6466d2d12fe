// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "strings"

// testObject and testSpace are a minimal in-memory ObjectSpace.
type testObject struct {
	name     string
	position Vector3
	hidden   bool
}

func (o *testObject) Name() string { return o.name }

type testSpace struct {
	objects []*testObject
}

func newTestSpace(names ...string) *testSpace {
	s := &testSpace{}
	for _, name := range names {
		s.objects = append(s.objects, &testObject{name: name})
	}
	return s
}

func (s *testSpace) get(name string) *testObject {
	for _, o := range s.objects {
		if o.name == name {
			return o
		}
	}
	return nil
}

func (s *testSpace) FindExact(name string) (Target, bool) {
	if o := s.get(name); o != nil {
		return o, true
	}
	return nil, false
}

func (s *testSpace) FindContaining(fragment string) []Target {
	var out []Target
	for _, o := range s.objects {
		if strings.Contains(strings.ToLower(o.name), strings.ToLower(fragment)) {
			out = append(out, o)
		}
	}
	return out
}

func (s *testSpace) Visible() []Target {
	var out []Target
	for _, o := range s.objects {
		if !o.hidden {
			out = append(out, o)
		}
	}
	return out
}

// panicSpace fails every query.
type panicSpace struct{}

func (panicSpace) FindExact(string) (Target, bool) { panic("lookup exploded") }
func (panicSpace) FindContaining(string) []Target  { panic("lookup exploded") }
func (panicSpace) Visible() []Target               { panic("lookup exploded") }
