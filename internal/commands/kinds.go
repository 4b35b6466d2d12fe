// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// PARAMETER KINDS
// =============================================================================

// Kind is the tag of a ParameterKind.
type Kind int

const (
	KindText    Kind = iota // Passthrough string
	KindInteger             // Base-10 integer
	KindDecimal             // Floating point, accepts ',' as fraction separator
	KindBoolean             // true/1/on/yes or false/0/off/no
	KindVector2             // Two decimals
	KindVector3             // Three decimals
	KindColor               // Palette name or #hex
	KindEnum                // Member of a named enum
	KindArray               // ',' or ';' separated elements
	KindList                // Same encoding as KindArray
	KindMap                 // ';' separated key:value pairs
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindVector2:
		return "vector2"
	case KindVector3:
		return "vector3"
	case KindColor:
		return "color"
	case KindEnum:
		return "enum"
	case KindArray:
		return "array"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// ParameterKind describes one argument slot of a command.
// Elem is set for arrays, lists and maps (value kind); Key only for maps.
type ParameterKind struct {
	Kind     Kind
	EnumName string
	Elem     *ParameterKind
	Key      *ParameterKind
}

// Scalar kinds.
var (
	TextParam    = ParameterKind{Kind: KindText}
	IntegerParam = ParameterKind{Kind: KindInteger}
	DecimalParam = ParameterKind{Kind: KindDecimal}
	BooleanParam = ParameterKind{Kind: KindBoolean}
	Vector2Param = ParameterKind{Kind: KindVector2}
	Vector3Param = ParameterKind{Kind: KindVector3}
	ColorParam   = ParameterKind{Kind: KindColor}
)

// EnumOf returns the kind for members of the named enum.
func EnumOf(name string) ParameterKind {
	return ParameterKind{Kind: KindEnum, EnumName: name}
}

// ArrayOf returns an array kind with the given element kind.
func ArrayOf(elem ParameterKind) ParameterKind {
	return ParameterKind{Kind: KindArray, Elem: &elem}
}

// ListOf returns a list kind with the given element kind.
func ListOf(elem ParameterKind) ParameterKind {
	return ParameterKind{Kind: KindList, Elem: &elem}
}

// MapOf returns a map kind with the given key and value kinds.
func MapOf(key, value ParameterKind) ParameterKind {
	return ParameterKind{Kind: KindMap, Key: &key, Elem: &value}
}

// Arity is the number of raw tokens the kind consumes in its spread form.
func (p ParameterKind) Arity() int {
	switch p.Kind {
	case KindVector2:
		return 2
	case KindVector3:
		return 3
	default:
		return 1
	}
}

// IsCollection reports whether the kind is an array, list or map.
func (p ParameterKind) IsCollection() bool {
	return p.Kind == KindArray || p.Kind == KindList || p.Kind == KindMap
}

// String returns a friendly type name for help output.
func (p ParameterKind) String() string {
	switch p.Kind {
	case KindText:
		return "text"
	case KindInteger:
		return "number"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "true/false"
	case KindVector2:
		return "x,y"
	case KindVector3:
		return "x,y,z"
	case KindColor:
		return "color"
	case KindEnum:
		if p.EnumName == "" {
			return "enum"
		}
		return p.EnumName
	case KindArray, KindList:
		return p.elem().String() + "[]"
	case KindMap:
		return p.key().String() + ":" + p.elem().String() + ";..."
	default:
		return "unknown"
	}
}

func (p ParameterKind) elem() ParameterKind {
	if p.Elem == nil {
		return TextParam
	}
	return *p.Elem
}

func (p ParameterKind) key() ParameterKind {
	if p.Key == nil {
		return TextParam
	}
	return *p.Key
}

// Signature is the ordered list of parameter kinds of a command.
type Signature []ParameterKind

// Usage renders the signature as "<a> <b>" for help listings.
func (s Signature) Usage() string {
	parts := make([]string, 0, len(s))
	for _, p := range s {
		parts = append(parts, "<"+p.String()+">")
	}
	return strings.Join(parts, " ")
}

// TokenCount is the number of tokens the signature consumes in spread form.
func (s Signature) TokenCount() int {
	n := 0
	for _, p := range s {
		n += p.Arity()
	}
	return n
}

// =============================================================================
// VALUE TYPES
// =============================================================================

// Vector2 is a two component vector.
type Vector2 struct {
	X float64 `yaml:"x" json:"x" toml:"x"`
	Y float64 `yaml:"y" json:"y" toml:"y"`
}

func (v Vector2) String() string {
	return "(" + formatFloat(v.X) + ", " + formatFloat(v.Y) + ")"
}

// Vector3 is a three component vector.
type Vector3 struct {
	X float64 `yaml:"x" json:"x" toml:"x"`
	Y float64 `yaml:"y" json:"y" toml:"y"`
	Z float64 `yaml:"z" json:"z" toml:"z"`
}

func (v Vector3) String() string {
	return "(" + formatFloat(v.X) + ", " + formatFloat(v.Y) + ", " + formatFloat(v.Z) + ")"
}

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Color is an RGBA color with components in [0,1].
type Color struct {
	R float64 `yaml:"r" json:"r" toml:"r"`
	G float64 `yaml:"g" json:"g" toml:"g"`
	B float64 `yaml:"b" json:"b" toml:"b"`
	A float64 `yaml:"a" json:"a" toml:"a"`
}

// Named colors.
var (
	ColorRed     = Color{R: 1, G: 0, B: 0, A: 1}
	ColorGreen   = Color{R: 0, G: 1, B: 0, A: 1}
	ColorBlue    = Color{R: 0, G: 0, B: 1, A: 1}
	ColorWhite   = Color{R: 1, G: 1, B: 1, A: 1}
	ColorBlack   = Color{R: 0, G: 0, B: 0, A: 1}
	ColorYellow  = Color{R: 1, G: 0.92, B: 0.016, A: 1}
	ColorCyan    = Color{R: 0, G: 1, B: 1, A: 1}
	ColorMagenta = Color{R: 1, G: 0, B: 1, A: 1}
	ColorGray    = Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
)

// Hex returns the color as #RRGGBB, or #RRGGBBAA when not fully opaque.
func (c Color) Hex() string {
	s := fmt.Sprintf("#%02X%02X%02X", channel(c.R), channel(c.G), channel(c.B))
	if channel(c.A) != 0xFF {
		s += fmt.Sprintf("%02X", channel(c.A))
	}
	return s
}

func (c Color) String() string {
	return c.Hex()
}

func channel(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, f)) * 255))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// =============================================================================
// ZERO VALUES
// =============================================================================

// Zero returns the fallback value for a kind. Enums fall back to their first
// member when the enum is known to the converter.
func (p ParameterKind) Zero() any {
	switch p.Kind {
	case KindText, KindEnum:
		return ""
	case KindInteger:
		return 0
	case KindDecimal:
		return 0.0
	case KindBoolean:
		return false
	case KindVector2:
		return Vector2{}
	case KindVector3:
		return Vector3{}
	case KindColor:
		return ColorWhite
	case KindArray, KindList:
		return []any{}
	case KindMap:
		return map[any]any{}
	default:
		return nil
	}
}
