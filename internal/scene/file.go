// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scene

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/commander/internal/commands"
	"github.com/jeranaias/commander/internal/util"
)

// =============================================================================
// FILE FORMAT
// =============================================================================

// document is the YAML layout of a scene file:
//
//	objects:
//	  - name: Cube
//	    position: {x: 0, y: 1, z: 0}
//	    color: red
//	    tags: [prop]
//	    props: {mass: 2.5}
type document struct {
	Objects []objectDoc `yaml:"objects"`
}

type objectDoc struct {
	Name     string             `yaml:"name"`
	Kind     string             `yaml:"kind,omitempty"`
	Position commands.Vector3   `yaml:"position"`
	Scale    *commands.Vector2  `yaml:"scale,omitempty"`
	Color    string             `yaml:"color,omitempty"`
	Layer    string             `yaml:"layer,omitempty"`
	Tags     []string           `yaml:"tags,omitempty"`
	Props    map[string]float64 `yaml:"props,omitempty"`
	Active   *bool              `yaml:"active,omitempty"`
}

// Parse decodes a YAML scene into objects. Names must be unique and
// non-empty; colors use the same syntax as the color parameter.
func Parse(data []byte) ([]*Object, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}

	conv := commands.NewConverter(nil)
	seen := make(map[string]bool, len(doc.Objects))
	objects := make([]*Object, 0, len(doc.Objects))

	for i, d := range doc.Objects {
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("object %d: %w", i+1, ErrInvalidName)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("object %q: %w", d.Name, ErrDuplicateName)
		}
		seen[d.Name] = true

		o := NewObject(d.Name)
		o.Position = d.Position
		if d.Kind != "" {
			o.Kind = strings.ToLower(d.Kind)
		}
		if d.Scale != nil {
			o.Scale = *d.Scale
		}
		if d.Color != "" {
			c, err := conv.ConvertToken(commands.ColorParam, d.Color)
			if err != nil {
				return nil, fmt.Errorf("object %q: %w", d.Name, err)
			}
			o.Color = c.(commands.Color)
		}
		if d.Layer != "" {
			layer, ok := CanonicalLayer(d.Layer)
			if !ok {
				return nil, fmt.Errorf("object %q: unknown layer %q", d.Name, d.Layer)
			}
			o.Layer = layer
		}
		o.Tags = append(o.Tags, d.Tags...)
		for k, v := range d.Props {
			o.Props[k] = v
		}
		if d.Active != nil {
			o.Active = *d.Active
		}
		objects = append(objects, o)
	}

	return objects, nil
}

// Marshal encodes the scene's objects as YAML.
func (s *Scene) Marshal() ([]byte, error) {
	var doc document
	for _, o := range s.Objects() {
		active := o.Active
		scale := o.Scale
		doc.Objects = append(doc.Objects, objectDoc{
			Name:     o.name,
			Kind:     o.Kind,
			Position: o.Position,
			Scale:    &scale,
			Color:    o.Color.Hex(),
			Layer:    o.Layer,
			Tags:     o.Tags,
			Props:    o.Props,
			Active:   &active,
		})
	}
	return yaml.Marshal(&doc)
}

// Load replaces the scene's objects with the contents of path. On error the
// current objects are kept.
func (s *Scene) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read scene: %w", err)
	}
	objects, err := Parse(data)
	if err != nil {
		return err
	}
	s.Replace(objects)
	s.log.Info("scene loaded", zap.String("path", path), zap.Int("objects", len(objects)))
	return nil
}

// Save writes the scene to path atomically.
func (s *Scene) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scene: %w", err)
	}
	return nil
}

// CanonicalLayer returns the layer matching name case-insensitively.
func CanonicalLayer(name string) (string, bool) {
	for _, l := range Layers {
		if strings.EqualFold(l, strings.TrimSpace(name)) {
			return l, true
		}
	}
	return "", false
}
