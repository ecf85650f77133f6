// Package content loads the tile set shown on the spiral.
//
// A manifest is YAML (or JSON, which YAML accepts) in one of two shapes, a
// document with a tiles list:
//
//	tiles:
//	  - id: intro
//	    title: Introduction
//	    route: /intro
//	    priority: 3
//	    bbox: {rMin: 100, rMax: 150, tMin: -0.5, tMax: 0.5}
//
// or a bare list of tiles. A document may instead ask for a generated
// layout with "generate: N" when no tiles are listed.
package content

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/spiral"
)

// DefaultCount is the size of the generated layout used without a
// manifest.
const DefaultCount = 8

// ErrInvalidManifest is wrapped by every validation error.
var ErrInvalidManifest = errors.New("content: invalid manifest")

// Manifest is the document form of a tile manifest.
type Manifest struct {
	Tiles []spiral.Tile `yaml:"tiles"`

	// Generate asks for a generated layout of this many tiles when Tiles
	// is empty.
	Generate int `yaml:"generate,omitempty"`
	// BaseRadius is the innermost radius of a generated layout.
	BaseRadius float64 `yaml:"baseRadius,omitempty"`
}

// Resolve returns the manifest's tiles, generating a layout when none are
// listed.
func (m Manifest) Resolve() []spiral.Tile {
	if len(m.Tiles) > 0 || m.Generate <= 0 {
		return m.Tiles
	}
	return spiral.SpiralLayout(m.Generate, m.BaseRadius)
}

// Parse decodes a manifest and validates its tiles.
func Parse(data []byte) ([]spiral.Tile, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("content: parse: %w", err)
	}
	var m Manifest
	switch {
	case len(node.Content) == 0:
		// empty document
	case node.Content[0].Kind == yaml.SequenceNode:
		if err := node.Decode(&m.Tiles); err != nil {
			return nil, fmt.Errorf("content: decode tiles: %w", err)
		}
	default:
		if err := node.Decode(&m); err != nil {
			return nil, fmt.Errorf("content: decode manifest: %w", err)
		}
	}
	tiles := m.Resolve()
	if err := Validate(tiles); err != nil {
		return nil, err
	}
	return tiles, nil
}

// Load reads and parses the manifest at path. A leading ~ is expanded.
func Load(path string) ([]spiral.Tile, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("content: expand %q: %w", path, err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	tiles, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return tiles, nil
}

// LoadOrDefault loads path, or returns a generated layout of DefaultCount
// tiles when path is empty.
func LoadOrDefault(path string, count int) ([]spiral.Tile, error) {
	if path == "" {
		if count <= 0 {
			count = DefaultCount
		}
		return spiral.SpiralLayout(count, 0), nil
	}
	return Load(path)
}

// Validate checks that tile IDs are present and unique and that every bbox
// is finite with rMin <= rMax.
func Validate(tiles []spiral.Tile) error {
	seen := make(map[string]bool, len(tiles))
	for i, t := range tiles {
		if t.ID == "" {
			return fmt.Errorf("%w: tile %d has no id", ErrInvalidManifest, i)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate tile id %q", ErrInvalidManifest, t.ID)
		}
		seen[t.ID] = true

		b := t.BBox
		for _, v := range [...]float64{b.RMin, b.RMax, b.TMin, b.TMax} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: tile %q has a non-finite bbox", ErrInvalidManifest, t.ID)
			}
		}
		if b.RMin < 0 || b.RMin > b.RMax {
			return fmt.Errorf("%w: tile %q has rMin %g, rMax %g", ErrInvalidManifest, t.ID, b.RMin, b.RMax)
		}
	}
	return nil
}
