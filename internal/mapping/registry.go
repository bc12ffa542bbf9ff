// Package mapping holds the registry of named statement column layouts.
//
// A registry is loaded once at startup, from the bundled mappings.yaml or
// an override file, and is read-only afterwards.
package mapping

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tally/internal/core"
)

// DefaultName is the layout used when auto-detection finds no overlap.
const DefaultName = "default"

//go:embed mappings.yaml
var bundled []byte

// HeaderMapping maps the logical statement fields to source column names.
type HeaderMapping struct {
	Name        string `yaml:"name"`
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
	Amount      string `yaml:"amount"`
}

type file struct {
	Mappings []HeaderMapping `yaml:"mappings"`
}

// Registry is a closed, ordered set of header mappings.
type Registry struct {
	mappings []HeaderMapping
	byName   map[string]int
}

func New(mappings []HeaderMapping) (*Registry, error) {
	r := &Registry{byName: make(map[string]int, len(mappings))}
	for _, m := range mappings {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return nil, fmt.Errorf("mapping without a name")
		}
		if _, dup := r.byName[m.Name]; dup {
			return nil, fmt.Errorf("duplicate mapping %q", m.Name)
		}
		if m.Date == "" || m.Description == "" || m.Amount == "" {
			return nil, fmt.Errorf("mapping %q: date, description and amount columns are required", m.Name)
		}
		r.byName[m.Name] = len(r.mappings)
		r.mappings = append(r.mappings, m)
	}
	if len(r.mappings) == 0 {
		return nil, fmt.Errorf("no mappings defined")
	}
	return r, nil
}

// Parse reads a registry from YAML.
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode mappings: %w", err)
	}
	return New(f.Mappings)
}

// Default returns the bundled registry.
func Default() (*Registry, error) {
	return Parse(bundled)
}

// Load reads the registry from path, or the bundled one when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mappings file: %w", err)
	}
	return Parse(data)
}

// Resolve looks up a mapping by name.
func (r *Registry) Resolve(name string) (HeaderMapping, error) {
	i, ok := r.byName[name]
	if !ok {
		return HeaderMapping{}, fmt.Errorf("%w: %q", core.ErrUnknownMapping, name)
	}
	return r.mappings[i], nil
}

// All returns the mappings in registration order.
func (r *Registry) All() []HeaderMapping {
	return append([]HeaderMapping(nil), r.mappings...)
}

// Detect picks the mapping whose column names overlap the header row the most.
// Ties go to the mapping registered first. With no overlap at all the default
// mapping is used; without one, Detect fails with core.ErrNoUsableMapping.
func (r *Registry) Detect(headers []string) (HeaderMapping, error) {
	best, bestScore := -1, 0
	for i, m := range r.mappings {
		if s := m.Score(headers); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best >= 0 {
		return r.mappings[best], nil
	}
	if m, err := r.Resolve(DefaultName); err == nil {
		return m, nil
	}
	return HeaderMapping{}, fmt.Errorf("%w: headers %v", core.ErrNoUsableMapping, headers)
}

// Score counts how many of the mapping's columns appear verbatim in headers.
func (m HeaderMapping) Score(headers []string) int {
	score := 0
	for _, col := range []string{m.Date, m.Description, m.Amount} {
		for _, h := range headers {
			if h == col {
				score++
				break
			}
		}
	}
	return score
}
