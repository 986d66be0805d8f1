// Package catalog holds the read-only stream → period → subject tree users
// pick from when starting a review.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Period struct {
	Name     string   `yaml:"name"`
	Subjects []string `yaml:"subjects"`
}

type Stream struct {
	Name    string   `yaml:"name"`
	Periods []Period `yaml:"periods"`
}

// Catalog keeps streams and periods in file order.
type Catalog struct {
	Streams []Stream `yaml:"streams"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog file; an empty path selects the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects empty levels and duplicate names within a level.
func (c *Catalog) Validate() error {
	if len(c.Streams) == 0 {
		return fmt.Errorf("catalog has no streams")
	}
	seen := make(map[string]bool)
	for _, s := range c.Streams {
		if s.Name == "" || seen[s.Name] {
			return fmt.Errorf("catalog stream %q is empty or duplicated", s.Name)
		}
		seen[s.Name] = true
		if len(s.Periods) == 0 {
			return fmt.Errorf("catalog stream %q has no periods", s.Name)
		}
		periods := make(map[string]bool)
		for _, p := range s.Periods {
			if p.Name == "" || periods[p.Name] {
				return fmt.Errorf("catalog period %q in %q is empty or duplicated", p.Name, s.Name)
			}
			periods[p.Name] = true
			if len(p.Subjects) == 0 {
				return fmt.Errorf("catalog period %q in %q has no subjects", p.Name, s.Name)
			}
		}
	}
	return nil
}

// StreamNames lists the streams in order.
func (c *Catalog) StreamNames() []string {
	out := make([]string, 0, len(c.Streams))
	for _, s := range c.Streams {
		out = append(out, s.Name)
	}
	return out
}

func (c *Catalog) stream(name string) (Stream, bool) {
	i := slices.IndexFunc(c.Streams, func(s Stream) bool { return s.Name == name })
	if i < 0 {
		return Stream{}, false
	}
	return c.Streams[i], true
}

// HasStream reports whether name is a known stream.
func (c *Catalog) HasStream(name string) bool {
	_, ok := c.stream(name)
	return ok
}

// PeriodNames lists the periods of a stream, or nil for an unknown stream.
func (c *Catalog) PeriodNames(stream string) []string {
	s, ok := c.stream(stream)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(s.Periods))
	for _, p := range s.Periods {
		out = append(out, p.Name)
	}
	return out
}

// Subjects lists the subjects of a stream's period, or nil if either is unknown.
func (c *Catalog) Subjects(stream, period string) []string {
	s, ok := c.stream(stream)
	if !ok {
		return nil
	}
	for _, p := range s.Periods {
		if p.Name == period {
			return p.Subjects
		}
	}
	return nil
}
