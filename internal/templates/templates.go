// Package templates loads the seed event templates and per-type planning guidelines.
package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"eventplanner/internal/domain"
)

//go:embed seed.yaml
var seedYAML []byte

// Guideline is planning guidance for one event type.
type Guideline struct {
	EventType       string   `yaml:"event_type" json:"event_type"`
	TypicalDuration string   `yaml:"typical_duration" json:"typical_duration"`
	KeyMoments      []string `yaml:"key_moments" json:"key_moments"`
	Essentials      []string `yaml:"essentials" json:"essentials"`
	Tips            []string `yaml:"tips" json:"tips"`
}

// Catalog is the set of seed templates and guidelines.
type Catalog struct {
	Templates  []domain.Template `yaml:"templates"`
	Guidelines []Guideline       `yaml:"guidelines"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(seedYAML)
}

// Load reads a catalog from path. An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]struct{}, len(c.Templates))
	for i, t := range c.Templates {
		if t.ID == "" {
			return fmt.Errorf("template %d: missing id", i)
		}
		if t.Text == "" {
			return fmt.Errorf("template %s: empty text", t.ID)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("template %s: duplicate id", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	if len(c.Templates) == 0 {
		return errors.New("no templates defined")
	}
	return nil
}

// GuidelineFor returns the guideline for eventType.
func (c *Catalog) GuidelineFor(eventType string) (Guideline, bool) {
	for _, g := range c.Guidelines {
		if g.EventType == eventType {
			return g, true
		}
	}
	return Guideline{}, false
}
