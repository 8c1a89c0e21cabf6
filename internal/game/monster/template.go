// Package monster provides the static monster templates PvE fights are built from.
package monster

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// StatBlock holds the combat stats a template contributes at a given level.
type StatBlock struct {
	MaxHealth int `yaml:"max_health"`
	Attack    int `yaml:"attack"`
	Defense   int `yaml:"defense"`
	Speed     int `yaml:"speed"`
	MaxEnergy int `yaml:"max_energy"`
}

// Template defines a reusable monster archetype loaded from YAML.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Rating stands in for a player score when computing score deltas.
	Rating int `yaml:"rating"`
	// Base are the level-1 stats; PerLevel is added for each level above 1.
	Base     StatBlock `yaml:"base"`
	PerLevel StatBlock `yaml:"per_level"`
	MaxLevel int       `yaml:"max_level"` // 0 = unbounded
	Actions  []string  `yaml:"actions"`
	AIDomain string    `yaml:"ai_domain"` // HTN domain ID; empty = first affordable attack
}

// Validate checks that the template satisfies basic invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty, base stats are
// positive (energy may be zero), growth is non-negative, and at least one
// action is listed.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("monster template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("monster template %q: name must not be empty", t.ID)
	}
	b := t.Base
	if b.MaxHealth < 1 || b.Attack < 1 || b.Defense < 0 || b.Speed < 0 || b.MaxEnergy < 0 {
		return fmt.Errorf("monster template %q: base stats must be positive (health and attack >= 1)", t.ID)
	}
	p := t.PerLevel
	if p.MaxHealth < 0 || p.Attack < 0 || p.Defense < 0 || p.Speed < 0 || p.MaxEnergy < 0 {
		return fmt.Errorf("monster template %q: per_level growth must not be negative", t.ID)
	}
	if t.MaxLevel < 0 {
		return fmt.Errorf("monster template %q: max_level must be >= 0", t.ID)
	}
	if len(t.Actions) == 0 {
		return fmt.Errorf("monster template %q: at least one action is required", t.ID)
	}
	return nil
}

// StatsAt returns the stats of the template at level.
//
// Precondition: level >= 1 and, when MaxLevel > 0, level <= MaxLevel.
// Postcondition: Returns Base + PerLevel*(level-1).
func (t *Template) StatsAt(level int) (StatBlock, error) {
	if level < 1 {
		return StatBlock{}, fmt.Errorf("monster %q: level must be >= 1, got %d", t.ID, level)
	}
	if t.MaxLevel > 0 && level > t.MaxLevel {
		return StatBlock{}, fmt.Errorf("monster %q: level %d exceeds max_level %d", t.ID, level, t.MaxLevel)
	}
	n := level - 1
	return StatBlock{
		MaxHealth: t.Base.MaxHealth + t.PerLevel.MaxHealth*n,
		Attack:    t.Base.Attack + t.PerLevel.Attack*n,
		Defense:   t.Base.Defense + t.PerLevel.Defense*n,
		Speed:     t.Base.Speed + t.PerLevel.Speed*n,
		MaxEnergy: t.Base.MaxEnergy + t.PerLevel.MaxEnergy*n,
	}, nil
}

// LoadTemplateFromBytes parses a single template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed
// templates ordered by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or the first parse/validate error.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading monster dir %q: %w", dir, err)
	}

	var templates []*Template
	seen := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if _, dup := seen[tmpl.ID]; dup {
			return nil, fmt.Errorf("loading %q: duplicate monster id %q", path, tmpl.ID)
		}
		seen[tmpl.ID] = struct{}{}
		templates = append(templates, tmpl)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

// Index maps templates by ID.
func Index(templates []*Template) map[string]*Template {
	out := make(map[string]*Template, len(templates))
	for _, t := range templates {
		out[t.ID] = t
	}
	return out
}
