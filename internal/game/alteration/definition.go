// Package alteration holds the immutable catalog of status effects (stun,
// poison, invisibility, ...) and the per-fighter bookkeeping of applied ones.
package alteration

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Def is the static definition of an alteration, loaded from YAML.
type Def struct {
	Kind        string `yaml:"kind"`
	Name        string `yaml:"name"`
	Tag         string `yaml:"tag"` // short display tag, e.g. an emoji
	Description string `yaml:"description"`
	// Duration is the default number of turns the alteration lasts.
	Duration     int  `yaml:"duration"`
	BlocksAction bool `yaml:"blocks_action"`
	// PeriodicDamage is dealt to the bearer at each end-of-turn tick.
	PeriodicDamage int `yaml:"periodic_damage"`
	// PeriodicDamagePercent is a percentage of the bearer's max health dealt per tick.
	PeriodicDamagePercent int `yaml:"periodic_damage_percent"`
	// Stat multipliers; 0 means neutral (1.0).
	AttackMultiplier  float64 `yaml:"attack_multiplier"`
	DefenseMultiplier float64 `yaml:"defense_multiplier"`
	SpeedMultiplier   float64 `yaml:"speed_multiplier"`
	// Evasion is added to the miss chance of actions targeting the bearer.
	Evasion float64 `yaml:"evasion"`
}

// Validate checks the definition invariants.
//
// Postcondition: Returns nil iff Kind is non-empty, Duration >= 1, damage values
// and multipliers are non-negative, and Evasion is in [0, 1].
func (d *Def) Validate() error {
	if d.Kind == "" {
		return fmt.Errorf("alteration: kind must not be empty")
	}
	if d.Duration < 1 {
		return fmt.Errorf("alteration %q: duration must be >= 1, got %d", d.Kind, d.Duration)
	}
	if d.PeriodicDamage < 0 || d.PeriodicDamagePercent < 0 {
		return fmt.Errorf("alteration %q: periodic damage must not be negative", d.Kind)
	}
	if d.AttackMultiplier < 0 || d.DefenseMultiplier < 0 || d.SpeedMultiplier < 0 {
		return fmt.Errorf("alteration %q: multipliers must not be negative", d.Kind)
	}
	if d.Evasion < 0 || d.Evasion > 1 {
		return fmt.Errorf("alteration %q: evasion must be in [0, 1], got %v", d.Kind, d.Evasion)
	}
	return nil
}

// Periodic reports whether the alteration deals damage on tick.
func (d *Def) Periodic() bool {
	return d.PeriodicDamage > 0 || d.PeriodicDamagePercent > 0
}

// Registry holds all known Defs keyed by kind. It is read-only once loaded.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry builds a Registry from defs.
//
// Postcondition: Returns an error on an invalid definition or a duplicate kind.
func NewRegistry(defs ...*Def) (*Registry, error) {
	r := &Registry{defs: make(map[string]*Def, len(defs))}
	for _, d := range defs {
		if d == nil {
			return nil, fmt.Errorf("alteration: nil definition")
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.defs[d.Kind]; dup {
			return nil, fmt.Errorf("alteration: duplicate kind %q", d.Kind)
		}
		r.defs[d.Kind] = d
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on error. Useful for tests and built-ins.
func MustRegistry(defs ...*Def) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic("alteration: " + err.Error())
	}
	return r
}

// Get returns the Def for kind, or (nil, false) if not found.
func (r *Registry) Get(kind string) (*Def, bool) {
	d, ok := r.defs[kind]
	return d, ok
}

// Kinds returns the registered kinds in lexical order.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.defs))
	for k := range r.defs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int { return len(r.defs) }

// LoadDirectory reads every *.yaml file in dir, parses each as a Def and
// returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to
// parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading alteration dir %q: %w", dir, err)
	}
	var defs []*Def
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		defs = append(defs, &def)
	}
	reg, err := NewRegistry(defs...)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", dir, err)
	}
	return reg, nil
}
