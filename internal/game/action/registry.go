package action

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/alteration"
)

// Registry holds all known Actions keyed by ID. The built-in Pass action is
// always present.
type Registry struct {
	actions map[string]*Action
}

// NewRegistry builds a Registry from actions.
//
// Postcondition: Returns an error on an invalid action or a duplicate ID
// (including a redefinition of "pass").
func NewRegistry(actions ...*Action) (*Registry, error) {
	r := &Registry{actions: map[string]*Action{PassID: Pass}}
	for _, a := range actions {
		if a == nil {
			return nil, fmt.Errorf("action: nil definition")
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.actions[a.ID]; dup {
			return nil, fmt.Errorf("action: duplicate id %q", a.ID)
		}
		r.actions[a.ID] = a
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on error.
func MustRegistry(actions ...*Action) *Registry {
	r, err := NewRegistry(actions...)
	if err != nil {
		panic("action: " + err.Error())
	}
	return r
}

// Get returns the Action for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Action, bool) {
	a, ok := r.actions[id]
	return a, ok
}

// IDs returns all registered IDs in lexical order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.actions))
	for id := range r.actions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Validate checks that every referenced alteration kind exists in alts.
//
// Precondition: alts must not be nil.
// Postcondition: Returns nil iff all references resolve; otherwise an error
// naming the first offending action in ID order.
func (r *Registry) Validate(alts *alteration.Registry) error {
	for _, id := range r.IDs() {
		a := r.actions[id]
		if a.Alteration == "" {
			continue
		}
		if _, ok := alts.Get(a.Alteration); !ok {
			return fmt.Errorf("action %q: unknown alteration %q", a.ID, a.Alteration)
		}
	}
	return nil
}

// LoadDirectory reads every *.yaml file in dir. Each file holds a list of
// actions under the top-level key "actions".
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated Registry or the first parse/validation error.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading action dir %q: %w", dir, err)
	}
	var all []*Action
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var f struct {
			Actions []*Action `yaml:"actions"`
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		all = append(all, f.Actions...)
	}
	reg, err := NewRegistry(all...)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", dir, err)
	}
	return reg, nil
}
