package alteration

import (
	"fmt"
	"sort"
)

// Active is one applied alteration instance.
type Active struct {
	Def            *Def
	RemainingTurns int
	// fresh is set for instances applied during the current turn; the first
	// end-of-turn tick skips them.
	fresh bool
}

// Kind returns the alteration kind.
func (a Active) Kind() string { return a.Def.Kind }

// Tick reports what one end-of-turn tick did to one alteration.
type Tick struct {
	Kind    string
	Damage  int
	Expired bool
}

// Set tracks the alterations applied to one fighter.
// It is not safe for concurrent use; the fight controller serialises access.
type Set struct {
	active map[string]*Active
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{active: make(map[string]*Active)}
}

// Apply adds def to the set for duration turns, replacing any instance of the
// same kind. A duration <= 0 uses def.Duration.
//
// Precondition: def must not be nil.
// Postcondition: Has(def.Kind) is true and Remaining(def.Kind) equals the effective duration.
func (s *Set) Apply(def *Def, duration int) error {
	if def == nil {
		return fmt.Errorf("Apply: def must not be nil")
	}
	if duration <= 0 {
		duration = def.Duration
	}
	s.active[def.Kind] = &Active{Def: def, RemainingTurns: duration, fresh: true}
	return nil
}

// Restore re-applies an alteration carried over from a snapshot. Unlike Apply,
// the restored instance is ticked at the very next end of turn.
//
// Precondition: def must not be nil; remaining >= 1.
func (s *Set) Restore(def *Def, remaining int) error {
	if def == nil {
		return fmt.Errorf("Restore: def must not be nil")
	}
	if remaining < 1 {
		return fmt.Errorf("Restore: remaining turns for %q must be >= 1, got %d", def.Kind, remaining)
	}
	s.active[def.Kind] = &Active{Def: def, RemainingTurns: remaining}
	return nil
}

// Remove deletes the alteration of kind. No-op when absent.
func (s *Set) Remove(kind string) {
	delete(s.active, kind)
}

// Tick decrements every non-fresh alteration by one turn, removing those that
// reach zero, and computes periodic damage against maxHealth. Fresh
// alterations only lose their fresh mark.
//
// Postcondition: results are ordered by kind; for every expired kind Has(kind) is false.
func (s *Set) Tick(maxHealth int) []Tick {
	var out []Tick
	for _, kind := range s.kinds() {
		a := s.active[kind]
		if a.fresh {
			a.fresh = false
			continue
		}
		t := Tick{Kind: kind, Damage: periodicDamage(a.Def, maxHealth)}
		a.RemainingTurns--
		if a.RemainingTurns <= 0 {
			t.Expired = true
			delete(s.active, kind)
		}
		out = append(out, t)
	}
	return out
}

func periodicDamage(d *Def, maxHealth int) int {
	dmg := d.PeriodicDamage
	if d.PeriodicDamagePercent > 0 {
		pct := maxHealth * d.PeriodicDamagePercent / 100
		if pct < 1 {
			pct = 1
		}
		dmg += pct
	}
	return dmg
}

// Has reports whether an alteration of kind is active.
func (s *Set) Has(kind string) bool {
	_, ok := s.active[kind]
	return ok
}

// Remaining returns the remaining turns for kind, or 0 if absent.
func (s *Set) Remaining(kind string) int {
	if a, ok := s.active[kind]; ok {
		return a.RemainingTurns
	}
	return 0
}

// Len returns the number of active alterations.
func (s *Set) Len() int { return len(s.active) }

// All returns copies of the active alterations ordered by kind.
func (s *Set) All() []Active {
	out := make([]Active, 0, len(s.active))
	for _, kind := range s.kinds() {
		out = append(out, *s.active[kind])
	}
	return out
}

func (s *Set) kinds() []string {
	kinds := make([]string, 0, len(s.active))
	for k := range s.active {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
