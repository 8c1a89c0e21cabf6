// Package dice provides the injected randomness stream used by the fight engine.
//
// A fight owns exactly one Source and draws from it in a fixed order, so a
// fight replayed with the same seed and the same action choices produces the
// same outcome.
package dice

// Source is the randomness provider for action resolution.
type Source interface {
	// Float64 returns the next uniform value in [0, 1).
	Float64() float64
}

// Chance reports whether a draw from src falls below p.
//
// Precondition: src must be non-nil.
// Postcondition: Returns false when p <= 0 and true when p >= 1, still consuming one draw.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Fixed is a Source that always returns the same value. It is useful for
// pinning outcomes in tests and simulations.
type Fixed float64

// Float64 returns the fixed value.
func (f Fixed) Float64() float64 { return float64(f) }

// Sequence is a Source that replays the given values in order and then
// repeats the last one. An empty Sequence always returns 0.
type Sequence struct {
	values []float64
	next   int
	draws  int
}

// NewSequence returns a Source replaying values.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 returns the next value of the sequence.
func (s *Sequence) Float64() float64 {
	s.draws++
	if len(s.values) == 0 {
		return 0
	}
	if s.next >= len(s.values) {
		return s.values[len(s.values)-1]
	}
	v := s.values[s.next]
	s.next++
	return v
}

// Draws returns how many values have been consumed so far.
func (s *Sequence) Draws() int { return s.draws }
