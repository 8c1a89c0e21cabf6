package alteration

// BlocksAction reports whether any active alteration prevents its bearer from acting.
func BlocksAction(s *Set) bool {
	for _, a := range s.active {
		if a.Def.BlocksAction {
			return true
		}
	}
	return false
}

// AttackMultiplier returns the product of all active attack multipliers.
//
// Postcondition: Returns 1 when no alteration modifies attack.
func AttackMultiplier(s *Set) float64 {
	return product(s, func(d *Def) float64 { return d.AttackMultiplier })
}

// DefenseMultiplier returns the product of all active defense multipliers.
func DefenseMultiplier(s *Set) float64 {
	return product(s, func(d *Def) float64 { return d.DefenseMultiplier })
}

// SpeedMultiplier returns the product of all active speed multipliers.
func SpeedMultiplier(s *Set) float64 {
	return product(s, func(d *Def) float64 { return d.SpeedMultiplier })
}

// Evasion returns the summed evasion of all active alterations, capped at 1.
//
// Postcondition: Returns a value in [0, 1].
func Evasion(s *Set) float64 {
	total := 0.0
	for _, a := range s.active {
		total += a.Def.Evasion
	}
	if total > 1 {
		return 1
	}
	return total
}

func product(s *Set, field func(*Def) float64) float64 {
	m := 1.0
	for _, a := range s.active {
		if f := field(a.Def); f > 0 {
			m *= f
		}
	}
	return m
}
