package fight

// NoMover marks that no fighter has moved first yet.
const NoMover = -1

// FirstMover returns the index (0 or 1) of the fighter acting first this turn.
//
// The faster effective speed moves first. On equal speed, fighter 0 opens
// the fight and the first mover alternates every turn after that.
//
// Precondition: lastFirst is NoMover, 0 or 1.
func FirstMover(speed0, speed1, lastFirst int) int {
	switch {
	case speed0 > speed1:
		return 0
	case speed1 > speed0:
		return 1
	case lastFirst == NoMover:
		return 0
	default:
		return 1 - lastFirst
	}
}

// TurnOrder returns both fighter indices in acting order.
func TurnOrder(first int) [2]int {
	return [2]int{first, 1 - first}
}
