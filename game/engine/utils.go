package engine

// DirectionTowards returns the direction code that takes one step from
// `from` towards `to`, or WaitCode if they are the same cell
func DirectionTowards(from, to Position) string {
	vertical := ""
	switch {
	case to.Y < from.Y:
		vertical = DirDown
	case to.Y > from.Y:
		vertical = DirUp
	}

	horizontal := ""
	switch {
	case to.X < from.X:
		horizontal = DirLeft
	case to.X > from.X:
		horizontal = DirRight
	}

	if code := vertical + horizontal; code != "" {
		return code
	}
	return WaitCode
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// ChebyshevDistance is the number of rounds an eight-way mover needs to
// reach `to` from `from`
func ChebyshevDistance(from, to Position) int {
	return max(abs(from.X-to.X), abs(from.Y-to.Y))
}

// CountByType counts the living entities of each type in a snapshot
func CountByType(states []EntityState) map[EntityType]int {
	counts := make(map[EntityType]int)
	for _, s := range states {
		if !s.IsDead {
			counts[s.Type]++
		}
	}
	return counts
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
