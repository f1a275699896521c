package models

// Goal is the product filter selection.
type Goal string

const (
	GoalAll         Goal = "all"
	GoalWellness    Goal = "wellness"
	GoalMetabolic   Goal = "metabolic"
	GoalEnergy      Goal = "energy"
	GoalPerformance Goal = "performance"
)

// Goals lists every goal in display order.
var Goals = []Goal{GoalAll, GoalWellness, GoalMetabolic, GoalEnergy, GoalPerformance}

// Valid reports whether g is one of the known goals.
func (g Goal) Valid() bool {
	for _, known := range Goals {
		if g == known {
			return true
		}
	}
	return false
}
