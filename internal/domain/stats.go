package domain

// TasksPerRound is the number of answered tasks after which a practice
// round ends with a report.
const TasksPerRound = 10

// PointsPerTask is awarded for every correct answer
const PointsPerTask = 10

// Stats holds the counters of one practice session.
// Counters never decrease within a round.
type Stats struct {
	TasksTotal  int `json:"aufgabenGesamt"`
	TasksSolved int `json:"aufgabenGeloest"`
	Points      int `json:"punkte"`
}

// Record counts one answered task
func (s *Stats) Record(correct bool) {
	s.TasksTotal++
	if correct {
		s.TasksSolved++
		s.Points += PointsPerTask
	}
}

// Wrong returns the number of wrong answers
func (s Stats) Wrong() int {
	return s.TasksTotal - s.TasksSolved
}

// RoundComplete reports whether a full round has been answered
func (s Stats) RoundComplete() bool {
	return s.TasksTotal >= TasksPerRound
}

// Grade maps the number of solved tasks of a round to a school grade
func Grade(solved int) string {
	switch {
	case solved >= 10:
		return "1 (Sehr gut)"
	case solved >= 8:
		return "2 (Gut)"
	case solved >= 6:
		return "3 (Befriedigend)"
	case solved >= 4:
		return "4 (Ausreichend)"
	default:
		return "5 (Ungenügend)"
	}
}
