package profiles

import (
	"github.com/studymatch/backend/internal/models"
	"github.com/studymatch/backend/internal/roles"
)

// AnsweredOption is one stored answer joined with the chosen option's weights.
type AnsweredOption struct {
	QuestionID     int64
	OptionID       int64
	QuestionActive bool
	RoleWeights    map[roles.RoleType]float64
}

// DeriveRoleScores averages, per role, the chosen weights over the answered
// questions whose option defines that role. Roles no answer touches stay 0.
func DeriveRoleScores(answers []AnsweredOption) roles.Vector {
	var sums roles.Vector
	var counts [roles.NumRoles]int

	for _, a := range answers {
		for role, w := range a.RoleWeights {
			i := role.Index()
			if i < 0 {
				continue
			}
			sums[i] += roles.Clamp01(w)
			counts[i]++
		}
	}

	var out roles.Vector
	for i := range out {
		if counts[i] > 0 {
			out[i] = roles.Clamp01(sums[i] / float64(counts[i]))
		}
	}
	return out
}

// DeriveStatus evaluates quiz completion against the active question set at
// submission time. With no answers on active questions the current status
// is kept.
func DeriveStatus(current models.QuizStatus, answeredActive, totalActive int) models.QuizStatus {
	switch {
	case totalActive > 0 && answeredActive >= totalActive:
		return models.QuizCompleted
	case answeredActive > 0:
		return models.QuizInProgress
	default:
		return current
	}
}

// countActive returns how many answers target a currently active question.
func countActive(answers []AnsweredOption) int {
	n := 0
	for _, a := range answers {
		if a.QuestionActive {
			n++
		}
	}
	return n
}
