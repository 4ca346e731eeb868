package models

import (
	"time"

	"github.com/studymatch/backend/internal/roles"
)

type QuizStatus string

const (
	QuizNotStarted QuizStatus = "NOT_STARTED"
	QuizInProgress QuizStatus = "IN_PROGRESS"
	QuizCompleted  QuizStatus = "COMPLETED"
	QuizSkipped    QuizStatus = "SKIPPED"
)

// CharacteristicProfile is the materialized view of a user's quiz answers.
type CharacteristicProfile struct {
	UserID                int64        `json:"user_id"`
	RoleScores            roles.Vector `json:"role_scores"`
	QuizStatus            QuizStatus   `json:"quiz_status"`
	TotalQuestions        int          `json:"total_questions"`
	AnsweredQuestions     int          `json:"answered_questions"`
	ReliabilityPercentage float64      `json:"reliability_percentage"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// NewCharacteristicProfile returns the empty profile a user starts with.
func NewCharacteristicProfile(userID int64) *CharacteristicProfile {
	return &CharacteristicProfile{UserID: userID, QuizStatus: QuizNotStarted}
}

// Refresh re-derives the fields that must never be set independently. Every
// write path calls it right before persisting.
func (p *CharacteristicProfile) Refresh() {
	for i, x := range p.RoleScores {
		p.RoleScores[i] = roles.Clamp01(x)
	}
	p.ReliabilityPercentage = Reliability(p.QuizStatus, p.AnsweredQuestions, p.TotalQuestions)
}

// Reliability is the confidence weight of a profile: the answered fraction
// while in progress, 1 when complete, 0 otherwise.
func Reliability(status QuizStatus, answered, total int) float64 {
	switch status {
	case QuizCompleted:
		return 1.0
	case QuizInProgress:
		if total <= 0 {
			return 0
		}
		return roles.Clamp01(float64(answered) / float64(total))
	default:
		return 0
	}
}

// Summary is the only view of a profile end users get; role scores stay
// server-side so the quiz cannot be gamed.
func (p *CharacteristicProfile) Summary() ProfileSummary {
	return ProfileSummary{
		QuizStatus:            p.QuizStatus,
		ReliabilityPercentage: p.ReliabilityPercentage,
		RequiresOnboarding:    p.QuizStatus == QuizNotStarted,
		AnsweredQuestions:     p.AnsweredQuestions,
		TotalQuestions:        p.TotalQuestions,
	}
}

type ProfileSummary struct {
	QuizStatus            QuizStatus `json:"quiz_status"`
	ReliabilityPercentage float64    `json:"reliability_percentage"`
	RequiresOnboarding    bool       `json:"requires_onboarding"`
	AnsweredQuestions     int        `json:"answered_questions"`
	TotalQuestions        int        `json:"total_questions"`
}

// SubmitAnswersRequest maps question id to the chosen option id. JSON object
// keys arrive as strings and are decoded by encoding/json into int64.
type SubmitAnswersRequest struct {
	Answers map[int64]int64 `json:"answers"`
}
