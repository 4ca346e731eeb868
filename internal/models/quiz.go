package models

import (
	"time"

	"github.com/studymatch/backend/internal/roles"
)

type QuizQuestion struct {
	ID        int64        `json:"id"`
	Prompt    string       `json:"prompt"`
	Position  int          `json:"position"`
	Active    bool         `json:"active"`
	Options   []QuizOption `json:"options"`
	CreatedAt time.Time    `json:"created_at"`
}

// QuizOption carries admin-authored role weights. A key present in
// RoleWeights means the option defines a weight for that role, even if 0.
type QuizOption struct {
	ID          int64                      `json:"id"`
	QuestionID  int64                      `json:"question_id"`
	Label       string                     `json:"label"`
	Position    int                        `json:"position"`
	RoleWeights map[roles.RoleType]float64 `json:"role_weights"`
}

type QuizAnswer struct {
	UserID     int64     `json:"user_id"`
	QuestionID int64     `json:"question_id"`
	OptionID   int64     `json:"option_id"`
	AnsweredAt time.Time `json:"answered_at"`
}

// ── Public (weight-free) views ──────────────────────────

type PublicQuizOption struct {
	ID       int64  `json:"id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

type PublicQuizQuestion struct {
	ID       int64              `json:"id"`
	Prompt   string             `json:"prompt"`
	Position int                `json:"position"`
	Options  []PublicQuizOption `json:"options"`
}

func (q QuizQuestion) Public() PublicQuizQuestion {
	out := PublicQuizQuestion{
		ID:       q.ID,
		Prompt:   q.Prompt,
		Position: q.Position,
		Options:  make([]PublicQuizOption, 0, len(q.Options)),
	}
	for _, o := range q.Options {
		out.Options = append(out.Options, PublicQuizOption{ID: o.ID, Label: o.Label, Position: o.Position})
	}
	return out
}

// ── Admin Request Types ─────────────────────────────────

type CreateQuizOptionRequest struct {
	Label       string             `json:"label"`
	RoleWeights map[string]float64 `json:"role_weights"`
}

type CreateQuizQuestionRequest struct {
	Prompt   string                    `json:"prompt"`
	Position int                       `json:"position"`
	Options  []CreateQuizOptionRequest `json:"options"`
}

type SetQuestionActiveRequest struct {
	Active bool `json:"active"`
}
