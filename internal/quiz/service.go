package quiz

import (
	"fmt"
	"strings"

	"github.com/studymatch/backend/internal/apperr"
	"github.com/studymatch/backend/internal/logger"
	"github.com/studymatch/backend/internal/models"
	"github.com/studymatch/backend/internal/roles"
)

type QuestionStore interface {
	ListQuestions(activeOnly bool) ([]models.QuizQuestion, error)
	GetQuestion(id int64) (*models.QuizQuestion, error)
	CreateQuestion(q *models.QuizQuestion) error
	SetActive(id int64, active bool) (bool, error)
}

type Service struct {
	store QuestionStore
	log   *logger.Logger
}

func NewService(store QuestionStore, log *logger.Logger) *Service {
	return &Service{store: store, log: log.With("component", "QuizService")}
}

// ActiveQuestions is what quiz takers see: active questions without weights.
func (s *Service) ActiveQuestions() ([]models.PublicQuizQuestion, error) {
	questions, err := s.store.ListQuestions(true)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicQuizQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.Public())
	}
	return out, nil
}

func (s *Service) AllQuestions() ([]models.QuizQuestion, error) {
	questions, err := s.store.ListQuestions(false)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []models.QuizQuestion{}
	}
	return questions, nil
}

// CreateQuestion validates and stores a new active question. Options keep the
// order they were given in.
func (s *Service) CreateQuestion(req models.CreateQuizQuestionRequest) (*models.QuizQuestion, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, apperr.NewValidationError("prompt is required")
	}
	if len(req.Options) < 2 {
		return nil, apperr.NewValidationError("a question needs at least two options")
	}

	q := &models.QuizQuestion{Prompt: prompt, Position: req.Position, Active: true}
	for i, o := range req.Options {
		label := strings.TrimSpace(o.Label)
		if label == "" {
			return nil, apperr.NewValidationError(fmt.Sprintf("option %d: label is required", i+1))
		}
		weights, err := ParseWeights(o.RoleWeights)
		if err != nil {
			return nil, apperr.NewValidationError(fmt.Sprintf("option %d: %s", i+1, err))
		}
		q.Options = append(q.Options, models.QuizOption{Label: label, Position: i + 1, RoleWeights: weights})
	}

	if err := s.store.CreateQuestion(q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	s.log.Info("Quiz question created", "question_id", q.ID, "options", len(q.Options))
	return q, nil
}

// SetActive toggles whether a question is part of the quiz. Profiles that are
// already COMPLETED stay completed.
func (s *Service) SetActive(id int64, active bool) (*models.QuizQuestion, error) {
	ok, err := s.store.SetActive(id, active)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NewNotFoundError("Question not found")
	}
	s.log.Info("Quiz question toggled", "question_id", id, "active", active)

	q, err := s.store.GetQuestion(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, apperr.NewNotFoundError("Question not found")
	}
	return q, nil
}

// ParseWeights checks admin-supplied weights: known role names, every weight
// in [0, 1], and at least one positive weight.
func ParseWeights(raw map[string]float64) (map[roles.RoleType]float64, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("role_weights must not be empty")
	}
	out := make(map[roles.RoleType]float64, len(raw))
	positive := false
	for name, w := range raw {
		role, err := roles.Parse(name)
		if err != nil {
			return nil, err
		}
		if w < 0 || w > 1 {
			return nil, fmt.Errorf("weight for %s must be between 0 and 1", role)
		}
		if _, dup := out[role]; dup {
			return nil, fmt.Errorf("duplicate weight for %s", role)
		}
		out[role] = w
		if w > 0 {
			positive = true
		}
	}
	if !positive {
		return nil, fmt.Errorf("at least one role weight must be positive")
	}
	return out, nil
}
