package profiles

import (
	"fmt"
	"sort"
	"time"

	"github.com/studymatch/backend/internal/apperr"
	"github.com/studymatch/backend/internal/logger"
	"github.com/studymatch/backend/internal/models"
)

// ProfileStore is the persistence the profile engine needs. *Store satisfies it.
type ProfileStore interface {
	// GetProfile returns nil, nil when the user has no profile row.
	GetProfile(userID int64) (*models.CharacteristicProfile, error)
	SaveProfile(p *models.CharacteristicProfile) error
	ActiveQuestionIDs() ([]int64, error)
	GetOptions(optionIDs []int64) (map[int64]models.QuizOption, error)
	UpsertAnswers(answers []models.QuizAnswer) error
	ListAnsweredOptions(userID int64) ([]AnsweredOption, error)
}

// GroupLookup finds the groups whose aggregate depends on a user's profile.
type GroupLookup interface {
	GroupIDsForUser(userID int64) ([]int64, error)
}

// RecomputeScheduler queues a group aggregate rebuild without waiting for it.
type RecomputeScheduler interface {
	Schedule(groupID int64)
}

type Service struct {
	store     ProfileStore
	groups    GroupLookup
	scheduler RecomputeScheduler
	log       *logger.Logger
	now       func() time.Time
}

func NewService(store ProfileStore, groups GroupLookup, scheduler RecomputeScheduler, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		groups:    groups,
		scheduler: scheduler,
		log:       log.With("component", "ProfileService"),
		now:       time.Now,
	}
}

// ── Quiz Submission ─────────────────────────────────────

// SubmitAnswers records answers (question id → option id), overwriting earlier
// answers to the same questions, and re-derives the profile from every stored
// answer. The submission is rejected as a whole if any reference is bad.
func (s *Service) SubmitAnswers(userID int64, answers map[int64]int64) (*models.ProfileSummary, error) {
	if len(answers) == 0 {
		return nil, apperr.NewValidationError("answers must not be empty")
	}

	activeIDs, err := s.store.ActiveQuestionIDs()
	if err != nil {
		return nil, fmt.Errorf("list active questions: %w", err)
	}
	active := make(map[int64]bool, len(activeIDs))
	for _, id := range activeIDs {
		active[id] = true
	}

	questionIDs := make([]int64, 0, len(answers))
	optionIDs := make([]int64, 0, len(answers))
	for q, o := range answers {
		questionIDs = append(questionIDs, q)
		optionIDs = append(optionIDs, o)
	}
	sort.Slice(questionIDs, func(i, j int) bool { return questionIDs[i] < questionIDs[j] })

	options, err := s.store.GetOptions(optionIDs)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}

	now := s.now()
	rows := make([]models.QuizAnswer, 0, len(answers))
	for _, q := range questionIDs {
		if !active[q] {
			return nil, apperr.NewNotFoundError(fmt.Sprintf("quiz question %d not found", q))
		}
		optID := answers[q]
		opt, ok := options[optID]
		if !ok {
			return nil, apperr.NewNotFoundError(fmt.Sprintf("quiz option %d not found", optID))
		}
		if opt.QuestionID != q {
			return nil, apperr.NewValidationError(fmt.Sprintf("option %d does not belong to question %d", optID, q))
		}
		rows = append(rows, models.QuizAnswer{UserID: userID, QuestionID: q, OptionID: optID, AnsweredAt: now})
	}

	if err := s.store.UpsertAnswers(rows); err != nil {
		return nil, fmt.Errorf("save answers: %w", err)
	}

	answered, err := s.store.ListAnsweredOptions(userID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}

	profile, err := s.loadOrNew(userID)
	if err != nil {
		return nil, err
	}

	profile.RoleScores = DeriveRoleScores(answered)
	profile.AnsweredQuestions = countActive(answered)
	profile.TotalQuestions = len(activeIDs)
	profile.QuizStatus = DeriveStatus(profile.QuizStatus, profile.AnsweredQuestions, profile.TotalQuestions)

	if err := s.save(profile); err != nil {
		return nil, err
	}

	s.log.Info("Quiz answers submitted",
		"user_id", userID,
		"submitted", len(rows),
		"answered", profile.AnsweredQuestions,
		"total", profile.TotalQuestions,
		"status", profile.QuizStatus,
	)

	s.scheduleGroupRecomputes(userID)

	summary := profile.Summary()
	return &summary, nil
}

// Skip marks the quiz skipped. Partial role scores are kept but carry no
// reliability.
func (s *Service) Skip(userID int64) (*models.ProfileSummary, error) {
	profile, err := s.loadOrNew(userID)
	if err != nil {
		return nil, err
	}

	profile.QuizStatus = models.QuizSkipped
	if err := s.save(profile); err != nil {
		return nil, err
	}

	s.log.Info("Quiz skipped", "user_id", userID)
	s.scheduleGroupRecomputes(userID)

	summary := profile.Summary()
	return &summary, nil
}

// GetProfile returns the user's summary, creating the empty NOT_STARTED
// profile on first access.
func (s *Service) GetProfile(userID int64) (*models.ProfileSummary, error) {
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		profile = models.NewCharacteristicProfile(userID)
		if err := s.save(profile); err != nil {
			return nil, err
		}
	}
	summary := profile.Summary()
	return &summary, nil
}

// ── Helpers ─────────────────────────────────────────────

func (s *Service) loadOrNew(userID int64) (*models.CharacteristicProfile, error) {
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		profile = models.NewCharacteristicProfile(userID)
	}
	return profile, nil
}

func (s *Service) save(p *models.CharacteristicProfile) error {
	p.UpdatedAt = s.now()
	p.Refresh()
	if err := s.store.SaveProfile(p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// scheduleGroupRecomputes is fire-and-forget: lookup failures are logged and
// the caller's request still succeeds.
func (s *Service) scheduleGroupRecomputes(userID int64) {
	if s.groups == nil || s.scheduler == nil {
		return
	}
	groupIDs, err := s.groups.GroupIDsForUser(userID)
	if err != nil {
		s.log.Warn("Could not list groups for recompute", "user_id", userID, "error", err)
		return
	}
	for _, id := range groupIDs {
		s.scheduler.Schedule(id)
	}
}
