package profiles

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/studymatch/backend/internal/models"
	"github.com/studymatch/backend/internal/roles"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Profiles ────────────────────────────────────────────

func (s *Store) GetProfile(userID int64) (*models.CharacteristicProfile, error) {
	var p models.CharacteristicProfile
	var scores []byte
	err := s.db.QueryRow(
		`SELECT user_id, role_scores, quiz_status, total_questions, answered_questions,
		        reliability_percentage, updated_at
		 FROM characteristic_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &scores, &p.QuizStatus, &p.TotalQuestions, &p.AnsweredQuestions,
		&p.ReliabilityPercentage, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if err := json.Unmarshal(scores, &p.RoleScores); err != nil {
		return nil, fmt.Errorf("decode role scores: %w", err)
	}
	return &p, nil
}

func (s *Store) SaveProfile(p *models.CharacteristicProfile) error {
	scores, err := json.Marshal(p.RoleScores)
	if err != nil {
		return fmt.Errorf("encode role scores: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO characteristic_profiles
		    (user_id, role_scores, quiz_status, total_questions, answered_questions,
		     reliability_percentage, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		    role_scores = EXCLUDED.role_scores,
		    quiz_status = EXCLUDED.quiz_status,
		    total_questions = EXCLUDED.total_questions,
		    answered_questions = EXCLUDED.answered_questions,
		    reliability_percentage = EXCLUDED.reliability_percentage,
		    updated_at = EXCLUDED.updated_at`,
		p.UserID, scores, p.QuizStatus, p.TotalQuestions, p.AnsweredQuestions,
		p.ReliabilityPercentage, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// ── Quiz Content Lookups ────────────────────────────────

func (s *Store) ActiveQuestionIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT id FROM quiz_questions WHERE active = TRUE ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list active questions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) GetOptions(optionIDs []int64) (map[int64]models.QuizOption, error) {
	out := make(map[int64]models.QuizOption, len(optionIDs))
	if len(optionIDs) == 0 {
		return out, nil
	}
	rows, err := s.db.Query(
		`SELECT id, question_id, label, position, role_weights
		 FROM quiz_options WHERE id = ANY($1)`,
		pq.Array(optionIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("get options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.QuizOption
		var weights []byte
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Label, &o.Position, &weights); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		if err := json.Unmarshal(weights, &o.RoleWeights); err != nil {
			return nil, fmt.Errorf("decode role weights: %w", err)
		}
		out[o.ID] = o
	}
	return out, rows.Err()
}

// ── Answers ─────────────────────────────────────────────

func (s *Store) UpsertAnswers(answers []models.QuizAnswer) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, a := range answers {
		if _, err := tx.Exec(
			`INSERT INTO quiz_answers (user_id, question_id, option_id, answered_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id, question_id) DO UPDATE SET
			    option_id = EXCLUDED.option_id,
			    answered_at = EXCLUDED.answered_at`,
			a.UserID, a.QuestionID, a.OptionID, a.AnsweredAt,
		); err != nil {
			return fmt.Errorf("upsert answer: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListAnsweredOptions(userID int64) ([]AnsweredOption, error) {
	rows, err := s.db.Query(
		`SELECT a.question_id, a.option_id, q.active, o.role_weights
		 FROM quiz_answers a
		 JOIN quiz_questions q ON q.id = a.question_id
		 JOIN quiz_options o ON o.id = a.option_id
		 WHERE a.user_id = $1
		 ORDER BY a.question_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var out []AnsweredOption
	for rows.Next() {
		var a AnsweredOption
		var weights []byte
		if err := rows.Scan(&a.QuestionID, &a.OptionID, &a.QuestionActive, &weights); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		a.RoleWeights = map[roles.RoleType]float64{}
		if err := json.Unmarshal(weights, &a.RoleWeights); err != nil {
			return nil, fmt.Errorf("decode role weights: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
