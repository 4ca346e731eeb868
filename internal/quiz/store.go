package quiz

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/studymatch/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListQuestions returns questions in display order with their options.
func (s *Store) ListQuestions(activeOnly bool) ([]models.QuizQuestion, error) {
	query := `SELECT id, prompt, position, active, created_at FROM quiz_questions`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY position, id`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.QuizQuestion
	for rows.Next() {
		var q models.QuizQuestion
		if err := rows.Scan(&q.ID, &q.Prompt, &q.Position, &q.Active, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return questions, nil
	}

	ids := make([]int64, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	options, err := s.optionsFor(ids)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].Options = options[questions[i].ID]
	}
	return questions, nil
}

// GetQuestion returns nil, nil when the question does not exist.
func (s *Store) GetQuestion(id int64) (*models.QuizQuestion, error) {
	var q models.QuizQuestion
	err := s.db.QueryRow(
		`SELECT id, prompt, position, active, created_at FROM quiz_questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Prompt, &q.Position, &q.Active, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	options, err := s.optionsFor([]int64{id})
	if err != nil {
		return nil, err
	}
	q.Options = options[id]
	return &q, nil
}

// CreateQuestion inserts the question and its options in one transaction and
// fills in the generated ids.
func (s *Store) CreateQuestion(q *models.QuizQuestion) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRow(
		`INSERT INTO quiz_questions (prompt, position, active) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		q.Prompt, q.Position, q.Active,
	).Scan(&q.ID, &q.CreatedAt); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}

	for i := range q.Options {
		o := &q.Options[i]
		o.QuestionID = q.ID
		weights, err := json.Marshal(o.RoleWeights)
		if err != nil {
			return fmt.Errorf("encode role weights: %w", err)
		}
		if err := tx.QueryRow(
			`INSERT INTO quiz_options (question_id, label, position, role_weights)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			q.ID, o.Label, o.Position, weights,
		).Scan(&o.ID); err != nil {
			return fmt.Errorf("insert option: %w", err)
		}
	}
	return tx.Commit()
}

// SetActive reports false when the question does not exist.
func (s *Store) SetActive(id int64, active bool) (bool, error) {
	res, err := s.db.Exec(`UPDATE quiz_questions SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return false, fmt.Errorf("set active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) optionsFor(questionIDs []int64) (map[int64][]models.QuizOption, error) {
	rows, err := s.db.Query(
		`SELECT id, question_id, label, position, role_weights
		 FROM quiz_options WHERE question_id = ANY($1)
		 ORDER BY question_id, position, id`,
		pq.Array(questionIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	defer rows.Close()

	out := map[int64][]models.QuizOption{}
	for rows.Next() {
		var o models.QuizOption
		var weights []byte
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Label, &o.Position, &weights); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		if err := json.Unmarshal(weights, &o.RoleWeights); err != nil {
			return nil, fmt.Errorf("decode role weights: %w", err)
		}
		out[o.QuestionID] = append(out[o.QuestionID], o)
	}
	return out, rows.Err()
}
