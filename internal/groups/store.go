package groups

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

const groupColumns = `g.id, g.course_id, g.name, g.max_size, g.visibility,
	(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id)`

func scanGroup(row interface{ Scan(...any) error }) (*models.StudyGroup, error) {
	var g models.StudyGroup
	if err := row.Scan(&g.ID, &g.CourseID, &g.Name, &g.MaxSize, &g.Visibility, &g.MemberCount); err != nil {
		return nil, err
	}
	return &g, nil
}

// ── Groups ──────────────────────────────────────────────

// GetGroup returns nil, nil when the group does not exist.
func (s *Store) GetGroup(groupID int64) (*models.StudyGroup, error) {
	g, err := scanGroup(s.db.QueryRow(
		`SELECT `+groupColumns+` FROM study_groups g WHERE g.id = $1`, groupID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

func (s *Store) ListGroupIDs() ([]int64, error) {
	return s.queryIDs(`SELECT id FROM study_groups ORDER BY id`)
}

// ListGroupsByCourses returns every group of the given courses in id order.
func (s *Store) ListGroupsByCourses(courseIDs []int64) ([]models.StudyGroup, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(
		`SELECT `+groupColumns+` FROM study_groups g WHERE g.course_id = ANY($1) ORDER BY g.id`,
		pq.Array(courseIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []models.StudyGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// ── Membership & Enrollment ─────────────────────────────

func (s *Store) GroupIDsForUser(userID int64) ([]int64, error) {
	return s.queryIDs(`SELECT group_id FROM group_members WHERE user_id = $1 ORDER BY group_id`, userID)
}

func (s *Store) EnrolledCourseIDs(userID int64) ([]int64, error) {
	return s.queryIDs(`SELECT course_id FROM course_enrollments WHERE user_id = $1 ORDER BY course_id`, userID)
}

func (s *Store) IsMember(userID, groupID int64) (bool, error) {
	return s.exists(`SELECT EXISTS(SELECT 1 FROM group_members WHERE user_id = $1 AND group_id = $2)`, userID, groupID)
}

func (s *Store) IsEnrolled(userID, courseID int64) (bool, error) {
	return s.exists(`SELECT EXISTS(SELECT 1 FROM course_enrollments WHERE user_id = $1 AND course_id = $2)`, userID, courseID)
}

// AddMember reports false when the user was already a member and returns
// ErrGroupFull when the group has no room. The group row stays locked from
// the capacity check until the insert commits, so concurrent joins cannot
// overfill it.
func (s *Store) AddMember(userID, groupID int64) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var maxSize int
	err = tx.QueryRow(`SELECT max_size FROM study_groups WHERE id = $1 FOR UPDATE`, groupID).Scan(&maxSize)
	if err == sql.ErrNoRows {
		return false, ErrGroupNotFound
	}
	if err != nil {
		return false, fmt.Errorf("lock group: %w", err)
	}

	var member bool
	var count int
	if err := tx.QueryRow(
		`SELECT COALESCE(BOOL_OR(user_id = $2), false), COUNT(*) FROM group_members WHERE group_id = $1`,
		groupID, userID,
	).Scan(&member, &count); err != nil {
		return false, fmt.Errorf("count members: %w", err)
	}
	if member {
		return false, nil
	}
	if maxSize > 0 && count >= maxSize {
		return false, ErrGroupFull
	}

	if _, err := tx.Exec(`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`, groupID, userID); err != nil {
		return false, fmt.Errorf("add member: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// RemoveMember reports false when the user was not a member.
func (s *Store) RemoveMember(userID, groupID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return false, fmt.Errorf("remove member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── Aggregates ──────────────────────────────────────────

func (s *Store) MemberRoleScores(groupID int64) ([]roles.Vector, error) {
	rows, err := s.db.Query(
		`SELECT p.role_scores
		 FROM group_members m
		 JOIN characteristic_profiles p ON p.user_id = m.user_id
		 WHERE m.group_id = $1
		 ORDER BY m.user_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("member role scores: %w", err)
	}
	defer rows.Close()

	var out []roles.Vector
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan role scores: %w", err)
		}
		var v roles.Vector
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode role scores: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetGroupProfile reports found=false when no aggregate is stored.
func (s *Store) GetGroupProfile(groupID int64) (*models.GroupCharacteristicProfile, bool, error) {
	var p models.GroupCharacteristicProfile
	var raw []byte
	err := s.db.QueryRow(
		`SELECT group_id, average_role_scores, member_count, current_variance, last_updated_at
		 FROM group_characteristic_profiles WHERE group_id = $1`,
		groupID,
	).Scan(&p.GroupID, &raw, &p.MemberCount, &p.CurrentVariance, &p.LastUpdatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get group profile: %w", err)
	}
	if err := json.Unmarshal(raw, &p.AverageRoleScores); err != nil {
		return nil, false, fmt.Errorf("decode average role scores: %w", err)
	}
	return &p, true, nil
}

func (s *Store) ReplaceGroupProfile(p *models.GroupCharacteristicProfile) error {
	raw, err := json.Marshal(p.AverageRoleScores)
	if err != nil {
		return fmt.Errorf("encode average role scores: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO group_characteristic_profiles
		    (group_id, average_role_scores, member_count, current_variance, last_updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (group_id) DO UPDATE SET
		    average_role_scores = EXCLUDED.average_role_scores,
		    member_count = EXCLUDED.member_count,
		    current_variance = EXCLUDED.current_variance,
		    last_updated_at = EXCLUDED.last_updated_at`,
		p.GroupID, raw, p.MemberCount, p.CurrentVariance, p.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("replace group profile: %w", err)
	}
	return nil
}

func (s *Store) DeleteGroupProfile(groupID int64) error {
	if _, err := s.db.Exec(`DELETE FROM group_characteristic_profiles WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("delete group profile: %w", err)
	}
	return nil
}

// ── Helpers ─────────────────────────────────────────────

func (s *Store) queryIDs(query string, args ...any) ([]int64, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
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

func (s *Store) exists(query string, args ...any) (bool, error) {
	var ok bool
	if err := s.db.QueryRow(query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
