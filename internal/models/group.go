package models

import (
	"time"

	"github.com/studymatch/backend/internal/roles"
)

type GroupVisibility string

const (
	VisibilityPublic  GroupVisibility = "public"
	VisibilityPrivate GroupVisibility = "private"
)

type StudyGroup struct {
	ID          int64           `json:"id"`
	CourseID    int64           `json:"course_id"`
	Name        string          `json:"name"`
	MaxSize     int             `json:"max_size"`
	Visibility  GroupVisibility `json:"visibility"`
	MemberCount int             `json:"member_count"`
}

// IsFull reports whether the group has reached MaxSize. MaxSize <= 0 means
// unlimited.
func (g StudyGroup) IsFull() bool {
	return g.MaxSize > 0 && g.MemberCount >= g.MaxSize
}

// GroupCharacteristicProfile is always written as a whole replacement.
// MemberCount counts members with a profile, not the group size.
type GroupCharacteristicProfile struct {
	GroupID           int64        `json:"group_id"`
	AverageRoleScores roles.Vector `json:"average_role_scores"`
	MemberCount       int          `json:"member_count"`
	CurrentVariance   float64      `json:"current_variance"`
	LastUpdatedAt     time.Time    `json:"last_updated_at"`
}

type MembershipResponse struct {
	GroupID int64 `json:"group_id"`
	Member  bool  `json:"member"`
}

type RecomputeSummary struct {
	Groups  int `json:"groups"`
	Written int `json:"written"`
	Cleared int `json:"cleared"`
	Failed  int `json:"failed"`
}
