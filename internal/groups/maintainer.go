package groups

import (
	"fmt"
	"time"

	"github.com/studymatch/backend/internal/apperr"
	"github.com/studymatch/backend/internal/logger"
	"github.com/studymatch/backend/internal/models"
	"github.com/studymatch/backend/internal/roles"
)

// AggregateStore is what the maintainer reads and writes. *Store satisfies it.
type AggregateStore interface {
	GetGroup(groupID int64) (*models.StudyGroup, error)
	ListGroupIDs() ([]int64, error)
	// MemberRoleScores returns one vector per member that has a profile row,
	// in user id order. Members without a row are left out.
	MemberRoleScores(groupID int64) ([]roles.Vector, error)
	ReplaceGroupProfile(p *models.GroupCharacteristicProfile) error
	DeleteGroupProfile(groupID int64) error
}

type outcome int

const (
	outcomeWritten outcome = iota
	outcomeCleared
)

// Maintainer rebuilds group aggregates from scratch. A rebuild is a pure
// function of current membership and profiles, so running it twice, or for
// stale triggers, is harmless.
type Maintainer struct {
	store AggregateStore
	log   *logger.Logger
	now   func() time.Time
}

func NewMaintainer(store AggregateStore, log *logger.Logger) *Maintainer {
	return &Maintainer{
		store: store,
		log:   log.With("component", "GroupMaintainer"),
		now:   time.Now,
	}
}

// Recompute replaces the group's aggregate, or clears it when no member has a
// profile.
func (m *Maintainer) Recompute(groupID int64) error {
	_, err := m.recompute(groupID)
	return err
}

func (m *Maintainer) recompute(groupID int64) (outcome, error) {
	group, err := m.store.GetGroup(groupID)
	if err != nil {
		return 0, fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return 0, apperr.NewNotFoundError(fmt.Sprintf("group %d not found", groupID))
	}

	vectors, err := m.store.MemberRoleScores(groupID)
	if err != nil {
		return 0, fmt.Errorf("load member profiles: %w", err)
	}

	avg, variance, ok := Aggregate(vectors)
	if !ok {
		if err := m.store.DeleteGroupProfile(groupID); err != nil {
			return 0, fmt.Errorf("clear group profile: %w", err)
		}
		m.log.Debug("Group aggregate cleared", "group_id", groupID)
		return outcomeCleared, nil
	}

	profile := &models.GroupCharacteristicProfile{
		GroupID:           groupID,
		AverageRoleScores: avg,
		MemberCount:       len(vectors),
		CurrentVariance:   variance,
		LastUpdatedAt:     m.now(),
	}
	if err := m.store.ReplaceGroupProfile(profile); err != nil {
		return 0, fmt.Errorf("replace group profile: %w", err)
	}
	m.log.Debug("Group aggregate recomputed",
		"group_id", groupID,
		"member_count", profile.MemberCount,
		"variance", variance,
	)
	return outcomeWritten, nil
}

// RecomputeAll rebuilds every group synchronously.
func (m *Maintainer) RecomputeAll() (*models.RecomputeSummary, error) {
	ids, err := m.store.ListGroupIDs()
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return m.RecomputeGroups(ids), nil
}

// RecomputeGroups rebuilds the given groups in order. A failing group is
// counted and logged; the rest still run.
func (m *Maintainer) RecomputeGroups(ids []int64) *models.RecomputeSummary {
	summary := &models.RecomputeSummary{Groups: len(ids)}
	for _, id := range ids {
		out, err := m.recompute(id)
		if err != nil {
			summary.Failed++
			m.log.Warn("Group recompute failed", "group_id", id, "error", err)
			continue
		}
		switch out {
		case outcomeWritten:
			summary.Written++
		case outcomeCleared:
			summary.Cleared++
		}
	}
	m.log.Info("Recomputed group aggregates",
		"groups", summary.Groups,
		"written", summary.Written,
		"cleared", summary.Cleared,
		"failed", summary.Failed,
	)
	return summary
}
