package groups

import (
	"errors"
	"fmt"

	"github.com/studymatch/backend/internal/apperr"
	"github.com/studymatch/backend/internal/logger"
	"github.com/studymatch/backend/internal/models"
)

var (
	ErrGroupFull     = errors.New("group is full")
	ErrGroupNotFound = errors.New("group not found")
)

// Joinable is the default eligibility rule for groups a user is not in yet:
// the group is public and has room.
func Joinable(g models.StudyGroup) bool {
	return g.Visibility == models.VisibilityPublic && !g.IsFull()
}

type MembershipStore interface {
	GetGroup(groupID int64) (*models.StudyGroup, error)
	IsEnrolled(userID, courseID int64) (bool, error)
	// AddMember must check capacity and insert atomically, returning
	// ErrGroupFull when there is no room.
	AddMember(userID, groupID int64) (bool, error)
	RemoveMember(userID, groupID int64) (bool, error)
}

// Scheduler satisfies this.
type RecomputeScheduler interface {
	Schedule(groupID int64)
}

type Membership struct {
	store     MembershipStore
	scheduler RecomputeScheduler
	log       *logger.Logger
}

func NewMembership(store MembershipStore, scheduler RecomputeScheduler, log *logger.Logger) *Membership {
	return &Membership{
		store:     store,
		scheduler: scheduler,
		log:       log.With("component", "GroupMembership"),
	}
}

// Join adds the user to the group and queues an aggregate rebuild. Joining a
// group one already belongs to succeeds without changes.
func (m *Membership) Join(userID, groupID int64) (*models.MembershipResponse, error) {
	group, err := m.store.GetGroup(groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return nil, apperr.NewNotFoundError("Group not found")
	}

	enrolled, err := m.store.IsEnrolled(userID, group.CourseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, apperr.NewForbiddenError("You must be enrolled in the course to join this group")
	}
	if group.Visibility != models.VisibilityPublic {
		return nil, apperr.NewForbiddenError("This group is private")
	}
	if group.IsFull() {
		return nil, apperr.NewConflictError("This group is full")
	}

	added, err := m.store.AddMember(userID, groupID)
	switch {
	case errors.Is(err, ErrGroupFull):
		return nil, apperr.NewConflictError("This group is full")
	case errors.Is(err, ErrGroupNotFound):
		return nil, apperr.NewNotFoundError("Group not found")
	case err != nil:
		return nil, fmt.Errorf("add member: %w", err)
	}
	if added {
		m.log.Info("User joined group", "user_id", userID, "group_id", groupID)
		m.schedule(groupID)
	}
	return &models.MembershipResponse{GroupID: groupID, Member: true}, nil
}

// Leave removes the user from the group and queues an aggregate rebuild.
func (m *Membership) Leave(userID, groupID int64) (*models.MembershipResponse, error) {
	removed, err := m.store.RemoveMember(userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("remove member: %w", err)
	}
	if !removed {
		return nil, apperr.NewNotFoundError("You are not a member of this group")
	}
	m.log.Info("User left group", "user_id", userID, "group_id", groupID)
	m.schedule(groupID)
	return &models.MembershipResponse{GroupID: groupID, Member: false}, nil
}

func (m *Membership) schedule(groupID int64) {
	if m.scheduler != nil {
		m.scheduler.Schedule(groupID)
	}
}
