package matching

import (
	"fmt"
	"sort"

	"github.com/studymatch/backend/internal/apperr"
	"github.com/studymatch/backend/internal/groups"
	"github.com/studymatch/backend/internal/logger"
	"github.com/studymatch/backend/internal/models"
	"github.com/studymatch/backend/internal/roles"
)

// ProfileReader is satisfied by *profiles.Store.
type ProfileReader interface {
	GetProfile(userID int64) (*models.CharacteristicProfile, error)
}

// GroupReader is satisfied by *groups.Store.
type GroupReader interface {
	GetGroup(groupID int64) (*models.StudyGroup, error)
	EnrolledCourseIDs(userID int64) ([]int64, error)
	ListGroupsByCourses(courseIDs []int64) ([]models.StudyGroup, error)
	GroupIDsForUser(userID int64) ([]int64, error)
	IsMember(userID, groupID int64) (bool, error)
	GetGroupProfile(groupID int64) (*models.GroupCharacteristicProfile, bool, error)
}

// Eligibility decides whether a group the user is not in may be recommended.
type Eligibility func(g models.StudyGroup) bool

type Service struct {
	profiles ProfileReader
	groups   GroupReader
	eligible Eligibility
	log      *logger.Logger
}

// NewService uses groups.Joinable when eligible is nil.
func NewService(profiles ProfileReader, groupReader GroupReader, eligible Eligibility, log *logger.Logger) *Service {
	if eligible == nil {
		eligible = groups.Joinable
	}
	return &Service{
		profiles: profiles,
		groups:   groupReader,
		eligible: eligible,
		log:      log.With("component", "MatchingService"),
	}
}

// GetTopGroups ranks the groups of the user's enrolled courses, best match
// first with ties broken by group id. Groups the user already belongs to are
// always candidates; other groups must pass the eligibility rule. A user
// without a profile or without courses gets an empty list. limit <= 0 returns
// every candidate.
func (s *Service) GetTopGroups(userID int64, limit int) ([]models.GroupMatch, error) {
	out := []models.GroupMatch{}

	profile, err := s.profiles.GetProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		return out, nil
	}

	courseIDs, err := s.groups.EnrolledCourseIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	if len(courseIDs) == 0 {
		return out, nil
	}

	candidates, err := s.groups.ListGroupsByCourses(courseIDs)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	memberIDs, err := s.groups.GroupIDsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	member := make(map[int64]bool, len(memberIDs))
	for _, id := range memberIDs {
		member[id] = true
	}

	for _, g := range candidates {
		isMember := member[g.ID]
		if !isMember && !s.eligible(g) {
			continue
		}
		aggregate, found, err := s.groups.GetGroupProfile(g.ID)
		if err != nil {
			return nil, fmt.Errorf("get group profile %d: %w", g.ID, err)
		}
		if !found {
			aggregate = nil
		}
		res := Evaluate(profile, isMember, aggregate)
		if !res.Scored {
			continue
		}
		out = append(out, buildMatch(g, res, isMember, profile.RoleScores, aggregate))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchPercentage != out[j].MatchPercentage {
			return out[i].MatchPercentage > out[j].MatchPercentage
		}
		return out[i].GroupID < out[j].GroupID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	s.log.Debug("Ranked groups", "user_id", userID, "candidates", len(candidates), "returned", len(out))
	return out, nil
}

// GetGroupMatchScore scores a single group. A user without a profile gets an
// unscored result rather than an error.
func (s *Service) GetGroupMatchScore(userID, groupID int64) (*models.GroupMatchScore, error) {
	group, err := s.groups.GetGroup(groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return nil, apperr.NewNotFoundError("Group not found")
	}

	profile, err := s.profiles.GetProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	isMember, err := s.groups.IsMember(userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}

	var aggregate *models.GroupCharacteristicProfile
	if profile != nil && !isMember {
		p, found, err := s.groups.GetGroupProfile(groupID)
		if err != nil {
			return nil, fmt.Errorf("get group profile: %w", err)
		}
		if found {
			aggregate = p
		}
	}

	res := Evaluate(profile, isMember, aggregate)
	return &models.GroupMatchScore{
		GroupID:         groupID,
		Scored:          res.Scored,
		MatchPercentage: res.Percentage,
		MatchReason:     res.Reason,
		IsMember:        isMember,
	}, nil
}

// buildMatch attaches variance figures when an aggregate exists. The
// projection is only meaningful for groups the user would be joining.
func buildMatch(g models.StudyGroup, res Result, isMember bool, user roles.Vector, aggregate *models.GroupCharacteristicProfile) models.GroupMatch {
	m := models.GroupMatch{
		GroupID:         g.ID,
		GroupName:       g.Name,
		CourseID:        g.CourseID,
		MatchPercentage: res.Percentage,
		MatchReason:     res.Reason,
		IsMember:        isMember,
	}
	if aggregate == nil {
		return m
	}
	current := aggregate.CurrentVariance
	m.CurrentVariance = &current
	if !isMember {
		projected := roles.Spread(groups.ProjectedAverage(aggregate.AverageRoleScores, aggregate.MemberCount, user))
		m.ProjectedVariance = &projected
	}
	return m
}
