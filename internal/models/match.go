package models

// GroupMatch is one entry of a user's ranked group recommendations.
type GroupMatch struct {
	GroupID           int64    `json:"group_id"`
	GroupName         string   `json:"group_name"`
	CourseID          int64    `json:"course_id"`
	MatchPercentage   int      `json:"match_percentage"`
	MatchReason       string   `json:"match_reason"`
	IsMember          bool     `json:"is_member"`
	CurrentVariance   *float64 `json:"current_variance,omitempty"`
	ProjectedVariance *float64 `json:"projected_variance,omitempty"`
}

// GroupMatchScore answers a single (user, group) query. Scored is false when
// the user has no profile at all; that is a valid outcome, not a zero score.
type GroupMatchScore struct {
	GroupID         int64  `json:"group_id"`
	Scored          bool   `json:"scored"`
	MatchPercentage int    `json:"match_percentage"`
	MatchReason     string `json:"match_reason"`
	IsMember        bool   `json:"is_member"`
}

type TopGroupsResponse struct {
	Groups []GroupMatch `json:"groups"`
}
