package matching

import (
	"fmt"
	"math"

	"github.com/studymatch/backend/internal/models"
	"github.com/studymatch/backend/internal/roles"
)

const (
	MemberScore   = 100
	FoundingScore = 75

	perfectFitMin = 80
	greatFitMin   = 60
	goodFitMin    = 40
)

const (
	reasonMember   = "You are already a member of this group."
	reasonFounding = "This group is just getting started. Join as a founding member and help shape how it works."
)

// Result is the outcome of scoring one user against one group. Scored is
// false only when the user has no profile.
type Result struct {
	Scored     bool
	Percentage int
	Reason     string
}

// Evaluate applies the matching rules in order; the first that applies wins:
// no profile, existing member, no stored aggregate, then complementary
// similarity. A nil aggregate means none is stored, which is not the same as
// an all-zero one.
func Evaluate(user *models.CharacteristicProfile, isMember bool, aggregate *models.GroupCharacteristicProfile) Result {
	if user == nil {
		return Result{}
	}
	if isMember {
		return Result{Scored: true, Percentage: MemberScore, Reason: reasonMember}
	}
	if aggregate == nil {
		return Result{Scored: true, Percentage: FoundingScore, Reason: reasonFounding}
	}

	pct := Similarity(user.RoleScores, aggregate.AverageRoleScores)
	return Result{Scored: true, Percentage: pct, Reason: reason(pct, user.RoleScores, aggregate.AverageRoleScores)}
}

// Similarity scores how well user covers what the group lacks: the cosine
// of the user's vector and the complement of the group average, as a 0-100
// integer.
func Similarity(user, groupAvg roles.Vector) int {
	need := roles.Complement(groupAvg)
	sim := roles.CosineSimilarity(user, need)
	pct := int(math.Round(sim * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func reason(pct int, user, groupAvg roles.Vector) string {
	mine := roles.DominantRole(user).Label()
	switch {
	case pct >= perfectFitMin:
		return fmt.Sprintf("Perfect fit! Your %s strengths are exactly what this group is missing.", mine)
	case pct >= greatFitMin:
		return fmt.Sprintf("Great fit. The group could really use your %s strengths.", mine)
	case pct >= goodFitMin:
		return fmt.Sprintf("Good fit. Your %s side adds something the group needs.", mine)
	default:
		theirs := roles.DominantRole(groupAvg).Label()
		return fmt.Sprintf("This group is already strong in your areas, especially %s.", theirs)
	}
}
