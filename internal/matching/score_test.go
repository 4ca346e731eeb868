package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studymatch/backend/internal/models"
	"github.com/studymatch/backend/internal/roles"
)

func profileWith(v roles.Vector) *models.CharacteristicProfile {
	p := models.NewCharacteristicProfile(1)
	p.RoleScores = v
	return p
}

func aggregateWith(v roles.Vector) *models.GroupCharacteristicProfile {
	return &models.GroupCharacteristicProfile{GroupID: 1, AverageRoleScores: v, MemberCount: 2}
}

func TestEvaluateDecisionOrder(t *testing.T) {
	user := profileWith(roles.Vector{1, 0, 0, 0, 0, 0, 0})
	overlap := aggregateWith(roles.Vector{1, 0, 0, 0, 0, 0, 0})

	cases := []struct {
		name      string
		user      *models.CharacteristicProfile
		member    bool
		aggregate *models.GroupCharacteristicProfile
		scored    bool
		pct       int
		reason    string
	}{
		{"no profile", nil, true, overlap, false, 0, ""},
		{"member beats mismatch", user, true, overlap, true, 100, "already a member"},
		{"member of a new group", user, true, nil, true, 100, "already a member"},
		{"no aggregate", user, false, nil, true, 75, "founding member"},
		{"overlap", user, false, overlap, true, 0, "already strong in your areas"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Evaluate(tc.user, tc.member, tc.aggregate)
			assert.Equal(t, tc.scored, res.Scored)
			assert.Equal(t, tc.pct, res.Percentage)
			if tc.reason != "" {
				assert.Contains(t, res.Reason, tc.reason)
			}
		})
	}
}

func TestEvaluateNewGroupIgnoresUserVector(t *testing.T) {
	for _, v := range []roles.Vector{
		{},
		{1, 1, 1, 1, 1, 1, 1},
		{0, 0, 0.3, 0, 0, 0.9, 0},
	} {
		res := Evaluate(profileWith(v), false, nil)
		assert.Equal(t, FoundingScore, res.Percentage)
		assert.Contains(t, res.Reason, "founding member")
	}
}

func TestEvaluatePerfectComplement(t *testing.T) {
	res := Evaluate(
		profileWith(roles.Vector{0, 0, 0, 0, 0, 0, 1}),
		false,
		aggregateWith(roles.Vector{1, 1, 1, 1, 1, 1, 0}),
	)
	assert.Equal(t, 100, res.Percentage)
	assert.Contains(t, res.Reason, "fit")
	assert.Contains(t, res.Reason, "Challenger")
}

func TestSimilarityUnitComplementScoresFull(t *testing.T) {
	avgs := []roles.Vector{
		{0.2, 0.5, 0.9, 0.1, 0.3, 0.7, 0.4},
		{0.9, 0.9, 0.1, 0.6, 0.2, 0.0, 0.5},
		{0, 0, 0, 0, 0, 0, 0},
	}
	for _, avg := range avgs {
		user := roles.Normalize(roles.Complement(avg))
		assert.Equal(t, 100, Similarity(user, avg))
	}
}

func TestSimilarityFullOverlapScoresUnderForty(t *testing.T) {
	for i := range roles.All {
		var v roles.Vector
		v[i] = 1
		assert.Less(t, Similarity(v, v), goodFitMin, "role %s", roles.All[i])
	}
}

func TestSimilarityZeroUserScoresZero(t *testing.T) {
	assert.Equal(t, 0, Similarity(roles.Vector{}, roles.Vector{0.5, 0.5}))
}

func TestSimilarityStaysInRange(t *testing.T) {
	vectors := []roles.Vector{
		{}, {1, 1, 1, 1, 1, 1, 1}, {0.3, 0.8, 0, 0.2, 1, 0.1, 0.6}, {1}, {0, 0, 0, 0, 0, 0, 1},
	}
	for _, u := range vectors {
		for _, g := range vectors {
			pct := Similarity(u, g)
			assert.GreaterOrEqual(t, pct, 0)
			assert.LessOrEqual(t, pct, 100)
		}
	}
}

func TestReasonBands(t *testing.T) {
	user := roles.Vector{0, 0, 0, 1, 0, 0, 0}
	group := roles.Vector{0, 0, 1, 0, 0, 0, 0}

	cases := []struct {
		pct  int
		want string
	}{
		{100, "Perfect fit"},
		{80, "Perfect fit"},
		{79, "Great fit"},
		{60, "Great fit"},
		{59, "Good fit"},
		{40, "Good fit"},
		{39, "already strong in your areas"},
		{0, "already strong in your areas"},
	}
	for _, tc := range cases {
		got := reason(tc.pct, user, group)
		assert.Contains(t, got, tc.want, "pct %d", tc.pct)
	}

	assert.Contains(t, reason(90, user, group), "Creative")
	assert.Contains(t, reason(10, user, group), "Expert")
}
