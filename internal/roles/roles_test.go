package roles

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp01(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{3.5, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComplementRoundTrip(t *testing.T) {
	vectors := []Vector{
		{},
		{1, 1, 1, 1, 1, 1, 1},
		{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7},
		{0.9, 0, 0.33, 1, 0.5, 0.05, 0.75},
	}
	for _, v := range vectors {
		back := Complement(Complement(v))
		for i := range v {
			assert.InDelta(t, v[i], back[i], 1e-12)
		}
	}
}

func TestComplement(t *testing.T) {
	got := Complement(Vector{1, 1, 1, 1, 1, 1, 0})
	assert.Equal(t, Vector{0, 0, 0, 0, 0, 0, 1}, got)
}

func TestCosineSimilaritySelf(t *testing.T) {
	vectors := []Vector{
		{1, 0, 0, 0, 0, 0, 0},
		{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7},
		{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
		{0.01, 0, 0, 0.9, 0, 0, 0.3},
	}
	for _, v := range vectors {
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	}
}

func TestCosineSimilarityZeroMagnitude(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity(Vector{}, Vector{1, 0, 0, 0, 0, 0, 0}))
	assert.Equal(t, 0.0, CosineSimilarity(Vector{0.3}, Vector{}))
	assert.Equal(t, 0.0, CosineSimilarity(Vector{}, Vector{}))
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity(Vector{1, 0, 0, 0, 0, 0, 0}, Vector{0, 1, 1, 1, 1, 1, 1}))
}

func TestDominantRole(t *testing.T) {
	tests := []struct {
		name string
		v    Vector
		want RoleType
	}{
		{"empty", Vector{}, DefaultRole},
		{"single", Vector{0, 0, 0.4, 0, 0, 0, 0}, Expert},
		{"tie goes to earlier role", Vector{0, 0.8, 0, 0, 0, 0, 0.8}, Planner},
		{"last role", Vector{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.9}, Challenger},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DominantRole(tt.v))
		})
	}
}

func TestNormalize(t *testing.T) {
	n := Normalize(Vector{3, 4, 0, 0, 0, 0, 0})
	assert.InDelta(t, 0.6, n[0], 1e-12)
	assert.InDelta(t, 0.8, n[1], 1e-12)
	assert.InDelta(t, 1.0, Magnitude(n), 1e-12)

	assert.Equal(t, Vector{}, Normalize(Vector{}))
}

func TestSpread(t *testing.T) {
	for _, x := range []float64{0, 0.1, 0.3, 0.4, 0.7, 1.0 / 3, 1} {
		assert.Equal(t, 0.0, Spread(Vector{x, x, x, x, x, x, x}), "all roles at %v", x)
	}
	assert.InDelta(t, 0.25*6/49, Spread(Vector{0.5, 0, 0, 0, 0, 0, 0}), 1e-12)

	narrow := Spread(Vector{0.4, 0.5, 0.4, 0.5, 0.4, 0.5, 0.4})
	wide := Spread(Vector{0, 1, 0, 1, 0, 1, 0})
	assert.Greater(t, narrow, 0.0)
	assert.Greater(t, wide, narrow)
}

func TestVectorSetClampsAndIgnoresUnknown(t *testing.T) {
	var v Vector
	v.Set(Leader, 1.7)
	v.Set(Creative, -0.2)
	v.Set(RoleType("wizard"), 0.5)

	assert.Equal(t, 1.0, v.Get(Leader))
	assert.Equal(t, 0.0, v.Get(Creative))
	assert.Equal(t, 0.0, v.Get(RoleType("wizard")))
}

func TestVectorJSONAlwaysHasSevenKeys(t *testing.T) {
	v := FromMap(map[RoleType]float64{Expert: 0.5})
	data, err := json.Marshal(v)
	require.NoError(t, err)

	var raw map[string]float64
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, NumRoles)
	assert.Equal(t, 0.5, raw["expert"])
	assert.Equal(t, 0.0, raw["leader"])

	var back Vector
	require.NoError(t, json.Unmarshal([]byte(`{"expert":0.5,"unknown":0.9}`), &back))
	assert.Equal(t, v, back)
}

func TestParse(t *testing.T) {
	r, err := Parse(" Team_Player ")
	require.NoError(t, err)
	assert.Equal(t, TeamPlayer, r)

	_, err = Parse("wizard")
	assert.Error(t, err)
}
