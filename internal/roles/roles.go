package roles

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// RoleType is one of the seven collaboration-style dimensions a quiz measures.
type RoleType string

const (
	Leader       RoleType = "leader"
	Planner      RoleType = "planner"
	Expert       RoleType = "expert"
	Creative     RoleType = "creative"
	Communicator RoleType = "communicator"
	TeamPlayer   RoleType = "team_player"
	Challenger   RoleType = "challenger"
)

// NumRoles is the fixed dimension of every role vector.
const NumRoles = 7

// All lists the roles in enumeration order. Vector indices follow this order.
var All = [NumRoles]RoleType{Leader, Planner, Expert, Creative, Communicator, TeamPlayer, Challenger}

// DefaultRole is reported as dominant for a vector with no signal at all.
const DefaultRole = TeamPlayer

var labels = map[RoleType]string{
	Leader:       "Leader",
	Planner:      "Planner",
	Expert:       "Expert",
	Creative:     "Creative",
	Communicator: "Communicator",
	TeamPlayer:   "Team Player",
	Challenger:   "Challenger",
}

// Index returns the role's position in All, or -1 for an unknown role.
func (r RoleType) Index() int {
	for i, role := range All {
		if role == r {
			return i
		}
	}
	return -1
}

func (r RoleType) Valid() bool { return r.Index() >= 0 }

// Label is the human-readable role name used in match reasons.
func (r RoleType) Label() string {
	if l, ok := labels[r]; ok {
		return l
	}
	return string(r)
}

// Parse accepts the wire name ("team_player") case-insensitively.
func Parse(s string) (RoleType, error) {
	r := RoleType(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Vector holds one score per role. The array form guarantees all seven
// entries are always present.
type Vector [NumRoles]float64

func (v Vector) Get(r RoleType) float64 {
	i := r.Index()
	if i < 0 {
		return 0
	}
	return v[i]
}

// Set stores a clamped score. Unknown roles are ignored.
func (v *Vector) Set(r RoleType, score float64) {
	if i := r.Index(); i >= 0 {
		v[i] = Clamp01(score)
	}
}

// Map returns the vector as a role-keyed map with all seven keys.
func (v Vector) Map() map[RoleType]float64 {
	out := make(map[RoleType]float64, NumRoles)
	for i, r := range All {
		out[r] = v[i]
	}
	return out
}

// FromMap builds a vector from a sparse map; missing roles are 0.0.
func FromMap(m map[RoleType]float64) Vector {
	var v Vector
	for r, score := range m {
		v.Set(r, score)
	}
	return v
}

func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func (v Vector) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, NumRoles)
	for i, r := range All {
		out[string(r)] = v[i]
	}
	return json.Marshal(out)
}

func (v *Vector) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Vector{}
	for k, score := range raw {
		v.Set(RoleType(k), score)
	}
	return nil
}

// ── Vector primitives ───────────────────────────────────

// Clamp01 maps any float into [0, 1]. NaN becomes 0.
func Clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Complement expresses what a group is missing: 1 - score for each role.
func Complement(v Vector) Vector {
	var out Vector
	for i, x := range v {
		out[i] = 1.0 - x
	}
	return out
}

func Dot(a, b Vector) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func Magnitude(v Vector) float64 {
	return math.Sqrt(Dot(v, v))
}

// Normalize scales v to unit length. A zero vector is returned unchanged.
func Normalize(v Vector) Vector {
	m := Magnitude(v)
	if m == 0 {
		return v
	}
	var out Vector
	for i, x := range v {
		out[i] = x / m
	}
	return out
}

// CosineSimilarity returns 0 when either vector has zero magnitude.
func CosineSimilarity(a, b Vector) float64 {
	ma, mb := Magnitude(a), Magnitude(b)
	if ma == 0 || mb == 0 {
		return 0
	}
	return Dot(a, b) / (ma * mb)
}

// DominantRole returns the highest-scoring role. Ties go to the earlier role
// in enumeration order; an all-zero vector yields DefaultRole.
func DominantRole(v Vector) RoleType {
	if v.IsZero() {
		return DefaultRole
	}
	best := 0
	for i := 1; i < NumRoles; i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return All[best]
}

func Mean(v Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / NumRoles
}

// Spread is the population variance of the seven components: zero when every
// role scores the same, larger as scores drift apart. Deviations are taken
// from v[0] so that equal components give an exact zero.
func Spread(v Vector) float64 {
	var shifted Vector
	for i, x := range v {
		shifted[i] = x - v[0]
	}
	mean := Mean(shifted)
	var sum float64
	for _, x := range shifted {
		d := x - mean
		sum += d * d
	}
	return sum / NumRoles
}
