package groups

import "github.com/studymatch/backend/internal/roles"

// Aggregate returns the per-role arithmetic mean of the member vectors and the
// spread of that mean. ok is false when there is nothing to average.
func Aggregate(vectors []roles.Vector) (avg roles.Vector, variance float64, ok bool) {
	if len(vectors) == 0 {
		return roles.Vector{}, 0, false
	}
	var sums roles.Vector
	for _, v := range vectors {
		for i, x := range v {
			sums[i] += roles.Clamp01(x)
		}
	}
	n := float64(len(vectors))
	for i := range avg {
		avg[i] = roles.Clamp01(sums[i] / n)
	}
	return avg, roles.Spread(avg), true
}

// ProjectedAverage is the group average after adding one more member with
// vector v to the memberCount members already averaged into avg.
func ProjectedAverage(avg roles.Vector, memberCount int, v roles.Vector) roles.Vector {
	if memberCount < 0 {
		memberCount = 0
	}
	var out roles.Vector
	n := float64(memberCount)
	for i := range out {
		out[i] = roles.Clamp01((avg[i]*n + roles.Clamp01(v[i])) / (n + 1))
	}
	return out
}
