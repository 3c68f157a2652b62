package match

import "sort"

// DefaultSuggestThreshold is the minimum Similarity for a name to be suggested.
const DefaultSuggestThreshold = 0.6

// Suggest returns the known names most similar to name, best first, keeping
// at most limit entries scoring at least threshold. Ties are broken by name
// so the result is deterministic.
func Suggest(name string, known []string, threshold float64, limit int) []string {
	type scored struct {
		name  string
		score float64
	}

	var candidates []scored

	seen := make(map[string]bool, len(known))
	for _, k := range known {
		if seen[k] || k == name {
			continue
		}

		seen[k] = true

		if s := Similarity(name, k); s >= threshold {
			candidates = append(candidates, scored{k, s})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}

		return candidates[i].name < candidates[j].name
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}

	return out
}
