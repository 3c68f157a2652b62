package plan

import (
	"insertable-generator/internal/analyze"
	"insertable-generator/internal/diagnostic"
	"insertable-generator/internal/metadata"
)

// FilterResult partitions the fields of a type.
type FilterResult struct {
	Included []analyze.FieldInfo
	Excluded []analyze.FieldInfo
	// Unused lists exclusion names that matched no field, in list order.
	Unused []string
}

// Filter splits fields into included and excluded subsequences, preserving
// order. A field is excluded when its Go name or its column is listed.
func Filter(fields []analyze.FieldInfo, exclusions metadata.ExclusionList) (FilterResult, error) {
	set := exclusions.Set()
	used := make(map[string]bool, len(set))

	var res FilterResult

	for _, f := range fields {
		if f.Embedded {
			return FilterResult{}, diagnostic.UnsupportedShape(
				"only named-field record types are supported").WithPos(f.Pos)
		}

		hitName, hitColumn := set[f.Name], set[f.Column]
		if !hitName && !hitColumn {
			res.Included = append(res.Included, f)
			continue
		}

		res.Excluded = append(res.Excluded, f)

		if hitName {
			used[f.Name] = true
		}

		if hitColumn {
			used[f.Column] = true
		}
	}

	for _, n := range exclusions.Names {
		if !used[n] {
			res.Unused = append(res.Unused, n)
		}
	}

	return res, nil
}
