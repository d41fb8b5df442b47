package extract

import "fmt"

// MergePolicy decides which pass wins when both found the same field
type MergePolicy string

const (
	PatternWins MergePolicy = "pattern"
	TableWins   MergePolicy = "table"
)

// ParseMergePolicy accepts "pattern", "table" or "" (pattern).
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(s) {
	case "", PatternWins:
		return PatternWins, nil
	case TableWins:
		return TableWins, nil
	}
	return "", fmt.Errorf("unknown merge policy %q", s)
}

// Merge combines the table and pattern passes into a new map.
func Merge(table, pattern map[string]string, policy MergePolicy) map[string]string {
	base, overlay := table, pattern
	if policy == TableWins {
		base, overlay = pattern, table
	}
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
