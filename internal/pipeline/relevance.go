package pipeline

// DefaultRelevanceMap maps compliance flags to the departments they concern.
// Deployments override this through configuration.
func DefaultRelevanceMap() map[string][]string {
	return map[string][]string{
		"safety-compliance":        {"safety"},
		"technical-specifications": {"engineering"},
	}
}

// deriveRelevance computes the cross-department relevance set for a document:
// the departments mapped from its compliance flags, minus the owning
// department. Deterministic for given flags and mapping; computed once at
// commit time and never recomputed.
func deriveRelevance(flags []string, owning string, mapping map[string][]string) []string {
	var out []string
	seen := map[string]bool{owning: true}
	for _, flag := range flags {
		for _, dept := range mapping[flag] {
			if seen[dept] {
				continue
			}
			seen[dept] = true
			out = append(out, dept)
		}
	}
	return out
}
