package report

import "github.com/medilint/medilint/internal/domain"

// Deduplication and consolidation of violation lists. All functions
// preserve first-seen order and are idempotent.

type violationKey struct {
	category string
	title    string
}

func dedupViolations(violations []domain.Violation) []domain.Violation {
	seen := make(map[violationKey]bool, len(violations))
	out := violations[:0]
	for _, v := range violations {
		key := violationKey{v.Category, v.Title}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func dedupRecommendations(recommendations []domain.Recommendation) []domain.Recommendation {
	seen := make(map[violationKey]bool, len(recommendations))
	out := recommendations[:0]
	for _, r := range recommendations {
		key := violationKey{r.Category, r.Title}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

type detailedKey struct {
	category string
	title    string
	keyword  string
	position int
}

func dedupDetailed(detailed []domain.DetailedViolation) []domain.DetailedViolation {
	seen := make(map[detailedKey]bool, len(detailed))
	out := detailed[:0]
	for _, v := range detailed {
		key := detailedKey{v.Category, v.Title, v.Keyword, v.Position}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// consolidateViolations merges entries sharing (category, title),
// summing counts and keeping the max severity.
func consolidateViolations(violations []domain.Violation) []domain.Violation {
	index := make(map[violationKey]int, len(violations))
	out := violations[:0]
	for _, v := range violations {
		key := violationKey{v.Category, v.Title}
		if i, ok := index[key]; ok {
			out[i].Count += v.Count
			out[i].Severity = domain.MaxSeverity(out[i].Severity, v.Severity)
			continue
		}
		index[key] = len(out)
		out = append(out, v)
	}
	return out
}
