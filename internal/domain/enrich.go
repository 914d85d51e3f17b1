package domain

import (
	"context"
)

// Enricher is the optional generative-text collaborator that proposes
// natural-language improvements for detected violations. It is an
// explicit dependency of the report processor rather than process-wide
// state; a disabled implementation is used when no credential is
// configured.
//
// Implementations must bound their own I/O (timeouts) and must not
// panic: any failure is returned as an error and the caller drops the
// enrichment rather than failing the analysis.
type Enricher interface {
	// SuggestImprovement proposes a rewrite for one violation given a
	// bounded excerpt of the source text (callers truncate to roughly
	// the first 1000 runes).
	SuggestImprovement(ctx context.Context, violation *DetailedViolation, excerpt string) (*ImprovementSuggestion, error)

	// Enabled reports whether the enricher can actually make calls.
	Enabled() bool
}
