package rules

import (
	"strings"

	"github.com/medilint/medilint/internal/domain"
)

// genuineViolation decides whether a raw keyword match is a genuine
// violation or an incidental mention, using the rule's indicator words
// within the local context window.
//
// Strict rules (testimonials, exaggerated claims) accept every match:
// any mention is inherently non-compliant. Rules without indicators
// also accept every match. Otherwise at least one indicator must
// appear in the window. If the keyword itself is absent from the
// supplied context the match fails closed.
func genuineViolation(rule *domain.ComplianceRule, keyword, context string) bool {
	if rule.Strict {
		return true
	}

	if !strings.Contains(strings.ToLower(context), strings.ToLower(keyword)) {
		return false
	}

	if len(rule.Indicators) == 0 {
		return true
	}

	for _, indicator := range rule.Indicators {
		if strings.Contains(context, indicator) {
			return true
		}
	}
	return false
}
