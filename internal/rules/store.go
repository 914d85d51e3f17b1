package rules

import (
	"context"
	"log/slog"

	"github.com/medilint/medilint/internal/domain"
)

// LoadFromRepository fetches the tenant's rule set and keywords from
// the repository. Any failure, and an empty rule table, fall back to
// the builtin seed data so the engine always has rules to evaluate.
// It never returns an error.
func LoadFromRepository(ctx context.Context, repo domain.Repository, tenantID string) ([]*domain.ComplianceRule, map[string][]string) {
	if repo == nil {
		return BuiltinRules(), BuiltinKeywords()
	}

	ruleSet, err := repo.ListRules(ctx, tenantID)
	if err != nil {
		slog.Warn("failed to load rules from repository, using builtins",
			"tenant_id", tenantID,
			"error", err,
		)
		return BuiltinRules(), BuiltinKeywords()
	}
	if len(ruleSet) == 0 {
		slog.Info("no rules in repository, using builtins", "tenant_id", tenantID)
		return BuiltinRules(), BuiltinKeywords()
	}

	builtinKeywords := BuiltinKeywords()
	keywords := make(map[string][]string, len(ruleSet))
	for _, rule := range ruleSet {
		kws, err := repo.ListKeywords(ctx, tenantID, rule.Category)
		if err != nil {
			slog.Warn("failed to load keywords, using builtins for category",
				"tenant_id", tenantID,
				"category", rule.Category,
				"error", err,
			)
			keywords[rule.Category] = builtinKeywords[rule.Category]
			continue
		}
		if len(kws) == 0 {
			keywords[rule.Category] = builtinKeywords[rule.Category]
			continue
		}
		keywords[rule.Category] = kws
	}

	return ruleSet, keywords
}

// SeedBuiltins persists the builtin rule set for a tenant. Used on
// first boot so the API exposes an editable copy of the defaults.
func SeedBuiltins(ctx context.Context, repo domain.Repository, tenantID string) error {
	keywords := BuiltinKeywords()
	for _, rule := range BuiltinRules() {
		if err := repo.SaveRule(ctx, tenantID, rule, keywords[rule.Category]); err != nil {
			return err
		}
	}
	return nil
}
