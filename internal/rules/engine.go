// Package rules implements the compliance rule engine: keyword
// matching, contextual filtering, and location resolution over
// advertising text.
package rules

import (
	"context"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/google/cel-go/cel"

	"github.com/medilint/medilint/internal/domain"
)

// filterRadius is the rune radius of the context window handed to the
// indicator filter and gate expressions.
const filterRadius = 100

// Engine evaluates loaded compliance rules against input text.
type Engine struct {
	mu     sync.RWMutex
	env    *cel.Env
	loaded []*LoadedRule
}

// LoadedRule pairs a rule with its keyword list and, when the rule
// carries a gate expression, the compiled program.
type LoadedRule struct {
	Rule     *domain.ComplianceRule
	Keywords []string
	Gate     cel.Program
}

// NewEngine creates a rule engine with no rules loaded.
func NewEngine() (*Engine, error) {
	env, err := newGateEnv()
	if err != nil {
		return nil, err
	}

	return &Engine{
		env: env,
	}, nil
}

// ValidateRule compiles and validates a rule without mutating loaded
// engine rules.
func (e *Engine) ValidateRule(rule *domain.ComplianceRule) error {
	if rule.GateExpr == "" {
		return nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := compileGate(e.env, rule.Category, rule.GateExpr)
	return err
}

// LoadRules compiles and loads a rule set with its keywords, replacing
// whatever was loaded before. Evaluation order follows the slice order.
// Disabled rules are skipped.
func (e *Engine) LoadRules(ruleSet []*domain.ComplianceRule, keywords map[string][]string) error {
	loaded := make([]*LoadedRule, 0, len(ruleSet))
	for _, rule := range ruleSet {
		if !rule.Enabled {
			continue
		}

		lr := &LoadedRule{
			Rule:     rule,
			Keywords: keywords[rule.Category],
		}

		// A broken gate expression disables the gate for that rule;
		// the indicator check still applies. ValidateRule catches bad
		// expressions at save time.
		if rule.GateExpr != "" {
			program, err := compileGate(e.env, rule.Category, rule.GateExpr)
			if err != nil {
				slog.Error("disabling gate expression", "category", rule.Category, "error", err)
			} else {
				lr.Gate = program
			}
		}

		loaded = append(loaded, lr)
	}

	e.mu.Lock()
	e.loaded = loaded
	e.mu.Unlock()

	return nil
}

// ReloadRules is LoadRules under its hot-reload name.
func (e *Engine) ReloadRules(ruleSet []*domain.ComplianceRule, keywords map[string][]string) error {
	return e.LoadRules(ruleSet, keywords)
}

// RulesCount returns the number of loaded rules.
func (e *Engine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.loaded)
}

// GetLoadedRules returns the currently loaded rules in evaluation order.
func (e *Engine) GetLoadedRules() []*domain.ComplianceRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*domain.ComplianceRule, 0, len(e.loaded))
	for _, lr := range e.loaded {
		out = append(out, lr.Rule)
	}
	return out
}

// Close cleans up the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loaded = nil
	return nil
}

// EvaluateText runs every loaded rule over text and returns one finding
// per rule that produced at least one genuine violation. Findings come
// back in rule load order; violations within a finding in text order.
// Texts longer than domain.MaxAnalyzableRunes are rejected.
func (e *Engine) EvaluateText(ctx context.Context, text string) ([]domain.RuleFinding, error) {
	if utf8.RuneCountInString(text) > domain.MaxAnalyzableRunes {
		return nil, domain.ErrTextTooLong
	}

	e.mu.RLock()
	loaded := e.loaded
	e.mu.RUnlock()

	if len(loaded) == 0 {
		return nil, nil
	}

	runes := []rune(text)

	var findings []domain.RuleFinding
	for _, lr := range loaded {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		detailed := e.evaluateRule(lr, text, runes)
		if len(detailed) == 0 {
			continue
		}

		findings = append(findings, domain.RuleFinding{
			Rule: lr.Rule,
			Summary: domain.Violation{
				Category:   lr.Rule.Category,
				Title:      lr.Rule.Title,
				Severity:   lr.Rule.Severity,
				Count:      len(detailed),
				LegalBasis: lr.Rule.LegalBasis,
				Penalty:    lr.Rule.Penalty,
			},
			Detailed: detailed,
		})
	}

	return findings, nil
}

// evaluateRule collects the surviving matches for one rule across all
// of its keywords, in text order per keyword. A panic during one rule's
// evaluation skips that rule; the other rules still run.
func (e *Engine) evaluateRule(lr *LoadedRule, text string, runes []rune) (detailed []domain.DetailedViolation) {
	defer func() {
		if v := recover(); v != nil {
			slog.Error("rule evaluation panicked, skipping rule",
				"category", lr.Rule.Category,
				"panic", v,
			)
			detailed = nil
		}
	}()

	rule := lr.Rule

	for _, keyword := range lr.Keywords {
		for _, match := range FindMatches(text, keyword) {
			filterCtx := window(runes, match.Start, filterRadius)

			genuine := false
			if lr.Gate != nil {
				genuine = evalGate(lr.Gate, rule.Category, keyword, filterCtx)
			} else {
				genuine = genuineViolation(rule, keyword, filterCtx)
			}
			if !genuine {
				slog.Debug("match filtered out",
					"category", rule.Category,
					"keyword", keyword,
					"position", match.Start,
				)
				continue
			}

			loc := Resolve(text, match.Start)
			detailed = append(detailed, domain.DetailedViolation{
				Category:           rule.Category,
				Title:              rule.Title,
				Severity:           rule.Severity,
				Keyword:            keyword,
				Context:            loc.SentenceContext,
				FullContext:        loc.FullContext,
				ImmediateContext:   loc.ImmediateContext,
				ParagraphContext:   loc.ParagraphContext,
				Position:           match.Start,
				LineNumber:         loc.Line,
				ColumnNumber:       loc.Column,
				ParagraphNumber:    loc.Paragraph,
				PositionPercentage: loc.PositionPercentage,
				ExactLocation:      loc.ExactLocation(),
				SuggestedFixes:     suggestedFixes(keyword),
				LegalBasis:         rule.LegalBasis,
				Penalty:            rule.Penalty,
				ImprovementGuide:   rule.ImprovementGuide,
			})
		}
	}
	return detailed
}
