// Package report turns rule findings into the full analysis result:
// scoring, deduplication, checklist, review guidance, legal analysis,
// text statistics, and the executive summary.
package report

import (
	"context"
	"log/slog"

	"github.com/medilint/medilint/internal/domain"
)

// DefaultMaxSuggestions caps how many violations are forwarded to the
// enrichment service per analysis.
const DefaultMaxSuggestions = 3

// Deductions from the overall score per triggered category.
const (
	deductionHigh   = 25
	deductionMedium = 15
	deductionLow    = 10
)

// Input carries one analysis run into the processor.
type Input struct {
	Text       string
	SourceType string
	Findings   []domain.RuleFinding
	// Rules is the full loaded rule set, for the checklist. Rules
	// without findings appear as passing entries.
	Rules []*domain.ComplianceRule
}

// Processor synthesizes analysis results. Safe for concurrent use.
type Processor struct {
	enricher       domain.Enricher
	maxSuggestions int
}

// NewProcessor creates a processor. enricher may be nil.
func NewProcessor(enricher domain.Enricher, maxSuggestions int) *Processor {
	if maxSuggestions <= 0 {
		maxSuggestions = DefaultMaxSuggestions
	}
	return &Processor{
		enricher:       enricher,
		maxSuggestions: maxSuggestions,
	}
}

// EmptyInput builds the degenerate result for empty or whitespace-only
// input. No matching runs; the caller decides emptiness.
func (p *Processor) EmptyInput(text string) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		OverallScore:     0,
		ComplianceStatus: domain.StatusNotAnalyzable,
		RiskLevel:        domain.RiskHigh,
		Violations: []domain.Violation{
			{
				Category: "입력 오류",
				Title:    "텍스트를 추출할 수 없습니다",
				Severity: domain.SeverityHigh,
				Count:    1,
			},
		},
		Recommendations: []domain.Recommendation{
			{
				Title:    "입력 확인",
				Guide:    "유효한 URL을 입력하거나 텍스트를 직접 입력해주세요.",
				Priority: "high",
			},
		},
		TextAnalysis: domain.TextAnalysis{
			TextQuality: "empty",
		},
		ExtractedText: text,
	}
}

// Process builds the complete result from engine findings. It never
// fails: enrichment errors only drop the aiImprovements field.
func (p *Processor) Process(ctx context.Context, input *Input) *domain.AnalysisResult {
	violations := make([]domain.Violation, 0, len(input.Findings))
	var detailed []domain.DetailedViolation
	var recommendations []domain.Recommendation

	score := 100
	for _, f := range input.Findings {
		violations = append(violations, f.Summary)
		detailed = append(detailed, f.Detailed...)

		switch f.Rule.Severity {
		case domain.SeverityHigh:
			score -= deductionHigh
		case domain.SeverityMedium:
			score -= deductionMedium
		default:
			score -= deductionLow
		}

		priority := "medium"
		if f.Rule.Severity == domain.SeverityHigh {
			priority = "high"
		}
		rec := domain.Recommendation{
			Category: f.Rule.Category,
			Title:    f.Rule.Title,
			Guide:    f.Rule.ImprovementGuide,
			Priority: priority,
		}
		if len(f.Detailed) > 0 {
			rec.SuggestedFixes = f.Detailed[0].SuggestedFixes
		}
		recommendations = append(recommendations, rec)
	}

	violations = consolidateViolations(dedupViolations(violations))
	detailed = dedupDetailed(detailed)
	recommendations = dedupRecommendations(recommendations)

	if score < 0 {
		score = 0
	}

	status, risk := classify(score)

	result := &domain.AnalysisResult{
		OverallScore:        score,
		ComplianceStatus:    status,
		RiskLevel:           risk,
		Violations:          violations,
		DetailedViolations:  detailed,
		Recommendations:     recommendations,
		ComplianceChecklist: buildChecklist(input.Rules, detailed),
		ReviewGuidance:      buildReviewGuidance(violations, input.SourceType),
		LegalAnalysis:       buildLegalAnalysis(violations),
		TextAnalysis:        analyzeText(input.Text),
		SummaryReport:       buildSummaryReport(violations, score),
		ExtractedText:       input.Text,
	}

	if p.enricher != nil && p.enricher.Enabled() && len(detailed) > 0 {
		result.AIImprovements = p.enrich(ctx, detailed, input.Text)
	}

	return result
}

// classify maps a score to compliance status and risk level.
func classify(score int) (string, string) {
	switch {
	case score >= 80:
		return domain.StatusCompliant, domain.RiskLow
	case score >= 60:
		return domain.StatusPartiallyCompliant, domain.RiskMedium
	default:
		return domain.StatusNonCompliant, domain.RiskHigh
	}
}

// enrich forwards the top violations to the enrichment service. Failed
// suggestions are logged and skipped.
func (p *Processor) enrich(ctx context.Context, detailed []domain.DetailedViolation, text string) []domain.Improvement {
	excerpt := text
	if runes := []rune(text); len(runes) > 1000 {
		excerpt = string(runes[:1000])
	}

	limit := min(p.maxSuggestions, len(detailed))

	var improvements []domain.Improvement
	for i := 0; i < limit; i++ {
		v := detailed[i]
		suggestion, err := p.enricher.SuggestImprovement(ctx, &v, excerpt)
		if err != nil {
			slog.Warn("enrichment failed for violation",
				"category", v.Category,
				"keyword", v.Keyword,
				"error", err,
			)
			continue
		}
		improvements = append(improvements, domain.Improvement{
			ViolationCategory: v.Category,
			ViolationKeyword:  v.Keyword,
			Suggestion:        *suggestion,
		})
	}
	return improvements
}
