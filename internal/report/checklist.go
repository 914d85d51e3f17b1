package report

import "github.com/medilint/medilint/internal/domain"

// Per-violation deductions for the per-rule compliance score.
const (
	ruleDeductionHigh   = 30
	ruleDeductionMedium = 20
	ruleDeductionLow    = 10
	perViolationPenalty = 5
)

// buildChecklist produces one entry per known rule. Rules with no
// surviving violations pass with a score of 100; violated rules fail
// with a score reduced per violation.
func buildChecklist(rules []*domain.ComplianceRule, detailed []domain.DetailedViolation) []domain.ChecklistItem {
	perCategory := make(map[string]int)
	for _, v := range detailed {
		perCategory[v.Category]++
	}

	checklist := make([]domain.ChecklistItem, 0, len(rules))
	for _, rule := range rules {
		count := perCategory[rule.Category]
		status := "pass"
		if count > 0 {
			status = "fail"
		}

		checklist = append(checklist, domain.ChecklistItem{
			Category:        rule.Category,
			Title:           rule.Title,
			Description:     rule.Description,
			Status:          status,
			Severity:        rule.Severity,
			LegalBasis:      rule.LegalBasis,
			CheckItems:      checkItems(rule.Category),
			ViolationCount:  count,
			ComplianceScore: ruleScore(rule.Severity, count),
		})
	}
	return checklist
}

// ruleScore computes the per-rule compliance score: 100 when clean,
// otherwise reduced by severity per violation plus a flat per-count
// penalty, floored at 0.
func ruleScore(severity string, count int) int {
	if count == 0 {
		return 100
	}

	deduction := ruleDeductionLow
	switch severity {
	case domain.SeverityHigh:
		deduction = ruleDeductionHigh
	case domain.SeverityMedium:
		deduction = ruleDeductionMedium
	}

	score := 100 - deduction*count - perViolationPenalty*count
	if score < 0 {
		score = 0
	}
	return score
}

// checkItems returns the category-specific checklist questions.
func checkItems(category string) []domain.CheckItem {
	switch category {
	case "과장·절대적 표현":
		return []domain.CheckItem{
			{Item: "최고, 최고의 표현 사용 여부", Required: true},
			{Item: "완치, 치료 보장 표현 사용 여부", Required: true},
			{Item: "비교 광고 시 객관적 근거 제시 여부", Required: true},
			{Item: "과장된 효과 표현 사용 여부", Required: true},
		}
	case "전후사진":
		return []domain.CheckItem{
			{Item: "전후사진 사용 시 의료적 근거 제시 여부", Required: true},
			{Item: "과도한 보정 및 조작 여부", Required: true},
			{Item: "객관적 비교 기준 제시 여부", Required: true},
		}
	case "환자 후기·경험담":
		return []domain.CheckItem{
			{Item: "환자 후기 사용 여부", Required: false},
			{Item: "경험담 광고 활용 여부", Required: false},
			{Item: "객관적 정보만 포함 여부", Required: true},
		}
	default:
		return []domain.CheckItem{
			{Item: "규정 준수 여부", Required: true},
			{Item: "객관적 사실 기반 여부", Required: true},
		}
	}
}
