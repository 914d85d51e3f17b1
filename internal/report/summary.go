package report

import (
	"fmt"

	"github.com/medilint/medilint/internal/domain"
)

// buildSummaryReport produces the executive summary with severity
// tallies over the consolidated violations.
func buildSummaryReport(violations []domain.Violation, score int) domain.SummaryReport {
	var high, medium, low int
	for _, v := range violations {
		switch v.Severity {
		case domain.SeverityHigh:
			high++
		case domain.SeverityMedium:
			medium++
		case domain.SeverityLow:
			low++
		}
	}

	risk := domain.RiskLow
	if score < 60 {
		risk = domain.RiskHigh
	} else if score < 80 {
		risk = domain.RiskMedium
	}

	immediateActions := []string{"현재 상태 유지"}
	if len(violations) > 0 {
		immediateActions = []string{
			"과장된 표현 수정",
			"절대적 표현 제거",
			"객관적 사실 기반으로 재작성",
		}
	}

	return domain.SummaryReport{
		ExecutiveSummary: domain.ExecutiveSummary{
			TotalViolations: len(violations),
			HighSeverity:    high,
			MediumSeverity:  medium,
			LowSeverity:     low,
			ComplianceScore: score,
			RiskAssessment:  risk,
		},
		KeyFindings: []string{
			fmt.Sprintf("%d개의 위반사항 발견", len(violations)),
			fmt.Sprintf("준수도 점수: %d/100", score),
			fmt.Sprintf("심각도 높은 위반: %d개", high),
		},
		ImmediateActions: immediateActions,
		LongTermRecommendations: []string{
			"의료광고법 정기 교육 참여",
			"심의 기준 정기 업데이트 확인",
			"내부 검토 프로세스 구축",
		},
	}
}
