package report

import "github.com/medilint/medilint/internal/domain"

// buildLegalAnalysis aggregates the legal view: the static statute and
// requirement lists plus one risk entry per violated category.
func buildLegalAnalysis(violations []domain.Violation) domain.LegalAnalysis {
	analysis := domain.LegalAnalysis{
		ApplicableLaws: []domain.ApplicableLaw{
			{
				Law:         "의료법",
				Articles:    []string{"제27조", "제56조", "제57조", "제57조의2"},
				Description: "의료광고의 기본 원칙과 제한사항",
			},
			{
				Law:         "의료광고법",
				Articles:    []string{"제6조", "제7조", "제8조"},
				Description: "의료광고 심의 및 처벌 규정",
			},
			{
				Law:         "공정거래위원회 고시",
				Articles:    []string{"의료광고 심의기준"},
				Description: "의료광고 심의 세부 기준",
			},
		},
		ComplianceRequirements: []string{
			"의료광고는 객관적 사실에 근거해야 함",
			"과장된 표현 사용 금지",
			"절대적 표현 사용 금지",
			"환자 후기·경험담 광고 활용 금지",
			"전후사진 사용 시 의료적 근거 제시",
			"SNS 등 10만명 이상 플랫폼 광고 시 사전심의 의무",
		},
		RegulatoryUpdates: []domain.RegulatoryUpdate{
			{
				Date:   "2025년 1월",
				Update: "SNS 등 10만명 이상 플랫폼 광고 사전심의 의무화",
				Impact: "high",
			},
			{
				Date:   "2025년 1월",
				Update: "환자 후기·경험담 광고 활용 전면 금지 강화",
				Impact: "high",
			},
			{
				Date:   "2025년 1월",
				Update: "신의료기술 미평가 시술 광고 금지",
				Impact: "medium",
			},
		},
	}

	for _, v := range violations {
		analysis.LegalRisks = append(analysis.LegalRisks, domain.LegalRisk{
			RiskType:         v.Category,
			Severity:         v.Severity,
			LegalBasis:       v.LegalBasis,
			PotentialPenalty: v.Penalty,
			Mitigation:       mitigation(v.Category),
		})
	}

	return analysis
}

// mitigation returns the category-specific risk mitigation advice.
func mitigation(category string) string {
	switch category {
	case "과장·절대적 표현":
		return "객관적 사실에 근거한 표현으로 수정, 절대적 표현 제거"
	case "전후사진":
		return "의료적 근거 제시, 객관적 비교 기준 명시"
	case "환자 후기·경험담":
		return "환자 후기 제거, 객관적 정보만 포함"
	default:
		return "해당 규정에 맞게 수정"
	}
}
