package rules

import "github.com/medilint/medilint/internal/domain"

// Builtin rule set. This is the canonical seed data: it is served
// whenever the repository is unavailable or a rule's keywords cannot
// be loaded, so analysis never starts with an empty rule table.

// Builtin category keys.
const (
	CategoryExaggeration = "과장·절대적 표현"
	CategoryComparative  = "비교광고"
	CategoryTestimonial  = "환자 후기·경험담"
	CategorySNSReview    = "SNS 미심의 광고"
)

// BuiltinRules returns the default compliance rules.
func BuiltinRules() []*domain.ComplianceRule {
	return []*domain.ComplianceRule{
		{
			Category:         CategoryExaggeration,
			Title:            "과장·절대적 표현 금지",
			Description:      "치료 효과를 보장하거나 과장하는 절대적 표현의 사용 금지",
			Severity:         domain.SeverityHigh,
			LegalBasis:       "의료법 제56조 제2항",
			Penalty:          "1년 이하의 징역 또는 1천만원 이하의 벌금",
			ImprovementGuide: "과장된 표현을 객관적 사실에 근거한 표현으로 수정하세요.",
			Strict:           true,
			Indicators:       []string{"치료", "진료", "수술", "시술", "의료", "병원", "의사", "치료법"},
			Enabled:          true,
		},
		{
			Category:         CategoryComparative,
			Title:            "비교광고 금지",
			Description:      "다른 의료기관과의 객관적 근거 없는 비교 금지",
			Severity:         domain.SeverityMedium,
			LegalBasis:       "의료법 제56조 제2항 제3호",
			Penalty:          "업무정지 또는 과태료",
			ImprovementGuide: "비교 표현을 제거하거나 객관적 근거를 제시하세요.",
			Enabled:          true,
		},
		{
			Category:         CategoryTestimonial,
			Title:            "환자 후기·경험담 광고 금지",
			Description:      "환자의 치료 경험담을 광고에 활용하는 행위 금지",
			Severity:         domain.SeverityHigh,
			LegalBasis:       "의료법 제56조 제2항 제2호",
			Penalty:          "1년 이하의 징역 또는 1천만원 이하의 벌금",
			ImprovementGuide: "환자 후기와 경험담을 제거하고 객관적 정보만 포함하세요.",
			Strict:           true,
			Indicators:       []string{"환자", "치료받은", "수술받은", "경험", "후기", "만족"},
			Enabled:          true,
		},
		{
			Category:         CategorySNSReview,
			Title:            "SNS 미심의 광고 금지",
			Description:      "10만명 이상 플랫폼에서 사전심의 없는 의료광고 게시 금지",
			Severity:         domain.SeverityMedium,
			LegalBasis:       "의료법 제57조",
			Penalty:          "1천만원 이하의 과태료",
			ImprovementGuide: "게시 전 의료광고심의위원회의 사전심의를 받으세요.",
			Indicators:       []string{"광고", "홍보", "선전", "마케팅", "캠페인"},
			Enabled:          true,
		},
	}
}

// BuiltinKeywords returns the default keyword list per category.
// Keywords may overlap in substring (e.g. 최고 and 최고의); the matcher
// treats each independently.
func BuiltinKeywords() map[string][]string {
	return map[string][]string{
		CategoryExaggeration: {
			"최고", "최고의", "완벽", "완전", "절대", "보장",
			"무통증", "완벽하게", "전혀", "100%", "완치",
		},
		CategoryComparative: {
			"비교", "더 나은", "우수한", "다른 곳은", "다른 병원",
		},
		CategoryTestimonial: {
			"후기", "경험담", "환자분", "솔직한 후기", "생생 후기", "실제로",
		},
		CategorySNSReview: {
			"인스타그램", "페이스북", "유튜브", "네이버", "블로그",
		},
	}
}
