package report

import (
	"strings"

	"github.com/medilint/medilint/internal/domain"
)

// reviewThreshold is the violation count at which pre-review submission
// is recommended even without an SNS violation.
const reviewThreshold = 3

// buildReviewGuidance decides whether the advertisement needs
// pre-review by a review committee and, when it does, how to submit.
func buildReviewGuidance(violations []domain.Violation, sourceType string) domain.ReviewGuidance {
	guidance := domain.ReviewGuidance{}

	snsViolation := false
	totalViolations := 0
	for _, v := range violations {
		totalViolations += v.Count
		if strings.Contains(v.Category, "SNS") {
			snsViolation = true
		}
	}

	if len(violations) > 0 {
		guidance.Penalties = []domain.PenaltyInfo{
			{Type: "과태료", Amount: "1,000만원 이하", Basis: "의료법 제27조"},
		}
	}

	if !snsViolation && totalViolations < reviewThreshold {
		return guidance
	}

	guidance.RequiresReview = true
	guidance.ReviewType = "사전심의"
	guidance.ReviewFee = "50,000원"
	guidance.Deadline = "심의일 1주일 전"

	if sourceType == domain.SourceSNS || sourceType == domain.SourceURL {
		guidance.Notes = append(guidance.Notes, "SNS 등 10만명 이상 플랫폼 광고는 사전심의 의무")
		guidance.LegalBasis = append(guidance.LegalBasis, "의료광고법 제6조")
	}
	if totalViolations >= reviewThreshold {
		guidance.Notes = append(guidance.Notes, "3개 이상 위반사항 발견으로 사전심의 권장")
	}

	guidance.ReviewProcess = []string{
		"1. 심의 신청서 작성",
		"2. 광고물 첨부",
		"3. 심의비 납부",
		"4. 심의위원회 검토",
		"5. 심의 결과 통보",
	}
	guidance.SubmissionRequirements = []string{
		"심의 신청서 1부",
		"광고물 원본",
		"심의비 납부증",
		"추가 설명서 (필요시)",
	}
	guidance.ContactInfo = map[string]domain.ContactInfo{
		"medical": {
			Name:    "대한의사협회 의료광고심의위원회",
			Phone:   "02-6350-6666",
			Email:   "adreview@kma.org",
			Address: "서울특별시 종로구 창성동 7-1",
		},
		"dental": {
			Name:    "치과의사협회 치과의료광고심의위원회",
			Phone:   "02-6350-6666",
			Email:   "dental@kda.or.kr",
			Address: "서울특별시 종로구 창성동 7-1",
		},
	}

	return guidance
}
