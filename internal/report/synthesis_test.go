package report

import (
	"strings"
	"testing"

	"github.com/medilint/medilint/internal/domain"
)

func testRules() []*domain.ComplianceRule {
	return []*domain.ComplianceRule{
		{Category: "과장·절대적 표현", Title: "과장 금지", Severity: domain.SeverityHigh, Enabled: true},
		{Category: "비교광고", Title: "비교 금지", Severity: domain.SeverityMedium, Enabled: true},
		{Category: "환자 후기·경험담", Title: "후기 금지", Severity: domain.SeverityHigh, Enabled: true},
		{Category: "SNS 미심의 광고", Title: "SNS 금지", Severity: domain.SeverityMedium, Enabled: true},
	}
}

func TestBuildChecklist(t *testing.T) {
	detailed := []domain.DetailedViolation{
		{Category: "과장·절대적 표현", Keyword: "최고", Position: 0},
		{Category: "과장·절대적 표현", Keyword: "보장", Position: 10},
	}

	checklist := buildChecklist(testRules(), detailed)
	if len(checklist) != 4 {
		t.Fatalf("got %d entries, want one per rule", len(checklist))
	}

	violated := checklist[0]
	if violated.Status != "fail" {
		t.Errorf("status = %s, want fail", violated.Status)
	}
	if violated.ViolationCount != 2 {
		t.Errorf("violation count = %d, want 2", violated.ViolationCount)
	}
	// 100 - 30*2 - 5*2
	if violated.ComplianceScore != 30 {
		t.Errorf("score = %d, want 30", violated.ComplianceScore)
	}
	if len(violated.CheckItems) == 0 {
		t.Error("violated entry has no check items")
	}

	for _, entry := range checklist[1:] {
		if entry.Status != "pass" {
			t.Errorf("%s: status = %s, want pass", entry.Category, entry.Status)
		}
		if entry.ComplianceScore != 100 {
			t.Errorf("%s: score = %d, want 100", entry.Category, entry.ComplianceScore)
		}
	}
}

func TestRuleScoreFloor(t *testing.T) {
	if got := ruleScore(domain.SeverityHigh, 10); got != 0 {
		t.Errorf("score = %d, want 0", got)
	}
	if got := ruleScore(domain.SeverityLow, 1); got != 85 {
		t.Errorf("score = %d, want 85", got)
	}
}

func TestBuildReviewGuidance(t *testing.T) {
	sns := domain.Violation{Category: "SNS 미심의 광고", Title: "SNS 금지", Severity: domain.SeverityMedium, Count: 1}
	exaggeration := domain.Violation{Category: "과장·절대적 표현", Title: "과장 금지", Severity: domain.SeverityHigh, Count: 1}

	t.Run("sns violation requires review", func(t *testing.T) {
		g := buildReviewGuidance([]domain.Violation{sns}, domain.SourceSNS)
		if !g.RequiresReview {
			t.Fatal("expected review to be required")
		}
		if g.ReviewType != "사전심의" || g.ReviewFee != "50,000원" {
			t.Errorf("type/fee = %s/%s", g.ReviewType, g.ReviewFee)
		}
		if len(g.ReviewProcess) == 0 || len(g.SubmissionRequirements) == 0 {
			t.Error("missing process or submission requirements")
		}
		if _, ok := g.ContactInfo["medical"]; !ok {
			t.Error("missing medical contact info")
		}
		found := false
		for _, note := range g.Notes {
			if strings.Contains(note, "사전심의 의무") {
				found = true
			}
		}
		if !found {
			t.Error("missing platform note for sns source")
		}
	})

	t.Run("three violations require review", func(t *testing.T) {
		v := exaggeration
		v.Count = 3
		g := buildReviewGuidance([]domain.Violation{v}, domain.SourceText)
		if !g.RequiresReview {
			t.Error("expected review to be required at three violations")
		}
	})

	t.Run("single non-sns violation does not require review", func(t *testing.T) {
		g := buildReviewGuidance([]domain.Violation{exaggeration}, domain.SourceText)
		if g.RequiresReview {
			t.Error("expected no review requirement")
		}
		if len(g.Penalties) == 0 {
			t.Error("expected penalty info with violations present")
		}
	})

	t.Run("clean text has no penalties", func(t *testing.T) {
		g := buildReviewGuidance(nil, domain.SourceText)
		if g.RequiresReview || len(g.Penalties) != 0 {
			t.Error("expected empty guidance for clean text")
		}
	})
}

func TestBuildLegalAnalysis(t *testing.T) {
	violations := []domain.Violation{
		{Category: "과장·절대적 표현", Severity: domain.SeverityHigh, LegalBasis: "의료법 제56조", Penalty: "벌금"},
		{Category: "기타", Severity: domain.SeverityLow},
	}

	analysis := buildLegalAnalysis(violations)
	if len(analysis.ApplicableLaws) != 3 {
		t.Errorf("got %d laws, want 3", len(analysis.ApplicableLaws))
	}
	if len(analysis.LegalRisks) != 2 {
		t.Fatalf("got %d risks, want 2", len(analysis.LegalRisks))
	}
	if !strings.Contains(analysis.LegalRisks[0].Mitigation, "객관적 사실") {
		t.Errorf("mitigation = %s", analysis.LegalRisks[0].Mitigation)
	}
	if analysis.LegalRisks[1].Mitigation != "해당 규정에 맞게 수정" {
		t.Errorf("default mitigation = %s", analysis.LegalRisks[1].Mitigation)
	}
	if len(analysis.ComplianceRequirements) == 0 || len(analysis.RegulatoryUpdates) == 0 {
		t.Error("missing static requirements or updates")
	}
}

func TestAnalyzeText(t *testing.T) {
	t.Run("quality buckets", func(t *testing.T) {
		tests := []struct {
			text string
			want string
		}{
			{"", "empty"},
			{strings.Repeat("가", 50), "very_short"},
			{strings.Repeat("가", 200), "short"},
			{strings.Repeat("가", 1000), "medium"},
			{strings.Repeat("가", 3000), "long"},
		}
		for _, tt := range tests {
			got := analyzeText(tt.text)
			if got.TextQuality != tt.want {
				t.Errorf("quality(%d runes) = %s, want %s", len([]rune(tt.text)), got.TextQuality, tt.want)
			}
		}
	})

	t.Run("counts", func(t *testing.T) {
		got := analyzeText("첫 문장입니다. 둘째 문장입니다! 질문인가요?")
		if got.TotalSentences != 3 {
			t.Errorf("sentences = %d, want 3", got.TotalSentences)
		}
		if got.TotalWords != 5 {
			t.Errorf("words = %d, want 5", got.TotalWords)
		}
		if got.TotalCharacters != 25 {
			t.Errorf("characters = %d, want 25", got.TotalCharacters)
		}
	})

	t.Run("readability bounds", func(t *testing.T) {
		for _, text := range []string{"", "짧다.", strings.Repeat("아주 긴 단어들로 이루어진 문장 ", 100) + "."} {
			got := analyzeText(text)
			if got.ReadabilityScore < 0 || got.ReadabilityScore > 100 {
				t.Errorf("readability(%q...) = %v out of range", text[:min(len(text), 10)], got.ReadabilityScore)
			}
		}
	})
}

func TestBuildSummaryReport(t *testing.T) {
	violations := []domain.Violation{
		{Category: "c1", Severity: domain.SeverityHigh},
		{Category: "c2", Severity: domain.SeverityHigh},
		{Category: "c3", Severity: domain.SeverityMedium},
	}

	report := buildSummaryReport(violations, 35)
	es := report.ExecutiveSummary
	if es.TotalViolations != 3 || es.HighSeverity != 2 || es.MediumSeverity != 1 || es.LowSeverity != 0 {
		t.Errorf("tallies = %+v", es)
	}
	if es.RiskAssessment != domain.RiskHigh {
		t.Errorf("risk = %s, want high", es.RiskAssessment)
	}
	if len(report.KeyFindings) != 3 {
		t.Errorf("got %d key findings, want 3", len(report.KeyFindings))
	}
	if report.ImmediateActions[0] == "현재 상태 유지" {
		t.Error("expected corrective actions with violations present")
	}

	clean := buildSummaryReport(nil, 100)
	if clean.ImmediateActions[0] != "현재 상태 유지" {
		t.Errorf("clean actions = %v", clean.ImmediateActions)
	}
	if clean.ExecutiveSummary.RiskAssessment != domain.RiskLow {
		t.Errorf("clean risk = %s", clean.ExecutiveSummary.RiskAssessment)
	}
}
