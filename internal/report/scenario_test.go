package report

import (
	"context"
	"testing"

	"github.com/medilint/medilint/internal/domain"
	"github.com/medilint/medilint/internal/rules"
)

// Full pipeline over a realistic advertisement: engine evaluation
// followed by report synthesis.
func TestAnalysisPipeline(t *testing.T) {
	engine, err := rules.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer engine.Close()
	if err := engine.LoadRules(rules.BuiltinRules(), rules.BuiltinKeywords()); err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}

	text := "저희 클리닉은 국내 최초로 완벽한 치료를 보장합니다. 환자분의 생생 후기를 확인하세요."
	findings, err := engine.EvaluateText(context.Background(), text)
	if err != nil {
		t.Fatalf("EvaluateText() error = %v", err)
	}

	p := NewProcessor(nil, 0)
	result := p.Process(context.Background(), &Input{
		Text:       text,
		SourceType: domain.SourceText,
		Findings:   findings,
		Rules:      engine.GetLoadedRules(),
	})

	categories := make(map[string]bool)
	for _, v := range result.Violations {
		categories[v.Category] = true
	}
	if !categories[rules.CategoryExaggeration] {
		t.Error("missing exaggerated-claims violation")
	}
	if !categories[rules.CategoryTestimonial] {
		t.Error("missing testimonial violation")
	}

	if result.OverallScore > 75 {
		t.Errorf("score = %d, want <= 75", result.OverallScore)
	}
	if result.ComplianceStatus != domain.StatusPartiallyCompliant &&
		result.ComplianceStatus != domain.StatusNonCompliant {
		t.Errorf("status = %s", result.ComplianceStatus)
	}

	if len(result.DetailedViolations) == 0 {
		t.Fatal("no detailed violations")
	}
	for _, v := range result.DetailedViolations {
		if len(v.SuggestedFixes) == 0 {
			t.Errorf("violation %s/%s has no suggested fixes", v.Category, v.Keyword)
		}
		if v.ExactLocation == "" {
			t.Errorf("violation %s/%s has no location", v.Category, v.Keyword)
		}
	}

	if len(result.ComplianceChecklist) != 4 {
		t.Errorf("checklist entries = %d, want 4", len(result.ComplianceChecklist))
	}
	if result.TextAnalysis.TotalCharacters == 0 {
		t.Error("text analysis missing")
	}
	if result.ExtractedText != text {
		t.Error("extracted text not echoed")
	}
}
