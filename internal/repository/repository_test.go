package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/medilint/medilint/internal/domain"
)

func TestSQLiteRepository(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "medilint-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	cfg := domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	}

	repo, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	tenantID := "tenant-001"

	t.Run("Ping", func(t *testing.T) {
		if err := repo.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("SaveAndGetRule", func(t *testing.T) {
		rule := &domain.ComplianceRule{
			Category:         "과장·절대적 표현",
			Title:            "과장·절대적 표현 금지",
			Description:      "절대적 표현의 사용 금지",
			Severity:         domain.SeverityHigh,
			LegalBasis:       "의료법 제56조 제2항",
			Penalty:          "1년 이하의 징역",
			ImprovementGuide: "표현을 수정하세요.",
			Strict:           true,
			Indicators:       []string{"치료", "진료"},
			Enabled:          true,
		}
		keywords := []string{"최고", "완치", "보장"}

		if err := repo.SaveRule(ctx, tenantID, rule, keywords); err != nil {
			t.Fatalf("SaveRule failed: %v", err)
		}

		retrieved, err := repo.GetRule(ctx, tenantID, rule.Category)
		if err != nil {
			t.Fatalf("GetRule failed: %v", err)
		}
		if retrieved.Title != rule.Title {
			t.Errorf("expected title %s, got %s", rule.Title, retrieved.Title)
		}
		if !retrieved.Strict {
			t.Error("expected strict rule")
		}
		if len(retrieved.Indicators) != 2 {
			t.Errorf("expected 2 indicators, got %d", len(retrieved.Indicators))
		}

		got, err := repo.ListKeywords(ctx, tenantID, rule.Category)
		if err != nil {
			t.Fatalf("ListKeywords failed: %v", err)
		}
		if len(got) != 3 || got[0] != "최고" || got[2] != "보장" {
			t.Errorf("keywords = %v, want ordered %v", got, keywords)
		}
	})

	t.Run("SaveRuleReplacesKeywords", func(t *testing.T) {
		rule := &domain.ComplianceRule{
			Category: "과장·절대적 표현",
			Title:    "과장·절대적 표현 금지",
			Severity: domain.SeverityHigh,
			Enabled:  true,
		}
		if err := repo.SaveRule(ctx, tenantID, rule, []string{"무통증"}); err != nil {
			t.Fatalf("SaveRule failed: %v", err)
		}

		got, err := repo.ListKeywords(ctx, tenantID, rule.Category)
		if err != nil {
			t.Fatalf("ListKeywords failed: %v", err)
		}
		if len(got) != 1 || got[0] != "무통증" {
			t.Errorf("keywords = %v, want [무통증]", got)
		}
	})

	t.Run("ListRulesOrderAndEnabledFilter", func(t *testing.T) {
		second := &domain.ComplianceRule{
			Category: "비교광고",
			Title:    "비교광고 금지",
			Severity: domain.SeverityMedium,
			Enabled:  true,
		}
		disabled := &domain.ComplianceRule{
			Category: "전후사진",
			Title:    "전후사진 제한",
			Severity: domain.SeverityLow,
			Enabled:  false,
		}
		if err := repo.SaveRule(ctx, tenantID, second, nil); err != nil {
			t.Fatalf("SaveRule failed: %v", err)
		}
		if err := repo.SaveRule(ctx, tenantID, disabled, nil); err != nil {
			t.Fatalf("SaveRule failed: %v", err)
		}

		ruleSet, err := repo.ListRules(ctx, tenantID)
		if err != nil {
			t.Fatalf("ListRules failed: %v", err)
		}
		if len(ruleSet) != 2 {
			t.Fatalf("expected 2 enabled rules, got %d", len(ruleSet))
		}
		if ruleSet[0].Category != "과장·절대적 표현" || ruleSet[1].Category != "비교광고" {
			t.Errorf("rules out of insertion order: %s, %s", ruleSet[0].Category, ruleSet[1].Category)
		}
	})

	t.Run("SaveAndGetAnalysis", func(t *testing.T) {
		rec := &domain.AnalysisRecord{
			ID:         "analysis-001",
			TenantID:   tenantID,
			SourceType: domain.SourceText,
			Status:     domain.StatusNonCompliant,
			Score:      45,
			Result: &domain.AnalysisResult{
				OverallScore:     45,
				ComplianceStatus: domain.StatusNonCompliant,
				RiskLevel:        domain.RiskHigh,
				ExtractedText:    "최고의 병원",
			},
			CreatedAt: time.Now().UTC(),
		}

		if err := repo.SaveAnalysis(ctx, tenantID, rec); err != nil {
			t.Fatalf("SaveAnalysis failed: %v", err)
		}

		retrieved, err := repo.GetAnalysis(ctx, tenantID, rec.ID)
		if err != nil {
			t.Fatalf("GetAnalysis failed: %v", err)
		}
		if retrieved.Score != 45 {
			t.Errorf("expected score 45, got %d", retrieved.Score)
		}
		if retrieved.Result == nil || retrieved.Result.ComplianceStatus != domain.StatusNonCompliant {
			t.Error("result payload not round-tripped")
		}
	})

	t.Run("CountAnalysesSince", func(t *testing.T) {
		count, err := repo.CountAnalysesSince(ctx, tenantID, time.Now().Add(-time.Hour))
		if err != nil {
			t.Fatalf("CountAnalysesSince failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 analysis, got %d", count)
		}

		count, err = repo.CountAnalysesSince(ctx, tenantID, time.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("CountAnalysesSince failed: %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 analyses in the future window, got %d", count)
		}
	})

	t.Run("TenantIsolation", func(t *testing.T) {
		if _, err := repo.GetRule(ctx, "tenant-002", "과장·절대적 표현"); err != ErrNotFound {
			t.Errorf("expected ErrNotFound for different tenant, got: %v", err)
		}
		if _, err := repo.GetAnalysis(ctx, "tenant-002", "analysis-001"); err != ErrNotFound {
			t.Errorf("expected ErrNotFound for different tenant, got: %v", err)
		}
	})

	t.Run("RequiresTenantID", func(t *testing.T) {
		if err := repo.SaveRule(ctx, "", &domain.ComplianceRule{Category: "c"}, nil); err == nil {
			t.Error("expected error for empty tenantID")
		}
		if _, err := repo.ListRules(ctx, ""); err == nil {
			t.Error("expected error for empty tenantID")
		}
		if _, err := repo.GetAnalysis(ctx, "", "analysis-001"); err == nil {
			t.Error("expected error for empty tenantID")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if _, err := repo.GetAnalysis(ctx, tenantID, "missing"); err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("CorruptIndicatorsColumn", func(t *testing.T) {
		sqlRepo := repo.(*SQLRepository)
		_, err := sqlRepo.db.ExecContext(ctx,
			"UPDATE compliance_rules SET indicators = '{not json' WHERE tenant_id = ? AND category = ?",
			tenantID, "비교광고")
		if err != nil {
			t.Fatalf("failed to corrupt row: %v", err)
		}

		// Must surface the decode error instead of loading the rule
		// with no indicators.
		if _, err := repo.GetRule(ctx, tenantID, "비교광고"); err == nil {
			t.Error("expected error for corrupt indicators column")
		}
		if _, err := repo.ListRules(ctx, tenantID); err == nil {
			t.Error("expected ListRules to surface the corrupt row")
		}
	})
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := New(domain.RepositoryConfig{Driver: "oracle"})
	if err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	pg := &SQLRepository{driver: "postgres"}
	got := pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?")
	want := "SELECT * FROM t WHERE a = $1 AND b = $2"
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}

	lite := &SQLRepository{driver: "sqlite"}
	query := "SELECT * FROM t WHERE a = ?"
	if lite.rebind(query) != query {
		t.Errorf("sqlite rebind should be a no-op")
	}
}
