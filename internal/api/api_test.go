package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/medilint/medilint/internal/cache"
	"github.com/medilint/medilint/internal/domain"
	"github.com/medilint/medilint/internal/report"
	"github.com/medilint/medilint/internal/repository"
	"github.com/medilint/medilint/internal/rules"
	"github.com/medilint/medilint/internal/usage"
)

// createTestServer creates a server with the builtin rule set and no
// backing services.
func createTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := domain.ServerConfig{
		Host:         "localhost",
		Port:         8080,
		ReadTimeout:  30,
		WriteTimeout: 30,
	}

	engine, err := rules.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if err := engine.LoadRules(rules.BuiltinRules(), rules.BuiltinKeywords()); err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}

	processor := report.NewProcessor(nil, 0)

	return NewServer(cfg, nil, nil, nil, engine, processor, nil, "test-v1")
}

// createFullTestServer backs the server with a temp sqlite repository,
// an LRU cache, and usage tracking.
func createFullTestServer(t *testing.T) *Server {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "api-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	repo, err := repository.New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	lruCache := cache.NewLRUCache(100)
	t.Cleanup(func() { lruCache.Close() })

	engine, err := rules.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if err := engine.LoadRules(rules.BuiltinRules(), rules.BuiltinKeywords()); err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}

	processor := report.NewProcessor(nil, 0)
	usageSvc := usage.NewService(repo, lruCache)

	cfg := domain.ServerConfig{Host: "localhost", Port: 8080, ReadTimeout: 30, WriteTimeout: 30}
	return NewServer(cfg, repo, lruCache, nil, engine, processor, usageSvc, "test-v1")
}

func postAnalyze(t *testing.T, server *Server, tenantID string, body AnalyzeRequest) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	if tenantID != "" {
		req.Header.Set("X-Tenant-ID", tenantID)
	}
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)
	return rr
}

func TestAnalyzeEndpoint(t *testing.T) {
	server := createTestServer(t)

	t.Run("CleanText", func(t *testing.T) {
		rr := postAnalyze(t, server, "tenant-001", AnalyzeRequest{
			Text: "진료 시간은 평일 오전 9시부터 오후 6시까지입니다.",
		})

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp AnalyzeResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}

		if resp.AnalysisID == "" {
			t.Error("expected analysisId in response")
		}
		if resp.Score != 100 || resp.Status != domain.StatusCompliant {
			t.Errorf("clean text scored %d/%s", resp.Score, resp.Status)
		}
		if resp.Metadata.Version != "test-v1" {
			t.Errorf("expected version test-v1, got %s", resp.Metadata.Version)
		}
		if resp.Metadata.TraceID == "" {
			t.Error("expected traceId in metadata")
		}
	})

	t.Run("ViolatingText", func(t *testing.T) {
		rr := postAnalyze(t, server, "tenant-001", AnalyzeRequest{
			Text: "저희 클리닉은 국내 최초로 완벽한 치료를 보장합니다. 환자분의 생생 후기를 확인하세요.",
		})

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp AnalyzeResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}

		if resp.Score > 75 {
			t.Errorf("expected score <= 75, got %d", resp.Score)
		}
		if resp.Result == nil {
			t.Fatal("expected full result in response")
		}
		if len(resp.Result.Violations) < 2 {
			t.Errorf("expected at least 2 violation categories, got %d", len(resp.Result.Violations))
		}
	})

	t.Run("EmptyText", func(t *testing.T) {
		rr := postAnalyze(t, server, "tenant-001", AnalyzeRequest{Text: "   "})

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}

		var resp AnalyzeResponse
		json.Unmarshal(rr.Body.Bytes(), &resp)

		if resp.Status != domain.StatusNotAnalyzable {
			t.Errorf("expected status 분석 불가, got %s", resp.Status)
		}
		if resp.Score != 0 {
			t.Errorf("expected score 0, got %d", resp.Score)
		}
	})

	t.Run("MissingTenantID", func(t *testing.T) {
		rr := postAnalyze(t, server, "", AnalyzeRequest{Text: "텍스트"})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString("not-json"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("InvalidSourceType", func(t *testing.T) {
		rr := postAnalyze(t, server, "tenant-001", AnalyzeRequest{
			Text:       "텍스트",
			SourceType: "carrier-pigeon",
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("SNSSourceGetsPlatformGuidance", func(t *testing.T) {
		rr := postAnalyze(t, server, "tenant-001", AnalyzeRequest{
			Text:       "최고의 병원에서 완벽한 치료로 완치를 보장합니다.",
			SourceType: domain.SourceSNS,
		})

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}

		var resp AnalyzeResponse
		json.Unmarshal(rr.Body.Bytes(), &resp)

		if resp.Result == nil || len(resp.Result.ReviewGuidance.Notes) == 0 {
			t.Error("expected platform notes for sns source")
		}
	})

	t.Run("ResponseHeaders", func(t *testing.T) {
		rr := postAnalyze(t, server, "tenant-001", AnalyzeRequest{Text: "텍스트"})

		if rr.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header in response")
		}
		if rr.Header().Get("X-Trace-ID") == "" {
			t.Error("expected X-Trace-ID header in response")
		}
		if rr.Header().Get("Content-Type") != "application/json" {
			t.Error("expected Content-Type: application/json")
		}
	})
}

func TestAnalyzeCaching(t *testing.T) {
	server := createFullTestServer(t)

	text := "저희 병원은 최고의 시설을 갖추고 있습니다."

	rr := postAnalyze(t, server, "tenant-001", AnalyzeRequest{Text: text})
	if rr.Code != http.StatusOK {
		t.Fatalf("first request failed: %d", rr.Code)
	}
	var first AnalyzeResponse
	json.Unmarshal(rr.Body.Bytes(), &first)
	if first.Metadata.Cached {
		t.Error("first request should not be cached")
	}

	rr = postAnalyze(t, server, "tenant-001", AnalyzeRequest{Text: text})
	var second AnalyzeResponse
	json.Unmarshal(rr.Body.Bytes(), &second)
	if !second.Metadata.Cached {
		t.Error("second identical request should hit the cache")
	}
	if second.Score != first.Score || second.Status != first.Status {
		t.Error("cached result differs from original")
	}
	if second.AnalysisID == first.AnalysisID {
		t.Error("each request should get its own analysis ID")
	}

	// Different tenant must not see the cached entry
	rr = postAnalyze(t, server, "tenant-other", AnalyzeRequest{Text: text})
	var other AnalyzeResponse
	json.Unmarshal(rr.Body.Bytes(), &other)
	if other.Metadata.Cached {
		t.Error("cache must not cross tenant boundaries")
	}
}

func TestGetAnalysisEndpoint(t *testing.T) {
	server := createFullTestServer(t)

	rr := postAnalyze(t, server, "tenant-001", AnalyzeRequest{
		Text: "완치를 보장하는 치료법입니다.",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("analyze failed: %d", rr.Code)
	}
	var resp AnalyzeResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)

	t.Run("Found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/analyses/"+resp.AnalysisID, nil)
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var rec domain.AnalysisRecord
		if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
			t.Fatalf("failed to parse record: %v", err)
		}
		if rec.ID != resp.AnalysisID {
			t.Errorf("record ID = %s", rec.ID)
		}
		if rec.Result == nil {
			t.Error("record has no result")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/analyses/no-such-id", nil)
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rr.Code)
		}
	})

	t.Run("TenantIsolation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/analyses/"+resp.AnalysisID, nil)
		req.Header.Set("X-Tenant-ID", "tenant-other")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected status 404 for other tenant, got %d", rr.Code)
		}
	})
}

func TestRuleEndpoints(t *testing.T) {
	server := createFullTestServer(t)

	t.Run("ListRules", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rules", nil)
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}

		var resp struct {
			Rules []*domain.ComplianceRule `json:"rules"`
			Count int                      `json:"count"`
		}
		json.Unmarshal(rr.Body.Bytes(), &resp)

		if resp.Count != 4 {
			t.Errorf("expected 4 builtin rules, got %d", resp.Count)
		}
	})

	t.Run("GetRule", func(t *testing.T) {
		target := "/rules/" + url.PathEscape(rules.CategoryExaggeration)
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp struct {
			Rule     *domain.ComplianceRule `json:"rule"`
			Keywords []string               `json:"keywords"`
		}
		json.Unmarshal(rr.Body.Bytes(), &resp)

		if resp.Rule == nil || resp.Rule.Category != rules.CategoryExaggeration {
			t.Fatalf("unexpected rule: %+v", resp.Rule)
		}
		if len(resp.Keywords) == 0 {
			t.Error("expected keywords in response")
		}
	})

	t.Run("GetRuleNotFound", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rules/no-such-category", nil)
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rr.Code)
		}
	})

	t.Run("CreateAndReload", func(t *testing.T) {
		createReq := CreateRuleRequest{
			Category:   "이벤트·할인 광고",
			Title:      "가격 할인 이벤트 광고 제한",
			Severity:   domain.SeverityLow,
			LegalBasis: "의료법 제56조",
			Keywords:   []string{"특가", "할인 이벤트"},
			Enabled:    true,
		}

		body, _ := json.Marshal(createReq)
		req := httptest.NewRequest(http.MethodPost, "/rules", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
		}

		// Reload picks up the stored rule set
		req = httptest.NewRequest(http.MethodPost, "/rules/reload", nil)
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr = httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var reloadResp struct {
			Count int `json:"count"`
		}
		json.Unmarshal(rr.Body.Bytes(), &reloadResp)
		if reloadResp.Count < 1 {
			t.Errorf("expected at least one reloaded rule, got %d", reloadResp.Count)
		}
	})

	t.Run("CreateRuleValidation", func(t *testing.T) {
		cases := []CreateRuleRequest{
			{Title: "제목", Severity: domain.SeverityHigh, Keywords: []string{"금지어"}},
			{Category: "분류", Severity: domain.SeverityHigh, Keywords: []string{"금지어"}},
			{Category: "분류", Title: "제목", Severity: "extreme", Keywords: []string{"금지어"}},
			{Category: "분류", Title: "제목", Severity: domain.SeverityHigh},
		}

		for i, c := range cases {
			body, _ := json.Marshal(c)
			req := httptest.NewRequest(http.MethodPost, "/rules", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Tenant-ID", "tenant-001")

			rr := httptest.NewRecorder()
			server.Router().ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("case %d: expected status 400, got %d", i, rr.Code)
			}
		}
	})

	t.Run("CreateRuleBadGateExpression", func(t *testing.T) {
		createReq := CreateRuleRequest{
			Category: "게이트 규칙",
			Title:    "게이트 검증",
			Severity: domain.SeverityMedium,
			GateExpr: "keyword ==",
			Keywords: []string{"키워드"},
			Enabled:  true,
		}

		body, _ := json.Marshal(createReq)
		req := httptest.NewRequest(http.MethodPost, "/rules", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400 for bad gate expression, got %d", rr.Code)
		}
	})
}

func TestStatsEndpoint(t *testing.T) {
	server := createFullTestServer(t)

	postAnalyze(t, server, "tenant-001", AnalyzeRequest{Text: "병원 소개 텍스트입니다."})
	postAnalyze(t, server, "tenant-001", AnalyzeRequest{Text: "진료 안내 텍스트입니다."})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("X-Tenant-ID", "tenant-001")

	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Usage       *usage.Stats `json:"usage"`
		RulesLoaded int          `json:"rulesLoaded"`
	}
	json.Unmarshal(rr.Body.Bytes(), &resp)

	if resp.Usage == nil || resp.Usage.Last24Hours != 2 {
		t.Errorf("usage = %+v, want 2 analyses", resp.Usage)
	}
	if resp.RulesLoaded != 4 {
		t.Errorf("rulesLoaded = %d", resp.RulesLoaded)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := createTestServer(t)

	t.Run("HealthCheck", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rr.Code)
		}

		var resp map[string]string
		json.Unmarshal(rr.Body.Bytes(), &resp)

		if resp["status"] != "healthy" {
			t.Errorf("expected status 'healthy', got '%s'", resp["status"])
		}
		if resp["version"] != "test-v1" {
			t.Errorf("expected version 'test-v1', got '%s'", resp["version"])
		}
	})

	t.Run("ReadyCheck", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rr.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("TenantMiddlewareExtractsID", func(t *testing.T) {
		var capturedTenantID string

		handler := TenantMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			capturedTenantID = GetTenantID(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Tenant-ID", "my-tenant-123")

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if capturedTenantID != "my-tenant-123" {
			t.Errorf("expected tenant ID 'my-tenant-123', got '%s'", capturedTenantID)
		}
	})

	t.Run("TracingMiddlewareSetsRequestID", func(t *testing.T) {
		var capturedRequestID string

		handler := TracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			capturedRequestID = GetRequestID(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if capturedRequestID == "" {
			t.Error("expected request ID to be set")
		}

		if rr.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID response header")
		}
	})

	t.Run("RecoverMiddlewareHandlesPanic", func(t *testing.T) {
		handler := RecoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("test panic")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rr.Code)
		}
	})
}
