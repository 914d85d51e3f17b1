package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medilint/medilint/internal/domain"
	"github.com/medilint/medilint/internal/report"
	"github.com/medilint/medilint/internal/rules"
	"github.com/medilint/medilint/internal/usage"
)

// GlobalTenantID is used for rules that apply to all tenants.
const GlobalTenantID = "*"

// analysisCacheTTL bounds how long identical inputs are served from
// cache. Results stay valid until the rule set changes; reload clears
// nothing, so the TTL is kept short.
const analysisCacheTTL = 5 * time.Minute

// Handler holds dependencies for API handlers.
type Handler struct {
	repo      domain.Repository
	cache     domain.Cache
	bus       domain.EventBus
	engine    *rules.Engine
	processor *report.Processor
	usage     *usage.Service
	version   string
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, bus domain.EventBus, engine *rules.Engine, processor *report.Processor, usageSvc *usage.Service, version string) *Handler {
	return &Handler{
		repo:      repo,
		cache:     cache,
		bus:       bus,
		engine:    engine,
		processor: processor,
		usage:     usageSvc,
		version:   version,
	}
}

// AnalyzeRequest is the request body for POST /analyze.
type AnalyzeRequest struct {
	Text       string `json:"text"`
	SourceType string `json:"sourceType,omitempty"`
}

// AnalyzeResponse is the response for POST /analyze.
type AnalyzeResponse struct {
	AnalysisID string                 `json:"analysisId"`
	Status     string                 `json:"status"`
	Score      int                    `json:"score"`
	RiskLevel  string                 `json:"riskLevel"`
	Result     *domain.AnalysisResult `json:"result"`
	Metadata   struct {
		TraceID string `json:"traceId"`
		TotalMs int64  `json:"totalMs"`
		Version string `json:"version"`
		Cached  bool   `json:"cached"`
	} `json:"metadata"`
}

var validSourceTypes = map[string]bool{
	domain.SourceText: true,
	domain.SourceFile: true,
	domain.SourceURL:  true,
	domain.SourceSNS:  true,
}

// analysisDigest keys the result cache. Source type participates
// because it changes the review guidance in the result.
func analysisDigest(sourceType, text string) string {
	sum := sha256.Sum256([]byte(sourceType + "\n" + text))
	return hex.EncodeToString(sum[:])
}

// Analyze handles POST /analyze requests.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	traceID := GetTraceID(ctx)

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.SourceType == "" {
		req.SourceType = domain.SourceText
	}
	if !validSourceTypes[req.SourceType] {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "sourceType must be one of: text, file, url, sns",
		})
		return
	}

	var result *domain.AnalysisResult
	cached := false

	if strings.TrimSpace(req.Text) == "" {
		result = h.processor.EmptyInput(req.Text)
	} else {
		digest := analysisDigest(req.SourceType, req.Text)

		if h.cache != nil {
			if hit, err := h.cache.GetAnalysis(ctx, tenantID, digest); err == nil && hit != nil {
				result = hit
				cached = true
			}
		}

		if result == nil {
			findings, err := h.engine.EvaluateText(ctx, req.Text)
			if err != nil {
				if errors.Is(err, domain.ErrTextTooLong) {
					writeJSON(w, http.StatusBadRequest, map[string]string{
						"error": "text exceeds maximum analyzable length",
					})
					return
				}
				slog.Error("rule evaluation failed", "error", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error": "rule evaluation failed",
				})
				return
			}

			result = h.processor.Process(ctx, &report.Input{
				Text:       req.Text,
				SourceType: req.SourceType,
				Findings:   findings,
				Rules:      h.engine.GetLoadedRules(),
			})

			if h.cache != nil {
				if err := h.cache.SetAnalysis(ctx, tenantID, digest, result, analysisCacheTTL); err != nil {
					slog.Warn("failed to cache analysis", "error", err)
				}
			}
		}
	}

	analysisID := uuid.New().String()
	rec := &domain.AnalysisRecord{
		ID:         analysisID,
		TenantID:   tenantID,
		SourceType: req.SourceType,
		Status:     result.ComplianceStatus,
		Score:      result.OverallScore,
		Result:     result,
		CreatedAt:  time.Now().UTC(),
	}

	if h.repo != nil {
		if err := h.repo.SaveAnalysis(ctx, tenantID, rec); err != nil {
			slog.Error("failed to save analysis", "id", analysisID, "error", err)
		}
	}

	if h.usage != nil {
		if err := h.usage.Record(ctx, tenantID); err != nil {
			slog.Warn("failed to record usage", "error", err)
		}
	}

	if h.bus != nil {
		recPayload, _ := json.Marshal(rec)
		if err := h.bus.Publish(ctx, tenantID, domain.TopicAnalysisCompleted, recPayload); err != nil {
			slog.Warn("failed to publish analysis result", "error", err)
		}
		if result.RiskLevel == domain.RiskHigh {
			if err := h.bus.Publish(ctx, tenantID, domain.TopicAnalysisAlert, recPayload); err != nil {
				slog.Warn("failed to publish alert", "error", err)
			}
		}
	}

	resp := AnalyzeResponse{
		AnalysisID: analysisID,
		Status:     result.ComplianceStatus,
		Score:      result.OverallScore,
		RiskLevel:  result.RiskLevel,
		Result:     result,
	}
	resp.Metadata.TraceID = traceID
	resp.Metadata.TotalMs = time.Since(start).Milliseconds()
	resp.Metadata.Version = h.version
	resp.Metadata.Cached = cached

	writeJSON(w, http.StatusOK, resp)
}

// GetAnalysis retrieves a stored analysis by ID.
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	analysisID := chi.URLParam(r, "id")

	if analysisID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "analysis id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	rec, err := h.repo.GetAnalysis(ctx, tenantID, analysisID)
	if err != nil {
		slog.Error("failed to get analysis", "id", analysisID, "error", err)
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "analysis not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	if h.bus != nil {
		if err := h.bus.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic. The
// engine always carries at least the builtin rule set once loaded.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.engine.RulesCount() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"ready": "false",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// ListRules returns all loaded rules from the engine.
// Rules are loaded from the database at startup and can be reloaded via POST /rules/reload.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	loadedRules := h.engine.GetLoadedRules()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules": loadedRules,
		"count": len(loadedRules),
	})
}

// GetRule retrieves a rule by category from the loaded engine rules,
// including its keyword list when the repository is available.
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := chi.URLParam(r, "category")
	if dec, err := url.PathUnescape(category); err == nil {
		category = dec
	}

	if category == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "rule category is required",
		})
		return
	}

	for _, rule := range h.engine.GetLoadedRules() {
		if rule.Category != category {
			continue
		}

		var keywords []string
		if h.repo != nil {
			kws, err := h.repo.ListKeywords(ctx, GlobalTenantID, category)
			if err != nil {
				slog.Warn("failed to list keywords", "category", category, "error", err)
			} else {
				keywords = kws
			}
		}
		if keywords == nil {
			keywords = rules.BuiltinKeywords()[category]
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"rule":     rule,
			"keywords": keywords,
		})
		return
	}

	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "rule not found",
	})
}

// CreateRuleRequest is the request body for creating a rule.
type CreateRuleRequest struct {
	Category         string   `json:"category"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Severity         string   `json:"severity"`
	LegalBasis       string   `json:"legalBasis,omitempty"`
	Penalty          string   `json:"penalty,omitempty"`
	ImprovementGuide string   `json:"improvementGuide,omitempty"`
	Strict           bool     `json:"strict"`
	Indicators       []string `json:"indicators,omitempty"`
	GateExpr         string   `json:"gateExpr,omitempty"`
	Keywords         []string `json:"keywords"`
	Enabled          bool     `json:"enabled"`
}

// CreateRule creates a new rule and saves it to the database.
// Rules are saved globally (tenant_id = "*") so they apply to all tenants.
// After saving, call POST /rules/reload to hot-reload into the engine.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.Category == "" || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "category and title are required",
		})
		return
	}
	if domain.SeverityRank(req.Severity) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "severity must be one of: high, medium, low",
		})
		return
	}
	if len(req.Keywords) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "at least one keyword is required",
		})
		return
	}

	rule := &domain.ComplianceRule{
		Category:         req.Category,
		Title:            req.Title,
		Description:      req.Description,
		Severity:         req.Severity,
		LegalBasis:       req.LegalBasis,
		Penalty:          req.Penalty,
		ImprovementGuide: req.ImprovementGuide,
		Strict:           req.Strict,
		Indicators:       req.Indicators,
		GateExpr:         req.GateExpr,
		Enabled:          req.Enabled,
	}

	// Validate the gate expression before persisting
	if err := h.engine.ValidateRule(rule); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid gate expression: " + err.Error(),
		})
		return
	}

	if h.repo != nil {
		if err := h.repo.SaveRule(ctx, GlobalTenantID, rule, req.Keywords); err != nil {
			slog.Error("failed to save rule", "category", rule.Category, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to save rule",
			})
			return
		}
	}

	slog.Info("rule created", "category", rule.Category, "title", rule.Title)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"rule":    rule,
		"message": "Rule created. Call POST /rules/reload to apply changes.",
	})
}

// ReloadRules reloads all rules from the database into the engine.
// This enables hot-reloading without server restart.
func (h *Handler) ReloadRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	ruleSet, keywords := rules.LoadFromRepository(ctx, h.repo, GlobalTenantID)

	if err := h.engine.ReloadRules(ruleSet, keywords); err != nil {
		slog.Error("failed to reload rules into engine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload rules: " + err.Error(),
		})
		return
	}

	slog.Info("rules reloaded from database", "count", len(ruleSet))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "rules reloaded successfully",
		"count":   len(ruleSet),
	})
}

// Stats returns per-tenant usage statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)

	if h.usage == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "usage tracking not available",
		})
		return
	}

	stats, err := h.usage.GetStats(ctx, tenantID)
	if err != nil {
		slog.Error("failed to get usage stats", "tenant_id", tenantID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get usage statistics",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"usage":       stats,
		"rulesLoaded": h.engine.RulesCount(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
