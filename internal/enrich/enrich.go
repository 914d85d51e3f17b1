// Package enrich provides the optional generative-text improvement
// client. It talks to a Claude-compatible messages endpoint and turns
// one violation at a time into a structured rewrite suggestion.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medilint/medilint/internal/domain"
)

const (
	defaultTimeoutSecs = 10
	defaultModel       = "claude-3-haiku-20240307"
	apiVersion         = "2023-06-01"
	maxResponseBytes   = 1 << 20
)

// Client implements domain.Enricher against a messages-style HTTP API.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Disabled is the no-op enricher used when no credential is configured.
type Disabled struct{}

// SuggestImprovement always fails; callers check Enabled first.
func (Disabled) SuggestImprovement(ctx context.Context, violation *domain.DetailedViolation, excerpt string) (*domain.ImprovementSuggestion, error) {
	return nil, fmt.Errorf("enrichment is disabled")
}

// Enabled reports false.
func (Disabled) Enabled() bool { return false }

// New creates an enricher from configuration. Returns Disabled unless
// both endpoint and API key are set.
func New(cfg domain.EnrichmentConfig) domain.Enricher {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return Disabled{}
	}

	timeout := cfg.TimeoutSecs
	if timeout <= 0 {
		timeout = defaultTimeoutSecs
	}

	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    defaultModel,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

// Enabled reports whether the client can make calls.
func (c *Client) Enabled() bool { return true }

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Temp      float64   `json:"temperature"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// SuggestImprovement asks the model for a structured rewrite of one
// violation. The excerpt is assumed to be pre-truncated by the caller.
func (c *Client) SuggestImprovement(ctx context.Context, violation *domain.DetailedViolation, excerpt string) (*domain.ImprovementSuggestion, error) {
	if violation == nil {
		return nil, fmt.Errorf("violation is required")
	}

	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: 800,
		Temp:      0.3,
		Messages: []message{
			{Role: "user", Content: buildPrompt(violation, excerpt)},
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrichment request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrichment endpoint returned status %d", resp.StatusCode)
	}

	var msgResp messageResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return nil, fmt.Errorf("failed to parse response envelope: %w", err)
	}
	if len(msgResp.Content) == 0 {
		return nil, fmt.Errorf("empty response content")
	}

	return parseSuggestion(msgResp.Content[0].Text, violation.Category), nil
}

// buildPrompt renders the Korean compliance-expert prompt for one
// violation.
func buildPrompt(v *domain.DetailedViolation, excerpt string) string {
	var b strings.Builder
	b.WriteString("당신은 의료광고법 준수 전문가입니다. 다음 위반 항목에 대해 구체적이고 실용적인 개선 방안을 제시해주세요.\n\n")
	b.WriteString("**위반 정보:**\n")
	fmt.Fprintf(&b, "- 위반 유형: %s\n", v.Category)
	fmt.Fprintf(&b, "- 발견된 키워드: %s\n", v.Keyword)
	fmt.Fprintf(&b, "- 위반 문맥: \"%s\"\n", v.Context)
	fmt.Fprintf(&b, "- 법적 근거: %s\n", v.LegalBasis)
	fmt.Fprintf(&b, "- 처벌 내용: %s\n\n", v.Penalty)
	b.WriteString("**원본 텍스트 (관련 부분):**\n")
	b.WriteString(excerpt)
	b.WriteString("\n\n**요청사항:**\n")
	b.WriteString("1. 위반 키워드를 적절한 대체 표현으로 변경하는 구체적인 제안\n")
	b.WriteString("2. 문맥을 고려한 전체 문장 개선 방안\n")
	b.WriteString("3. 의료광고법을 준수하면서도 효과적인 표현 방법\n")
	b.WriteString("4. 추가 주의사항이나 권장사항\n\n")
	b.WriteString("다음 JSON 형식으로 응답해주세요:\n")
	b.WriteString(`{
    "title": "개선 방안 제목",
    "description": "구체적인 개선 방안 설명",
    "improvedKeyword": "대체 키워드",
    "improvedSentence": "개선된 문장",
    "alternativeExpressions": ["대안 표현 1", "대안 표현 2"],
    "additionalRecommendations": ["추가 권장사항 1", "추가 권장사항 2"],
    "legalComplianceNotes": "법적 준수 관련 참고사항"
}`)
	return b.String()
}

// parseSuggestion extracts the JSON object from the model output. Model
// text around the object is tolerated; unparseable output degrades to a
// plain-text suggestion instead of an error.
func parseSuggestion(content, category string) *domain.ImprovementSuggestion {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")

	if start != -1 && end > start {
		var s domain.ImprovementSuggestion
		if err := json.Unmarshal([]byte(content[start:end+1]), &s); err == nil && s.Title != "" {
			return &s
		}
	}

	return &domain.ImprovementSuggestion{
		Title:                category + " 개선 방안",
		Description:          content,
		ImprovedKeyword:      "대체 표현",
		ImprovedSentence:     content,
		LegalComplianceNotes: "AI가 제안한 개선 방안입니다.",
	}
}
