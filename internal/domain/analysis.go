package domain

import (
	"errors"
	"time"
)

// Compliance status tiers. Korean labels are part of the API contract.
const (
	StatusCompliant          = "적합"
	StatusPartiallyCompliant = "부분적합"
	StatusNonCompliant       = "부적합"
	StatusNotAnalyzable      = "분석 불가"
)

// Risk levels derived from the overall score.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Source types for analyzed content.
const (
	SourceText = "text"
	SourceFile = "file"
	SourceURL  = "url"
	SourceSNS  = "sns"
)

// MaxAnalyzableRunes caps input size. Larger texts fail fast instead
// of being silently truncated.
const MaxAnalyzableRunes = 1_000_000

var (
	// ErrEmptyText marks empty or whitespace-only input. Callers get a
	// degenerate "분석 불가" result instead of this error from Analyze;
	// it exists for boundaries that need to distinguish the case.
	ErrEmptyText = errors.New("text is empty")

	// ErrTextTooLong is returned when input exceeds MaxAnalyzableRunes.
	ErrTextTooLong = errors.New("text exceeds maximum analyzable length")
)

// Violation is the per-category summary entry: one per category that
// had at least one surviving match.
type Violation struct {
	Category   string `json:"category"`
	Title      string `json:"title"`
	Severity   string `json:"severity"`
	Count      int    `json:"count"`
	LegalBasis string `json:"legalBasis"`
	Penalty    string `json:"penalty"`
}

// DetailedViolation is a keyword match that survived contextual
// filtering, enriched with location and suggestion data.
type DetailedViolation struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Severity string `json:"severity"`
	Keyword  string `json:"keyword"`

	// Context is the sentence-scoped window around the match;
	// FullContext is the raw ±150-rune window, ImmediateContext ±50.
	Context          string `json:"context"`
	FullContext      string `json:"fullContext"`
	ImmediateContext string `json:"immediateContext"`
	ParagraphContext string `json:"paragraphContext"`

	// Position is the rune offset of the match start in the original text.
	Position           int     `json:"position"`
	LineNumber         int     `json:"lineNumber"`
	ColumnNumber       int     `json:"columnNumber"`
	ParagraphNumber    int     `json:"paragraphNumber"`
	PositionPercentage float64 `json:"positionPercentage"`
	ExactLocation      string  `json:"exactLocation"`

	SuggestedFixes   []string `json:"suggestedFixes"`
	LegalBasis       string   `json:"legalBasis"`
	Penalty          string   `json:"penalty"`
	ImprovementGuide string   `json:"improvementGuide"`
}

// Recommendation carries improvement guidance for one violated rule.
type Recommendation struct {
	Category       string   `json:"category"`
	Title          string   `json:"title"`
	Guide          string   `json:"guide"`
	Priority       string   `json:"priority"`
	SuggestedFixes []string `json:"suggestedFixes"`
}

// CheckItem is a single yes/no item on the compliance checklist.
type CheckItem struct {
	Item     string `json:"item"`
	Required bool   `json:"required"`
}

// ChecklistItem reports per-rule compliance, one entry per known rule.
type ChecklistItem struct {
	Category        string      `json:"category"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Status          string      `json:"status"` // "pass" or "fail"
	Severity        string      `json:"severity"`
	LegalBasis      string      `json:"legalBasis"`
	CheckItems      []CheckItem `json:"checkItems"`
	ViolationCount  int         `json:"violationCount"`
	ComplianceScore int         `json:"complianceScore"`
}

// PenaltyInfo describes an administrative penalty exposure.
type PenaltyInfo struct {
	Type   string `json:"type"`
	Amount string `json:"amount"`
	Basis  string `json:"basis"`
}

// ContactInfo identifies a review body.
type ContactInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// ReviewGuidance tells the advertiser whether pre-review submission to
// a regulatory body is required and how to proceed.
type ReviewGuidance struct {
	RequiresReview         bool                   `json:"requiresReview"`
	ReviewType             string                 `json:"reviewType,omitempty"`
	ReviewFee              string                 `json:"reviewFee,omitempty"`
	Deadline               string                 `json:"deadline,omitempty"`
	ReviewProcess          []string               `json:"reviewProcess,omitempty"`
	SubmissionRequirements []string               `json:"submissionRequirements,omitempty"`
	Notes                  []string               `json:"notes,omitempty"`
	LegalBasis             []string               `json:"legalBasis,omitempty"`
	Penalties              []PenaltyInfo          `json:"penalties,omitempty"`
	ContactInfo            map[string]ContactInfo `json:"contactInfo,omitempty"`
}

// ApplicableLaw cites a statute relevant to medical advertising.
type ApplicableLaw struct {
	Law         string   `json:"law"`
	Articles    []string `json:"articles"`
	Description string   `json:"description"`
}

// LegalRisk is the per-violation legal exposure entry.
type LegalRisk struct {
	RiskType         string `json:"riskType"`
	Severity         string `json:"severity"`
	LegalBasis       string `json:"legalBasis"`
	PotentialPenalty string `json:"potentialPenalty"`
	Mitigation       string `json:"mitigation"`
}

// RegulatoryUpdate records a recent change to the review regime.
type RegulatoryUpdate struct {
	Date   string `json:"date"`
	Update string `json:"update"`
	Impact string `json:"impact"`
}

// LegalAnalysis aggregates the legal view of the analyzed text.
type LegalAnalysis struct {
	ApplicableLaws         []ApplicableLaw    `json:"applicableLaws"`
	LegalRisks             []LegalRisk        `json:"legalRisks"`
	ComplianceRequirements []string           `json:"complianceRequirements"`
	RegulatoryUpdates      []RegulatoryUpdate `json:"regulatoryUpdates"`
}

// TextAnalysis holds text-quality metrics for the input.
type TextAnalysis struct {
	TotalCharacters   int     `json:"totalCharacters"`
	TotalWords        int     `json:"totalWords"`
	TotalSentences    int     `json:"totalSentences"`
	TextQuality       string  `json:"textQuality"` // empty, very_short, short, medium, long
	AvgSentenceLength float64 `json:"avgSentenceLength"`
	ReadabilityScore  float64 `json:"readabilityScore"`
}

// ExecutiveSummary tallies violations by severity tier.
type ExecutiveSummary struct {
	TotalViolations int    `json:"totalViolations"`
	HighSeverity    int    `json:"highSeverity"`
	MediumSeverity  int    `json:"mediumSeverity"`
	LowSeverity     int    `json:"lowSeverity"`
	ComplianceScore int    `json:"complianceScore"`
	RiskAssessment  string `json:"riskAssessment"`
}

// SummaryReport is the executive-summary object of the result.
type SummaryReport struct {
	ExecutiveSummary        ExecutiveSummary `json:"executiveSummary"`
	KeyFindings             []string         `json:"keyFindings"`
	ImmediateActions        []string         `json:"immediateActions"`
	LongTermRecommendations []string         `json:"longTermRecommendations"`
}

// ImprovementSuggestion is the structured output of the optional
// generative-text enrichment step.
type ImprovementSuggestion struct {
	Title                     string   `json:"title"`
	Description               string   `json:"description"`
	ImprovedKeyword           string   `json:"improvedKeyword"`
	ImprovedSentence          string   `json:"improvedSentence"`
	AlternativeExpressions    []string `json:"alternativeExpressions,omitempty"`
	AdditionalRecommendations []string `json:"additionalRecommendations,omitempty"`
	LegalComplianceNotes      string   `json:"legalComplianceNotes,omitempty"`
}

// Improvement ties a suggestion back to the violation it addresses.
type Improvement struct {
	ViolationCategory string                `json:"violationCategory"`
	ViolationKeyword  string                `json:"violationKeyword"`
	Suggestion        ImprovementSuggestion `json:"suggestion"`
}

// AnalysisResult is the full output of one analysis, constructed fresh
// per call and never mutated afterwards.
type AnalysisResult struct {
	OverallScore        int                 `json:"overallScore"`
	ComplianceStatus    string              `json:"complianceStatus"`
	RiskLevel           string              `json:"riskLevel"`
	Violations          []Violation         `json:"violations"`
	DetailedViolations  []DetailedViolation `json:"detailedViolations"`
	Recommendations     []Recommendation    `json:"recommendations"`
	ComplianceChecklist []ChecklistItem     `json:"complianceChecklist"`
	ReviewGuidance      ReviewGuidance      `json:"reviewGuidance"`
	LegalAnalysis       LegalAnalysis       `json:"legalAnalysis"`
	TextAnalysis        TextAnalysis        `json:"textAnalysis"`
	SummaryReport       SummaryReport       `json:"summaryReport"`
	AIImprovements      []Improvement       `json:"aiImprovements,omitempty"`
	ExtractedText       string              `json:"extractedText"`
}

// AnalysisRecord is the persisted envelope for one analysis run.
type AnalysisRecord struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenantId"`
	SourceType string          `json:"sourceType"`
	Status     string          `json:"status"`
	Score      int             `json:"score"`
	Result     *AnalysisResult `json:"result"`
	CreatedAt  time.Time       `json:"createdAt"`
}
