package domain

// Severity levels for compliance rules, ordered high > medium > low.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// SeverityRank maps a severity to an ordinal for comparisons.
// Unknown severities rank below low.
func SeverityRank(severity string) int {
	switch severity {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MaxSeverity returns the more severe of two severity strings.
func MaxSeverity(a, b string) string {
	if SeverityRank(b) > SeverityRank(a) {
		return b
	}
	return a
}

// ComplianceRule defines one regulatory category under scrutiny.
type ComplianceRule struct {
	// Category is the unique key for this rule within a rule set.
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`

	// Legal citation, penalty text, and improvement guidance
	// attached verbatim to every violation of this rule.
	LegalBasis       string `json:"legalBasis"`
	Penalty          string `json:"penalty"`
	ImprovementGuide string `json:"improvementGuide"`

	// Strict rules accept every keyword match unconditionally.
	// Non-strict rules require one of Indicators within the local
	// context window around a match.
	Strict     bool     `json:"strict"`
	Indicators []string `json:"indicators,omitempty"`

	// GateExpr is an optional CEL expression evaluated per match with
	// the variables keyword, context, and category. When set it
	// replaces the indicator check. Must evaluate to bool.
	GateExpr string `json:"gateExpr,omitempty"`

	// Whether the rule participates in analysis.
	Enabled bool `json:"enabled"`
}

// RawMatch is a single occurrence of a keyword in the input text.
// Offsets are rune positions into the original text, half-open [Start, End).
type RawMatch struct {
	Keyword string `json:"keyword"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// RuleFinding is the output of evaluating one rule against a text.
type RuleFinding struct {
	Rule     *ComplianceRule     `json:"rule"`
	Summary  Violation           `json:"summary"`
	Detailed []DetailedViolation `json:"detailed"`
}
