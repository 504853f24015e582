package model

import (
	"github.com/rotisserie/eris"
)

// Category classifies a check by the surface it inspects.
type Category string

const (
	CategoryTechnical      Category = "technical"
	CategoryStructuredData Category = "structured_data"
	CategoryAICrawler      Category = "ai_crawler"
	CategoryAuthority      Category = "authority"
	// CategoryCritical is reserved for synthetic checks emitted when the
	// target site could not be fetched at all.
	CategoryCritical Category = "critical"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryStructuredData, CategoryAICrawler, CategoryAuthority, CategoryCritical:
		return true
	}
	return false
}

// Severity grades a check outcome independently of pass/fail. A failing
// check with SeverityNotice still earns partial credit in the base score.
type Severity string

const (
	SeverityPass    Severity = "pass"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNotice  Severity = "notice"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityPass, SeverityError, SeverityWarning, SeverityNotice:
		return true
	}
	return false
}

// ReasonCode is the machine-readable outcome of a check. The scoring engine
// branches on codes, never on display messages.
type ReasonCode string

const (
	ReasonOK                  ReasonCode = "ok"
	ReasonFetchFailed         ReasonCode = "fetch_failed"
	ReasonNoindex             ReasonCode = "noindex"
	ReasonCrawlerBlocked      ReasonCode = "crawler_blocked"
	ReasonNoOrgSchema         ReasonCode = "no_org_schema"
	ReasonIncompleteOrgSchema ReasonCode = "incomplete_org_schema"
	ReasonMissingTitle        ReasonCode = "missing_title"
	ReasonMissingMetaDesc     ReasonCode = "missing_meta_description"
	ReasonNoSameAs            ReasonCode = "no_sameas_links"
	ReasonThinContent         ReasonCode = "thin_content"
	ReasonNotHTTPS            ReasonCode = "not_https"
	ReasonGeneric             ReasonCode = "generic"
)

// DefaultScoreImpact is a check's share of the 100-point base score when the
// check does not declare its own weight.
const DefaultScoreImpact = 5

// CheckResult is one evaluated rule against a target website. Results are
// created by the category check functions, consumed once by the scoring
// engine, and never persisted.
type CheckResult struct {
	Check          string     `json:"check"`
	Category       Category   `json:"category"`
	Passed         bool       `json:"passed"`
	Severity       Severity   `json:"severity"`
	Code           ReasonCode `json:"code"`
	Message        string     `json:"message"`
	Recommendation string     `json:"recommendation,omitempty"`
	ScoreImpact    int        `json:"score_impact"`

	// Completeness carries the Organization-schema completeness percentage
	// (0-100) for the org_schema_completeness check. Zero elsewhere.
	Completeness int `json:"completeness,omitempty"`
}

// NewCheckResult builds a validated CheckResult. Unknown categories,
// severities, and non-positive impacts are rejected so malformed results
// never reach the scoring engine.
func NewCheckResult(check string, category Category, passed bool, severity Severity, code ReasonCode, message string) (CheckResult, error) {
	if check == "" {
		return CheckResult{}, eris.New("model: check identifier is required")
	}
	if !category.Valid() {
		return CheckResult{}, eris.Errorf("model: unknown category %q for check %s", category, check)
	}
	if !severity.Valid() {
		return CheckResult{}, eris.Errorf("model: unknown severity %q for check %s", severity, check)
	}
	if code == "" {
		code = ReasonGeneric
	}
	return CheckResult{
		Check:       check,
		Category:    category,
		Passed:      passed,
		Severity:    severity,
		Code:        code,
		Message:     message,
		ScoreImpact: DefaultScoreImpact,
	}, nil
}

// WithImpact sets the check's weight in the base score.
func (r CheckResult) WithImpact(impact int) CheckResult {
	if impact > 0 {
		r.ScoreImpact = impact
	}
	return r
}

// WithRecommendation attaches a remediation hint.
func (r CheckResult) WithRecommendation(rec string) CheckResult {
	r.Recommendation = rec
	return r
}

// WithCompleteness attaches a completeness percentage, clamped to [0, 100].
func (r CheckResult) WithCompleteness(pct int) CheckResult {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	r.Completeness = pct
	return r
}
