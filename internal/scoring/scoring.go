// Package scoring implements the tiered AEO health score.
//
// The AEO funnel:
//  1. Can AI access the site? If blocked, nothing else matters.
//  2. Can AI understand it? Organization schema is essential for entity
//     recognition.
//  3. Is the content structured? Technical SEO for extraction.
//  4. Is it trustworthy? Authority signals for citation confidence.
//
// A naive weighted average lets a site pass by accumulating minor points
// while failing something existentially disqualifying, so the engine
// computes a base score plus hard per-tier caps and takes the minimum:
// a cap can only lower the score, never raise it.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/federicodeponte/openanalytics/internal/model"
)

// Caps applied by the tier gates.
const (
	capNoindex        = 5
	capAllBlocked     = 10
	capMostBlocked    = 25
	capNoOrgSchema    = 45
	capMissingEssent  = 55
	capTwoImportant   = 75
	capOneImportant   = 85
	capTwoMinor       = 90
	capOneMinor       = 95
	capNone           = 100
	completeThreshold = 70
)

// crawlerChecks are the AI-crawler-access check identifiers inspected by
// the tier 0 gate.
var crawlerChecks = []string{
	"gptbot_access",
	"claudebot_access",
	"perplexitybot_access",
	"ccbot_access",
}

// byCheck indexes results by identifier. Lookups for tier evaluation treat
// an absent identifier as "issue present", failing safe toward a lower
// score rather than a higher one.
func byCheck(checks []model.CheckResult) map[string]model.CheckResult {
	idx := make(map[string]model.CheckResult, len(checks))
	for _, c := range checks {
		idx[c.Check] = c
	}
	return idx
}

// BaseScore computes the unclamped weighted score. Failed checks earn
// partial credit by severity: 0.7x for notice, 0.3x for warning, nothing
// for error. A zero total weight yields zero, not a division error.
func BaseScore(checks []model.CheckResult) float64 {
	var total, earned float64
	for _, c := range checks {
		impact := float64(c.ScoreImpact)
		if impact <= 0 {
			impact = model.DefaultScoreImpact
		}
		total += impact

		switch {
		case c.Passed:
			earned += impact
		case c.Severity == model.SeverityNotice:
			earned += impact * 0.7
		case c.Severity == model.SeverityWarning:
			earned += impact * 0.3
		}
	}
	if total <= 0 {
		return 0
	}
	return earned / total * 100
}

// EvaluateTier0 applies the critical gate: blocking all AI crawlers or
// carrying a noindex directive caps the score regardless of everything
// else. Both conditions are evaluated; the lower cap wins.
func EvaluateTier0(checks []model.CheckResult) model.TierResult {
	idx := byCheck(checks)

	var blocked int
	for _, name := range crawlerChecks {
		c, ok := idx[name]
		if !ok || !c.Passed {
			blocked++
		}
	}

	maxCap := capNone
	reason := "AI can access site"
	passed := true

	switch {
	case blocked >= len(crawlerChecks):
		maxCap = capAllBlocked
		reason = "Blocks all AI crawlers - invisible to AI"
		passed = false
	case blocked >= 3:
		maxCap = capMostBlocked
		reason = fmt.Sprintf("Blocks most AI crawlers (%d/%d)", blocked, len(crawlerChecks))
		passed = false
	}

	// The noindex gate is independent of crawler counting: both contribute
	// to the overall minimum.
	if c, ok := idx["robots_meta"]; ok && !c.Passed && c.Code == model.ReasonNoindex {
		if capNoindex < maxCap {
			maxCap = capNoindex
			reason = "Has noindex - won't be indexed by AI"
		}
		passed = false
	}

	return model.TierResult{Passed: passed, Cap: maxCap, Reason: reason}
}

// EvaluateTier1 applies the essential floor: Organization schema, a title
// tag, and HTTPS are the minimum for AI to identify the entity.
func EvaluateTier1(checks []model.CheckResult) model.TierResult {
	idx := byCheck(checks)

	orgSchema := false
	if c, ok := idx["org_schema_completeness"]; ok && c.Code != model.ReasonNoOrgSchema {
		orgSchema = true
	}
	title := false
	if c, ok := idx["title_tag"]; ok && c.Code != model.ReasonMissingTitle {
		title = true
	}
	https := false
	if c, ok := idx["https"]; ok && c.Passed {
		https = true
	}

	var missing []string
	if !orgSchema {
		missing = append(missing, "Organization schema")
	}
	if !title {
		missing = append(missing, "title tag")
	}
	if !https {
		missing = append(missing, "HTTPS")
	}

	switch {
	case !orgSchema:
		return model.TierResult{
			Passed: false,
			Cap:    capNoOrgSchema,
			Reason: "Missing Organization schema - AI can't identify entity",
		}
	case len(missing) > 0:
		return model.TierResult{
			Passed: false,
			Cap:    capMissingEssent,
			Reason: "Missing essentials: " + strings.Join(missing, ", "),
		}
	}
	return model.TierResult{Passed: true, Cap: capNone, Reason: "Has essential elements"}
}

// EvaluateTier2 applies the important ceiling: schema completeness, sameAs
// links, meta description, and content depth. Gaps are classified as
// important (incomplete schema, missing sameAs) or minor (no meta
// description, thin content) and capped on a fixed schedule.
func EvaluateTier2(checks []model.CheckResult) model.TierResult {
	idx := byCheck(checks)

	orgComplete := false
	orgPartial := false
	if c, ok := idx["org_schema_completeness"]; ok && c.Code != model.ReasonNoOrgSchema {
		orgPartial = true
		if c.Completeness >= completeThreshold {
			orgComplete = true
		}
	}

	sameAs := false
	if c, ok := idx["sameas_links"]; ok && c.Passed {
		sameAs = true
	}
	metaDesc := false
	if c, ok := idx["meta_description"]; ok && c.Code != model.ReasonMissingMetaDesc {
		metaDesc = true
	}
	goodContent := false
	if c, ok := idx["content_word_count"]; ok && c.Passed {
		goodContent = true
	}

	var important, minor []string
	if orgPartial && !orgComplete {
		important = append(important, "incomplete Organization schema")
	}
	if !sameAs {
		important = append(important, "no sameAs links")
	}
	if !metaDesc {
		minor = append(minor, "no meta description")
	}
	if !goodContent {
		minor = append(minor, "thin content")
	}

	switch {
	case len(important) >= 2:
		return model.TierResult{Passed: false, Cap: capTwoImportant, Reason: "Issues: " + strings.Join(important, ", ")}
	case len(important) == 1:
		return model.TierResult{Passed: false, Cap: capOneImportant, Reason: "Issue: " + important[0]}
	case len(minor) >= 2:
		return model.TierResult{Passed: false, Cap: capTwoMinor, Reason: "Minor issues: " + strings.Join(minor, ", ")}
	case len(minor) == 1:
		return model.TierResult{Passed: false, Cap: capOneMinor, Reason: "Minor: " + minor[0]}
	}
	return model.TierResult{Passed: true, Cap: capNone, Reason: "Excellent AEO optimization"}
}

// Score computes the final tiered score: the minimum of the three tier
// caps and the weighted base score, rounded to one decimal. The limiting
// tier is the first tier whose cap is within 1.0 of the final score.
func Score(checks []model.CheckResult) (float64, model.TierDetails) {
	tier0 := EvaluateTier0(checks)
	tier1 := EvaluateTier1(checks)
	tier2 := EvaluateTier2(checks)
	base := BaseScore(checks)

	final := math.Min(math.Min(float64(tier0.Cap), float64(tier1.Cap)), math.Min(float64(tier2.Cap), base))

	limitingTier := "base"
	limitingReason := "Check performance"
	switch {
	case float64(tier0.Cap) <= final+1:
		limitingTier, limitingReason = "tier0", tier0.Reason
	case float64(tier1.Cap) <= final+1:
		limitingTier, limitingReason = "tier1", tier1.Reason
	case float64(tier2.Cap) <= final+1:
		limitingTier, limitingReason = "tier2", tier2.Reason
	}

	details := model.TierDetails{
		Tier0:          tier0,
		Tier1:          tier1,
		Tier2:          tier2,
		BaseScore:      round1(base),
		LimitingTier:   limitingTier,
		LimitingReason: limitingReason,
	}
	return round1(final), details
}

// Grade maps a score to a letter grade.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 65:
		return "B"
	case score >= 45:
		return "C"
	case score >= 25:
		return "D"
	}
	return "F"
}

// Band maps a score to a qualitative visibility band and its hex color.
func Band(score float64) (string, string) {
	switch {
	case score >= 80:
		return "Excellent", "#22c55e"
	case score >= 65:
		return "Strong", "#84cc16"
	case score >= 45:
		return "Moderate", "#eab308"
	case score >= 25:
		return "Weak", "#f97316"
	}
	return "Critical", "#ef4444"
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
