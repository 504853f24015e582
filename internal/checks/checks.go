// Package checks implements the per-category AEO health checks. Every check
// emits a model.CheckResult with a machine-readable reason code; the scoring
// engine branches on codes, never on display text.
package checks

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/federicodeponte/openanalytics/internal/model"
)

// TotalChecks is the fixed number of checks a full run emits: 16 technical,
// 6 structured data, 4 AI crawler, 3 authority.
const TotalChecks = 29

// RunAll parses the fetched page and runs all four check categories.
func RunAll(fetch model.FetchResult) ([]model.CheckResult, error) {
	doc, err := parseDocument(fetch.HTML)
	if err != nil {
		return nil, eris.Wrap(err, "checks: run all")
	}

	results := RunTechnical(doc, fetch)
	results = append(results, RunStructuredData(doc)...)
	results = append(results, RunAICrawler(fetch.RobotsTxt)...)
	results = append(results, RunAuthority(doc, fetch.FinalURL)...)

	if len(results) != TotalChecks {
		// A category emitted the wrong number of checks; the score
		// normalizes either way, but the contract is fixed.
		zap.L().Warn("checks: unexpected check count",
			zap.Int("got", len(results)),
			zap.Int("want", TotalChecks),
		)
	}
	return results, nil
}

// mustCheck builds a CheckResult from trusted in-package inputs.
// Construction only fails on enum violations, which are programmer errors
// here.
func mustCheck(check string, category model.Category, passed bool, severity model.Severity, code model.ReasonCode, message string) model.CheckResult {
	c, err := model.NewCheckResult(check, category, passed, severity, code, message)
	if err != nil {
		panic(err)
	}
	return c
}

// pass is shorthand for a passing check.
func pass(check string, category model.Category, message string) model.CheckResult {
	return mustCheck(check, category, true, model.SeverityPass, model.ReasonOK, message)
}

// fail is shorthand for a failing check at the given severity.
func fail(check string, category model.Category, severity model.Severity, code model.ReasonCode, message string) model.CheckResult {
	return mustCheck(check, category, false, severity, code, message)
}
