// Package health runs the website health branch: fetch the site, run the
// check inventory, and score the results through the tier gates.
package health

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/federicodeponte/openanalytics/internal/checks"
	"github.com/federicodeponte/openanalytics/internal/fetcher"
	"github.com/federicodeponte/openanalytics/internal/model"
	"github.com/federicodeponte/openanalytics/internal/scoring"
)

// Checker runs health analysis for a URL.
type Checker struct {
	fetcher fetcher.WebFetcher
}

// NewChecker creates a Checker on the given fetcher.
func NewChecker(f fetcher.WebFetcher) *Checker {
	return &Checker{fetcher: f}
}

// Check fetches and scores one URL. An unreachable site is not an error:
// it scores zero with a single synthetic fetch check, because a site AI
// systems cannot reach has no AEO standing to measure.
func (c *Checker) Check(ctx context.Context, rawURL string) (*model.HealthReport, error) {
	if rawURL == "" {
		return nil, eris.New("health: url is required")
	}

	start := time.Now()
	fetch, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "health: fetch")
	}

	if fetch.Error != "" || fetch.HTML == "" {
		report := fetchFailureReport(rawURL, fetch)
		report.ExecutionTime = time.Since(start).Seconds()
		zap.L().Warn("health check short-circuited on fetch failure",
			zap.String("url", rawURL),
			zap.String("fetch_error", fetch.Error))
		return report, nil
	}

	results, err := checks.RunAll(fetch)
	if err != nil {
		return nil, eris.Wrap(err, "health: run checks")
	}

	score, tiers := scoring.Score(results)
	band, color := scoring.Band(score)

	report := &model.HealthReport{
		URL:         fetch.FinalURL,
		Score:       score,
		MaxScore:    100,
		Grade:       scoring.Grade(score),
		Band:        band,
		BandColor:   color,
		TierDetails: &tiers,
		FetchTimeMS: fetch.ResponseTimeMS,
		JSRendered:  fetch.JSRendered,
	}
	for _, r := range results {
		if r.Passed {
			report.ChecksPassed++
		} else {
			report.ChecksFailed++
			report.Issues = append(report.Issues, r)
		}
	}
	report.ExecutionTime = time.Since(start).Seconds()

	zap.L().Info("health check complete",
		zap.String("url", report.URL),
		zap.Float64("score", score),
		zap.String("grade", report.Grade),
		zap.Int("checks_failed", report.ChecksFailed))
	return report, nil
}

// fetchFailureReport is the zero-score report for an unreachable site. All
// 29 checks count as failed even though only the synthetic fetch check is
// materialized.
func fetchFailureReport(rawURL string, fetch model.FetchResult) *model.HealthReport {
	message := "Could not fetch the website"
	if fetch.Error != "" {
		message = fetch.Error
	}

	fetchCheck, err := model.NewCheckResult("fetch", model.CategoryCritical, false,
		model.SeverityError, model.ReasonFetchFailed, message)
	if err != nil {
		panic(err)
	}
	fetchCheck = fetchCheck.WithRecommendation("Make the site reachable over plain HTTP(S) without bot challenges")

	band, color := scoring.Band(0)
	zeroTier := model.TierResult{Passed: false, Cap: 0, Reason: message}
	return &model.HealthReport{
		URL:          rawURL,
		Score:        0,
		MaxScore:     100,
		Grade:        scoring.Grade(0),
		Band:         band,
		BandColor:    color,
		ChecksPassed: 0,
		ChecksFailed: checks.TotalChecks,
		Issues:       []model.CheckResult{fetchCheck},
		TierDetails: &model.TierDetails{
			Tier0:          zeroTier,
			Tier1:          zeroTier,
			Tier2:          zeroTier,
			BaseScore:      0,
			LimitingTier:   "tier0",
			LimitingReason: message,
		},
		FetchTimeMS: fetch.ResponseTimeMS,
		JSRendered:  fetch.JSRendered,
	}
}
