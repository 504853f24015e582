package mentions

import (
	"math"

	"github.com/federicodeponte/openanalytics/internal/model"
	"github.com/federicodeponte/openanalytics/internal/scoring"
)

// Aggregate folds per-query probe results into a visibility report. It is a
// pure function of its input: same results, same report.
//
// Queries that got no response stay in the denominator. A provider outage
// reads as low visibility, which is the honest interpretation for a metric
// about being surfaced in answers.
func Aggregate(results []model.QueryResult) model.VisibilityReport {
	report := model.VisibilityReport{
		ByDimension: make(map[string]model.GroupStats),
	}
	if len(results) == 0 {
		report.Band, _ = scoring.Band(0)
		return report
	}

	responses := 0
	for _, r := range results {
		if r.HasResponse {
			responses++
		}
		if r.CompanyMentioned {
			report.Mentions++
		}

		stats := report.ByDimension[r.Dimension]
		stats.Queries++
		if r.HasResponse {
			stats.Responses++
		}
		if r.CompanyMentioned {
			stats.Mentions++
		}
		report.ByDimension[r.Dimension] = stats
	}

	total := float64(len(results))
	report.Visibility = round1(float64(report.Mentions) / total * 100)
	report.PresenceRate = round1(float64(responses) / total * 100)
	report.QualityScore = round1(math.Min(10, report.Visibility/10))
	report.Band, _ = scoring.Band(report.Visibility)

	for dim, stats := range report.ByDimension {
		if stats.Queries > 0 {
			stats.Visibility = round1(float64(stats.Mentions) / float64(stats.Queries) * 100)
		}
		report.ByDimension[dim] = stats
	}
	return report
}

// AggregatePlatforms folds fanned-out platform results into a visibility
// report with per-platform and per-dimension breakdowns. A query counts as
// mentioned when at least one platform surfaced the company; the capped
// mention count only shapes the quality score.
func AggregatePlatforms(results []model.PlatformQueryResult) model.VisibilityReport {
	report := model.VisibilityReport{
		ByDimension: make(map[string]model.GroupStats),
		ByPlatform:  make(map[string]model.GroupStats),
	}
	if len(results) == 0 {
		report.Band, _ = scoring.Band(0)
		return report
	}

	mentionedQueries := 0
	respondedQueries := 0
	countedMentions := 0
	for _, qr := range results {
		anyResponse := false
		anyMention := false
		for _, pr := range qr.Platforms {
			stats := report.ByPlatform[pr.Platform]
			stats.Queries++
			if pr.HasResponse {
				stats.Responses++
				anyResponse = true
			}
			if pr.CompanyMentioned {
				stats.Mentions++
				anyMention = true
			}
			report.ByPlatform[pr.Platform] = stats
		}

		dim := report.ByDimension[qr.Dimension]
		dim.Queries++
		if anyResponse {
			dim.Responses++
			respondedQueries++
		}
		if anyMention {
			dim.Mentions++
			mentionedQueries++
		}
		report.ByDimension[qr.Dimension] = dim

		countedMentions += qr.CountedMentions
	}
	report.Mentions = mentionedQueries

	total := float64(len(results))
	report.Visibility = round1(float64(mentionedQueries) / total * 100)
	report.PresenceRate = round1(float64(respondedQueries) / total * 100)
	// Quality blends breadth (how many queries hit) with depth (how many
	// platforms echoed each hit, capped per query).
	depth := float64(countedMentions) / (total * mentionCapPerQuery)
	report.QualityScore = round1(math.Min(10, report.Visibility/10*(0.5+depth/2)*2))
	report.Band, _ = scoring.Band(report.Visibility)

	for key, stats := range report.ByPlatform {
		if stats.Queries > 0 {
			stats.Visibility = round1(float64(stats.Mentions) / float64(stats.Queries) * 100)
		}
		report.ByPlatform[key] = stats
	}
	for key, stats := range report.ByDimension {
		if stats.Queries > 0 {
			stats.Visibility = round1(float64(stats.Mentions) / float64(stats.Queries) * 100)
		}
		report.ByDimension[key] = stats
	}
	return report
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
