package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/federicodeponte/openanalytics/internal/checks"
	"github.com/federicodeponte/openanalytics/internal/model"
)

type stubFetcher struct {
	result model.FetchResult
	err    error
}

func (s *stubFetcher) Fetch(_ context.Context, _ string) (model.FetchResult, error) {
	return s.result, s.err
}

const healthyPage = `<!DOCTYPE html>
<html lang="en">
<head>
<title>Acme CRM - Patient Management for Dental Practices</title>
<meta name="description" content="Acme CRM helps dental practices manage patients, scheduling and recall campaigns with a modern, HIPAA-aware workflow.">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta property="og:title" content="Acme CRM">
<meta property="og:description" content="Patient management for dental practices">
<link rel="canonical" href="https://acme.example/">
<link rel="icon" href="/favicon.ico">
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Organization","name":"Acme CRM",
 "url":"https://acme.example","logo":"https://acme.example/logo.png",
 "description":"Dental practice CRM","sameAs":["https://linkedin.com/company/acme"],
 "contactPoint":{"@type":"ContactPoint","email":"hi@acme.example"},
 "address":{"@type":"PostalAddress","addressLocality":"Berlin"}}
</script>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"WebSite","name":"Acme CRM","url":"https://acme.example"}
</script>
</head>
<body>
<h1>Patient management for dental practices</h1>
<h2>Why practices switch</h2>
<p>` + loremWords + `</p>
<a href="/about">About us</a>
<a href="/contact">Contact</a>
<a href="/pricing">Pricing</a>
<a href="/features">Features</a>
<a href="/blog">Blog</a>
<a href="https://en.wikipedia.org/wiki/Customer_relationship_management">CRM background</a>
<a href="https://www.ada.org/">American Dental Association</a>
</body>
</html>`

func TestCheckScoresHealthySite(t *testing.T) {
	f := &stubFetcher{result: model.FetchResult{
		HTML:           healthyPage,
		FinalURL:       "https://acme.example/",
		RobotsTxt:      "User-agent: *\nAllow: /\n",
		SitemapFound:   true,
		ResponseTimeMS: 400,
		StatusCode:     200,
	}}
	c := NewChecker(f)

	report, err := c.Check(context.Background(), "acme.example")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example/", report.URL)
	assert.Equal(t, float64(100), report.MaxScore)
	assert.Equal(t, checks.TotalChecks, report.ChecksPassed+report.ChecksFailed)
	assert.Greater(t, report.Score, 45.0)
	require.NotNil(t, report.TierDetails)
	assert.True(t, report.TierDetails.Tier0.Passed)
	assert.True(t, report.TierDetails.Tier1.Passed)
	assert.Len(t, report.Issues, report.ChecksFailed)
}

func TestCheckShortCircuitsOnFetchFailure(t *testing.T) {
	f := &stubFetcher{result: model.FetchResult{
		FinalURL: "https://down.example",
		Error:    "fetcher: all retries exhausted: connection refused",
	}}
	c := NewChecker(f)

	report, err := c.Check(context.Background(), "down.example")
	require.NoError(t, err)
	assert.Zero(t, report.Score)
	assert.Equal(t, "F", report.Grade)
	assert.Equal(t, "Critical", report.Band)
	assert.Equal(t, "#ef4444", report.BandColor)
	assert.Zero(t, report.ChecksPassed)
	assert.Equal(t, checks.TotalChecks, report.ChecksFailed)

	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, "fetch", issue.Check)
	assert.Equal(t, model.ReasonFetchFailed, issue.Code)
	assert.Contains(t, issue.Message, "connection refused")

	require.NotNil(t, report.TierDetails)
	assert.Equal(t, "tier0", report.TierDetails.LimitingTier)
	assert.Zero(t, report.TierDetails.Tier0.Cap)
}

func TestCheckBlockedFetchAlsoShortCircuits(t *testing.T) {
	f := &stubFetcher{result: model.FetchResult{
		FinalURL:  "https://walled.example",
		HTML:      "<html>Just a moment...</html>",
		Blocked:   true,
		BlockType: "cloudflare_challenge",
		Error:     "fetch blocked: cloudflare_challenge",
	}}
	c := NewChecker(f)

	report, err := c.Check(context.Background(), "walled.example")
	require.NoError(t, err)
	assert.Zero(t, report.Score)
	assert.Contains(t, report.Issues[0].Message, "cloudflare_challenge")
}

func TestCheckRequiresURL(t *testing.T) {
	c := NewChecker(&stubFetcher{})
	_, err := c.Check(context.Background(), "")
	require.Error(t, err)
}

const loremWords = `Dental practices juggle recall schedules, insurance paperwork and a
front desk that never stops ringing. A practice management CRM keeps patient
records, appointment histories and treatment plans in one place so the whole
team works from the same picture. Automated recall reminders cut no-show rates,
and two-way messaging keeps patients engaged between visits. Reporting shows
production per chair, case acceptance and hygiene reappointment rates at a
glance. Integrations with imaging and billing systems remove double entry, and
role-based access keeps patient data limited to the people who need it. Teams
that switch report faster checkout times, fuller hygiene schedules and fewer
abandoned treatment plans. Onboarding typically takes under two weeks,
including data migration from legacy systems, staff training sessions and a
parallel run before cutover. Support is available by phone and chat, with a
searchable knowledge base covering common front-office workflows, recall
campaign templates, insurance verification checklists and end-of-day
reconciliation procedures for practices of every size. The platform also
tracks referral sources so practices know which marketing channels produce
long-term patients rather than one-time visits, and budget decisions follow
evidence instead of intuition. Monthly business reviews summarize growth,
retention and production trends for the owner and office manager, giving every
stakeholder a shared, current view of practice performance across locations.`
