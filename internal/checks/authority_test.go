package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/federicodeponte/openanalytics/internal/model"
)

func runAuthority(t *testing.T, html string) []model.CheckResult {
	t.Helper()
	doc, err := parseDocument(html)
	require.NoError(t, err)
	return RunAuthority(doc, "https://acme.example/")
}

func TestAuthorityEmitsThreeChecks(t *testing.T) {
	assert.Len(t, runAuthority(t, "<html></html>"), 3)
}

func TestContactInfoViaMailto(t *testing.T) {
	results := runAuthority(t, `<html><body><a href="mailto:hi@acme.example">mail</a></body></html>`)
	assert.True(t, resultFor(t, results, "contact_info").Passed)
}

func TestContactInfoViaContactPage(t *testing.T) {
	results := runAuthority(t, `<html><body><a href="/contact-us">contact</a></body></html>`)
	assert.True(t, resultFor(t, results, "contact_info").Passed)
}

func TestContactInfoMissing(t *testing.T) {
	results := runAuthority(t, `<html><body><a href="/pricing">pricing</a></body></html>`)
	r := resultFor(t, results, "contact_info")
	assert.False(t, r.Passed)
	assert.Equal(t, model.SeverityNotice, r.Severity)
}

func TestAboutPage(t *testing.T) {
	with := runAuthority(t, `<html><body><a href="/about">about</a></body></html>`)
	assert.True(t, resultFor(t, with, "about_page").Passed)

	without := runAuthority(t, `<html><body></body></html>`)
	assert.False(t, resultFor(t, without, "about_page").Passed)
}

func TestOutboundCitations(t *testing.T) {
	enough := runAuthority(t, `<html><body>
		<a href="https://en.wikipedia.org/wiki/CRM">wiki</a>
		<a href="https://www.ada.org/">ada</a>
		<a href="https://acme.example/internal">self</a>
	</body></html>`)
	assert.True(t, resultFor(t, enough, "outbound_citations").Passed)

	few := runAuthority(t, `<html><body><a href="https://one.example/">one</a></body></html>`)
	assert.False(t, resultFor(t, few, "outbound_citations").Passed)
}
