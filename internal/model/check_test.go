package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCheckResultValidates(t *testing.T) {
	c, err := NewCheckResult("https", CategoryTechnical, true, SeverityPass, ReasonOK, "ok")
	require.NoError(t, err)
	assert.Equal(t, DefaultScoreImpact, c.ScoreImpact)

	_, err = NewCheckResult("https", Category("bogus"), true, SeverityPass, ReasonOK, "ok")
	require.Error(t, err)

	_, err = NewCheckResult("https", CategoryTechnical, true, Severity("bogus"), ReasonOK, "ok")
	require.Error(t, err)

	_, err = NewCheckResult("", CategoryTechnical, true, SeverityPass, ReasonOK, "ok")
	require.Error(t, err)
}

func TestCheckResultBuilders(t *testing.T) {
	c, err := NewCheckResult("org_schema_completeness", CategoryStructuredData, false,
		SeverityWarning, ReasonIncompleteOrgSchema, "incomplete")
	require.NoError(t, err)

	c = c.WithImpact(8).WithRecommendation("fill in the missing fields")
	assert.Equal(t, 8, c.ScoreImpact)
	assert.Equal(t, "fill in the missing fields", c.Recommendation)

	assert.Equal(t, 100, c.WithCompleteness(150).Completeness)
	assert.Equal(t, 0, c.WithCompleteness(-5).Completeness)
	assert.Equal(t, 42, c.WithCompleteness(42).Completeness)
}

func TestEnumValidity(t *testing.T) {
	for _, cat := range []Category{CategoryTechnical, CategoryStructuredData, CategoryAICrawler, CategoryAuthority, CategoryCritical} {
		assert.True(t, cat.Valid(), string(cat))
	}
	assert.False(t, Category("other").Valid())

	for _, sev := range []Severity{SeverityPass, SeverityError, SeverityWarning, SeverityNotice} {
		assert.True(t, sev.Valid(), string(sev))
	}
	assert.False(t, Severity("fatal").Valid())
}
