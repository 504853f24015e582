package mentions

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/federicodeponte/openanalytics/internal/genai"
	"github.com/federicodeponte/openanalytics/internal/model"
)

// mapLLM answers by looking the prompt up in a fixed map.
type mapLLM struct {
	mu      sync.Mutex
	answers map[string]string
	errs    map[string]error
}

func (m *mapLLM) Generate(_ context.Context, req genai.GenerateRequest) (*genai.GenerateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errs[req.Prompt]; ok {
		return nil, err
	}
	return &genai.GenerateResult{Text: m.answers[req.Prompt]}, nil
}

func TestProbeDetectsMentionCaseInsensitively(t *testing.T) {
	llm := &mapLLM{answers: map[string]string{
		"best crm": "Many teams pick ACME crm for its pricing.",
	}}
	p := NewProber(llm)

	res := p.Probe(context.Background(), model.GeneratedQuery{Query: "best crm", Dimension: model.DimensionUnbranded}, "Acme CRM")
	assert.True(t, res.HasResponse)
	assert.True(t, res.CompanyMentioned)
	assert.Equal(t, model.DimensionUnbranded, res.Dimension)
	assert.Empty(t, res.Error)
}

func TestProbeNoMention(t *testing.T) {
	llm := &mapLLM{answers: map[string]string{"q": "RivalSoft dominates this space."}}
	p := NewProber(llm)

	res := p.Probe(context.Background(), model.GeneratedQuery{Query: "q"}, "Acme")
	assert.True(t, res.HasResponse)
	assert.False(t, res.CompanyMentioned)
}

func TestProbeTruncatesPreview(t *testing.T) {
	long := strings.Repeat("x", 500)
	llm := &mapLLM{answers: map[string]string{"q": long}}
	p := NewProber(llm)

	res := p.Probe(context.Background(), model.GeneratedQuery{Query: "q"}, "Acme")
	assert.Equal(t, 500, res.ResponseLength)
	assert.Len(t, res.ResponsePreview, previewLength)
}

func TestProbeSwallowsErrors(t *testing.T) {
	llm := &mapLLM{errs: map[string]error{"q": errors.New("rate limited")}}
	p := NewProber(llm)

	res := p.Probe(context.Background(), model.GeneratedQuery{Query: "q"}, "Acme")
	assert.False(t, res.HasResponse)
	assert.False(t, res.CompanyMentioned)
	assert.Contains(t, res.Error, "rate limited")
}

func TestProbeAllPreservesOrderAndIsolatesFailures(t *testing.T) {
	llm := &mapLLM{
		answers: map[string]string{
			"q1": "Acme is great",
			"q3": "no brands here",
		},
		errs: map[string]error{"q2": errors.New("boom")},
	}
	p := NewProber(llm)

	queries := []model.GeneratedQuery{{Query: "q1"}, {Query: "q2"}, {Query: "q3"}}
	results := p.ProbeAll(context.Background(), queries, "Acme")
	require.Len(t, results, 3)
	assert.Equal(t, "q1", results[0].Query)
	assert.Equal(t, "q2", results[1].Query)
	assert.Equal(t, "q3", results[2].Query)
	assert.True(t, results[0].CompanyMentioned)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].HasResponse)
	assert.False(t, results[2].CompanyMentioned)
}

func TestContainsMentionUnicodeFolding(t *testing.T) {
	assert.True(t, containsMention("Try STRASSE GmbH today", "straße gmbh"))
	assert.False(t, containsMention("", "Acme"))
	assert.False(t, containsMention("anything", "  "))
}

func TestPreviewKeepsRuneBoundaries(t *testing.T) {
	text := strings.Repeat("é", 150) // 300 bytes
	out := preview(text)
	assert.True(t, len(out) <= previewLength)
	assert.True(t, strings.HasPrefix(text, out))
}
