package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/federicodeponte/openanalytics/internal/genai"
	"github.com/federicodeponte/openanalytics/internal/health"
	"github.com/federicodeponte/openanalytics/internal/mentions"
	"github.com/federicodeponte/openanalytics/internal/model"
)

type stubFetcher struct {
	result model.FetchResult
	err    error
}

func (s *stubFetcher) Fetch(_ context.Context, _ string) (model.FetchResult, error) {
	return s.result, s.err
}

type stubLLM struct {
	queryJSON string
	answer    string
}

func (s *stubLLM) Generate(_ context.Context, req genai.GenerateRequest) (*genai.GenerateResult, error) {
	if req.JSONOutput {
		return &genai.GenerateResult{Text: s.queryJSON}, nil
	}
	return &genai.GenerateResult{Text: s.answer}, nil
}

func testPipeline(f *stubFetcher, llm genai.TextGenerator) *Pipeline {
	return New(health.NewChecker(f), mentions.NewService(llm))
}

func acmeRequest() Request {
	return Request{
		URL: "https://acme.example",
		Company: &model.CompanyProfile{
			Name:     "Acme",
			Industry: "dental software",
		},
		NumQueries: 2,
	}
}

func TestRunBothBranches(t *testing.T) {
	f := &stubFetcher{result: model.FetchResult{
		FinalURL: "https://acme.example",
		HTML:     "<html><head><title>Acme dental CRM software</title></head><body><h1>Acme</h1></body></html>",
	}}
	llm := &stubLLM{
		queryJSON: `[{"query":"best dental crm","dimension":"UNBRANDED_HYPERNICHE"}]`,
		answer:    "Acme is a common pick.",
	}

	report, err := testPipeline(f, llm).Run(context.Background(), acmeRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	require.NotNil(t, report.Health)
	require.NotNil(t, report.Mentions)
	assert.Empty(t, report.BranchErrors)
	assert.Empty(t, report.Error)
	assert.Equal(t, 100.0, report.Mentions.Visibility)
}

func TestRunHealthBranchFailureIsIsolated(t *testing.T) {
	f := &stubFetcher{err: errors.New("dns exploded")}
	llm := &stubLLM{
		queryJSON: `[{"query":"q","dimension":"BRANDED_DIRECT"}]`,
		answer:    "Acme mention",
	}

	report, err := testPipeline(f, llm).Run(context.Background(), acmeRequest())
	require.NoError(t, err)
	assert.Nil(t, report.Health)
	require.NotNil(t, report.Mentions)

	require.Len(t, report.BranchErrors, 1)
	assert.Equal(t, "health", report.BranchErrors[0].Branch)
	assert.Contains(t, report.BranchErrors[0].Error, "dns exploded")
	assert.Equal(t, report.BranchErrors[0].Error, report.Error)
}

func TestRunHealthOnly(t *testing.T) {
	f := &stubFetcher{result: model.FetchResult{
		FinalURL: "https://acme.example",
		HTML:     "<html><body>hi</body></html>",
	}}
	report, err := testPipeline(f, &stubLLM{}).Run(context.Background(), Request{URL: "https://acme.example"})
	require.NoError(t, err)
	require.NotNil(t, report.Health)
	assert.Nil(t, report.Mentions)
}

func TestRunMentionsOnly(t *testing.T) {
	llm := &stubLLM{
		queryJSON: `[{"query":"q","dimension":"BRANDED_DIRECT"}]`,
		answer:    "no brands",
	}
	report, err := testPipeline(&stubFetcher{}, llm).Run(context.Background(), Request{
		Company: &model.CompanyProfile{Name: "Acme"},
	})
	require.NoError(t, err)
	assert.Nil(t, report.Health)
	require.NotNil(t, report.Mentions)
	assert.Zero(t, report.Mentions.Visibility)
}

func TestRunRejectsEmptyRequest(t *testing.T) {
	_, err := testPipeline(&stubFetcher{}, &stubLLM{}).Run(context.Background(), Request{})
	require.Error(t, err)
}

func TestRunRejectsUnnamedCompany(t *testing.T) {
	_, err := testPipeline(&stubFetcher{}, &stubLLM{}).Run(context.Background(), Request{
		Company: &model.CompanyProfile{Industry: "x"},
	})
	require.Error(t, err)
}

func TestRunIDsAreUnique(t *testing.T) {
	f := &stubFetcher{result: model.FetchResult{FinalURL: "https://a", HTML: "<html></html>"}}
	p := testPipeline(f, &stubLLM{})
	first, err := p.Run(context.Background(), Request{URL: "https://a"})
	require.NoError(t, err)
	second, err := p.Run(context.Background(), Request{URL: "https://a"})
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
}
