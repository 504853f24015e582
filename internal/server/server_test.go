package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/federicodeponte/openanalytics/internal/genai"
	"github.com/federicodeponte/openanalytics/internal/health"
	"github.com/federicodeponte/openanalytics/internal/mentions"
	"github.com/federicodeponte/openanalytics/internal/model"
	"github.com/federicodeponte/openanalytics/internal/pipeline"
)

type stubFetcher struct {
	result model.FetchResult
}

func (s *stubFetcher) Fetch(_ context.Context, _ string) (model.FetchResult, error) {
	return s.result, nil
}

type stubLLM struct{}

func (stubLLM) Generate(_ context.Context, req genai.GenerateRequest) (*genai.GenerateResult, error) {
	if req.JSONOutput {
		return &genai.GenerateResult{Text: `[{"query":"best dental crm","dimension":"UNBRANDED_HYPERNICHE"}]`}, nil
	}
	return &genai.GenerateResult{Text: "Acme is well regarded."}, nil
}

func testRouter() http.Handler {
	f := &stubFetcher{result: model.FetchResult{
		FinalURL: "https://acme.example",
		HTML:     "<html><head><title>Acme dental CRM software</title></head><body><h1>Acme</h1></body></html>",
	}}
	p := pipeline.New(health.NewChecker(f), mentions.NewService(stubLLM{}))
	return New(p).Router()
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAnalyzeBothBranches(t *testing.T) {
	rec := postJSON(t, testRouter(), "/v1/analyze",
		`{"url":"https://acme.example","company":{"name":"Acme"},"num_queries":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var report model.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.NotEmpty(t, report.RunID)
	require.NotNil(t, report.Health)
	require.NotNil(t, report.Mentions)
	assert.Equal(t, 100.0, report.Mentions.Visibility)
}

func TestAnalyzeRequiresInput(t *testing.T) {
	rec := postJSON(t, testRouter(), "/v1/analyze", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeRejectsMalformedBody(t *testing.T) {
	rec := postJSON(t, testRouter(), "/v1/analyze", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheckEndpoint(t *testing.T) {
	rec := postJSON(t, testRouter(), "/v1/health-check", `{"url":"https://acme.example"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var report model.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.NotNil(t, report.Health)
	assert.Nil(t, report.Mentions)
}

func TestHealthCheckRequiresURL(t *testing.T) {
	rec := postJSON(t, testRouter(), "/v1/health-check", `{"company":{"name":"Acme"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMentionsCheckEndpoint(t *testing.T) {
	rec := postJSON(t, testRouter(), "/v1/mentions-check", `{"company":{"name":"Acme"},"num_queries":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var report model.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Nil(t, report.Health)
	require.NotNil(t, report.Mentions)
}

func TestMentionsCheckRequiresCompanyName(t *testing.T) {
	rec := postJSON(t, testRouter(), "/v1/mentions-check", `{"company":{"industry":"dental"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
