// Package genai provides text generation with optional search grounding.
// Everything is constructor-injected so callers and tests swap providers
// freely.
package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/federicodeponte/openanalytics/internal/resilience"
	"github.com/federicodeponte/openanalytics/pkg/gemini"
	"github.com/federicodeponte/openanalytics/pkg/serper"
)

// TextGenerator produces text from a prompt. The query generator and the
// probe platforms depend on this interface, never on a concrete provider.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// GenerateRequest describes one generation call.
type GenerateRequest struct {
	Prompt      string
	System      string
	Temperature *float64
	MaxTokens   int
	// JSONOutput asks the provider for a JSON response body.
	JSONOutput bool
	// ThinkingBudget bounds reasoning tokens. Nil leaves the provider
	// default; it is dropped to zero on retry after an empty completion.
	ThinkingBudget *int
	// EnableSearch allows grounding the prompt with live web results when
	// the prompt looks time-sensitive.
	EnableSearch bool
}

// GenerateResult is the outcome of a generation call.
type GenerateResult struct {
	Text       string
	SearchUsed bool
}

// Generator implements TextGenerator on Gemini, with Serper search
// grounding.
type Generator struct {
	llm      gemini.Client
	search   serper.Client
	httpc    *http.Client
	retryCfg resilience.RetryConfig
}

// NewGenerator creates a Generator. search may be nil, which disables
// grounding and the search tool.
func NewGenerator(llm gemini.Client, search serper.Client) *Generator {
	return &Generator{
		llm:      llm,
		search:   search,
		httpc:    defaultToolHTTPClient,
		retryCfg: resilience.DefaultRetryConfig(),
	}
}

// searchIndicators mark prompts that benefit from live results. Matching is
// deliberately coarse; a false positive only costs one search call.
var searchIndicators = []string{
	"current", "latest", "recent", "today", "this year",
	"2024", "2025", "2026",
	"news", "price", "pricing", "market", "trend",
}

func needsWebSearch(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, ind := range searchIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// Generate runs one generation call. Transient provider errors and empty
// completions are retried; the retry drops the thinking budget to zero,
// which in practice unsticks models that spent the whole budget reasoning.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	grounding := ""
	searchUsed := false
	if req.EnableSearch && g.search != nil && needsWebSearch(req.Prompt) {
		grounding = g.searchContext(ctx, req.Prompt)
		searchUsed = grounding != ""
	}

	attempt := 0
	text, err := resilience.DoVal(ctx, g.retryCfg, "genai.generate", func() (string, error) {
		attempt++
		call := buildRequest(req, grounding)
		if attempt > 1 {
			call.GenerationConfig.ThinkingConfig = &gemini.ThinkingConfig{ThinkingBudget: 0}
			zap.L().Debug("retrying with thinking disabled", zap.Int("attempt", attempt))
		}

		resp, err := g.llm.GenerateContent(ctx, call)
		if err != nil {
			return "", classify(err)
		}
		out := strings.TrimSpace(resp.Text())
		if out == "" {
			return "", resilience.ErrEmptyCompletion
		}
		return out, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "genai: generate")
	}

	return &GenerateResult{Text: text, SearchUsed: searchUsed}, nil
}

// searchContext fetches organic results for the prompt and formats them as
// grounding context. Search failures degrade to an ungrounded call.
func (g *Generator) searchContext(ctx context.Context, prompt string) string {
	resp, err := g.search.Search(ctx, serper.SearchRequest{Query: prompt, NumResults: 5})
	if err != nil {
		zap.L().Warn("search grounding failed, continuing without", zap.Error(err))
		return ""
	}
	if len(resp.Organic) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Web search results:\n")
	for _, r := range resp.Organic {
		fmt.Fprintf(&b, "- %s (%s): %s\n", r.Title, r.Link, r.Snippet)
	}
	return b.String()
}

func buildRequest(req GenerateRequest, grounding string) gemini.GenerateContentRequest {
	prompt := req.Prompt
	if grounding != "" {
		prompt = grounding + "\n\n" + prompt
	}

	cfg := &gemini.GenerationConfig{Temperature: req.Temperature}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = &req.MaxTokens
	}
	if req.JSONOutput {
		cfg.ResponseMimeType = "application/json"
	}
	if req.ThinkingBudget != nil {
		cfg.ThinkingConfig = &gemini.ThinkingConfig{ThinkingBudget: *req.ThinkingBudget}
	}

	call := gemini.GenerateContentRequest{
		Contents:         []gemini.Content{{Role: "user", Parts: []gemini.Part{{Text: prompt}}}},
		GenerationConfig: cfg,
	}
	if req.System != "" {
		call.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: req.System}}}
	}
	return call
}

// classify maps provider errors onto the retry taxonomy.
func classify(err error) error {
	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
		return resilience.NewTransientError(err, apiErr.StatusCode)
	}
	return err
}
