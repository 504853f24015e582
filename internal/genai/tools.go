package genai

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/federicodeponte/openanalytics/pkg/gemini"
	"github.com/federicodeponte/openanalytics/pkg/serper"
)

// maxToolIterations bounds the tool-execution loop. When the model is still
// requesting tools after this many rounds, it is forced to answer from what
// it has gathered.
const maxToolIterations = 5

const maxFetchedPageBytes = 100 << 10

// ChatResult is the outcome of a tool-assisted chat.
type ChatResult struct {
	Text                 string
	Iterations           int
	ToolCalls            int
	MaxIterationsReached bool
}

var toolDeclarations = []gemini.Tool{{
	FunctionDeclarations: []gemini.FunctionDeclaration{
		{
			Name:        "google_search",
			Description: "Search the web and return the top organic results.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string"},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "fetch_url",
			Description: "Fetch a web page and return its raw content, truncated to 100KB.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{"type": "string"},
				},
				"required": []string{"url"},
			},
		},
	},
}}

// ChatWithTools runs a generation loop where the model may search the web
// and fetch pages before answering. Tool failures are reported back to the
// model as error strings rather than aborting the loop.
func (g *Generator) ChatWithTools(ctx context.Context, system, prompt string) (*ChatResult, error) {
	contents := []gemini.Content{
		{Role: "user", Parts: []gemini.Part{{Text: prompt}}},
	}
	result := &ChatResult{}

	for iteration := 1; iteration <= maxToolIterations; iteration++ {
		result.Iterations = iteration

		call := gemini.GenerateContentRequest{Contents: contents, Tools: toolDeclarations}
		if system != "" {
			call.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: system}}}
		}

		resp, err := g.llm.GenerateContent(ctx, call)
		if err != nil {
			return nil, eris.Wrap(classify(err), "genai: tool chat")
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			result.Text = strings.TrimSpace(resp.Text())
			return result, nil
		}

		if len(resp.Candidates) > 0 {
			contents = append(contents, resp.Candidates[0].Content)
		}
		var responseParts []gemini.Part
		for _, fc := range calls {
			result.ToolCalls++
			output := g.executeTool(ctx, fc)
			responseParts = append(responseParts, gemini.Part{
				FunctionResponse: &gemini.FunctionResponse{
					Name:     fc.Name,
					Response: map[string]any{"output": output},
				},
			})
		}
		contents = append(contents, gemini.Content{Role: "user", Parts: responseParts})
	}

	// Out of iterations: force a final answer with no tools offered.
	result.MaxIterationsReached = true
	zap.L().Warn("tool loop hit iteration cap, forcing final answer",
		zap.Int("tool_calls", result.ToolCalls))

	contents = append(contents, gemini.Content{
		Role:  "user",
		Parts: []gemini.Part{{Text: "Answer now using only the information gathered so far."}},
	})
	call := gemini.GenerateContentRequest{Contents: contents}
	if system != "" {
		call.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: system}}}
	}
	resp, err := g.llm.GenerateContent(ctx, call)
	if err != nil {
		return nil, eris.Wrap(classify(err), "genai: tool chat final answer")
	}
	result.Text = strings.TrimSpace(resp.Text())
	return result, nil
}

func (g *Generator) executeTool(ctx context.Context, fc gemini.FunctionCall) string {
	switch fc.Name {
	case "google_search":
		query, _ := fc.Args["query"].(string)
		if query == "" {
			return "error: missing query argument"
		}
		if g.search == nil {
			return "error: search is not configured"
		}
		resp, err := g.search.Search(ctx, serper.SearchRequest{Query: query, NumResults: 5})
		if err != nil {
			return "error: " + err.Error()
		}
		var b strings.Builder
		for _, r := range resp.Organic {
			b.WriteString(r.Title + " (" + r.Link + "): " + r.Snippet + "\n")
		}
		if b.Len() == 0 {
			return "no results"
		}
		return b.String()
	case "fetch_url":
		rawURL, _ := fc.Args["url"].(string)
		if rawURL == "" {
			return "error: missing url argument"
		}
		return g.fetchPage(ctx, rawURL)
	default:
		return "error: unknown tool " + fc.Name
	}
}

func (g *Generator) fetchPage(ctx context.Context, rawURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "error: " + err.Error()
	}
	resp, err := g.httpc.Do(req)
	if err != nil {
		return "error: " + err.Error()
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchedPageBytes))
	if err != nil {
		return "error: " + err.Error()
	}
	return string(data)
}

var defaultToolHTTPClient = &http.Client{Timeout: 20 * time.Second}
