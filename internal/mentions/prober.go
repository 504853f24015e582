package mentions

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/federicodeponte/openanalytics/internal/genai"
	"github.com/federicodeponte/openanalytics/internal/model"
)

// previewLength caps the stored response excerpt.
const previewLength = 200

// Prober sends generated queries to a text generator and records whether
// the company is mentioned in each answer.
type Prober struct {
	llm genai.TextGenerator
}

// NewProber creates a Prober.
func NewProber(llm genai.TextGenerator) *Prober {
	return &Prober{llm: llm}
}

// Probe asks one query and inspects the answer. Failures never propagate:
// an errored probe is a QueryResult with HasResponse false and the error
// string recorded, so one bad query cannot sink a run.
func (p *Prober) Probe(ctx context.Context, query model.GeneratedQuery, company string) model.QueryResult {
	result := model.QueryResult{
		Query:     query.Query,
		Dimension: query.Dimension,
	}

	res, err := p.llm.Generate(ctx, genai.GenerateRequest{
		Prompt:       query.Query,
		EnableSearch: true,
	})
	if err != nil {
		result.Error = err.Error()
		zap.L().Warn("probe failed",
			zap.String("query", query.Query),
			zap.Error(err))
		return result
	}

	result.HasResponse = true
	result.CompanyMentioned = containsMention(res.Text, company)
	result.ResponseLength = len(res.Text)
	result.ResponsePreview = preview(res.Text)
	return result
}

// ProbeAll probes every query concurrently. Results keep the input order
// via positional slots.
func (p *Prober) ProbeAll(ctx context.Context, queries []model.GeneratedQuery, company string) []model.QueryResult {
	results := make([]model.QueryResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			results[i] = p.Probe(gctx, q, company)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

var foldCaser = cases.Fold()

// containsMention reports whether the company name appears in the text,
// using Unicode case folding rather than ASCII lowercasing.
func containsMention(text, company string) bool {
	company = strings.TrimSpace(company)
	if company == "" {
		return false
	}
	return strings.Contains(foldCaser.String(text), foldCaser.String(company))
}

func preview(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= previewLength {
		return text
	}
	cut := text[:previewLength]
	// Avoid splitting a multi-byte rune at the boundary.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
