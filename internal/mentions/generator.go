// Package mentions measures how visible a company is in AI-generated
// answers: it generates hyperniche buyer queries, probes answer engines
// with them, and aggregates the mention rate into a visibility report.
package mentions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/federicodeponte/openanalytics/internal/genai"
	"github.com/federicodeponte/openanalytics/internal/model"
)

// generationAttempts is how many times malformed query JSON is regenerated
// before falling back to deterministic queries.
const generationAttempts = 3

// QueryGenerator produces probe queries for a company profile.
type QueryGenerator struct {
	llm genai.TextGenerator
}

// NewQueryGenerator creates a QueryGenerator.
func NewQueryGenerator(llm genai.TextGenerator) *QueryGenerator {
	return &QueryGenerator{llm: llm}
}

const queryPromptTemplate = `You are simulating real buyers researching solutions with AI assistants.

Company: %s
Industry: %s
Products: %s
Target audience: %s
Competitors: %s

Generate exactly %d search queries a potential buyer would ask an AI assistant.
Mix: ~70%% unbranded hyperniche queries (specific problem + niche, never naming the company),
~20%% competitive queries (comparisons or alternatives in the niche),
~10%% branded queries (naming the company directly).

Respond with a JSON array only, no prose. Each element:
{"query": "...", "dimension": "UNBRANDED_HYPERNICHE" | "COMPETITIVE_HYPERNICHE" | "BRANDED_DIRECT"}`

// Generate produces n probe queries. Malformed model output is regenerated
// up to three times; after that the deterministic fallback set is used, so
// the pipeline always has queries to probe with.
func (g *QueryGenerator) Generate(ctx context.Context, profile model.CompanyProfile, n int) ([]model.GeneratedQuery, error) {
	prompt := fmt.Sprintf(queryPromptTemplate,
		profile.Name,
		profile.Industry,
		strings.Join(profile.Products, ", "),
		profile.TargetAudience,
		strings.Join(profile.Competitors, ", "),
		n)

	for attempt := 1; attempt <= generationAttempts; attempt++ {
		res, err := g.llm.Generate(ctx, genai.GenerateRequest{
			Prompt:     prompt,
			JSONOutput: true,
		})
		if err != nil {
			zap.L().Warn("query generation call failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		queries, err := parseQueries(res.Text)
		if err != nil {
			zap.L().Warn("query generation returned invalid JSON",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		if len(queries) > n {
			queries = queries[:n]
		}
		return queries, nil
	}

	zap.L().Warn("query generation exhausted, using fallback queries",
		zap.String("company", profile.Name))
	return FallbackQueries(profile, n), nil
}

func parseQueries(raw string) ([]model.GeneratedQuery, error) {
	var queries []model.GeneratedQuery
	if err := json.Unmarshal([]byte(stripFences(raw)), &queries); err != nil {
		return nil, err
	}

	valid := queries[:0]
	for _, q := range queries {
		q.Query = strings.TrimSpace(q.Query)
		if q.Query == "" {
			continue
		}
		switch q.Dimension {
		case model.DimensionUnbranded, model.DimensionCompetitive, model.DimensionBranded:
		default:
			q.Dimension = model.DimensionUnbranded
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("mentions: no usable queries in model output")
	}
	return valid, nil
}

// stripFences removes a markdown code fence wrapping, which models add even
// when asked for raw JSON.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// FallbackQueries builds deterministic queries when generation fails. At
// most three are produced, one per dimension.
func FallbackQueries(profile model.CompanyProfile, n int) []model.GeneratedQuery {
	product := profile.Industry
	if len(profile.Products) > 0 && strings.TrimSpace(profile.Products[0]) != "" {
		product = profile.Products[0]
	}

	all := []model.GeneratedQuery{
		{Query: fmt.Sprintf("best %s for %s", product, profile.Industry), Dimension: model.DimensionUnbranded},
		{Query: fmt.Sprintf("%s alternatives", profile.Name), Dimension: model.DimensionCompetitive},
		{Query: profile.Name, Dimension: model.DimensionBranded},
	}
	if n < len(all) {
		return all[:n]
	}
	return all
}
