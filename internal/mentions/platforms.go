package mentions

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/federicodeponte/openanalytics/internal/genai"
	"github.com/federicodeponte/openanalytics/internal/model"
	"github.com/federicodeponte/openanalytics/pkg/anthropic"
	"github.com/federicodeponte/openanalytics/pkg/perplexity"
)

// mentionCapPerQuery bounds how many platform mentions of one query count
// toward the aggregate, so a single query echoed by every platform cannot
// dominate the visibility number.
const mentionCapPerQuery = 3

// Platform is one answer engine the fanned-out probe can ask.
type Platform interface {
	Name() string
	Ask(ctx context.Context, query string) (string, error)
}

// GeminiPlatform probes through the injected text generator.
type GeminiPlatform struct {
	llm genai.TextGenerator
}

// NewGeminiPlatform creates a Gemini-backed platform.
func NewGeminiPlatform(llm genai.TextGenerator) *GeminiPlatform {
	return &GeminiPlatform{llm: llm}
}

func (p *GeminiPlatform) Name() string { return "gemini" }

func (p *GeminiPlatform) Ask(ctx context.Context, query string) (string, error) {
	res, err := p.llm.Generate(ctx, genai.GenerateRequest{Prompt: query, EnableSearch: true})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// PerplexityPlatform probes through the Perplexity API.
type PerplexityPlatform struct {
	client perplexity.Client
}

// NewPerplexityPlatform creates a Perplexity-backed platform.
func NewPerplexityPlatform(client perplexity.Client) *PerplexityPlatform {
	return &PerplexityPlatform{client: client}
}

func (p *PerplexityPlatform) Name() string { return "perplexity" }

func (p *PerplexityPlatform) Ask(ctx context.Context, query string) (string, error) {
	return p.client.Answer(ctx, query)
}

// ClaudePlatform probes through the Anthropic API.
type ClaudePlatform struct {
	client anthropic.Client
}

// NewClaudePlatform creates a Claude-backed platform.
func NewClaudePlatform(client anthropic.Client) *ClaudePlatform {
	return &ClaudePlatform{client: client}
}

func (p *ClaudePlatform) Name() string { return "claude" }

func (p *ClaudePlatform) Ask(ctx context.Context, query string) (string, error) {
	return p.client.Answer(ctx, query)
}

// ProbePlatforms fans each query out to every platform concurrently.
// Results keep input order for queries and registration order for
// platforms. Platform failures are recorded per slot, never propagated.
func ProbePlatforms(ctx context.Context, platforms []Platform, queries []model.GeneratedQuery, company string) []model.PlatformQueryResult {
	results := make([]model.PlatformQueryResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)

	for qi, q := range queries {
		results[qi] = model.PlatformQueryResult{
			Query:     q.Query,
			Dimension: q.Dimension,
			Platforms: make([]model.PlatformResult, len(platforms)),
		}
		for pi, platform := range platforms {
			qi, q, pi, platform := qi, q, pi, platform
			g.Go(func() error {
				results[qi].Platforms[pi] = probePlatform(gctx, platform, q.Query, company)
				return nil
			})
		}
	}
	_ = g.Wait()

	for qi := range results {
		mentions := 0
		for _, pr := range results[qi].Platforms {
			if pr.CompanyMentioned {
				mentions++
			}
		}
		results[qi].CountedMentions = min(mentions, mentionCapPerQuery)
	}
	return results
}

func probePlatform(ctx context.Context, platform Platform, query, company string) model.PlatformResult {
	result := model.PlatformResult{
		Platform:    platform.Name(),
		MentionType: model.MentionAbsent,
	}

	text, err := platform.Ask(ctx, query)
	if err != nil {
		result.Error = err.Error()
		zap.L().Warn("platform probe failed",
			zap.String("platform", platform.Name()),
			zap.String("query", query),
			zap.Error(err))
		return result
	}

	result.HasResponse = true
	result.ResponseLength = len(text)
	result.ResponsePreview = preview(text)
	if !containsMention(text, company) {
		return result
	}

	result.CompanyMentioned = true
	result.ListPosition = listPosition(text, company)
	result.MentionType = classifyMention(text, company, result.ListPosition)
	return result
}

var listItemRe = regexp.MustCompile(`(?m)^\s*(\d+)[.)]\s+(.*)$`)

// listPosition returns the number of the first enumerated list item naming
// the company, or 0 when the company is not in a numbered list.
func listPosition(text, company string) int {
	for _, m := range listItemRe.FindAllStringSubmatch(text, -1) {
		if containsMention(m[2], company) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return 0
			}
			return n
		}
	}
	return 0
}

// classifyMention labels a mention primary when the company leads the
// answer, either as the first list item or inside the opening passage.
func classifyMention(text, company string, position int) model.MentionType {
	if position == 1 {
		return model.MentionPrimary
	}
	if position == 0 {
		head := text
		if len(head) > 200 {
			head = head[:200]
		}
		if containsMention(head, company) {
			return model.MentionPrimary
		}
	}
	if strings.TrimSpace(text) == "" {
		return model.MentionAbsent
	}
	return model.MentionComparison
}
