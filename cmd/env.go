package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/federicodeponte/openanalytics/internal/config"
	"github.com/federicodeponte/openanalytics/internal/fetcher"
	"github.com/federicodeponte/openanalytics/internal/genai"
	"github.com/federicodeponte/openanalytics/internal/health"
	"github.com/federicodeponte/openanalytics/internal/mentions"
	"github.com/federicodeponte/openanalytics/internal/pipeline"
	"github.com/federicodeponte/openanalytics/pkg/anthropic"
	"github.com/federicodeponte/openanalytics/pkg/gemini"
	"github.com/federicodeponte/openanalytics/pkg/perplexity"
	"github.com/federicodeponte/openanalytics/pkg/serper"
)

// buildPipeline wires the configured providers into a runnable pipeline.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	if cfg.Gemini.Key == "" {
		return nil, eris.New("gemini.key is required (OPENANALYTICS_GEMINI_KEY)")
	}

	llmClient := gemini.NewClient(cfg.Gemini.Key,
		gemini.WithBaseURL(cfg.Gemini.BaseURL),
		gemini.WithModel(cfg.Gemini.Model))

	var searchClient serper.Client
	if cfg.Serper.Key != "" {
		searchClient = serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))
	} else {
		zap.L().Warn("serper.key not set, search grounding disabled")
	}

	generator := genai.NewGenerator(llmClient, searchClient)

	platforms, err := buildPlatforms(cfg, generator)
	if err != nil {
		return nil, err
	}

	webFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:         cfg.Fetch.UserAgent,
		Timeout:           time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries:        cfg.Fetch.MaxRetries,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
	})

	return pipeline.New(
		health.NewChecker(webFetcher),
		mentions.NewService(generator, platforms...),
	), nil
}

// buildPlatforms maps configured platform names onto probe clients. An
// unknown name or a missing key is a configuration error, not a silent
// skip.
func buildPlatforms(cfg *config.Config, generator *genai.Generator) ([]mentions.Platform, error) {
	var platforms []mentions.Platform
	for _, name := range cfg.Mentions.Platforms {
		switch name {
		case "gemini":
			platforms = append(platforms, mentions.NewGeminiPlatform(generator))
		case "perplexity":
			if cfg.Perplexity.Key == "" {
				return nil, eris.New("perplexity.key is required for the perplexity platform")
			}
			platforms = append(platforms, mentions.NewPerplexityPlatform(
				perplexity.NewClient(cfg.Perplexity.Key,
					perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
					perplexity.WithModel(cfg.Perplexity.Model))))
		case "claude":
			if cfg.Anthropic.Key == "" {
				return nil, eris.New("anthropic.key is required for the claude platform")
			}
			platforms = append(platforms, mentions.NewClaudePlatform(
				anthropic.NewClient(cfg.Anthropic.Key,
					anthropic.WithModel(cfg.Anthropic.Model))))
		default:
			return nil, eris.Errorf("unknown mentions platform %q", name)
		}
	}
	return platforms, nil
}
