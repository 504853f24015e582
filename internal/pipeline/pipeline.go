// Package pipeline coordinates the two analysis branches: website health
// and AI visibility. The branches are independent; one failing never stops
// the other.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/federicodeponte/openanalytics/internal/health"
	"github.com/federicodeponte/openanalytics/internal/mentions"
	"github.com/federicodeponte/openanalytics/internal/model"
)

// Request selects which branches run. URL drives the health branch,
// Company the mentions branch; at least one must be set.
type Request struct {
	URL        string
	Company    *model.CompanyProfile
	NumQueries int
}

// Pipeline runs analysis requests.
type Pipeline struct {
	health   *health.Checker
	mentions *mentions.Service
}

// New creates a Pipeline.
func New(h *health.Checker, m *mentions.Service) *Pipeline {
	return &Pipeline{health: h, mentions: m}
}

// Run executes the requested branches concurrently and always returns a
// complete report. Branch failures land in BranchErrors with the first one
// mirrored into Error; Run itself only errors on an invalid request.
func (p *Pipeline) Run(ctx context.Context, req Request) (*model.AnalysisReport, error) {
	if req.URL == "" && req.Company == nil {
		return nil, eris.New("pipeline: request needs a url or a company profile")
	}
	if req.Company != nil && req.Company.Name == "" {
		return nil, eris.New("pipeline: company profile needs a name")
	}

	report := &model.AnalysisReport{RunID: uuid.NewString()}
	start := time.Now()
	zap.L().Info("pipeline run started",
		zap.String("run_id", report.RunID),
		zap.String("url", req.URL),
		zap.Bool("mentions", req.Company != nil))

	var healthErr, mentionsErr error
	g, gctx := errgroup.WithContext(ctx)
	if req.URL != "" {
		g.Go(func() error {
			report.Health, healthErr = p.health.Check(gctx, req.URL)
			return nil
		})
	}
	if req.Company != nil {
		g.Go(func() error {
			report.Mentions, mentionsErr = p.mentions.Run(gctx, *req.Company, req.NumQueries)
			return nil
		})
	}
	_ = g.Wait()

	if healthErr != nil {
		report.BranchErrors = append(report.BranchErrors, model.BranchError{
			Branch: "health", Error: healthErr.Error(),
		})
	}
	if mentionsErr != nil {
		report.BranchErrors = append(report.BranchErrors, model.BranchError{
			Branch: "mentions", Error: mentionsErr.Error(),
		})
	}
	if len(report.BranchErrors) > 0 {
		report.Error = report.BranchErrors[0].Error
	}

	report.TotalTime = time.Since(start).Seconds()
	zap.L().Info("pipeline run finished",
		zap.String("run_id", report.RunID),
		zap.Float64("total_time", report.TotalTime),
		zap.Int("branch_errors", len(report.BranchErrors)))
	return report, nil
}
