package mentions

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/federicodeponte/openanalytics/internal/genai"
	"github.com/federicodeponte/openanalytics/internal/model"
)

// defaultQueryCount is how many probe queries a run generates when the
// caller does not say.
const defaultQueryCount = 10

// Service runs the full mentions branch: generate queries, probe, and
// aggregate. Platforms is optional; when set, each query is also fanned out
// across the configured answer engines.
type Service struct {
	generator *QueryGenerator
	prober    *Prober
	platforms []Platform
}

// NewService creates a mentions Service on the given text generator.
func NewService(llm genai.TextGenerator, platforms ...Platform) *Service {
	return &Service{
		generator: NewQueryGenerator(llm),
		prober:    NewProber(llm),
		platforms: platforms,
	}
}

// Run executes the mentions branch for one company.
func (s *Service) Run(ctx context.Context, profile model.CompanyProfile, numQueries int) (*model.MentionsReport, error) {
	if profile.Name == "" {
		return nil, eris.New("mentions: company name is required")
	}
	if numQueries <= 0 {
		numQueries = defaultQueryCount
	}

	start := time.Now()

	queries, err := s.generator.Generate(ctx, profile, numQueries)
	if err != nil {
		return nil, eris.Wrap(err, "mentions: generate queries")
	}
	zap.L().Info("queries generated",
		zap.String("company", profile.Name),
		zap.Int("count", len(queries)))

	results := s.prober.ProbeAll(ctx, queries, profile.Name)

	report := &model.MentionsReport{
		CompanyName:      profile.Name,
		QueriesGenerated: queries,
		QueryResults:     results,
		VisibilityReport: Aggregate(results),
	}

	if len(s.platforms) > 0 {
		platformResults := ProbePlatforms(ctx, s.platforms, queries, profile.Name)
		fanned := AggregatePlatforms(platformResults)
		report.ByPlatform = fanned.ByPlatform
	}

	report.ExecutionTime = time.Since(start).Seconds()
	zap.L().Info("mentions branch complete",
		zap.String("company", profile.Name),
		zap.Float64("visibility", report.Visibility),
		zap.String("band", report.Band))
	return report, nil
}
