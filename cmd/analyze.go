package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/federicodeponte/openanalytics/internal/model"
	"github.com/federicodeponte/openanalytics/internal/pipeline"
)

var analyzeFlags struct {
	url            string
	company        string
	industry       string
	products       []string
	targetAudience string
	competitors    []string
	numQueries     int
	healthOnly     bool
	mentionsOnly   bool
	output         string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run health and visibility analysis",
	Long:  "Runs the website health check for --url and the AI visibility probe for --company; both run concurrently when both are given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeFlags.healthOnly && analyzeFlags.mentionsOnly {
			return eris.New("--health-only and --mentions-only are mutually exclusive")
		}

		req := pipeline.Request{NumQueries: analyzeFlags.numQueries}
		if !analyzeFlags.mentionsOnly {
			req.URL = analyzeFlags.url
		}
		if !analyzeFlags.healthOnly && analyzeFlags.company != "" {
			req.Company = &model.CompanyProfile{
				Name:           analyzeFlags.company,
				Industry:       analyzeFlags.industry,
				Products:       analyzeFlags.products,
				TargetAudience: analyzeFlags.targetAudience,
				Competitors:    analyzeFlags.competitors,
			}
		}

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		report, err := p.Run(cmd.Context(), req)
		if err != nil {
			return err
		}
		for _, be := range report.BranchErrors {
			zap.L().Warn("branch failed",
				zap.String("branch", be.Branch),
				zap.String("error", be.Error))
		}

		return writeReport(report, analyzeFlags.output)
	},
}

func writeReport(report *model.AnalysisReport, path string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrap(err, "create output file")
		}
		defer f.Close() //nolint:errcheck
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return eris.Wrap(err, "encode report")
	}
	return nil
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFlags.url, "url", "", "website URL for the health branch")
	analyzeCmd.Flags().StringVar(&analyzeFlags.company, "company", "", "company name for the mentions branch")
	analyzeCmd.Flags().StringVar(&analyzeFlags.industry, "industry", "", "company industry")
	analyzeCmd.Flags().StringSliceVar(&analyzeFlags.products, "products", nil, "company products")
	analyzeCmd.Flags().StringVar(&analyzeFlags.targetAudience, "target-audience", "", "who the company sells to")
	analyzeCmd.Flags().StringSliceVar(&analyzeFlags.competitors, "competitors", nil, "known competitors")
	analyzeCmd.Flags().IntVar(&analyzeFlags.numQueries, "num-queries", 0, "probe queries to generate (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.healthOnly, "health-only", false, "run only the health branch")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.mentionsOnly, "mentions-only", false, "run only the mentions branch")
	analyzeCmd.Flags().StringVar(&analyzeFlags.output, "output", "", "write the JSON report to a file instead of stdout")
	rootCmd.AddCommand(analyzeCmd)
}
