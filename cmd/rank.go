package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-analytics/siterank/internal/config"
	"github.com/meridian-analytics/siterank/internal/engine"
	"github.com/meridian-analytics/siterank/internal/fetch"
	"github.com/meridian-analytics/siterank/internal/ingest"
	"github.com/meridian-analytics/siterank/internal/model"
	"github.com/meridian-analytics/siterank/internal/report"
	"github.com/meridian-analytics/siterank/internal/scorer"
	"github.com/meridian-analytics/siterank/internal/store"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score and rank candidate areas",
	Long: `Load candidate areas and existing facilities, score every candidate by
deprivation-weighted need and proximity to healthcare and research
facilities, and print the top-ranked areas.

Sources may be local files or http(s)/ftp URLs. Candidates are read from
CSV or XLSX; facilities from CSV or shapefile.

Examples:
  # Rank with defaults (10 km radius, top 10)
  rank --candidates areas.csv --healthcare hospitals.csv --research labs.csv

  # Remote sources, wider radius, full CSV export
  rank --candidates https://data.example.org/lsoa.xlsx \
       --healthcare ftp://ftp.example.org/pub/hospitals.shp \
       --research labs.csv \
       --radius 25 --top 0 --format csv --output ranked.csv

  # Need-only scoring with a weight profile
  rank --candidates areas.csv --healthcare hospitals.csv --research labs.csv \
       --profile profiles/need-only.yaml --save`,
	RunE: runRank,
}

func init() {
	f := rankCmd.Flags()
	f.String("candidates", "", "candidate areas source: CSV or XLSX, local path or URL (required)")
	f.String("healthcare", "", "healthcare facilities source: CSV or shapefile, local path or URL")
	f.String("research", "", "research facilities source: CSV or shapefile, local path or URL")
	f.Float64("radius", 0, "proximity radius in km (overrides config)")
	f.Int("top", -1, "number of ranked areas to report, 0 for all (overrides config)")
	f.Float64("need-weight", -1, "weight of the need score (overrides config)")
	f.Float64("healthcare-weight", -1, "weight of the healthcare proximity score (overrides config)")
	f.Float64("research-weight", -1, "weight of the research proximity score (overrides config)")
	f.Bool("normalize-need", false, "min-max normalize need scores before weighting")
	f.String("profile", "", "YAML weight profile overriding config values")
	f.String("format", "table", "output format: table, csv, or geojson")
	f.String("output", "", "output file path (default: stdout)")
	f.String("charset", "", "source character set (e.g. windows-1252, default UTF-8)")
	f.String("sheet", "", "XLSX sheet name (default: first sheet)")
	f.Bool("save", false, "persist the run to the configured store")

	_ = rankCmd.MarkFlagRequired("candidates")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "rank"))

	format, _ := cmd.Flags().GetString("format")
	if format != "table" && format != "csv" && format != "geojson" {
		return eris.Errorf("rank: --format must be table, csv, or geojson (got %q)", format)
	}

	rankCfg, err := applyRankOverrides(cmd, cfg.Rank)
	if err != nil {
		return err
	}
	params := paramsFromRankConfig(rankCfg)
	if err := params.Validate(); err != nil {
		return err
	}

	in, err := loadInputs(ctx, cmd, log)
	if err != nil {
		return err
	}

	log.Info("scoring candidates",
		zap.Int("candidates", len(in.Candidates)),
		zap.Int("healthcare_facilities", len(in.Healthcare)),
		zap.Int("research_facilities", len(in.Research)),
		zap.Float64("radius_km", params.RadiusKM),
		zap.Int("top_k", params.TopK),
	)

	res, err := engine.Run(ctx, in, params)
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if err := outputRanked(res.Ranked, format, outputPath); err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}
		if err := st.SaveRun(ctx, res); err != nil {
			return err
		}
		fmt.Printf("Run %s saved (%d areas scored)\n", res.RunID, len(res.All))
	}

	return nil
}

// applyRankOverrides layers the profile and CLI flags over the config
// defaults.
func applyRankOverrides(cmd *cobra.Command, base config.RankConfig) (config.RankConfig, error) {
	c := base

	if path, _ := cmd.Flags().GetString("profile"); path != "" {
		p, err := config.LoadProfile(path)
		if err != nil {
			return c, err
		}
		p.Apply(&c)
	}

	if v, _ := cmd.Flags().GetFloat64("radius"); v > 0 {
		c.RadiusKM = v
	}
	if v, _ := cmd.Flags().GetInt("top"); v >= 0 {
		c.TopK = v
	}
	if v, _ := cmd.Flags().GetFloat64("need-weight"); v >= 0 {
		c.NeedWeight = v
	}
	if v, _ := cmd.Flags().GetFloat64("healthcare-weight"); v >= 0 {
		c.HealthcareWeight = v
	}
	if v, _ := cmd.Flags().GetFloat64("research-weight"); v >= 0 {
		c.ResearchWeight = v
	}
	if v, _ := cmd.Flags().GetBool("normalize-need"); v {
		c.NormalizeNeed = true
	}

	return c, nil
}

func paramsFromRankConfig(c config.RankConfig) engine.Params {
	return engine.Params{
		RadiusKM: c.RadiusKM,
		Weights: scorer.Weights{
			Need:       c.NeedWeight,
			Healthcare: c.HealthcareWeight,
			Research:   c.ResearchWeight,
		},
		TopK:          c.TopK,
		NormalizeNeed: c.NormalizeNeed,
	}
}

// loadInputs localizes each source and parses it into the engine's input
// set. Missing facility sources are treated as empty categories.
func loadInputs(ctx context.Context, cmd *cobra.Command, log *zap.Logger) (engine.Inputs, error) {
	var in engine.Inputs

	charset, _ := cmd.Flags().GetString("charset")
	sheet, _ := cmd.Flags().GetString("sheet")
	opts := ingest.Options{Charset: charset, Sheet: sheet}

	fetcher := fetch.New(fetch.Options{
		UserAgent:      cfg.Fetch.UserAgent,
		Timeout:        time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries:     cfg.Fetch.MaxRetries,
		RequestsPerSec: cfg.Fetch.RequestsPerSec,
	})

	candSource, _ := cmd.Flags().GetString("candidates")
	candPath, cleanup, err := fetcher.Localize(ctx, candSource)
	if err != nil {
		return in, err
	}
	defer cleanup()

	in.Candidates, err = ingest.LoadCandidates(candPath, opts)
	if err != nil {
		return in, err
	}
	log.Debug("candidates loaded", zap.String("source", candSource), zap.Int("count", len(in.Candidates)))

	for _, fc := range []struct {
		flag     string
		category model.Category
		dst      *[]model.Facility
	}{
		{"healthcare", model.CategoryHealthcare, &in.Healthcare},
		{"research", model.CategoryResearch, &in.Research},
	} {
		source, _ := cmd.Flags().GetString(fc.flag)
		if source == "" {
			continue
		}
		path, cleanup, err := fetcher.Localize(ctx, source)
		if err != nil {
			return in, err
		}
		defer cleanup()

		*fc.dst, err = ingest.LoadFacilities(path, fc.category, opts)
		if err != nil {
			return in, err
		}
		log.Debug("facilities loaded",
			zap.String("category", string(fc.category)),
			zap.String("source", source),
			zap.Int("count", len(*fc.dst)),
		)
	}

	return in, nil
}

func outputRanked(areas []model.ScoredArea, format, outputPath string) error {
	var w io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "rank: create output file %s", outputPath)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	switch format {
	case "csv":
		return report.WriteCSV(w, areas)
	case "geojson":
		return report.WriteGeoJSON(w, areas)
	default:
		return report.WriteTable(w, areas)
	}
}
