package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/meridian-analytics/siterank/internal/report"
	"github.com/meridian-analytics/siterank/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored ranking runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, limit)
		if err != nil {
			return err
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a stored run's ranked areas",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		format, _ := cmd.Flags().GetString("format")
		if format != "table" && format != "csv" && format != "geojson" {
			return eris.Errorf("runs: --format must be table, csv, or geojson (got %q)", format)
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}

		areas := run.Ranked()
		if all, _ := cmd.Flags().GetBool("all"); all {
			areas = run.Areas
		}

		var w io.Writer = os.Stdout
		if outputPath, _ := cmd.Flags().GetString("output"); outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				return eris.Wrapf(err, "runs: create output file %s", outputPath)
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
			formatRunHeader(os.Stdout, run)
			return report.WriteTable(w, areas)
		}
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 0, "maximum number of runs to list (default 50)")

	f := runsShowCmd.Flags()
	f.String("format", "table", "output format: table, csv, or geojson")
	f.String("output", "", "output file path (default: stdout)")
	f.Bool("all", false, "show every scored area, not just the stored top-K")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func formatRunsList(w io.Writer, runs []store.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No stored runs.")
		return
	}

	fmt.Fprintf(w, "%-10s %-17s %8s %6s %6s %10s\n",
		"ID", "CREATED", "RADIUS", "TOP", "NORM", "CANDIDATES")
	fmt.Fprintln(w, strings.Repeat("-", 62))
	for _, r := range runs {
		fmt.Fprintf(w, "%-10s %-17s %8.1f %6d %6v %10d\n",
			truncateID(r.ID),
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.RadiusKM,
			r.TopK,
			r.NormalizeNeed,
			r.Candidates,
		)
	}
}

func formatRunHeader(w io.Writer, run *store.Run) {
	fmt.Fprintf(w, "Run:     %s\n", run.ID)
	fmt.Fprintf(w, "Created: %s\n", run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Radius:  %.1f km\n", run.RadiusKM)
	fmt.Fprintf(w, "Weights: need=%.2f healthcare=%.2f research=%.2f\n",
		run.NeedWeight, run.HealthcareWeight, run.ResearchWeight)
	fmt.Fprintf(w, "Scored:  %d candidate areas\n\n", run.Candidates)
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
