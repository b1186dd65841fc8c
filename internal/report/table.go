// Package report renders completed runs for the downstream consumers: a
// text table for terminals, CSV for spreadsheets, and a GeoJSON layer for
// map rendering.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/meridian-analytics/siterank/internal/model"
)

// noneFound is printed when a category has no facilities at all.
const noneFound = "none found"

// WriteTable renders ranked areas as a fixed-width text table.
func WriteTable(w io.Writer, areas []model.ScoredArea) error {
	header := fmt.Sprintf("%-4s %-12s %-30s %6s %10s %10s %10s %12s\n",
		"Rank", "Area", "Name", "Decile", "Pop", "Health km", "Res km", "Total")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "report: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 100)); err != nil {
		return eris.Wrap(err, "report: write table separator")
	}

	for i, a := range areas {
		name := a.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		line := fmt.Sprintf("%-4d %-12s %-30s %6d %10d %10s %10s %12.1f\n",
			i+1, a.AreaID, name, a.IMDDecile, a.Population,
			formatKM(a.HealthcareKM), formatKM(a.ResearchKM), a.TotalScore)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "report: write table row")
		}
	}
	return nil
}

// formatKM renders a distance, or the none-found marker for a nil distance.
func formatKM(km *float64) string {
	if km == nil {
		return noneFound
	}
	return fmt.Sprintf("%.2f", *km)
}
