package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"github.com/meridian-analytics/siterank/internal/model"
)

// WriteCSV renders scored areas as CSV, one row per area in the given
// order.
func WriteCSV(w io.Writer, areas []model.ScoredArea) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"area_id", "name", "imd_decile", "population",
		"healthcare_km", "research_km",
		"need_score", "healthcare_score", "research_score", "total_score",
	}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "report: write CSV header")
	}

	for _, a := range areas {
		row := []string{
			a.AreaID,
			a.Name,
			fmt.Sprintf("%d", a.IMDDecile),
			fmt.Sprintf("%d", a.Population),
			csvKM(a.HealthcareKM),
			csvKM(a.ResearchKM),
			fmt.Sprintf("%.2f", a.NeedScore),
			fmt.Sprintf("%.2f", a.HealthcareScore),
			fmt.Sprintf("%.2f", a.ResearchScore),
			fmt.Sprintf("%.2f", a.TotalScore),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "report: write CSV row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush CSV")
}

func csvKM(km *float64) string {
	if km == nil {
		return ""
	}
	return fmt.Sprintf("%.3f", *km)
}
