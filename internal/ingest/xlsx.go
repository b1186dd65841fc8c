package ingest

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/meridian-analytics/siterank/internal/model"
)

// candidatesFromXLSX reads candidate areas from a deprivation workbook. The
// first row of the sheet is the header; columns are matched by name,
// case-insensitively.
func candidatesFromXLSX(path string, opts Options) ([]model.CandidateArea, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open workbook %s", path)
	}

	sheet, err := getSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("ingest: workbook sheet %q is empty", sheet.Name)
	}

	cols, err := headerIndex(sheet.Rows[0], []string{
		"area_id", "name", "imd_decile", "population", "latitude", "longitude",
	})
	if err != nil {
		return nil, err
	}

	var out []model.CandidateArea
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if blankRow(cells) {
			continue
		}

		id := cellAt(cells, cols["area_id"])

		decile, err := strconv.Atoi(cellAt(cells, cols["imd_decile"]))
		if err != nil {
			return nil, &model.DataError{RecordID: id, Field: "imd_decile", Reason: "not an integer"}
		}
		population, err := strconv.ParseInt(cellAt(cells, cols["population"]), 10, 64)
		if err != nil {
			return nil, &model.DataError{RecordID: id, Field: "population", Reason: "not an integer"}
		}
		lat, err := strconv.ParseFloat(cellAt(cells, cols["latitude"]), 64)
		if err != nil {
			return nil, &model.DataError{RecordID: id, Field: "latitude", Reason: "not a number"}
		}
		lon, err := strconv.ParseFloat(cellAt(cells, cols["longitude"]), 64)
		if err != nil {
			return nil, &model.DataError{RecordID: id, Field: "longitude", Reason: "not a number"}
		}

		area := model.CandidateArea{
			ID:         id,
			Name:       cellAt(cells, cols["name"]),
			IMDDecile:  decile,
			Population: population,
			Location:   model.GeoPoint{Lat: lat, Lon: lon},
		}
		if err := area.Validate(); err != nil {
			return nil, err
		}
		out = append(out, area)
	}
	return out, nil
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("ingest: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

// headerIndex maps required column names to their positions in the header
// row.
func headerIndex(header *xlsx.Row, required []string) (map[string]int, error) {
	idx := make(map[string]int)
	for i, cell := range header.Cells {
		idx[strings.ToLower(strings.TrimSpace(cell.String()))] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, eris.Errorf("ingest: workbook missing column %q", name)
		}
	}
	return idx, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func cellAt(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
