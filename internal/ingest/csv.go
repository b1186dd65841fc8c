package ingest

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/meridian-analytics/siterank/internal/model"
)

type candidateRow struct {
	ID         string  `csv:"area_id"`
	Name       string  `csv:"name"`
	IMDDecile  int     `csv:"imd_decile"`
	Population int64   `csv:"population"`
	Latitude   float64 `csv:"latitude"`
	Longitude  float64 `csv:"longitude"`
}

type facilityRow struct {
	ID        string  `csv:"id"`
	Name      string  `csv:"name"`
	Latitude  float64 `csv:"latitude"`
	Longitude float64 `csv:"longitude"`
}

func candidatesFromCSV(path string, opts Options) ([]model.CandidateArea, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer func() { _ = f.Close() }()

	r, err := decodeCharset(f, opts.Charset)
	if err != nil {
		return nil, err
	}

	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read CSV header %s", path)
	}

	var out []model.CandidateArea
	for {
		var row candidateRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrapf(err, "ingest: decode candidate row in %s", path)
		}

		area := model.CandidateArea{
			ID:         row.ID,
			Name:       row.Name,
			IMDDecile:  row.IMDDecile,
			Population: row.Population,
			Location:   model.GeoPoint{Lat: row.Latitude, Lon: row.Longitude},
		}
		if err := area.Validate(); err != nil {
			return nil, err
		}
		out = append(out, area)
	}
	return out, nil
}

func facilitiesFromCSV(path string, category model.Category, opts Options) ([]model.Facility, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer func() { _ = f.Close() }()

	r, err := decodeCharset(f, opts.Charset)
	if err != nil {
		return nil, err
	}

	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read CSV header %s", path)
	}
	header := dec.Header()

	var out []model.Facility
	for {
		var row facilityRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrapf(err, "ingest: decode facility row in %s", path)
		}

		// Columns beyond the known set ride along as opaque metadata
		// (address codes, thematic labels).
		var meta map[string]string
		for _, i := range dec.Unused() {
			if v := dec.Record()[i]; v != "" {
				if meta == nil {
					meta = make(map[string]string)
				}
				meta[header[i]] = v
			}
		}

		fac := model.Facility{
			ID:       row.ID,
			Name:     row.Name,
			Category: category,
			Location: model.GeoPoint{Lat: row.Latitude, Lon: row.Longitude},
			Meta:     meta,
		}
		if err := fac.Validate(); err != nil {
			return nil, err
		}
		out = append(out, fac)
	}
	return out, nil
}
