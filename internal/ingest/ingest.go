// Package ingest loads cleaned candidate-area and facility records from
// CSV, XLSX, and point-shapefile sources into model types. It rejects
// malformed records with a DataError naming the record and field; deeper
// cleaning (imputation, deduplication) is an upstream concern.
//
// Expected candidate columns: area_id, name, imd_decile, population,
// latitude, longitude. Expected facility columns: id, name, latitude,
// longitude; any further columns are carried opaquely as facility metadata.
package ingest

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/meridian-analytics/siterank/internal/model"
)

// Options configures source parsing.
type Options struct {
	Charset string // character set of CSV sources, e.g. "windows-1252"; empty means UTF-8
	Sheet   string // XLSX sheet name; empty means the first sheet
}

// LoadCandidates reads candidate areas from a local CSV or XLSX file.
func LoadCandidates(path string, opts Options) ([]model.CandidateArea, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return candidatesFromCSV(path, opts)
	case ".xlsx":
		return candidatesFromXLSX(path, opts)
	default:
		return nil, eris.Errorf("ingest: unsupported candidate source %q (want .csv or .xlsx)", path)
	}
}

// LoadFacilities reads facilities of one category from a local CSV or
// point-shapefile source.
func LoadFacilities(path string, category model.Category, opts Options) ([]model.Facility, error) {
	if !category.Valid() {
		return nil, eris.Errorf("ingest: unknown facility category %q", category)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return facilitiesFromCSV(path, category, opts)
	case ".shp":
		return facilitiesFromShapefile(path, category)
	default:
		return nil, eris.Errorf("ingest: unsupported facility source %q (want .csv or .shp)", path)
	}
}

// decodeCharset wraps r with a charset decoder when a non-UTF-8 charset is
// configured. Legacy open-data exports are frequently windows-1252.
func decodeCharset(r io.Reader, charset string) (io.Reader, error) {
	if charset == "" {
		return r, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: unknown charset %q", charset)
	}
	return enc.NewDecoder().Reader(r), nil
}
