package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-analytics/siterank/internal/model"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCandidatesCSV(t *testing.T) {
	path := writeTemp(t, "areas.csv", `area_id,name,imd_decile,population,latitude,longitude
E01000001,Riverside,1,10000,51.5074,-0.1278
E01000002,Hillcrest,10,2500,53.4808,-2.2426
`)

	got, err := LoadCandidates(path, Options{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, model.CandidateArea{
		ID:         "E01000001",
		Name:       "Riverside",
		IMDDecile:  1,
		Population: 10000,
		Location:   model.GeoPoint{Lat: 51.5074, Lon: -0.1278},
	}, got[0])
	assert.Equal(t, "E01000002", got[1].ID)
}

func TestLoadCandidatesCSVRejectsBadRecord(t *testing.T) {
	path := writeTemp(t, "areas.csv", `area_id,name,imd_decile,population,latitude,longitude
E01000001,Riverside,1,10000,51.5074,-0.1278
E01000002,Hillcrest,12,2500,53.4808,-2.2426
`)

	_, err := LoadCandidates(path, Options{})
	require.Error(t, err)

	var de *model.DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "E01000002", de.RecordID)
	assert.Equal(t, "imd_decile", de.Field)
}

func TestLoadFacilitiesCSVWithMeta(t *testing.T) {
	path := writeTemp(t, "hospitals.csv", `id,name,latitude,longitude,postcode,sector
RJ1,Guy's Hospital,51.5035,-0.0876,SE1 9RT,acute
RJ2,St Thomas',51.4980,-0.1195,SE1 7EH,
`)

	got, err := LoadFacilities(path, model.CategoryHealthcare, Options{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, model.CategoryHealthcare, got[0].Category)
	assert.Equal(t, map[string]string{"postcode": "SE1 9RT", "sector": "acute"}, got[0].Meta)
	// Empty metadata cells are dropped.
	assert.Equal(t, map[string]string{"postcode": "SE1 7EH"}, got[1].Meta)
}

func TestLoadFacilitiesCSVRejectsBadCoordinates(t *testing.T) {
	path := writeTemp(t, "labs.csv", `id,name,latitude,longitude
L1,Crick,91.0,-0.1286
`)

	_, err := LoadFacilities(path, model.CategoryResearch, Options{})
	var de *model.DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "L1", de.RecordID)
	assert.Equal(t, "location", de.Field)
}

func TestLoadCandidatesCharset(t *testing.T) {
	// "Société" encoded as windows-1252: é = 0xE9.
	raw := append([]byte("area_id,name,imd_decile,population,latitude,longitude\nE1,Soci"), 0xE9)
	raw = append(raw, []byte("t")...)
	raw = append(raw, 0xE9)
	raw = append(raw, []byte(",3,100,51.5,-0.1\n")...)

	path := filepath.Join(t.TempDir(), "latin.csv")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	got, err := LoadCandidates(path, Options{Charset: "windows-1252"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Société", got[0].Name)
}

func TestLoadUnsupportedExtensions(t *testing.T) {
	_, err := LoadCandidates("areas.json", Options{})
	assert.Error(t, err)

	_, err = LoadFacilities("facilities.gpkg", model.CategoryHealthcare, Options{})
	assert.Error(t, err)

	_, err = LoadFacilities("facilities.csv", model.Category("transit"), Options{})
	assert.Error(t, err)
}
