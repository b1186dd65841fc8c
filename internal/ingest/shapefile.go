package ingest

import (
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/meridian-analytics/siterank/internal/model"
)

// facilitiesFromShapefile reads facilities from a point shapefile. The
// attribute table must carry "id" and "name" fields (case-insensitive);
// every other attribute rides along as metadata. Non-point shapes are
// rejected.
func facilitiesFromShapefile(path string, category model.Category) ([]model.Facility, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	idIdx, nameIdx := -1, -1
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		names[i] = name
		switch strings.ToLower(name) {
		case "id":
			idIdx = i
		case "name":
			nameIdx = i
		}
	}
	if idIdx < 0 || nameIdx < 0 {
		return nil, eris.Errorf("ingest: shapefile %s missing id/name attributes", path)
	}

	var out []model.Facility
	for reader.Next() {
		_, shape := reader.Shape()

		point, ok := shape.(*shp.Point)
		if !ok {
			return nil, eris.Errorf("ingest: shapefile %s contains non-point geometry", path)
		}

		var meta map[string]string
		for i := range fields {
			if i == idIdx || i == nameIdx {
				continue
			}
			v := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if v == "" {
				continue
			}
			if meta == nil {
				meta = make(map[string]string)
			}
			meta[names[i]] = v
		}

		fac := model.Facility{
			ID:       strings.TrimSpace(strings.TrimRight(reader.Attribute(idIdx), "\x00")),
			Name:     strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00")),
			Category: category,
			Location: model.GeoPoint{Lat: point.Y, Lon: point.X},
			Meta:     meta,
		}
		if err := fac.Validate(); err != nil {
			return nil, err
		}
		out = append(out, fac)
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "ingest: read shapefile %s", path)
	}
	return out, nil
}
