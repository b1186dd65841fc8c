package model

import "fmt"

// Category identifies one of the fixed kinds of existing infrastructure
// considered for proximity scoring.
type Category string

const (
	CategoryHealthcare Category = "healthcare"
	CategoryResearch   Category = "research"
)

// Categories lists all facility categories in canonical order.
var Categories = []Category{CategoryHealthcare, CategoryResearch}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryHealthcare || c == CategoryResearch
}

// Facility is an existing infrastructure point of a single category. Meta
// carries category-specific descriptive attributes (an address code, a
// thematic label) opaquely; the scoring pipeline passes it through
// unchanged.
type Facility struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Category Category          `json:"category"`
	Location GeoPoint          `json:"location"`
	Meta     map[string]string `json:"meta,omitempty"`
}

// Validate checks the category and coordinates.
func (f Facility) Validate() error {
	if !f.Category.Valid() {
		return &DataError{
			RecordID: f.ID,
			Field:    "category",
			Reason:   fmt.Sprintf("unknown category %q", f.Category),
		}
	}
	if err := f.Location.Validate(); err != nil {
		return &DataError{RecordID: f.ID, Field: "location", Reason: err.Error()}
	}
	return nil
}
