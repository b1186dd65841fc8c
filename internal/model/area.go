package model

// CandidateArea is a small geographic unit being evaluated as a site for a
// new facility. Constructed once per run from cleaned input and never
// mutated afterwards.
type CandidateArea struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	IMDDecile  int      `json:"imd_decile"` // 1 = most deprived, 10 = least
	Population int64    `json:"population"`
	Location   GeoPoint `json:"location"`
}

// Validate checks field ranges and returns a DataError naming the offending
// field on the first violation.
func (a CandidateArea) Validate() error {
	if err := a.Location.Validate(); err != nil {
		return &DataError{RecordID: a.ID, Field: "location", Reason: err.Error()}
	}
	if a.IMDDecile < 1 || a.IMDDecile > 10 {
		return &DataError{
			RecordID: a.ID,
			Field:    "imd_decile",
			Reason:   "must be in [1, 10]",
		}
	}
	if a.Population < 0 {
		return &DataError{
			RecordID: a.ID,
			Field:    "population",
			Reason:   "must be non-negative",
		}
	}
	return nil
}
