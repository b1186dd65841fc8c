package model

// ProximityResult is the per-category minimum distance from a candidate
// area to the nearest facility. DistanceKM is math.Inf(1) when no facility
// of the category exists. Derived per run, never persisted.
type ProximityResult struct {
	AreaID     string
	Category   Category
	DistanceKM float64
}

// ScoredArea is the fully scored record for one candidate area. Exactly one
// ScoredArea exists per CandidateArea per run; the total score is a pure
// function of the candidate's attributes and the facility sets.
//
// Distance fields are nil when no facility of that category exists, which
// keeps the type JSON-safe for the store and the HTTP API.
type ScoredArea struct {
	AreaID          string   `json:"area_id"`
	Name            string   `json:"name"`
	IMDDecile       int      `json:"imd_decile"`
	Population      int64    `json:"population"`
	Location        GeoPoint `json:"location"`
	NeedScore       float64  `json:"need_score"`
	HealthcareKM    *float64 `json:"healthcare_km"`
	ResearchKM      *float64 `json:"research_km"`
	HealthcareScore float64  `json:"healthcare_score"`
	ResearchScore   float64  `json:"research_score"`
	TotalScore      float64  `json:"total_score"`
}
