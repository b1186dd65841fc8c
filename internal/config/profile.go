package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Profile is a named scoring policy loaded from a YAML file. Nil fields
// leave the base configuration untouched, so a profile can override a
// single parameter.
type Profile struct {
	RadiusKM         *float64 `yaml:"radius_km"`
	NeedWeight       *float64 `yaml:"need_weight"`
	HealthcareWeight *float64 `yaml:"healthcare_weight"`
	ResearchWeight   *float64 `yaml:"research_weight"`
	TopK             *int     `yaml:"top_k"`
	NormalizeNeed    *bool    `yaml:"normalize_need"`
}

// LoadProfile reads a scoring profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read profile %s", path)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(err, "config: parse profile %s", path)
	}
	return &p, nil
}

// Apply overlays the profile's set fields onto a RankConfig.
func (p *Profile) Apply(rc *RankConfig) {
	if p.RadiusKM != nil {
		rc.RadiusKM = *p.RadiusKM
	}
	if p.NeedWeight != nil {
		rc.NeedWeight = *p.NeedWeight
	}
	if p.HealthcareWeight != nil {
		rc.HealthcareWeight = *p.HealthcareWeight
	}
	if p.ResearchWeight != nil {
		rc.ResearchWeight = *p.ResearchWeight
	}
	if p.TopK != nil {
		rc.TopK = *p.TopK
	}
	if p.NormalizeNeed != nil {
		rc.NormalizeNeed = *p.NormalizeNeed
	}
}
