package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Run from a directory with no config.yaml.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.Rank.RadiusKM)
	assert.Equal(t, 0.5, cfg.Rank.NeedWeight)
	assert.Equal(t, 0.25, cfg.Rank.HealthcareWeight)
	assert.Equal(t, 0.25, cfg.Rank.ResearchWeight)
	assert.Equal(t, 10, cfg.Rank.TopK)
	assert.False(t, cfg.Rank.NormalizeNeed)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
rank:
  radius_km: 25.0
  top_k: 3
log:
  level: debug
  format: console
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25.0, cfg.Rank.RadiusKM)
	assert.Equal(t, 3, cfg.Rank.TopK)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep defaults.
	assert.Equal(t, 0.5, cfg.Rank.NeedWeight)
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := []byte(`
radius_km: 15.0
research_weight: 0.4
normalize_need: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)

	rc := RankConfig{
		RadiusKM:         10,
		NeedWeight:       0.5,
		HealthcareWeight: 0.25,
		ResearchWeight:   0.25,
		TopK:             10,
	}
	p.Apply(&rc)

	assert.Equal(t, 15.0, rc.RadiusKM)
	assert.Equal(t, 0.4, rc.ResearchWeight)
	assert.True(t, rc.NormalizeNeed)
	// Fields absent from the profile are untouched.
	assert.Equal(t, 0.5, rc.NeedWeight)
	assert.Equal(t, 10, rc.TopK)
}

func TestLoadProfileErrors(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("radius_km: [not a number"), 0o644))
	_, err = LoadProfile(path)
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "shouty", Format: "json"}))
}
