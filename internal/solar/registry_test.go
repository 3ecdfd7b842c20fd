package solar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r, err := NewRegistry(DefaultSites())
	require.NoError(t, err)
	require.Equal(t, 3, r.Len())

	ids := []string{}
	for _, s := range r.Sites() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"provence", "occitanie", "aquitaine"}, ids)

	s, err := r.Lookup("provence")
	require.NoError(t, err)
	assert.Equal(t, "Marseille", s.DisplayName)
	assert.Equal(t, 5000, s.PanelCount)
	assert.Equal(t, 0.4, s.PeakUnitKW)

	_, err = r.Lookup("bretagne")
	assert.ErrorIs(t, err, ErrUnknownSite)
}

func TestRegistrySitesReturnsCopy(t *testing.T) {
	r, err := NewRegistry(DefaultSites())
	require.NoError(t, err)

	sites := r.Sites()
	sites[0].DisplayName = "changed"

	s, _ := r.Lookup("provence")
	assert.Equal(t, "Marseille", s.DisplayName)
}

func TestNewRegistryRejectsInvalidSites(t *testing.T) {
	_, err := NewRegistry(nil)
	assert.Error(t, err)

	dup := DefaultSites()
	dup[1].ID = "provence"
	_, err = NewRegistry(dup)
	assert.ErrorContains(t, err, "duplicate")

	bad := []Site{{ID: "x", DisplayName: "X", PanelCount: 0, PeakUnitKW: 0.4}}
	_, err = NewRegistry(bad)
	assert.Error(t, err)

	bad = []Site{{ID: "x", DisplayName: "X", PanelCount: 10, PeakUnitKW: 0.4, Latitude: 123}}
	_, err = NewRegistry(bad)
	assert.Error(t, err)
}

func TestLoadRegistryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sites:
  - id: bretagne
    name: Rennes
    panels: 1200
    peakPowerKw: 0.35
    latitude: 48.11
`), 0o644))

	r, err := LoadRegistryFile(path)
	require.NoError(t, err)
	s, err := r.Lookup("bretagne")
	require.NoError(t, err)
	assert.Equal(t, Site{ID: "bretagne", DisplayName: "Rennes", PanelCount: 1200, PeakUnitKW: 0.35, Latitude: 48.11}, s)

	_, err = LoadRegistryFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("sites: [\n"), 0o644))
	_, err = LoadRegistryFile(path)
	assert.Error(t, err)
}
