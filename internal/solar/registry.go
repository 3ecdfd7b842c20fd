package solar

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownSite is returned when a site id is not part of the registry.
	ErrUnknownSite = errors.New("unknown site")

	validate = validator.New()
)

// DefaultSites is the reference deployment.
func DefaultSites() []Site {
	return []Site{
		{ID: "provence", DisplayName: "Marseille", PanelCount: 5000, PeakUnitKW: 0.4, Latitude: 43.29},
		{ID: "occitanie", DisplayName: "Montpellier", PanelCount: 3500, PeakUnitKW: 0.4, Latitude: 43.61},
		{ID: "aquitaine", DisplayName: "Bordeaux", PanelCount: 4200, PeakUnitKW: 0.4, Latitude: 44.83},
	}
}

// Registry is the fixed, ordered set of simulated sites.
type Registry struct {
	sites []Site
	index map[string]int
}

// NewRegistry validates the given sites and builds an immutable registry.
func NewRegistry(sites []Site) (*Registry, error) {
	if len(sites) == 0 {
		return nil, errors.New("registry: at least one site is required")
	}

	r := &Registry{
		sites: make([]Site, len(sites)),
		index: make(map[string]int, len(sites)),
	}
	for i, s := range sites {
		if err := validate.Struct(s); err != nil {
			return nil, fmt.Errorf("registry: site %d: %w", i, err)
		}
		if _, dup := r.index[s.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate site id %q", s.ID)
		}
		r.sites[i] = s
		r.index[s.ID] = i
	}
	return r, nil
}

type registryFile struct {
	Sites []Site `yaml:"sites"`
}

// LoadRegistryFile reads a YAML registry of the form `sites: [...]`.
func LoadRegistryFile(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}

	var f registryFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("registry: parse %s: %w", path, err)
	}
	return NewRegistry(f.Sites)
}

// Sites returns the sites in registry order.
func (r *Registry) Sites() []Site {
	out := make([]Site, len(r.sites))
	copy(out, r.sites)
	return out
}

// Lookup returns the site with the given id.
func (r *Registry) Lookup(id string) (Site, error) {
	i, ok := r.index[id]
	if !ok {
		return Site{}, fmt.Errorf("%w: %s", ErrUnknownSite, id)
	}
	return r.sites[i], nil
}

// Len returns the number of registered sites.
func (r *Registry) Len() int {
	return len(r.sites)
}
