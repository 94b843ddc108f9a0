package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"flight-dynamics/internal/aero"
	"flight-dynamics/internal/geometry/vector"
	"flight-dynamics/internal/sim"
)

//go:embed vehicles.yaml
var defaultCatalog []byte

var (
	ErrUnknownVehicle = errors.New("unknown vehicle")
	ErrUnknownKind    = errors.New("unknown vehicle kind")
)

// Vehicle kinds.
const (
	KindFixedWing = "fixedwing"
	KindRocket    = "rocket"
)

// VehicleSpec is one catalog entry: mass properties plus the coefficient
// set of its force model.
type VehicleSpec struct {
	Kind          string      `yaml:"kind"`
	Mass          float64     `yaml:"mass"`
	Inertia       vector.Vec3 `yaml:"inertia"`
	MaxDeflection float64     `yaml:"maxDeflection"`

	FixedWing *aero.FixedWingCoefficients `yaml:"fixedWing,omitempty"`
	Rocket    *aero.RocketConfig          `yaml:"rocket,omitempty"`
}

// Catalog maps vehicle names to their specs.
type Catalog struct {
	Vehicles map[string]VehicleSpec `yaml:"vehicles"`
}

// DefaultCatalog returns the built-in vehicles.
func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parsing vehicle catalog: %w", err)
	}
	return c, nil
}

// LoadCatalog reads a catalog from path, or returns the built-in one when
// path is empty.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("reading vehicle catalog: %w", err)
	}
	return ParseCatalog(data)
}

// Names lists the catalog's vehicles in order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c.Vehicles))
	for name := range c.Vehicles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named vehicle.
func (c Catalog) Lookup(name string) (VehicleSpec, error) {
	spec, ok := c.Vehicles[name]
	if !ok {
		return VehicleSpec{}, fmt.Errorf("%w: %q (have %v)", ErrUnknownVehicle, name, c.Names())
	}
	return spec, nil
}

// Build returns the vehicle's mass properties and force model. A missing
// coefficient block falls back to the default set for the kind.
func (s VehicleSpec) Build(name string) (sim.VehicleConfig, sim.ForceModel, error) {
	vc := sim.VehicleConfig{
		Name:          name,
		Mass:          s.Mass,
		Inertia:       s.Inertia,
		MaxDeflection: s.MaxDeflection,
	}
	if err := vc.Validate(); err != nil {
		return sim.VehicleConfig{}, nil, fmt.Errorf("vehicle %q: %w", name, err)
	}

	switch s.Kind {
	case KindFixedWing:
		coeffs := aero.DefaultFixedWing()
		if s.FixedWing != nil {
			coeffs = *s.FixedWing
		}
		m, err := aero.NewFixedWing(coeffs)
		if err != nil {
			return sim.VehicleConfig{}, nil, fmt.Errorf("vehicle %q: %w", name, err)
		}
		return vc, m, nil

	case KindRocket:
		rc := aero.DefaultRocket()
		if s.Rocket != nil {
			rc = *s.Rocket
		}
		m, err := aero.NewRocket(rc)
		if err != nil {
			return sim.VehicleConfig{}, nil, fmt.Errorf("vehicle %q: %w", name, err)
		}
		return vc, m, nil

	default:
		return sim.VehicleConfig{}, nil, fmt.Errorf("vehicle %q: %w: %q", name, ErrUnknownKind, s.Kind)
	}
}
