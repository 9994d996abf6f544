package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"orbitprop/internal/orbitprop"
)

// Scenario describes one propagation run: an initial state, a time span,
// and optional uncertainty and solver settings.
type Scenario struct {
	Name  string    `yaml:"name"`
	Epoch time.Time `yaml:"epoch"`
	// Pos and Vel are the initial Cartesian state, meters and m/s.
	Pos [3]float64 `yaml:"pos"`
	Vel [3]float64 `yaml:"vel"`
	// Duration is the propagation span in seconds; negative runs backward.
	Duration float64 `yaml:"duration"`
	// Force selects the force model: "pointmass" (default) or "j2".
	Force string `yaml:"force,omitempty"`
	// SigmaLVLH, when present, is the 1-sigma initial position uncertainty
	// (meters) in the LVLH frame; it switches propagation to the augmented
	// covariance path.
	SigmaLVLH []float64 `yaml:"sigma_lvlh,omitempty"`

	Settings *orbitprop.PropSettings `yaml:"settings,omitempty"`
}

// Default returns a geostationary scenario over one day.
func Default() *Scenario {
	return &Scenario{
		Name:     "geo",
		Epoch:    time.Date(2015, 3, 20, 0, 0, 0, 0, time.UTC),
		Pos:      [3]float64{orbitprop.GeoRadius, 0, 0},
		Vel:      [3]float64{0, math.Sqrt(orbitprop.MuEarth / orbitprop.GeoRadius), 0},
		Duration: 86400,
		Settings: orbitprop.DefaultPropSettings(),
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := Default()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Scenario) Validate() error {
	if s.Epoch.IsZero() {
		return fmt.Errorf("epoch must be set")
	}
	r := math.Sqrt(s.Pos[0]*s.Pos[0] + s.Pos[1]*s.Pos[1] + s.Pos[2]*s.Pos[2])
	if r == 0 {
		return fmt.Errorf("initial position must be nonzero")
	}
	if s.SigmaLVLH != nil && len(s.SigmaLVLH) != 3 {
		return fmt.Errorf("sigma_lvlh must have 3 components, got %d", len(s.SigmaLVLH))
	}
	if _, err := s.ForceModel(); err != nil {
		return err
	}
	if s.Settings != nil {
		return s.Settings.Validate()
	}
	return nil
}

// State builds the initial SatState, attaching a covariance when SigmaLVLH
// is present.
func (s *Scenario) State() *orbitprop.SatState {
	st := orbitprop.NewSatState(s.Epoch, s.Pos[:], s.Vel[:])
	if len(s.SigmaLVLH) == 3 {
		st.SetLVLHPosUncertainty([3]float64{s.SigmaLVLH[0], s.SigmaLVLH[1], s.SigmaLVLH[2]})
	}
	return st
}

func (s *Scenario) Target() time.Time {
	return s.Epoch.Add(time.Duration(s.Duration * float64(time.Second)))
}

func (s *Scenario) ForceModel() (orbitprop.ForceModel, error) {
	switch s.Force {
	case "", "pointmass":
		return orbitprop.NewPointMass(), nil
	case "j2":
		return orbitprop.NewJ2Gravity(), nil
	default:
		return nil, fmt.Errorf("unknown force model: %q", s.Force)
	}
}
