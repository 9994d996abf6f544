package orbitprop

import (
	"fmt"

	"orbitprop/internal/ode"
)

// PropSettings configures one propagation call. The zero value is not
// usable; start from DefaultPropSettings.
type PropSettings struct {
	AbsTol      float64 `yaml:"abs_tol"`
	RelTol      float64 `yaml:"rel_tol"`
	InitStep    float64 `yaml:"init_step"`
	MinStep     float64 `yaml:"min_step"`
	MaxStep     float64 `yaml:"max_step"`
	MaxSteps    int     `yaml:"max_steps"`
	DenseOutput bool    `yaml:"dense_output"`
	// Method selects the integration tableau: "rkf45" (default) or
	// "dopri54".
	Method string `yaml:"method"`
}

func DefaultPropSettings() *PropSettings {
	return &PropSettings{
		AbsTol:   1e-8,
		RelTol:   1e-8,
		MaxSteps: 500000,
		Method:   "rkf45",
	}
}

func (p *PropSettings) Validate() error {
	if p.AbsTol <= 0 {
		return fmt.Errorf("abs_tol must be positive, got %g", p.AbsTol)
	}
	if p.RelTol < 0 {
		return fmt.Errorf("rel_tol must be non-negative, got %g", p.RelTol)
	}
	if p.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive, got %d", p.MaxSteps)
	}
	if _, err := ode.MethodByName(p.Method); err != nil {
		return err
	}
	return nil
}

func (p *PropSettings) tableau() *ode.Tableau {
	tb, err := ode.MethodByName(p.Method)
	if err != nil {
		return ode.RKF45
	}
	return tb
}

func (p *PropSettings) odeSettings() ode.Settings {
	return ode.Settings{
		AbsTol:      p.AbsTol,
		RelTol:      p.RelTol,
		InitialStep: p.InitStep,
		MinStep:     p.MinStep,
		MaxStep:     p.MaxStep,
		MaxSteps:    p.MaxSteps,
		DenseOutput: p.DenseOutput,
	}
}
