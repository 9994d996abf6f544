package config

import (
	"fmt"
	"math"
	"sort"
	"time"

	"orbitprop/internal/orbitprop"
)

var presetEpoch = time.Date(2015, 3, 20, 0, 0, 0, 0, time.UTC)

var Presets = map[string]*Scenario{
	"geo": {
		Name:     "geo",
		Epoch:    presetEpoch,
		Pos:      [3]float64{orbitprop.GeoRadius, 0, 0},
		Vel:      [3]float64{0, math.Sqrt(orbitprop.MuEarth / orbitprop.GeoRadius), 0},
		Duration: 86400,
	},
	"leo": {
		Name:     "leo",
		Epoch:    presetEpoch,
		Pos:      [3]float64{orbitprop.EarthRadius + 500e3, 0, 0},
		Vel:      [3]float64{0, math.Sqrt(orbitprop.MuEarth / (orbitprop.EarthRadius + 500e3)), 0},
		Duration: 5700,
		Force:    "j2",
	},
	// highly eccentric 12-hour orbit, started at perigee
	"molniya": {
		Name:     "molniya",
		Epoch:    presetEpoch,
		Pos:      [3]float64{6900e3, 0, 0},
		Vel:      [3]float64{0, molniyaPerigeeSpeed(), 0},
		Duration: 43200,
	},
}

func molniyaPerigeeSpeed() float64 {
	const a = 26600e3
	const rp = 6900e3
	return math.Sqrt(orbitprop.MuEarth * (2/rp - 1/a))
}

func Preset(name string) (*Scenario, error) {
	sc, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %q", name)
	}
	c := *sc
	if c.Settings == nil {
		c.Settings = orbitprop.DefaultPropSettings()
	}
	return &c, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
