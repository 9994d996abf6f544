package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"orbitprop/internal/config"
	"orbitprop/internal/ode"
	"orbitprop/internal/orbitprop"
	"orbitprop/internal/viz"
)

var (
	configFile string
	preset     string
	duration   float64
	force      string
	method     string
	plot       bool
	samples    int
	frameRate  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orbitprop",
		Short: "adaptive orbit propagation toolkit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	propagateCmd := &cobra.Command{
		Use:   "propagate",
		Short: "propagate a scenario and print the final state",
		RunE:  runPropagate,
	}
	propagateCmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	propagateCmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	propagateCmd.Flags().Float64Var(&duration, "duration", 86400, "span in seconds (negative runs backward)")
	propagateCmd.Flags().StringVar(&force, "force", "pointmass", "force model (pointmass, j2)")
	propagateCmd.Flags().StringVar(&method, "method", "rkf45", "integration method (rkf45, dopri54)")
	propagateCmd.Flags().BoolVar(&plot, "plot", false, "plot altitude over the span")
	propagateCmd.Flags().IntVar(&samples, "samples", 120, "plot sample count")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "propagate a scenario with live visualization",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	liveCmd.Flags().Float64Var(&duration, "duration", 86400, "span in seconds")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available preset scenarios",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.Default()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(propagateCmd, liveCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadScenario resolves preset, config file, and CLI flags in increasing
// precedence.
func loadScenario(cmd *cobra.Command) (*config.Scenario, error) {
	sc := config.Default()

	if preset != "" {
		p, err := config.Preset(preset)
		if err != nil {
			return nil, fmt.Errorf("%v (available: %v)", err, config.ListPresets())
		}
		sc = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		sc = loaded
	}

	if sc.Settings == nil {
		sc.Settings = orbitprop.DefaultPropSettings()
	}
	if cmd.Flags().Changed("duration") {
		sc.Duration = duration
	}
	if cmd.Flags().Changed("force") {
		sc.Force = force
	}
	if cmd.Flags().Changed("method") {
		sc.Settings.Method = method
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func runPropagate(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	fm, err := sc.ForceModel()
	if err != nil {
		return err
	}

	set := *sc.Settings
	set.DenseOutput = plot

	st := sc.State()
	pv := ode.State(st.PV.RawVector().Data).Clone()

	fmt.Printf("propagating %s for %.0f s...\n", sc.Name, sc.Duration)
	start := time.Now()
	res, err := orbitprop.Propagate(pv, sc.Epoch, sc.Target(), fm, &set)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n\n", elapsed)
	fmt.Println(res.String())

	r := math.Sqrt(res.State[0]*res.State[0] + res.State[1]*res.State[1] + res.State[2]*res.State[2])
	fmt.Printf("  Radius: %.3f km  Altitude: %.3f km\n", r*1e-3, (r-orbitprop.EarthRadius)*1e-3)

	// Rerun through the state layer when uncertainty is carried, so the
	// covariance rides the same span.
	if len(sc.SigmaLVLH) == 3 {
		out, err := st.Propagate(sc.Target(), fm, sc.Settings)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(out.String())
	}

	if plot {
		return plotAltitude(res)
	}
	return nil
}

func plotAltitude(res *orbitprop.PropagationResult) error {
	if samples < 2 {
		return fmt.Errorf("need at least 2 samples, got %d", samples)
	}
	span := res.TimeEnd.Sub(res.TimeStart)

	data := make([]float64, samples)
	for i := range data {
		t := res.TimeStart.Add(span * time.Duration(i) / time.Duration(samples-1))
		y, err := res.Interpolate(t)
		if err != nil {
			return err
		}
		r := math.Sqrt(y[0]*y[0] + y[1]*y[1] + y[2]*y[2])
		data[i] = (r - orbitprop.EarthRadius) * 1e-3
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(72),
		asciigraph.Caption("altitude (km) over span")))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	return viz.Run(sc, frameRate)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFORCE\tDURATION\tEPOCH")
	for _, name := range config.ListPresets() {
		sc := config.Presets[name]
		force := sc.Force
		if force == "" {
			force = "pointmass"
		}
		fmt.Fprintf(w, "%s\t%s\t%.0fs\t%s\n",
			sc.Name, force, sc.Duration, sc.Epoch.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
