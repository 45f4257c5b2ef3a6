package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	preset      string
	steps       int64
	every       int64
	keywords    []string
	line        string
	lostPolicy  string
	normalize   string
	boundary    string
	temperature float64
	cells       int
	seed        int64
	thermostat  float64
	noSave      bool
	metricsAddr string
	driftColumn string
	showMemory  bool
	frameRate   int
	replicas    int
	plotWidth   int
	plotHeight  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "thermo",
		Short:        "periodic thermodynamic output for a Lennard-Jones simulation",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".thermo", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and print thermo output",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	runCmd.Flags().StringVar(&driftColumn, "drift", "etotal", "column tracked by the energy drift gauges")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "step updates per second")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run independent replicas concurrently and compare them",
		Args:  cobra.NoArgs,
		RunE:  benchReplicas,
	}
	addRunFlags(benchCmd)
	benchCmd.Flags().IntVar(&replicas, "replicas", 4, "number of replicas")

	keywordsCmd := &cobra.Command{
		Use:   "keywords",
		Short: "list thermo keywords",
		Args:  cobra.NoArgs,
		RunE:  listKeywords,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list run presets, or print one as a run file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id] [column]",
		Short: "plot a recorded column",
		Args:  cobra.ExactArgs(2),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export recorded rows as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export metadata and rows as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, keywordsCmd, presetsCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "run file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "start from a named preset")
	cmd.Flags().Int64Var(&steps, "steps", 0, "steps per stage (overrides the run file)")
	cmd.Flags().Int64Var(&every, "every", 0, "report every N steps")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "thermo keywords, or one of: one, multi")
	cmd.Flags().StringVar(&line, "line", "", "line style: one, multi or yaml")
	cmd.Flags().StringVar(&lostPolicy, "lost", "", "lost atom policy: ignore, warn or error")
	cmd.Flags().StringVar(&normalize, "norm", "", "normalize extensive values: yes, no or default")
	cmd.Flags().StringVar(&boundary, "boundary", "", "boundary letters, p periodic or f fixed and lossy")
	cmd.Flags().Float64Var(&temperature, "temp", 0, "initial temperature")
	cmd.Flags().IntVar(&cells, "cells", 0, "fcc unit cells per side")
	cmd.Flags().Int64Var(&seed, "seed", 0, "velocity seed")
	cmd.Flags().Float64Var(&thermostat, "thermostat", 0, "Berendsen target temperature")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run")
	cmd.Flags().BoolVar(&showMemory, "mem", true, "print process memory in the header")
}
