package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/thermo/internal/config"
	"github.com/san-kum/thermo/internal/storage"
	"github.com/san-kum/thermo/internal/thermo"
	"github.com/san-kum/thermo/internal/viz"
)

func listKeywords(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEYWORD\tTYPE\tFLAGS\tDESCRIPTION")
	for _, kw := range thermo.Keywords() {
		var flags []string
		if kw.Extensive {
			flags = append(flags, "extensive")
		}
		if kw.TimeBased {
			flags = append(flags, "time")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", kw.Name, kw.Type, strings.Join(flags, ","), kw.Help)
	}
	fmt.Fprintln(w, "c_ID, f_ID, v_NAME\t\t\tprovider scalar; append [i], [i][j] or [*] for elements")
	for _, name := range thermo.PresetNames() {
		words, _ := thermo.Preset(name)
		fmt.Fprintf(w, "%s\tpreset\t\t%s\n", name, strings.Join(words, " "))
	}
	return w.Flush()
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	}

	fmt.Println(viz.Title.Render("presets"))
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Printf("  %-10s %d steps, keywords: %s\n", name, cfg.TotalSteps(), strings.Join(cfg.Keywords, " "))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTEPS\tROWS\tATOMS\tKEYWORDS\tSTATUS")
	for _, run := range runs {
		status := "ok"
		switch {
		case run.Error != "":
			status = "failed"
		case run.Finished == nil:
			status = "incomplete"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Rows,
			run.Atoms,
			strings.Join(run.Keywords, " "),
			status,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID, column := args[0], args[1]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	steps, cols, err := st.LoadColumns(runID, column)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(steps))
	graph, err := viz.PlotColumn(column, steps, cols[0], plotWidth, plotHeight)
	if err != nil {
		return err
	}
	fmt.Println(graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(args[0], os.Stdout)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(args[0], os.Stdout)
}
