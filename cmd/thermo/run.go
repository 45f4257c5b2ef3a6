package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/thermo/internal/config"
	"github.com/san-kum/thermo/internal/md"
	"github.com/san-kum/thermo/internal/sim"
	"github.com/san-kum/thermo/internal/storage"
	"github.com/san-kum/thermo/internal/sysinfo"
	"github.com/san-kum/thermo/internal/thermo"
	"github.com/san-kum/thermo/internal/viz"
)

// loadConfig layers the preset, the run file and explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "run"

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		base := filepath.Base(configFile)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		for i := range cfg.Stages {
			cfg.Stages[i].Steps = steps
		}
	}
	if flags.Changed("every") {
		cfg.Every = every
		for i := range cfg.Stages {
			cfg.Stages[i].Every = 0
		}
	}
	if flags.Changed("keywords") {
		cfg.Keywords = keywords
		for i := range cfg.Stages {
			cfg.Stages[i].Keywords = nil
		}
	}
	if flags.Changed("line") {
		cfg.Modify.Line = line
	}
	if flags.Changed("lost") {
		cfg.Modify.LostPolicy = lostPolicy
	}
	if flags.Changed("norm") {
		cfg.Modify.Normalize = normalize
	}
	if flags.Changed("boundary") {
		cfg.System.Boundary = boundary
	}
	if flags.Changed("temp") {
		cfg.System.Temperature = temperature
	}
	if flags.Changed("cells") {
		cfg.System.Cells = cells
	}
	if flags.Changed("seed") {
		cfg.System.Seed = seed
	}
	if flags.Changed("thermostat") {
		cfg.Thermostat = &config.Thermostat{Target: thermostat, Tau: 0.5}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

// session is one configured simulation ready to run its stages.
type session struct {
	cfg    *config.Config
	system *md.System
	thermo *thermo.Thermo
	loop   *sim.Loop
}

type sessionOptions struct {
	out    io.Writer
	logger thermo.Logger
	memory thermo.MemoryProbe
}

func newSession(cfg *config.Config, opts sessionOptions) (*session, error) {
	sys, err := md.New(cfg.System)
	if err != nil {
		return nil, err
	}
	if t := cfg.Thermostat; t != nil {
		fix, err := md.NewBerendsen(t.Target, t.Tau)
		if err != nil {
			return nil, err
		}
		if err := sys.AddFix("berendsen", fix); err != nil {
			return nil, err
		}
	}
	for name, v := range cfg.Variables {
		sys.SetVariable(name, func() float64 { return v })
	}

	th := thermo.New(sys.Providers(), thermo.Options{
		Writer:           opts.out,
		Logger:           opts.logger,
		Memory:           opts.memory,
		NormalizeDefault: true,
	})
	if err := th.Configure(cfg.Keywords); err != nil {
		return nil, err
	}
	if err := th.Modify(cfg.Modify); err != nil {
		return nil, err
	}

	return &session{cfg: cfg, system: sys, thermo: th, loop: sim.New(sys, th)}, nil
}

// run executes every stage in order, reconfiguring thermo between them.
func (s *session) run(ctx context.Context) error {
	for i, stage := range s.cfg.Stages {
		if len(stage.Keywords) > 0 {
			if err := s.thermo.Configure(stage.Keywords); err != nil {
				return fmt.Errorf("stage %d: %w", i+1, err)
			}
		}
		if err := s.thermo.Modify(stage.Modify); err != nil {
			return fmt.Errorf("stage %d: %w", i+1, err)
		}
		if _, err := s.loop.Run(ctx, sim.Config{Steps: stage.Steps, Every: s.cfg.StageEvery(i)}); err != nil {
			return err
		}
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func memoryProbe(logger thermo.Logger) thermo.MemoryProbe {
	if !showMemory {
		return nil
	}
	probe, err := sysinfo.NewProbe()
	if err != nil {
		logger.Logf("memory probe unavailable: %v", err)
		return nil
	}
	return probe
}

func createRecord(cfg *config.Config, name string) (*storage.Run, error) {
	if noSave {
		return nil, nil
	}
	st := storage.New(dataDir)
	return st.Create(storage.RunMetadata{
		Name:     name,
		Seed:     cfg.System.Seed,
		Dt:       cfg.System.Dt,
		Atoms:    int64(4 * cfg.System.Cells * cfg.System.Cells * cfg.System.Cells),
		Steps:    cfg.TotalSteps(),
		Every:    cfg.Every,
		Keywords: cfg.Keywords,
	})
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := viz.NewLogger(os.Stderr)
	sess, err := newSession(cfg, sessionOptions{out: os.Stdout, logger: logger, memory: memoryProbe(logger)})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if metricsAddr != "" {
		stop, err := serveMetrics(ctx, sess, metricsAddr, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	record, err := createRecord(cfg, name)
	if err != nil {
		return err
	}
	if record != nil {
		sess.thermo.AddObserver(record)
	}

	runErr := sess.run(ctx)
	if record != nil {
		if err := record.Close(runErr); err != nil {
			logger.Logf("WARNING: recording run: %v", err)
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", viz.Subtle.Render("saved"), record.ID())
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
