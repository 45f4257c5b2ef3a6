package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/thermo/internal/sim"
	"github.com/san-kum/thermo/internal/sysinfo"
	"github.com/san-kum/thermo/internal/thermo"
	"github.com/san-kum/thermo/internal/viz"
)

func benchReplicas(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if replicas < 1 {
		return fmt.Errorf("replicas must be positive, got %d", replicas)
	}

	if host, err := sysinfo.ReadHost(); err == nil {
		fmt.Println(viz.Subtle.Render(host.String()))
	}

	stageSteps := cfg.Stages[0].Steps
	sessions := make([]*session, replicas)
	ens := sim.NewEnsemble(replicas, func(i int) (*sim.Loop, error) {
		c := *cfg
		c.System.Seed = cfg.System.Seed + int64(i)
		sess, err := newSession(&c, sessionOptions{out: io.Discard})
		if err != nil {
			return nil, err
		}
		sessions[i] = sess
		return sess.loop, nil
	})

	ctx, cancel := signalContext()
	defer cancel()
	results, err := ens.Run(ctx, sim.Config{Steps: stageSteps, Every: cfg.StageEvery(0)})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REPLICA\tSEED\tSTEPS\tWALL\tSTEPS/S\tATOMS\tTEMP\tPE")
	for i, r := range results {
		rate := 0.0
		if s := r.Wall.Seconds(); s > 0 {
			rate = float64(r.LastStep-r.FirstStep) / s
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%.1f\t%d\t%s\t%s\n",
			i, cfg.System.Seed+int64(i), r.LastStep-r.FirstStep, r.Wall.Round(time.Millisecond), rate, r.Final.Atoms,
			evaluate(sessions[i], "temp", r.Final), evaluate(sessions[i], "pe", r.Final))
	}
	return w.Flush()
}

// evaluate prints "-" for keywords the session's output never bound.
func evaluate(sess *session, word string, snap thermo.Snapshot) string {
	v, err := sess.thermo.Evaluate(word, snap, thermo.Session{Active: true})
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}
