package main

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/thermo/internal/tui"
	"github.com/san-kum/thermo/internal/viz"
)

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The view owns the terminal; text output and diagnostics go nowhere
	// but the rows still reach the view and the record.
	sess, err := newSession(cfg, sessionOptions{out: io.Discard, logger: viz.NewLogger(io.Discard)})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(tui.NewModel(name, cancel))
	feed := tui.NewFeed(p, frameRate)
	sess.thermo.AddObserver(feed)
	sess.loop.AddObserver(feed)

	record, err := createRecord(cfg, name)
	if err != nil {
		return err
	}
	if record != nil {
		sess.thermo.AddObserver(record)
	}

	runDone := make(chan error, 1)
	go func() {
		err := sess.run(ctx)
		feed.Done(err)
		runDone <- err
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-runDone
		return err
	}
	cancel()
	runErr := <-runDone
	if record != nil {
		if err := record.Close(runErr); err != nil {
			viz.NewLogger(os.Stderr).Logf("WARNING: recording run: %v", err)
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
