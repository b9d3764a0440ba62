package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"wgsmaster/internal/driver"
	"wgsmaster/internal/ui"
)

type runOutcome struct {
	result *driver.Result
	err    error
}

// runWithUI runs the driver in the background while a progress view
// consumes its events.
func runWithUI(ctx context.Context, title string, files []string, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Run(ctx, opts)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// the driver blocks on a full channel once the view is gone
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
