package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"kamen/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Vote from the terminal",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	// экран занят bubbletea, поэтому лог пишется в файл
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	_, view, _, err := setup(cmd, newLogger(f))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(tui.New(ctx, view), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
