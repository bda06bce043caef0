// Package ui provides terminal UI components for the fonbook CLI.
//
// This package uses Bubble Tea and Lipgloss to render terminal output that
// follows a "run once and exit" pattern: styled, but never interactive
// beyond a password prompt.
//
// # Components
//
//   - Header: command banner showing operation name and parameters
//   - Progress: progress bar with a step list (detect, login, fetch)
//   - Result: success/failure boxes with troubleshooting tips
//   - RenderPhonebook / RenderList: lipgloss tables
//
// The Runner orchestrates the header → progress → result flow:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Phonebook",
//	    Command:   "fonbook get",
//	    Params:    []ui.Param{{Key: "Host", Value: "fritz.box"}},
//	    StepNames: []string{"Detect login style", "Log in", "Fetch phonebook"},
//	    Hints:     box.TroubleshootingHints,
//	})
//
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, ui.StepComplete, "lua-challenge")
//	    return nil, nil
//	})
//
// Progress and result boxes go to stderr; exported phonebook data goes to
// stdout so it can be piped.
//
// # Logging Integration
//
// zap logging stays silent unless FONBOOK_LOG_LEVEL is set, so the curated
// UI output is displayed cleanly.
package ui
