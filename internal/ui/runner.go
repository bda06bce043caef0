package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig holds configuration for one command execution
type RunnerConfig struct {
	Title     string   // Command title (e.g., "Phonebook")
	Command   string   // Full command (e.g., "fonbook get")
	Params    []Param  // Parameters to display in header
	StepNames []string // Names for each step
	Output    io.Writer

	// Hints returns troubleshooting tips for a failure. May be nil.
	Hints func(error) []string

	// Quiet suppresses everything but the failure box (--quiet).
	Quiet bool
}

// Runner orchestrates the header, progress and result flow of a command
// that talks to a box. Progress lines and result boxes go to Output,
// which defaults to stderr so exported data on stdout stays clean.
type Runner struct {
	config    RunnerConfig
	header    *Header
	progress  *Progress
	output    io.Writer
	startTime time.Time
	width     int
}

// NewRunner creates a new runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	width := GetTerminalWidth()

	header := NewHeader(config.Title, config.Command, config.Params...)
	header.SetWidth(width)

	var prog *Progress
	if len(config.StepNames) > 0 {
		prog = NewProgress("", config.StepNames...)
		prog.SetWidth(width)
	}

	return &Runner{
		config:   config,
		header:   header,
		progress: prog,
		output:   config.Output,
		width:    width,
	}
}

// Operation is the work run by a Runner. It reports progress through
// onStep and returns details for the success box.
type Operation func(ctx context.Context, onStep StepCallback) ([]Param, error)

// Run prints the header, executes the operation and prints the result.
func (r *Runner) Run(ctx context.Context, operation Operation) error {
	r.startTime = time.Now()

	if !r.config.Quiet {
		_, _ = fmt.Fprintln(r.output, r.header.Render())
		_, _ = fmt.Fprintln(r.output)
	}

	details, err := operation(ctx, r.stepCallback())
	duration := time.Since(r.startTime).Round(time.Millisecond)

	_, _ = fmt.Fprintln(r.output)
	if err != nil {
		var hints []string
		if r.config.Hints != nil {
			hints = r.config.Hints(err)
		}
		result := NewFailureResult(r.config.Title+" failed", err, hints)
		result.SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, result.Render())
		return err
	}

	if r.config.Quiet {
		return nil
	}
	result := NewSuccessResult(r.config.Title+" complete", details...)
	result.AddDetail("Duration", duration.String())
	result.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
	return nil
}

// stepCallback prints each step as it changes state
func (r *Runner) stepCallback() StepCallback {
	return func(stepNumber int, status StepStatus, message string) {
		if r.progress == nil {
			return
		}
		r.progress.UpdateStep(stepNumber, status, message)
		if r.config.Quiet || stepNumber < 1 || stepNumber > r.progress.Total() {
			return
		}

		line := r.progress.renderStepLine(r.progress.Steps[stepNumber-1])
		if status.finished() {
			_, _ = fmt.Fprintln(r.output, line)
		} else if status == StepRunning {
			// overwritten when the step finishes
			_, _ = fmt.Fprint(r.output, line+"\r")
		}
	}
}

// PrintFailure prints a styled failure result to stderr
func PrintFailure(title string, err error, troubleshooting []string) {
	result := NewFailureResult(title, err, troubleshooting)
	result.SetWidth(GetTerminalWidth())
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = fmt.Fprintln(os.Stderr, result.Render())
}
