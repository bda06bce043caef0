package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var promptStyle = lipgloss.NewStyle().
	Foreground(WarningColor).
	Bold(true)

// PromptPassword asks for the box password without echo. The prompt is
// written to stderr. Fails when stdin is not a terminal.
func PromptPassword(host string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; use --password or FONBOOK_PASSWORD")
	}

	_, _ = fmt.Fprint(os.Stderr, promptStyle.Render(fmt.Sprintf("Password for %s: ", host)))
	password, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// Confirm asks a yes/no question on w and reads the answer from r.
// Anything but "y" or "yes" is a no.
func Confirm(r io.Reader, w io.Writer, question string) bool {
	_, _ = fmt.Fprint(w, promptStyle.Render(question+" [y/N]: "))

	input, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && input == "" {
		_, _ = fmt.Fprintln(w)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	default:
		_, _ = fmt.Fprintln(w, lipgloss.NewStyle().Foreground(MutedColor).Render("  Cancelled."))
		return false
	}
}
