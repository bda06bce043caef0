// Fonbook reads the phonebooks of an AVM FRITZ!Box.
//
// It detects how the box wants to be logged in to (legacy password form,
// webcm or lua challenge/response, or TR-064 SOAP with HTTP digest), logs in
// and downloads phonebooks as tables, JSON or vCards.
//
// Usage:
//
//	fonbook [command] [flags]
//
// See 'fonbook --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/fonbook/internal/logging"
	"github.com/muurk/fonbook/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fonbook",
	Short: "FRITZ!Box phonebook client",
	Long: `Read the phonebooks stored on an AVM FRITZ!Box.

fonbook detects the login style of the box, logs in with the password given
by --password, the FONBOOK_PASSWORD environment variable or a prompt, and
downloads phonebooks. Connection settings can be saved as named profiles.`,
	Version:       version.Version,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// silent unless --log-level or FONBOOK_LOG_LEVEL is set
		return logging.Initialize(logLevel)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("fonbook {{.Version}}\n")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fonbook %s\n", version.Full())
	},
}
