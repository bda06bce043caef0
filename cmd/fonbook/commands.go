package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/fonbook/internal/box"
	"github.com/muurk/fonbook/internal/config"
	"github.com/muurk/fonbook/internal/discovery"
	"github.com/muurk/fonbook/internal/phonebook"
	"github.com/muurk/fonbook/internal/ui"
)

// Command flags
var (
	phonebookID   string
	phonebookName string
	outputFormat  string
	listFormat    string
	scanTimeout   int
)

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(scanCmd)
}

// getCmd downloads one phonebook
var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Download a phonebook",
	Long: `Log in to the box and download one phonebook.

Output formats:
  detailed  table of contacts (plain text when stdout is not a terminal)
  compact   one line per contact
  json      array of contacts
  vcard     vCard 4.0 stream, one card per contact`,
	Example: `  # Main phonebook of fritz.box
  fonbook get

  # Second phonebook as vCards
  fonbook get --id 1 --format vcard > contacts.vcf

  # Box with a user account, password from the environment
  FONBOOK_PASSWORD=secret fonbook get --host 192.168.178.1 -u admin

  # TR-064 digest login
  fonbook get --digest -u admin --format json`,
	Args: cobra.NoArgs,
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVar(&phonebookID, "id", "", "Phonebook id (default: profile setting or "+box.DefaultPhonebookID+")")
	getCmd.Flags().StringVar(&phonebookName, "name", box.DefaultPhonebookName, "Export name sent to the box")
	getCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format ("+strings.Join(config.OutputFormats, ", ")+")")
}

func runGet(cmd *cobra.Command, args []string) error {
	registry, conn, err := loadConnection(cmd)
	if err != nil {
		return err
	}

	format := outputFormat
	if format == "" {
		format = registry.Preferences.OutputFormat
	}
	if !config.ValidFormat(format) {
		return fmt.Errorf("unknown output format %q (use %s)", format, strings.Join(config.OutputFormats, ", "))
	}

	id := phonebookID
	if id == "" {
		id = conn.PhonebookID
	}
	if id == "" {
		id = box.DefaultPhonebookID
	}

	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client := box.NewClient(conn.Creds, conn.Config)

	var book phonebook.Phonebook
	runner := ui.NewRunner(ui.RunnerConfig{
		Title:     "Phonebook",
		Command:   "fonbook get",
		Params:    append(conn.params(), ui.Param{Key: "Phonebook", Value: id}),
		StepNames: []string{"Detect login style", "Log in", "Fetch phonebook"},
		Hints:     box.TroubleshootingHints,
		Quiet:     quietFlag,
	})
	err = runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
		if err := login(ctx, client, onStep); err != nil {
			return nil, err
		}

		onStep(3, ui.StepRunning, "")
		book, err = client.GetPhonebookNamed(ctx, id, phonebookName)
		if err != nil {
			onStep(3, ui.StepFailed, "")
			return nil, err
		}
		onStep(3, ui.StepComplete, book.Summary())

		return []ui.Param{
			countParam("Contacts", len(book)),
			countParam("Numbers", book.NumberCount()),
		}, nil
	})
	if err != nil {
		return err
	}

	touchProfile(registry, conn)
	return writePhonebook(os.Stdout, book, format)
}

// writePhonebook prints book to w in the given format
func writePhonebook(w io.Writer, book phonebook.Phonebook, format string) error {
	switch format {
	case config.FormatCompact:
		_, err := fmt.Fprintln(w, book.FormatCompact())
		return err
	case config.FormatJSON:
		return writeJSON(w, book.Sorted())
	case config.FormatVCard:
		return book.WriteVCards(w)
	default:
		if f, ok := w.(*os.File); ok && ui.IsTerminal(f) {
			return ui.RenderOnce(w, ui.RenderPhonebook(book, ui.GetTerminalWidth()))
		}
		_, err := fmt.Fprintln(w, book.FormatDetailed())
		return err
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// listCmd lists phonebook ids
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the phonebooks stored on the box",
	Example: `  fonbook list
  fonbook list --profile office --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listFormat, "format", "f", config.FormatDetailed, "Output format (detailed, json)")
}

func runList(cmd *cobra.Command, args []string) error {
	registry, conn, err := loadConnection(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client := box.NewClient(conn.Creds, conn.Config)

	var ids []string
	runner := ui.NewRunner(ui.RunnerConfig{
		Title:     "Phonebooks",
		Command:   "fonbook list",
		Params:    conn.params(),
		StepNames: []string{"Detect login style", "Log in", "List phonebooks"},
		Hints:     box.TroubleshootingHints,
		Quiet:     quietFlag,
	})
	err = runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
		if err := login(ctx, client, onStep); err != nil {
			return nil, err
		}

		onStep(3, ui.StepRunning, "")
		ids, err = client.ListPhonebooks(ctx)
		if err != nil {
			onStep(3, ui.StepFailed, "")
			return nil, err
		}
		onStep(3, ui.StepComplete, fmt.Sprintf("%d found", len(ids)))
		return []ui.Param{countParam("Phonebooks", len(ids))}, nil
	})
	if err != nil {
		return err
	}

	touchProfile(registry, conn)

	if listFormat == config.FormatJSON {
		return writeJSON(os.Stdout, ids)
	}
	if !ui.IsTerminal(os.Stdout) {
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	rows := make([][2]string, 0, len(ids))
	for _, id := range ids {
		note := ""
		if id == box.DefaultPhonebookID {
			note = "main phonebook"
		}
		if id == conn.PhonebookID {
			note = strings.TrimPrefix(note+", profile default", ", ")
		}
		rows = append(rows, [2]string{id, note})
	}
	return ui.RenderOnce(os.Stdout, ui.RenderList([2]string{"ID", "NOTE"}, rows, ui.GetTerminalWidth()))
}

// detectCmd reports the login style without logging in
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect how the box expects to be logged in to",
	Long: `Query the box and report its login style without sending a password.

Styles:
  legacy-form             plaintext password form, cookie session
  webcm-challenge         challenge/response through webcm
  lua-challenge           challenge/response through login_sid.lua
  already-authenticated   the box hands out a session without a login
  digest-per-request      TR-064 SOAP (only with --digest; never detected)`,
	Args: cobra.NoArgs,
	RunE: runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	_, conn, err := loadConnection(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	client := box.NewClient(conn.Creds, conn.Config)

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:     "Detect",
		Command:   "fonbook detect",
		Params:    conn.params(),
		StepNames: []string{"Detect login style"},
		Hints:     box.TroubleshootingHints,
		Quiet:     quietFlag,
	})
	return runner.Run(cmd.Context(), func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
		onStep(1, ui.StepRunning, "")
		style, err := client.Detect(ctx)
		if err != nil {
			onStep(1, ui.StepFailed, "")
			return nil, err
		}
		onStep(1, ui.StepComplete, style.String())

		session := "none"
		if client.SID() != "" {
			session = "open (" + shortSID(client.SID()) + ")"
		}
		return []ui.Param{
			{Key: "Login style", Value: style.String()},
			{Key: "Session", Value: session},
		}, nil
	})
}

// scanCmd finds boxes with mDNS
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the local network for FRITZ!Boxes",
	Long: `Browse mDNS for HTTP services announced by FRITZ!Boxes.

Most boxes also answer to fritz.box on their own network, so a scan is
only needed for additional boxes or repeaters.`,
	Example: `  fonbook scan
  fonbook scan --scan-timeout 10`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 0, "Scan timeout in seconds (default: preference or 5)")
}

func runScan(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	timeout := time.Duration(scanTimeout) * time.Second
	if timeout <= 0 && registry.Preferences.DiscoverTimeout > 0 {
		timeout = time.Duration(registry.Preferences.DiscoverTimeout) * time.Second
	}
	if timeout <= 0 {
		timeout = discovery.DefaultScanTimeout
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var boxes []*discovery.Box
	runner := ui.NewRunner(ui.RunnerConfig{
		Title:     "Scan",
		Command:   "fonbook scan",
		Params:    []ui.Param{{Key: "Timeout", Value: timeout.String()}},
		StepNames: []string{"Browse mDNS"},
		Hints: func(error) []string {
			return []string{
				"Make sure this computer is on the same network as the box",
				"Multicast DNS may be blocked by a firewall or guest network",
				"Try --host fritz.box, which most boxes answer to",
			}
		},
		Quiet: quietFlag,
	})
	err = runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
		onStep(1, ui.StepRunning, "")
		scanner := discovery.NewScanner()
		scanner.Timeout = timeout
		boxes, err = scanner.ScanWithContext(ctx)
		if err != nil {
			onStep(1, ui.StepFailed, "")
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		onStep(1, ui.StepComplete, fmt.Sprintf("%d found", len(boxes)))
		return []ui.Param{countParam("Boxes", len(boxes))}, nil
	})
	if err != nil {
		return err
	}

	if len(boxes) == 0 {
		return nil
	}

	rows := make([][2]string, 0, len(boxes))
	for _, b := range boxes {
		name := b.Model
		if name == "" {
			name = b.Instance
		}
		rows = append(rows, [2]string{b.Host(), name})
	}
	if err := ui.RenderOnce(os.Stdout, ui.RenderList([2]string{"HOST", "BOX"}, rows, ui.GetTerminalWidth())); err != nil {
		return err
	}
	if !quietFlag {
		fmt.Fprintln(os.Stderr, ui.StepNoteStyle.Render("Use 'fonbook profile save <name> --host <host>' to remember a box"))
	}
	return nil
}
