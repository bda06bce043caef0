package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/fonbook/internal/config"
	"github.com/muurk/fonbook/internal/ui"
)

var (
	profileForce       bool
	profilePhonebookID string
)

func init() {
	profileCmd.AddCommand(profileSaveCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileRemoveCmd)
	profileCmd.AddCommand(profileUseCmd)
	rootCmd.AddCommand(profileCmd)

	profileSaveCmd.Flags().BoolVar(&profileForce, "force", false, "Replace an existing profile without asking")
	profileSaveCmd.Flags().StringVar(&profilePhonebookID, "id", "", "Phonebook fetched by 'get' when --id is not given")
	profileRemoveCmd.Flags().BoolVar(&profileForce, "force", false, "Remove without asking")
}

// profileCmd groups the profile subcommands
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved box profiles",
	Long: `Save connection settings under a name so they do not have to be
repeated on every call. Passwords are never saved.`,
}

var profileSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the current connection flags as a profile",
	Example: `  fonbook profile save home --host fritz.box
  fonbook profile save office --host 10.0.0.1 -u admin --digest --verify-tls`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileSave,
}

func runProfileSave(cmd *cobra.Command, args []string) error {
	name := args[0]
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if timeoutFlag <= 0 {
		return fmt.Errorf("--timeout must be positive, got %d", timeoutFlag)
	}
	cmd.SilenceUsage = true

	registry, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	if existing := registry.GetProfile(name); existing != nil && !profileForce {
		question := fmt.Sprintf("Profile %q (%s) exists. Replace it?", name, existing.Host)
		if !ui.Confirm(os.Stdin, os.Stderr, question) {
			return nil
		}
	}

	profile := &config.Profile{
		Host:        hostFlag,
		Username:    usernameFlag,
		Digest:      digestFlag,
		VerifyTLS:   verifyTLS,
		PhonebookID: profilePhonebookID,
	}
	if cmd.Flags().Changed("timeout") {
		profile.TimeoutSeconds = timeoutFlag
	}
	registry.SetProfile(name, profile)

	if err := registry.Save(); err != nil {
		ui.PrintFailure("Save profile", err, []string{
			"Check that the config directory is writable",
			"Set XDG_CONFIG_HOME to use another config directory",
		})
		return err
	}

	if !quietFlag {
		path, _ := config.GetConfigPath()
		result := ui.NewSuccessResult("Profile saved",
			ui.Param{Key: "Name", Value: name},
			ui.Param{Key: "Host", Value: profile.Host},
			ui.Param{Key: "File", Value: path},
		)
		if registry.Preferences.DefaultProfile == name {
			result.AddDetail("Default", "yes")
		}
		fmt.Fprintln(os.Stderr, result.SetWidth(ui.GetTerminalWidth()).Render())
	}
	return nil
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}

		names := registry.ProfileNames()
		if len(names) == 0 {
			fmt.Fprintln(os.Stderr, "No profiles saved. Use 'fonbook profile save <name>' to add one.")
			return nil
		}

		rows := make([][2]string, 0, len(names))
		for _, name := range names {
			p := registry.GetProfile(name)
			label := name
			if name == registry.Preferences.DefaultProfile {
				label += " *"
			}
			rows = append(rows, [2]string{label, profileSummary(p)})
		}
		return ui.RenderOnce(os.Stdout, ui.RenderList([2]string{"PROFILE", "CONNECTION"}, rows, ui.GetTerminalWidth()))
	},
}

// profileSummary describes a profile in one line
func profileSummary(p *config.Profile) string {
	parts := []string{p.Host}
	if p.Username != "" {
		parts[0] = p.Username + "@" + p.Host
	}
	if p.Digest {
		parts = append(parts, "digest")
	}
	if p.PhonebookID != "" {
		parts = append(parts, "phonebook "+p.PhonebookID)
	}
	if !p.LastUsed.IsZero() {
		parts = append(parts, "used "+p.LastUsed.Format("2006-01-02"))
	}
	return strings.Join(parts, ", ")
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if registry.GetProfile(name) == nil {
			return fmt.Errorf("profile %q not found", name)
		}
		cmd.SilenceUsage = true

		if !profileForce && !ui.Confirm(os.Stdin, os.Stderr, fmt.Sprintf("Remove profile %q?", name)) {
			return nil
		}

		registry.RemoveProfile(name)
		return registry.Save()
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a profile the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if registry.GetProfile(name) == nil {
			return fmt.Errorf("profile %q not found", name)
		}
		registry.Preferences.DefaultProfile = name
		return registry.Save()
	},
}
