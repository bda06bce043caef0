package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/muurk/fonbook/internal/box"
	"github.com/muurk/fonbook/internal/config"
	"github.com/muurk/fonbook/internal/logging"
	"github.com/muurk/fonbook/internal/ui"
)

// PasswordEnvVar holds the box password when --password is not given
const PasswordEnvVar = "FONBOOK_PASSWORD"

// Connection flags (persistent on root)
var (
	hostFlag     string
	usernameFlag string
	passwordFlag string
	profileFlag  string
	digestFlag   bool
	verifyTLS    bool
	timeoutFlag  int
	logLevel     string
	quietFlag    bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&hostFlag, "host", box.DefaultHost, "Box hostname or IP address, optionally with port")
	flags.StringVarP(&usernameFlag, "username", "u", "", "Account name on boxes with user accounts")
	flags.StringVarP(&passwordFlag, "password", "p", "", "Box password (default: $"+PasswordEnvVar+" or prompt)")
	flags.StringVar(&profileFlag, "profile", "", "Saved profile to use (default: the default profile)")
	flags.BoolVar(&digestFlag, "digest", false, "Use TR-064 SOAP with HTTP digest authentication")
	flags.BoolVar(&verifyTLS, "verify-tls", false, "Verify the box certificate on SOAP calls")
	flags.IntVar(&timeoutFlag, "timeout", int(box.DefaultRequestTimeout/time.Second), "Request timeout in seconds")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); default $"+logging.LogLevelEnvVar)
	flags.BoolVarP(&quietFlag, "quiet", "q", false, "Only print results and errors")
}

// connection is the box a command talks to, after merging the selected
// profile with explicit flags.
type connection struct {
	Profile     string // empty when no profile is in use
	Creds       box.Credentials
	Config      box.Config
	PhonebookID string
}

// resolveConnection merges flags over the selected profile. Flags given
// on the command line always win.
func resolveConnection(flags *pflag.FlagSet, registry *config.Registry) (*connection, error) {
	conn := &connection{
		Creds:  box.Credentials{Host: box.DefaultHost},
		Config: box.DefaultConfig(),
	}

	var profile *config.Profile
	if profileFlag != "" {
		profile = registry.GetProfile(profileFlag)
		if profile == nil {
			return nil, fmt.Errorf("profile %q not found", profileFlag)
		}
		conn.Profile = profileFlag
	} else if profile = registry.DefaultProfile(); profile != nil {
		conn.Profile = registry.Preferences.DefaultProfile
	}

	if profile != nil {
		conn.Creds.Host = profile.Host
		conn.Creds.Username = profile.Username
		conn.Config.Digest = profile.Digest
		conn.Config.InsecureSkipVerify = !profile.VerifyTLS
		if t := profile.Timeout(); t > 0 {
			conn.Config.RequestTimeout = t
		}
		conn.PhonebookID = profile.PhonebookID
	}

	if flags.Changed("host") || profile == nil {
		conn.Creds.Host = hostFlag
	}
	if flags.Changed("username") {
		conn.Creds.Username = usernameFlag
	}
	if flags.Changed("digest") {
		conn.Config.Digest = digestFlag
	}
	if flags.Changed("verify-tls") {
		conn.Config.InsecureSkipVerify = !verifyTLS
	}
	if flags.Changed("timeout") || profile == nil {
		if timeoutFlag <= 0 {
			return nil, fmt.Errorf("--timeout must be positive, got %d", timeoutFlag)
		}
		conn.Config.RequestTimeout = time.Duration(timeoutFlag) * time.Second
	}

	conn.Creds.Password = passwordFlag
	if conn.Creds.Password == "" {
		conn.Creds.Password = os.Getenv(PasswordEnvVar)
	}

	return conn, nil
}

// params describes the connection for command headers
func (c *connection) params() []ui.Param {
	params := []ui.Param{{Key: "Host", Value: c.Creds.Host}}
	if c.Profile != "" {
		params = append(params, ui.Param{Key: "Profile", Value: c.Profile})
	}
	if c.Creds.Username != "" {
		params = append(params, ui.Param{Key: "User", Value: c.Creds.Username})
	}
	if c.Config.Digest {
		params = append(params, ui.Param{Key: "Mode", Value: "TR-064 digest"})
	}
	return params
}

// loadConnection loads the registry and resolves the connection for cmd
func loadConnection(cmd *cobra.Command) (*config.Registry, *connection, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, nil, err
	}
	conn, err := resolveConnection(cmd.Flags(), registry)
	if err != nil {
		return nil, nil, err
	}
	return registry, conn, nil
}

// touchProfile records profile use; failures only get logged
func touchProfile(registry *config.Registry, conn *connection) {
	if conn.Profile == "" {
		return
	}
	registry.TouchProfile(conn.Profile)
	if err := registry.Save(); err != nil {
		logging.Warn("Failed to save profile usage", zap.String("profile", conn.Profile), zap.Error(err))
	}
}

// login runs the detect and login steps shared by the box commands.
// The password is prompted for only when the box asks for one.
func login(ctx context.Context, client *box.Client, onStep ui.StepCallback) error {
	onStep(1, ui.StepRunning, "")
	style, err := client.Detect(ctx)
	if err != nil {
		onStep(1, ui.StepFailed, "")
		return err
	}
	onStep(1, ui.StepComplete, style.String())

	need, err := client.NeedsPassword(ctx)
	if err != nil {
		return err
	}
	if need {
		password, err := ui.PromptPassword(client.Host())
		if err != nil {
			onStep(2, ui.StepFailed, "no password")
			return box.NewSessionRequiredError(err.Error())
		}
		client.SetPassword(password)
	}

	onStep(2, ui.StepRunning, "")
	ok, err := client.Login(ctx)
	if err != nil {
		onStep(2, ui.StepFailed, "")
		return err
	}
	if !ok {
		onStep(2, ui.StepFailed, "")
		return box.NewLoginError("the box did not hand out a session id")
	}

	switch {
	case style == box.StyleAlreadyAuthenticated:
		onStep(2, ui.StepSkipped, "no login needed")
	case client.SID() != "":
		onStep(2, ui.StepComplete, "session "+shortSID(client.SID()))
	default:
		onStep(2, ui.StepComplete, "")
	}
	return nil
}

// shortSID abbreviates a session id for display
func shortSID(sid string) string {
	if len(sid) <= 4 {
		return sid
	}
	return sid[:4] + "…"
}

func countParam(key string, n int) ui.Param {
	return ui.Param{Key: key, Value: strconv.Itoa(n)}
}
