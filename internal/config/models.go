package config

import (
	"sort"
	"time"
)

// Output formats understood by the get command
const (
	FormatDetailed = "detailed"
	FormatCompact  = "compact"
	FormatJSON     = "json"
	FormatVCard    = "vcard"
)

// OutputFormats lists every supported output format
var OutputFormats = []string{FormatDetailed, FormatCompact, FormatJSON, FormatVCard}

// Registry represents the entire user configuration file.
// It stores named box profiles and application preferences.
type Registry struct {
	Version     int                 `yaml:"version"`
	Profiles    map[string]*Profile `yaml:"profiles,omitempty"` // Keyed by profile name
	Preferences *Preferences        `yaml:"preferences,omitempty"`
}

// Profile holds the connection settings of one box.
// Passwords are NEVER stored; they come from a flag, the environment or a prompt.
type Profile struct {
	Host           string    `yaml:"host"`                      // Hostname or IP address
	Username       string    `yaml:"username,omitempty"`        // Account name on boxes with user accounts
	Digest         bool      `yaml:"digest,omitempty"`          // Use TR-064 SOAP with digest auth
	VerifyTLS      bool      `yaml:"verify_tls,omitempty"`      // Verify the box certificate on SOAP calls
	TimeoutSeconds int       `yaml:"timeout_seconds,omitempty"` // Per-request timeout, 0 for the default
	PhonebookID    string    `yaml:"phonebook_id,omitempty"`    // Phonebook fetched when no id is given
	LastUsed       time.Time `yaml:"last_used,omitempty"`
}

// Timeout returns the configured request timeout, or 0 when unset
func (p *Profile) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultProfile  string `yaml:"default_profile,omitempty"` // Profile used when --profile is not given
	OutputFormat    string `yaml:"output_format"`             // Default output format of the get command
	DiscoverTimeout int    `yaml:"discover_timeout"`          // mDNS discovery timeout in seconds
}

func defaultPreferences() *Preferences {
	return &Preferences{
		OutputFormat:    FormatDetailed,
		DiscoverTimeout: 5,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Profiles:    make(map[string]*Profile),
		Preferences: defaultPreferences(),
	}
}

// GetProfile retrieves a profile by name.
// Returns nil if the profile doesn't exist in the registry.
func (r *Registry) GetProfile(name string) *Profile {
	return r.Profiles[name]
}

// DefaultProfile returns the preferred profile, or nil if none is set.
func (r *Registry) DefaultProfile() *Profile {
	if r.Preferences == nil || r.Preferences.DefaultProfile == "" {
		return nil
	}
	return r.GetProfile(r.Preferences.DefaultProfile)
}

// SetProfile stores a profile under name, replacing any existing one.
// The first profile saved becomes the default.
func (r *Registry) SetProfile(name string, profile *Profile) {
	if r.Profiles == nil {
		r.Profiles = make(map[string]*Profile)
	}
	r.Profiles[name] = profile

	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}
	if r.Preferences.DefaultProfile == "" {
		r.Preferences.DefaultProfile = name
	}
}

// RemoveProfile deletes a profile. Reports whether it existed.
func (r *Registry) RemoveProfile(name string) bool {
	if _, exists := r.Profiles[name]; !exists {
		return false
	}
	delete(r.Profiles, name)

	if r.Preferences != nil && r.Preferences.DefaultProfile == name {
		r.Preferences.DefaultProfile = ""
	}
	return true
}

// ProfileNames returns profile names in sorted order
func (r *Registry) ProfileNames() []string {
	names := make([]string, 0, len(r.Profiles))
	for name := range r.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TouchProfile records that a profile was just used.
func (r *Registry) TouchProfile(name string) {
	if p := r.GetProfile(name); p != nil {
		p.LastUsed = time.Now()
	}
}

// ValidFormat reports whether format is a supported output format
func ValidFormat(format string) bool {
	for _, f := range OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}
