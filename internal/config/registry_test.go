package config

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "fonbook") {
		t.Errorf("GetConfigDir() = %v, should contain 'fonbook'", configDir)
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(xdg, "fonbook"); configDir != want {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Profiles == nil {
		t.Error("NewRegistry().Profiles should not be nil")
	}

	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}

	if reg.Preferences.OutputFormat != FormatDetailed {
		t.Errorf("OutputFormat = %v, want %v", reg.Preferences.OutputFormat, FormatDetailed)
	}

	if reg.DefaultProfile() != nil {
		t.Error("new registry should have no default profile")
	}
}

func TestRegistrySetProfile(t *testing.T) {
	reg := NewRegistry()

	reg.SetProfile("home", &Profile{Host: "192.168.178.1"})
	reg.SetProfile("office", &Profile{Host: "fritz.box", Digest: true})

	if got := reg.GetProfile("home"); got == nil || got.Host != "192.168.178.1" {
		t.Errorf("GetProfile(home) = %+v", got)
	}

	// first profile becomes the default
	if reg.Preferences.DefaultProfile != "home" {
		t.Errorf("DefaultProfile = %q, want home", reg.Preferences.DefaultProfile)
	}
	if def := reg.DefaultProfile(); def == nil || def.Host != "192.168.178.1" {
		t.Errorf("DefaultProfile() = %+v", def)
	}

	if want := []string{"home", "office"}; !reflect.DeepEqual(reg.ProfileNames(), want) {
		t.Errorf("ProfileNames() = %v, want %v", reg.ProfileNames(), want)
	}

	if reg.GetProfile("missing") != nil {
		t.Error("GetProfile(missing) should be nil")
	}
}

func TestRegistryRemoveProfile(t *testing.T) {
	reg := NewRegistry()
	reg.SetProfile("home", &Profile{Host: "192.168.178.1"})

	if !reg.RemoveProfile("home") {
		t.Error("RemoveProfile(home) = false, want true")
	}
	if reg.RemoveProfile("home") {
		t.Error("second RemoveProfile(home) = true, want false")
	}
	if reg.Preferences.DefaultProfile != "" {
		t.Errorf("DefaultProfile = %q, want cleared", reg.Preferences.DefaultProfile)
	}
}

func TestRegistryTouchProfile(t *testing.T) {
	reg := NewRegistry()
	reg.SetProfile("home", &Profile{Host: "fritz.box"})

	before := time.Now()
	reg.TouchProfile("home")
	after := time.Now()

	lastUsed := reg.GetProfile("home").LastUsed
	if lastUsed.Before(before) || lastUsed.After(after) {
		t.Errorf("LastUsed = %v, should be between %v and %v", lastUsed, before, after)
	}

	// unknown profiles are ignored
	reg.TouchProfile("missing")
}

func TestProfileTimeout(t *testing.T) {
	if got := (&Profile{}).Timeout(); got != 0 {
		t.Errorf("Timeout() = %v, want 0", got)
	}
	if got := (&Profile{TimeoutSeconds: 7}).Timeout(); got != 7*time.Second {
		t.Errorf("Timeout() = %v, want 7s", got)
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range OutputFormats {
		if !ValidFormat(f) {
			t.Errorf("ValidFormat(%q) = false", f)
		}
	}
	if ValidFormat("xml") {
		t.Error("ValidFormat(xml) = true")
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	reg.SetProfile("home", &Profile{
		Host:           "192.168.178.1",
		Username:       "fritz1234",
		Digest:         true,
		VerifyTLS:      true,
		TimeoutSeconds: 15,
		PhonebookID:    "1",
	})
	reg.Preferences.OutputFormat = FormatCompact

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(strings.ToLower(string(data)), "password:") {
		t.Error("saved config must not contain a password field")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	if !reflect.DeepEqual(loaded.GetProfile("home"), reg.GetProfile("home")) {
		t.Errorf("loaded profile = %+v, want %+v", loaded.GetProfile("home"), reg.GetProfile("home"))
	}
	if loaded.Preferences.OutputFormat != FormatCompact {
		t.Errorf("OutputFormat = %v, want %v", loaded.Preferences.OutputFormat, FormatCompact)
	}
	if loaded.Preferences.DefaultProfile != "home" {
		t.Errorf("DefaultProfile = %v, want home", loaded.Preferences.DefaultProfile)
	}
}

func TestLoadRegistryFrom_Missing(t *testing.T) {
	reg, err := LoadRegistryFrom(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Version != 1 || reg.Profiles == nil {
		t.Errorf("missing file should give a default registry, got %+v", reg)
	}
}

func TestLoadRegistryFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "version: [1\n", "failed to parse"},
		{"wrong version", "version: 2\n", "unsupported config version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			_, err := LoadRegistryFrom(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadRegistryFrom() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRegistryFrom_FillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Profiles == nil {
		t.Error("Profiles should be initialized")
	}
	if reg.Preferences == nil || reg.Preferences.DiscoverTimeout != 5 {
		t.Errorf("Preferences = %+v, want defaults", reg.Preferences)
	}
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}
