// Package config stores named CLI profiles in the OS keyring.
//
// A profile bundles a base URL, credentials, and default headers so the
// same API can be called without repeating flags. Profiles are kept in
// the system keychain where available, with an encrypted file fallback
// for headless machines. Control the backend with FLUENT_KEYRING_BACKEND
// (auto, file, system) and FLUENT_KEYRING_PASSWORD for non-interactive
// file encryption.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName   = "fluent-cli"
	profilePrefix = "profile:"

	envKeyringBackend  = "FLUENT_KEYRING_BACKEND"
	envKeyringPassword = "FLUENT_KEYRING_PASSWORD"
	envCredentialsDir  = "FLUENT_CREDENTIALS_DIR"
)

// Profile holds connection defaults for a named target API.
type Profile struct {
	BaseURL   string            `json:"base_url,omitempty"`
	Bearer    string            `json:"bearer,omitempty"`
	BasicUser string            `json:"basic_user,omitempty"`
	BasicPass string            `json:"basic_pass,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// ErrProfileNotFound is returned when a named profile does not exist.
var ErrProfileNotFound = errors.New("profile not found - run 'fluent auth login' first")

// openKeyring is a package-level function for opening keyrings. Tests
// replace it with a mock.
var openKeyring = func(cfg keyring.Config) (keyring.Keyring, error) {
	return keyring.Open(cfg)
}

// SetOpenKeyring replaces the keyring opener for testing. It returns a
// cleanup function that restores the original.
func SetOpenKeyring(fn func(keyring.Config) (keyring.Keyring, error)) func() {
	original := openKeyring
	openKeyring = fn
	return func() { openKeyring = original }
}

func keyringConfig() keyring.Config {
	cfg := keyring.Config{ServiceName: serviceName}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv(envKeyringBackend)))
	if backend == "system" || backend == "os" || backend == "native" {
		return cfg
	}

	// Configure file storage details even in auto mode so keyring.Open
	// can fall through to it when no native backend is available.
	cfg.FileDir = credentialsDir()
	cfg.FilePasswordFunc = filePassword

	if backend == "file" || headlessLinux() {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}
	return cfg
}

func credentialsDir() string {
	if dir := strings.TrimSpace(os.Getenv(envCredentialsDir)); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "fluent", "credentials")
}

func filePassword(prompt string) (string, error) {
	if pw := os.Getenv(envKeyringPassword); pw != "" {
		return pw, nil
	}
	return "", fmt.Errorf("%s (set %s for non-interactive use)", prompt, envKeyringPassword)
}

func headlessLinux() bool {
	return runtime.GOOS == "linux" && os.Getenv("DBUS_SESSION_BUS_ADDRESS") == ""
}

func open() (keyring.Keyring, error) {
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return ring, nil
}

// Save writes or replaces a named profile.
func Save(name string, p Profile) error {
	ring, err := open()
	if err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	item := keyring.Item{
		Key:   profilePrefix + name,
		Data:  data,
		Label: "fluent profile " + name,
	}
	if err := ring.Set(item); err != nil {
		return fmt.Errorf("store profile %q: %w", name, err)
	}
	return nil
}

// Load reads a named profile.
func Load(name string) (Profile, error) {
	ring, err := open()
	if err != nil {
		return Profile{}, err
	}
	item, err := ring.Get(profilePrefix + name)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return Profile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
		}
		return Profile{}, fmt.Errorf("read profile %q: %w", name, err)
	}
	var p Profile
	if err := json.Unmarshal(item.Data, &p); err != nil {
		return Profile{}, fmt.Errorf("decode profile %q: %w", name, err)
	}
	return p, nil
}

// Delete removes a named profile. Deleting a missing profile is not an
// error.
func Delete(name string) error {
	ring, err := open()
	if err != nil {
		return err
	}
	if err := ring.Remove(profilePrefix + name); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("remove profile %q: %w", name, err)
	}
	return nil
}

// List returns the stored profile names, sorted.
func List() ([]string, error) {
	ring, err := open()
	if err != nil {
		return nil, err
	}
	keys, err := ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	var names []string
	for _, key := range keys {
		if strings.HasPrefix(key, profilePrefix) {
			names = append(names, strings.TrimPrefix(key, profilePrefix))
		}
	}
	sort.Strings(names)
	return names, nil
}
