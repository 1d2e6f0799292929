package config

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMockKeyring(t *testing.T) {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	restore := SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	})
	t.Cleanup(restore)
}

func withFailingKeyring(t *testing.T, err error) {
	t.Helper()
	restore := SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		return nil, err
	})
	t.Cleanup(restore)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	withMockKeyring(t)

	in := Profile{
		BaseURL: "https://api.example.com",
		Bearer:  "tok",
		Headers: map[string]string{"X-Team": "platform"},
	}
	require.NoError(t, Save("work", in))

	out, err := Load("work")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadMissingProfile(t *testing.T) {
	withMockKeyring(t)

	_, err := Load("nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	withMockKeyring(t)

	require.NoError(t, Save("tmp", Profile{Bearer: "x"}))
	require.NoError(t, Delete("tmp"))
	require.NoError(t, Delete("tmp"))

	_, err := Load("tmp")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestListSorted(t *testing.T) {
	withMockKeyring(t)

	require.NoError(t, Save("zeta", Profile{}))
	require.NoError(t, Save("alpha", Profile{}))

	names, err := List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestOpenFailurePropagates(t *testing.T) {
	withFailingKeyring(t, errors.New("no backend"))

	_, err := Load("any")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open keyring")
}

func TestKeyringConfigFileBackend(t *testing.T) {
	t.Setenv(envKeyringBackend, "file")
	t.Setenv(envCredentialsDir, t.TempDir())

	cfg := keyringConfig()
	assert.Equal(t, []keyring.BackendType{keyring.FileBackend}, cfg.AllowedBackends)
	assert.NotEmpty(t, cfg.FileDir)

	t.Setenv(envKeyringPassword, "hunter2")
	pw, err := cfg.FilePasswordFunc("enter password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)
}
