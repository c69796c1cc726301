package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestEnvStore(t *testing.T) {
	environ := func() []string {
		return []string{"OTHER=x", "GENAIBRIDGE_API_KEY= sk-test ", "EMPTY="}
	}

	secret, err := NewEnvStore("GENAIBRIDGE_API_KEY", environ).Read(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "sk-test", secret)

	_, err = NewEnvStore("EMPTY", environ).Read(t.Context())
	require.ErrorIs(t, err, ErrNotFound)

	_, err = NewEnvStore("MISSING", environ).Read(t.Context())
	require.ErrorIs(t, err, ErrNotFound)

	err = NewEnvStore("GENAIBRIDGE_API_KEY", environ).Write(t.Context(), "new")
	require.ErrorIs(t, err, ErrReadOnly)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Read(t.Context())
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Write(t.Context(), "secret-1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(fileMode), info.Mode().Perm())

	secret, err := store.Read(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "secret-1", secret)

	require.NoError(t, store.Write(t.Context(), "secret-2"))
	secret, err = store.Read(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "secret-2", secret)

	require.NoError(t, store.Write(t.Context(), ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is fine
	require.NoError(t, store.Write(t.Context(), ""))
}

func TestFileStore_TightensExistingMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Write(t.Context(), "new"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(fileMode), info.Mode().Perm())

	secret, err := store.Read(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "new", secret)
}

func TestFileStore_HomeExpansion(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := NewFileStore("~/.config/genaibridge/token")
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "genaibridge", "token"), store.Path())
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store := NewKeyringStore("genaibridge", "refresh-token")

	_, err := store.Read(t.Context())
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Write(t.Context(), "rt-1"))
	secret, err := store.Read(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "rt-1", secret)

	require.NoError(t, store.Write(t.Context(), ""))
	_, err = store.Read(t.Context())
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Write(t.Context(), ""))
}
