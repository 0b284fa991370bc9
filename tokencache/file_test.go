// tokencache/file_test.go
package tokencache

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileStore(fs, ".envhub/token.json")

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found, "Missing file should report a miss")

	entry := Entry{Token: "tok-abc", Expires: time.Now().Add(time.Hour).UTC().Truncate(time.Second)}
	require.NoError(t, store.Save(entry))

	loaded, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entry.Token, loaded.Token)
	assert.True(t, entry.Expires.Equal(loaded.Expires))

	require.NoError(t, store.Clear())
	_, found, err = store.Load()
	require.NoError(t, err)
	assert.False(t, found)

	// Clearing an already-missing file is not an error
	assert.NoError(t, store.Clear())
}

func TestFileStoreCorruptFileIsAMiss(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "token.json", []byte("{not json"), 0o600))

	store := NewFileStore(fs, "token.json")
	_, found, err := store.Load()
	require.NoError(t, err, "Corrupt cache must not block authentication")
	assert.False(t, found)
}

func TestFileStoreEmptyTokenIsAMiss(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "token.json", []byte(`{"token": "", "expires": "2030-01-01T00:00:00Z"}`), 0o600))

	store := NewFileStore(fs, "token.json")
	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileStorePermissions(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileStore(fs, ".envhub/token.json")

	require.NoError(t, store.Save(Entry{Token: "tok", Expires: time.Now().Add(time.Hour)}))

	info, err := fs.Stat(".envhub/token.json")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().String(), "Token file should only be readable by the owner")
}
