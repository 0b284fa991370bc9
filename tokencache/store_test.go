// tokencache/store_test.go
package tokencache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryValid(t *testing.T) {
	tests := []struct {
		name     string
		entry    Entry
		buffer   time.Duration
		expected bool
	}{
		{
			name:     "valid with comfortable margin",
			entry:    Entry{Token: "tok", Expires: time.Now().Add(time.Hour)},
			buffer:   5 * time.Minute,
			expected: true,
		},
		{
			name:     "inside buffer period",
			entry:    Entry{Token: "tok", Expires: time.Now().Add(time.Minute)},
			buffer:   5 * time.Minute,
			expected: false,
		},
		{
			name:     "expired",
			entry:    Entry{Token: "tok", Expires: time.Now().Add(-time.Minute)},
			buffer:   0,
			expected: false,
		},
		{
			name:     "empty token",
			entry:    Entry{Token: "", Expires: time.Now().Add(time.Hour)},
			buffer:   0,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.Valid(tt.buffer))
		})
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found, "Empty store should report a miss")

	entry := Entry{Token: "tok-abc", Expires: time.Now().Add(time.Hour).Truncate(time.Second)}
	require.NoError(t, store.Save(entry))

	loaded, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entry.Token, loaded.Token)
	assert.True(t, entry.Expires.Equal(loaded.Expires))

	require.NoError(t, store.Clear())
	_, found, err = store.Load()
	require.NoError(t, err)
	assert.False(t, found, "Cleared store should report a miss")
}
