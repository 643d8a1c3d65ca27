package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bucketview", "prefs.ini")
	prefs := NewPrefStore(path)

	dark, err := prefs.DarkMode()
	require.NoError(t, err)
	assert.False(t, dark, "missing file means light mode")

	require.NoError(t, prefs.SetDarkMode(true))
	dark, err = prefs.DarkMode()
	require.NoError(t, err)
	assert.True(t, dark)

	// A second store on the same file sees the saved value.
	dark, err = NewPrefStore(path).DarkMode()
	require.NoError(t, err)
	assert.True(t, dark)

	require.NoError(t, prefs.SetDarkMode(false))
	dark, err = prefs.DarkMode()
	require.NoError(t, err)
	assert.False(t, dark)
}

func TestPrefStoreKeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.ini")
	require.NoError(t, os.WriteFile(path, []byte("[display]\nfont = mono\n"), 0o644))

	require.NoError(t, NewPrefStore(path).SetDarkMode(true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "font")
	assert.Contains(t, string(data), "dark_mode")
}

func TestPrefStoreUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.ini")
	require.NoError(t, os.WriteFile(path, []byte("[display\n"), 0o644))

	_, err := NewPrefStore(path).DarkMode()
	assert.Error(t, err)
}
