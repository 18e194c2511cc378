package main

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFaviconEmptyPathIsNotAnError(t *testing.T) {
	favicon, err := loadFavicon("")
	require.NoError(t, err)
	require.Empty(t, favicon)
}

func TestLoadFaviconMissingFileIsAnError(t *testing.T) {
	_, err := loadFavicon(filepath.Join(t.TempDir(), "does-not-exist.png"))
	require.Error(t, err)
}

func TestLoadFaviconPNGUsesPNGMimeType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server-icon.png")
	require.NoError(t, os.WriteFile(path, []byte("not a real png, just bytes"), 0o644))

	favicon, err := loadFavicon(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(favicon, "data:image/png;base64,"))

	encoded := strings.TrimPrefix(favicon, "data:image/png;base64,")
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	require.Equal(t, "not a real png, just bytes", string(decoded))
}

func TestLoadFaviconJPEGUsesJPEGMimeType(t *testing.T) {
	for _, ext := range []string{".jpg", ".jpeg"} {
		path := filepath.Join(t.TempDir(), "server-icon"+ext)
		require.NoError(t, os.WriteFile(path, []byte("jpeg bytes"), 0o644))

		favicon, err := loadFavicon(path)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(favicon, "data:image/jpeg;base64,"), "extension %s", ext)
	}
}

func TestLoadFaviconUnknownExtensionDefaultsToPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server-icon.gif")
	require.NoError(t, os.WriteFile(path, []byte("gif bytes"), 0o644))

	favicon, err := loadFavicon(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(favicon, "data:image/png;base64,"))
}
