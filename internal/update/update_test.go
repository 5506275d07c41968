package update

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name     string
		v1, v2   string
		expected int
	}{
		{"equal versions", "0.2.0", "0.2.0", 0},
		{"v1 less than v2", "0.2.0", "0.2.1", -1},
		{"v1 greater than v2", "1.0.0", "0.9.9", 1},
		{"with v prefix", "v0.2.0", "v0.2.0", 0},
		{"mixed prefix", "v0.2.0", "0.3.0", -1},
		{"major difference", "0.9.9", "1.0.0", -1},
		{"two-part version padded", "0.2", "0.2.0", 0},
		{"single-part version", "1", "0.9.9", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompareVersions(tt.v1, tt.v2))
		})
	}
}

func TestGetAssetURL(t *testing.T) {
	matching := fmt.Sprintf("lignore_0.3.0_%s_%s.tar.gz", runtime.GOOS, runtime.GOARCH)
	release := &Release{
		TagName: "v0.3.0",
		Assets: []Asset{
			{Name: "lignore_0.3.0_plan9_mips.tar.gz", BrowserDownloadURL: "https://example.com/wrong"},
			{Name: matching, BrowserDownloadURL: "https://example.com/right"},
			{Name: "checksums.txt", BrowserDownloadURL: "https://example.com/sums"},
		},
	}

	assert.Equal(t, "https://example.com/right", getAssetURL(release))
}

func TestGetAssetURLNoMatch(t *testing.T) {
	release := &Release{
		TagName: "v0.3.0",
		Assets:  []Asset{{Name: "checksums.txt"}},
	}
	assert.Empty(t, getAssetURL(release))
}

func TestCheckUsesFreshCache(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	cacheDir := filepath.Join(tmpHome, ".lignore")
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	require.NoError(t, saveCache(&checkCache{
		CheckedAt:     time.Now(),
		LatestVersion: "0.9.0",
		DownloadURL:   "https://example.com/release.tar.gz",
		ReleaseURL:    "https://example.com/release",
	}))

	// A fresh cache answers without touching the network.
	info, err := Check("0.2.0", false)
	require.NoError(t, err)
	assert.True(t, info.Available)
	assert.Equal(t, "0.9.0", info.LatestVersion)
	assert.Equal(t, "https://example.com/release.tar.gz", info.DownloadURL)
}

func TestCheckCacheUpToDate(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	require.NoError(t, saveCache(&checkCache{
		CheckedAt:     time.Now(),
		LatestVersion: "0.2.0",
	}))

	info, err := Check("0.2.0", false)
	require.NoError(t, err)
	assert.False(t, info.Available)
}

func TestCheckStaleCacheIgnored(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	require.NoError(t, saveCache(&checkCache{
		CheckedAt:     time.Now().Add(-48 * time.Hour),
		LatestVersion: "9.9.9",
	}))

	// The stale cache forces a live fetch, which fails in the test
	// environment; the point is that the cached answer is not trusted.
	cache, err := loadCache()
	require.NoError(t, err)
	assert.True(t, time.Since(cache.CheckedAt) >= checkInterval)
}

func TestSetCheckInterval(t *testing.T) {
	original := checkInterval
	defer func() { checkInterval = original }()

	SetCheckInterval(6)
	assert.Equal(t, 6*time.Hour, checkInterval)

	SetCheckInterval(0)
	assert.Equal(t, 6*time.Hour, checkInterval, "non-positive hours should be ignored")
}

func writeTarGz(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gzw := gzip.NewWriter(f)
	tw := tar.NewWriter(gzw)
	for name, data := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o755,
			Size:     int64(len(data)),
		}))
		_, err = tw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())
}

func TestExtractBinaryFromTarGz(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "release.tar.gz")
	writeTarGz(t, archive, map[string][]byte{
		"README.md": []byte("docs"),
		BinaryName:  []byte("#!/bin/sh\necho lignore\n"),
	})

	data, err := extractBinaryFromTarGz(archive)
	require.NoError(t, err)
	assert.Contains(t, string(data), "echo lignore")
}

func TestExtractBinaryFromTarGzMissing(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "release.tar.gz")
	writeTarGz(t, archive, map[string][]byte{"README.md": []byte("docs")})

	_, err := extractBinaryFromTarGz(archive)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in archive")
}

func TestCacheRoundTrip(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	want := &checkCache{
		CheckedAt:      time.Now().Truncate(time.Second),
		LatestVersion:  "0.3.0",
		CurrentVersion: "0.2.0",
		DownloadURL:    "https://example.com/a.tar.gz",
		ReleaseURL:     "https://example.com/r",
	}
	require.NoError(t, saveCache(want))

	got, err := loadCache()
	require.NoError(t, err)
	assert.Equal(t, want.LatestVersion, got.LatestVersion)
	assert.Equal(t, want.DownloadURL, got.DownloadURL)
	assert.True(t, want.CheckedAt.Equal(got.CheckedAt))
}
