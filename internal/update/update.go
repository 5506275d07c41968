// Package update provides version checking and self-update functionality.
package update

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/kmizuki/lignore/internal/config"
	"github.com/kmizuki/lignore/internal/logging"
)

var updLog = logging.ForComponent(logging.CompUpdate)

const (
	// GitHubRepo is the repository to check for updates
	GitHubRepo = "kmizuki/lignore"

	// BinaryName is the name of the shipped executable inside release archives
	BinaryName = "lignore"

	// CacheFileName stores the last update check result
	CacheFileName = "update-cache.json"

	// DefaultCheckInterval is the default check interval
	DefaultCheckInterval = 24 * time.Hour
)

// checkInterval stores the configurable interval (set via SetCheckInterval)
var checkInterval = DefaultCheckInterval

// SetCheckInterval sets the update check interval from config
func SetCheckInterval(hours int) {
	if hours > 0 {
		checkInterval = time.Duration(hours) * time.Hour
	}
}

// Release represents a GitHub release
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	PublishedAt time.Time `json:"published_at"`
	HTMLURL     string    `json:"html_url"`
	Assets      []Asset   `json:"assets"`
}

// Asset represents a release asset (binary download)
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// checkCache stores the last check result on disk
type checkCache struct {
	CheckedAt      time.Time `json:"checked_at"`
	LatestVersion  string    `json:"latest_version"`
	CurrentVersion string    `json:"current_version"`
	DownloadURL    string    `json:"download_url"`
	ReleaseURL     string    `json:"release_url"`
}

// Info describes an available update.
type Info struct {
	Available      bool
	CurrentVersion string
	LatestVersion  string
	DownloadURL    string
	ReleaseURL     string
}

func cachePath() (string, error) {
	dir, err := config.LignoreDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CacheFileName), nil
}

func loadCache() (*checkCache, error) {
	path, err := cachePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cache checkCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}
	return &cache, nil
}

func saveCache(cache *checkCache) error {
	path, err := cachePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// fetchLatestRelease fetches the latest release from GitHub
func fetchLatestRelease() (*Release, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", GitHubRepo)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to parse release: %w", err)
	}
	return &release, nil
}

// getAssetURL returns the download URL for the current platform
func getAssetURL(release *Release) string {
	version := strings.TrimPrefix(release.TagName, "v")
	expectedName := fmt.Sprintf("%s_%s_%s_%s.tar.gz", BinaryName, version, runtime.GOOS, runtime.GOARCH)

	for _, asset := range release.Assets {
		if asset.Name == expectedName {
			return asset.BrowserDownloadURL
		}
	}
	return ""
}

// CompareVersions compares two semantic versions.
// Returns: -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
func CompareVersions(v1, v2 string) int {
	v1 = strings.TrimPrefix(v1, "v")
	v2 = strings.TrimPrefix(v2, "v")

	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")
	for len(parts1) < 3 {
		parts1 = append(parts1, "0")
	}
	for len(parts2) < 3 {
		parts2 = append(parts2, "0")
	}

	for i := 0; i < 3; i++ {
		var n1, n2 int
		_, _ = fmt.Sscanf(parts1[i], "%d", &n1)
		_, _ = fmt.Sscanf(parts2[i], "%d", &n2)
		if n1 < n2 {
			return -1
		}
		if n1 > n2 {
			return 1
		}
	}
	return 0
}

// Check reports whether a newer release exists. A fresh cached answer is
// used unless forceCheck is set, so routine invocations don't hit the API.
func Check(currentVersion string, forceCheck bool) (*Info, error) {
	info := &Info{CurrentVersion: currentVersion}

	if !forceCheck {
		cache, err := loadCache()
		if err == nil && time.Since(cache.CheckedAt) < checkInterval {
			info.LatestVersion = cache.LatestVersion
			info.DownloadURL = cache.DownloadURL
			info.ReleaseURL = cache.ReleaseURL
			info.Available = CompareVersions(currentVersion, cache.LatestVersion) < 0
			return info, nil
		}
	}

	release, err := fetchLatestRelease()
	if err != nil {
		return info, err
	}

	latestVersion := strings.TrimPrefix(release.TagName, "v")
	downloadURL := getAssetURL(release)

	_ = saveCache(&checkCache{
		CheckedAt:      time.Now(),
		LatestVersion:  latestVersion,
		CurrentVersion: currentVersion,
		DownloadURL:    downloadURL,
		ReleaseURL:     release.HTMLURL,
	})

	info.LatestVersion = latestVersion
	info.DownloadURL = downloadURL
	info.ReleaseURL = release.HTMLURL
	info.Available = CompareVersions(currentVersion, latestVersion) < 0
	updLog.Debug("update check", "current", currentVersion, "latest", latestVersion, "available", info.Available)
	return info, nil
}

// Perform downloads the release archive and swaps the running binary,
// restoring the previous one if the install fails halfway.
func Perform(downloadURL string, out io.Writer) error {
	if downloadURL == "" {
		return fmt.Errorf("no download URL available for %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("failed to resolve symlinks: %w", err)
	}

	fmt.Fprintf(out, "Downloading from %s...\n", downloadURL)
	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Get(downloadURL)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp("", "lignore-update-*.tar.gz")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	_, err = io.Copy(tmpFile, resp.Body)
	tmpFile.Close()
	if err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}

	fmt.Fprintln(out, "Extracting...")
	binaryData, err := extractBinaryFromTarGz(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to extract: %w", err)
	}

	newBinaryPath := execPath + ".new"
	if err := os.WriteFile(newBinaryPath, binaryData, 0o755); err != nil {
		return fmt.Errorf("failed to write new binary: %w", err)
	}

	oldBinaryPath := execPath + ".old"
	if err := os.Rename(execPath, oldBinaryPath); err != nil {
		os.Remove(newBinaryPath)
		return fmt.Errorf("failed to backup old binary: %w", err)
	}

	if err := os.Rename(newBinaryPath, execPath); err != nil {
		_ = os.Rename(oldBinaryPath, execPath)
		return fmt.Errorf("failed to install new binary: %w", err)
	}
	os.Remove(oldBinaryPath)

	updLog.Info("binary updated", "path", execPath)
	return nil
}

// extractBinaryFromTarGz extracts the lignore binary from a .tar.gz file
func extractBinaryFromTarGz(tarPath string) ([]byte, error) {
	file, err := os.Open(tarPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if header.Typeflag == tar.TypeReg && header.Name == BinaryName {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("%s binary not found in archive", BinaryName)
}
