package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kmizuki/lignore/internal/logging"
	"github.com/kmizuki/lignore/internal/validation"
)

var catLog = logging.ForComponent(logging.CompCatalog)

const (
	// RepoAPI is the GitHub contents API root for the template repository.
	RepoAPI = "https://api.github.com/repos/github/gitignore"

	// MaxDownloadSize caps a single template body at 10MB.
	MaxDownloadSize = 10 * 1024 * 1024

	userAgent         = "lignore/0.2"
	downloadWorkers   = 20
	requestsPerSecond = 8
)

// Client talks to the GitHub contents API and fills the local cache.
type Client struct {
	http     *http.Client
	apiBase  string
	limiter  *rate.Limiter
	cacheDir string

	// Progress, if set, receives (downloaded, total) after each template.
	Progress func(done, total int)
}

// NewClient builds a catalogue client writing into cacheDir.
func NewClient(cacheDir string) *Client {
	return &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		apiBase:  RepoAPI,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), downloadWorkers),
		cacheDir: cacheDir,
	}
}

// repoEntry is one node of a GitHub contents listing.
type repoEntry struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	Type        string  `json:"type"`
	DownloadURL *string `json:"download_url"`
}

// remoteTemplate is a template discovered during the tree walk.
type remoteTemplate struct {
	key         string // repo-relative key, unique across directories
	name        string // display name shown to the user
	downloadURL string
}

// RateLimit mirrors the core section of GitHub's /rate_limit response.
type RateLimit struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

type rateLimitResponse struct {
	Resources struct {
		Core RateLimit `json:"core"`
	} `json:"resources"`
}

// Refresh walks the template repository, downloads every template body into
// the cache directory, and atomically replaces the index contents.
func (c *Client) Refresh(ctx context.Context, ix *Index, out io.Writer) error {
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return fmt.Errorf("catalog: mkdir cache: %w", err)
	}

	fmt.Fprintln(out, "Scanning gitignore repository...")
	templates, err := c.collectTemplates(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Found %d templates. Downloading...\n", len(templates))

	total := len(templates)
	var done atomic.Int64
	var mu sync.Mutex
	entries := make([]Entry, 0, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadWorkers)
	for _, tmpl := range templates {
		tmpl := tmpl
		g.Go(func() error {
			path, err := c.downloadTemplate(gctx, tmpl)
			n := int(done.Add(1))
			if n%10 == 0 || n == total {
				fmt.Fprintf(out, "\rDownloaded %d/%d templates", n, total)
			}
			if c.Progress != nil {
				c.Progress(n, total)
			}
			if err != nil {
				// One broken template should not sink the whole refresh.
				catLog.Warn("template download failed", "key", tmpl.key, "error", err)
				fmt.Fprintf(out, "\nWarning: failed to download %s: %v\n", tmpl.key, err)
				return nil
			}
			mu.Lock()
			entries = append(entries, Entry{Name: tmpl.name, Path: path, FetchedAt: time.Now()})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintln(out)

	if err := ix.ReplaceAll(entries); err != nil {
		return err
	}
	catLog.Info("catalogue refreshed", "templates", len(entries))
	return nil
}

// collectTemplates walks the repository tree with an explicit worklist and
// returns every *.gitignore file it finds.
func (c *Client) collectTemplates(ctx context.Context) ([]remoteTemplate, error) {
	var templates []remoteTemplate
	worklist := []string{""}

	for len(worklist) > 0 {
		dir := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		contents, err := c.fetchTree(ctx, dir)
		if err != nil {
			return nil, err
		}

		for _, entry := range contents {
			switch {
			case entry.Type == "file" && strings.HasSuffix(entry.Name, ".gitignore"):
				if entry.DownloadURL == nil {
					continue
				}
				name := strings.TrimSuffix(entry.Name, ".gitignore")
				key := name
				if dir != "" {
					key = dir + "/" + name
				}
				templates = append(templates, remoteTemplate{
					key:         key,
					name:        name,
					downloadURL: *entry.DownloadURL,
				})
			case entry.Type == "dir":
				worklist = append(worklist, entry.Path)
			}
		}
	}

	return templates, nil
}

func (c *Client) fetchTree(ctx context.Context, dir string) ([]repoEntry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := c.apiBase + "/contents/" + dir
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetching repository contents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusForbidden {
			c.reportRateLimit(ctx, os.Stderr)
		}
		return nil, fmt.Errorf("catalog: GitHub API returned status %d for %s", resp.StatusCode, url)
	}

	var contents []repoEntry
	if err := json.NewDecoder(resp.Body).Decode(&contents); err != nil {
		return nil, fmt.Errorf("catalog: parsing contents response: %w", err)
	}
	return contents, nil
}

func (c *Client) downloadTemplate(ctx context.Context, tmpl remoteTemplate) (string, error) {
	if err := validation.TemplateKey(tmpl.key); err != nil {
		return "", err
	}
	if !strings.HasPrefix(tmpl.downloadURL, "https://") {
		return "", fmt.Errorf("download URL must use HTTPS: %s", tmpl.downloadURL)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tmpl.downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading template: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusForbidden {
			c.reportRateLimit(ctx, os.Stderr)
		}
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}
	if resp.ContentLength > MaxDownloadSize {
		return "", fmt.Errorf("template is too large: %d bytes (max: %d)", resp.ContentLength, MaxDownloadSize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return "", fmt.Errorf("reading template body: %w", err)
	}
	if len(body) > MaxDownloadSize {
		return "", fmt.Errorf("template exceeds size limit: max %d bytes", MaxDownloadSize)
	}

	sanitized := strings.ReplaceAll(tmpl.key, "/", "_")
	path := filepath.Join(c.cacheDir, sanitized+".gitignore")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("writing template to cache: %w", err)
	}
	return path, nil
}

// fetchRateLimit asks GitHub for the current core rate-limit window.
func (c *Client) fetchRateLimit(ctx context.Context) (RateLimit, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/rate_limit", nil)
	if err != nil {
		return RateLimit{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return RateLimit{}, fmt.Errorf("catalog: fetching rate limit info: %w", err)
	}
	defer resp.Body.Close()

	var data rateLimitResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return RateLimit{}, fmt.Errorf("catalog: parsing rate limit response: %w", err)
	}
	return data.Resources.Core, nil
}

// reportRateLimit prints the current GitHub rate-limit window after a 403 so
// the user knows how long to wait. Best effort.
func (c *Client) reportRateLimit(ctx context.Context, out io.Writer) {
	rl, err := c.fetchRateLimit(ctx)
	if err != nil {
		return
	}

	wait := time.Duration(0)
	if until := rl.Reset - time.Now().Unix(); until > 0 {
		wait = time.Duration(until) * time.Second
	}
	fmt.Fprintf(out, "\nGitHub rate limit: %d/%d remaining, resets in %s\n",
		rl.Remaining, rl.Limit, wait.Round(time.Second))
}
