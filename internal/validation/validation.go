// Package validation guards the places where remote or user-supplied names
// turn into filesystem paths.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TemplateKey rejects template keys that could escape the cache directory.
func TemplateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("template key cannot be empty")
	case strings.Contains(key, ".."):
		return fmt.Errorf("template key contains invalid sequence: ..")
	case strings.HasPrefix(key, "/") || strings.HasPrefix(key, `\`):
		return fmt.Errorf("template key cannot start with path separator")
	case strings.Contains(key, `\`):
		return fmt.Errorf(`template key contains invalid character: \`)
	case strings.ContainsRune(key, 0):
		return fmt.Errorf("template key contains null byte")
	case len(key) > 255:
		return fmt.Errorf("template key is too long (max: 255 characters)")
	}
	return nil
}

// dangerousPrefixes are system locations the generator refuses to write to.
var dangerousPrefixes = []string{
	"/etc/", "/sys/", "/proc/", "/dev/", "/boot/",
	"/bin/", "/sbin/", "/usr/bin/", "/usr/sbin/",
}

// OutputPath rejects output locations that look like traversal attempts or
// point into system directories.
func OutputPath(path string) error {
	abs := path
	if !filepath.IsAbs(abs) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
		abs = filepath.Join(cwd, abs)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Path may not exist yet; validate the requested path as-is.
		resolved = filepath.Clean(abs)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	if !strings.HasPrefix(resolved, cwd) && strings.Contains(path, "..") {
		return fmt.Errorf("output path contains suspicious pattern: ..")
	}

	for _, prefix := range dangerousPrefixes {
		if strings.HasPrefix(resolved, prefix) {
			return fmt.Errorf("cannot write to system directory: %s", prefix)
		}
	}
	return nil
}
