// Package gitignore composes the final .gitignore from selected templates.
package gitignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kmizuki/lignore/internal/catalog"
	"github.com/kmizuki/lignore/internal/config"
)

// Generate builds the output file content: one section per selected name, in
// selection order. Custom templates come from the config; official ones are
// read from the cache via the index.
func Generate(selected []string, cfg *config.Config, ix *catalog.Index) (string, error) {
	var b strings.Builder
	b.WriteString("# Generated by lignore\n")
	b.WriteString("# Templates: " + strings.Join(selected, ", ") + "\n")

	for _, name := range selected {
		b.WriteString("\n# ── " + name + " ──\n")

		if lines, ok := cfg.Custom[name]; ok {
			for _, line := range lines {
				b.WriteString(line)
				b.WriteByte('\n')
			}
			continue
		}

		path, err := ix.Path(name)
		if err != nil {
			return "", err
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading cached template %s: %w", name, err)
		}
		b.Write(body)
		if len(body) > 0 && body[len(body)-1] != '\n' {
			b.WriteByte('\n')
		}
	}

	return b.String(), nil
}

// EnsureOutputDir creates the parent directory of the output path.
func EnsureOutputDir(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return nil
}
