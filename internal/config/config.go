// Package config handles the project-local lignore.json (selected templates
// plus user-defined custom templates) and the per-user config.toml.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kmizuki/lignore/internal/logging"
)

var cfgLog = logging.ForComponent(logging.CompConfig)

// FileName is the project-local configuration file.
const FileName = "lignore.json"

// Limits on custom template content.
const (
	MaxCustomTemplateSize  = 100 * 1024
	MaxCustomTemplateLines = 10000
)

// Config is the persisted lignore.json: the officially-named templates the
// user selected last time, plus custom templates defined inline.
type Config struct {
	Templates []string            `json:"templates"`
	Custom    map[string][]string `json:"custom,omitempty"`
}

// Load reads and parses path. A plain JSON array (the pre-custom-templates
// format) still parses as a template list.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err == nil {
		for name, lines := range cfg.Custom {
			if err := ValidateCustomTemplate(name, lines); err != nil {
				return nil, fmt.Errorf("validating custom template %q: %w", name, err)
			}
		}
		return &cfg, nil
	}

	// Legacy format: a bare array of template names.
	var templates []string
	if err := json.Unmarshal(data, &templates); err == nil {
		return &Config{Templates: templates}, nil
	}

	return nil, fmt.Errorf("failed to parse %s", path)
}

// LoadOrDefault returns the parsed config, or an empty one when the file is
// missing or unreadable.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			cfgLog.Warn("config unreadable, using defaults", "path", path, "error", err)
		}
		return &Config{}
	}
	return cfg
}

// Save writes the config as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", FileName, err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// customNames returns the custom template names in ascending order.
func (c *Config) customNames() []string {
	names := make([]string, 0, len(c.Custom))
	for name := range c.Custom {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the config against the official template catalogue.
func (c *Config) Validate(official []string) error {
	if err := c.checkInvalidTemplates(official); err != nil {
		return fmt.Errorf("invalid template configuration: %w", err)
	}
	if err := c.checkShadowedTemplates(official); err != nil {
		return fmt.Errorf("template name conflict detected: %w", err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// checkInvalidTemplates rejects references to templates that exist neither
// in the catalogue nor in the custom section.
func (c *Config) checkInvalidTemplates(official []string) error {
	var invalid []string
	for _, tmpl := range c.Templates {
		if !contains(official, tmpl) {
			if _, ok := c.Custom[tmpl]; !ok {
				invalid = append(invalid, tmpl)
			}
		}
	}
	if len(invalid) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("the following templates in lignore.json do not exist:\n")
	for _, tmpl := range invalid {
		fmt.Fprintf(&b, "  - %s\n", tmpl)
	}
	b.WriteString("\nRun `lignore list` to see available templates or define them in the 'custom' section.")
	return fmt.Errorf("%s", b.String())
}

// checkShadowedTemplates rejects custom templates whose names collide
// case-insensitively with official ones.
func (c *Config) checkShadowedTemplates(official []string) error {
	officialLower := make(map[string][]string)
	for _, tmpl := range official {
		key := strings.ToLower(tmpl)
		officialLower[key] = append(officialLower[key], tmpl)
	}

	type conflict struct{ custom, official string }
	var shadowed []conflict
	for _, name := range c.customNames() {
		matches, ok := officialLower[strings.ToLower(name)]
		if !ok {
			continue
		}
		officialName := matches[0]
		for _, m := range matches {
			if m == name {
				officialName = m
				break
			}
		}
		shadowed = append(shadowed, conflict{custom: name, official: officialName})
	}
	if len(shadowed) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("custom templates conflict with official templates:\n")
	for _, s := range shadowed {
		if s.custom == s.official {
			fmt.Fprintf(&b, "  - %s (exact match)\n", s.custom)
		} else {
			fmt.Fprintf(&b, "  - %s (conflicts with: %s)\n", s.custom, s.official)
		}
	}
	b.WriteString("\nPlease rename your custom templates to avoid conflicts with official templates.")
	return fmt.Errorf("%s", b.String())
}

// ValidateCustomTemplate enforces the content limits on one custom template.
func ValidateCustomTemplate(name string, lines []string) error {
	if len(lines) > MaxCustomTemplateLines {
		return fmt.Errorf("custom template %q has too many lines: %d (max: %d)",
			name, len(lines), MaxCustomTemplateLines)
	}

	total := 0
	for _, line := range lines {
		total += len(line)
	}
	if total > MaxCustomTemplateSize {
		return fmt.Errorf("custom template %q is too large: %d bytes (max: %d)",
			name, total, MaxCustomTemplateSize)
	}

	for i, line := range lines {
		if strings.ContainsRune(line, 0) {
			return fmt.Errorf("custom template %q contains null byte at line %d", name, i+1)
		}
	}
	return nil
}

// BuildOptions assembles the selector item list: custom templates first,
// then previously selected official ones, then the rest of the catalogue,
// deduplicated in that priority order.
func (c *Config) BuildOptions(official []string) []string {
	seen := make(map[string]bool)
	var options []string

	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			options = append(options, name)
		}
	}

	for _, name := range c.customNames() {
		add(name)
	}
	for _, tmpl := range c.Templates {
		if contains(official, tmpl) {
			add(tmpl)
		}
	}
	for _, tmpl := range official {
		add(tmpl)
	}
	return options
}

// PreviousSelection returns the items to pre-check: previously selected
// officials that still exist, plus every custom template.
func (c *Config) PreviousSelection(official []string) []string {
	var previous []string
	for _, tmpl := range c.Templates {
		if contains(official, tmpl) {
			previous = append(previous, tmpl)
		}
	}
	previous = append(previous, c.customNames()...)
	return previous
}

// UpdateSelection records the confirmed selection, keeping custom template
// names out of the Templates list (they are implied by the custom section).
func (c *Config) UpdateSelection(selected []string) {
	templates := make([]string, 0, len(selected))
	for _, name := range selected {
		if _, isCustom := c.Custom[name]; !isCustom {
			templates = append(templates, name)
		}
	}
	c.Templates = templates
}
