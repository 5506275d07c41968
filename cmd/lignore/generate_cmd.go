package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/kmizuki/lignore/internal/catalog"
	"github.com/kmizuki/lignore/internal/config"
	"github.com/kmizuki/lignore/internal/gitignore"
	"github.com/kmizuki/lignore/internal/ui"
	"github.com/kmizuki/lignore/internal/update"
	"github.com/kmizuki/lignore/internal/validation"
)

// runGenerate is the default command: pick templates interactively and write
// the composed .gitignore.
func runGenerate(cacheDir string, theme ui.Theme, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	output := fs.String("o", ".gitignore", "output file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := validation.OutputPath(*output); err != nil {
		return fmt.Errorf("validating output path %s: %w", *output, err)
	}

	ix, err := openIndexOrRefresh(cacheDir)
	if err != nil {
		return err
	}
	defer ix.Close()

	official, err := ix.Names()
	if err != nil {
		return err
	}
	if len(official) == 0 {
		fmt.Println("No templates available. Run `lignore update` first.")
		return nil
	}

	cfg := config.LoadOrDefault(config.FileName)
	if err := cfg.Validate(official); err != nil {
		return err
	}

	options := cfg.BuildOptions(official)
	previous := cfg.PreviousSelection(official)

	result, err := ui.SelectTemplates(options, previous, theme)
	if err != nil {
		if errors.Is(err, ui.ErrTerminalUnavailable) {
			return fmt.Errorf("%w (try running lignore from an interactive shell)", err)
		}
		return err
	}
	if result.Cancelled {
		fmt.Println("Selection cancelled.")
		return nil
	}
	if len(result.Selected) == 0 {
		fmt.Println("No templates selected.")
		return nil
	}

	cfg.UpdateSelection(result.Selected)
	if err := cfg.Save(config.FileName); err != nil {
		return err
	}

	if err := gitignore.EnsureOutputDir(*output); err != nil {
		return err
	}
	content, err := gitignore.Generate(result.Selected, cfg, ix)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*output, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing output file %s: %w", *output, err)
	}

	ui.PrintSuccess(os.Stdout, theme, "Generated %s", *output)
	return nil
}

// runUpdate refreshes the template cache from GitHub.
func runUpdate(cacheDir string, theme ui.Theme) error {
	ix, err := catalog.OpenIndex(cacheDir)
	if err != nil {
		return err
	}
	defer ix.Close()

	client := catalog.NewClient(cacheDir)
	if err := client.Refresh(context.Background(), ix, os.Stdout); err != nil {
		return err
	}
	ui.PrintSuccess(os.Stdout, theme, "Cache updated")
	return nil
}

// runList prints the indexed templates in columns.
func runList(cacheDir string, theme ui.Theme) error {
	ix, err := catalog.OpenIndex(cacheDir)
	if err != nil {
		return err
	}
	defer ix.Close()

	names, err := ix.Names()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return catalog.ErrNoIndex
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	layout := ui.CalculateColumnLayout(names, width)
	return ui.PrintColumns(os.Stdout, names, layout, theme)
}

// runSelfUpdate replaces the running binary with the latest release.
func runSelfUpdate(theme ui.Theme) error {
	fmt.Printf("Current version: %s\n", Version)
	fmt.Println("Checking for updates...")

	info, err := update.Check(Version, true)
	if err != nil {
		return err
	}
	if !info.Available {
		fmt.Println("Already up to date!")
		return nil
	}

	fmt.Printf("Updating v%s → v%s\n", info.CurrentVersion, info.LatestVersion)
	if err := update.Perform(info.DownloadURL, os.Stdout); err != nil {
		return err
	}
	ui.PrintSuccess(os.Stdout, theme, "Updated to v%s", info.LatestVersion)
	fmt.Println("Restart lignore to use the new version.")
	return nil
}

// openIndexOrRefresh opens the index, populating it on first run.
func openIndexOrRefresh(cacheDir string) (*catalog.Index, error) {
	ix, err := catalog.OpenIndex(cacheDir)
	if err != nil {
		return nil, err
	}

	count, err := ix.Count()
	if err != nil {
		ix.Close()
		return nil, err
	}
	if count == 0 {
		fmt.Println("No cache found. Downloading templates for the first time...")
		client := catalog.NewClient(cacheDir)
		if err := client.Refresh(context.Background(), ix, os.Stdout); err != nil {
			ix.Close()
			return nil, err
		}
	}
	return ix, nil
}
