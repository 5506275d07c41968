package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/kmizuki/lignore/internal/config"
	"github.com/kmizuki/lignore/internal/logging"
	"github.com/kmizuki/lignore/internal/ui"
	"github.com/kmizuki/lignore/internal/update"
)

const Version = "0.2.0"

func main() {
	var (
		cacheDirFlag string
		debugFlag    bool
	)
	flag.StringVar(&cacheDirFlag, "cache-dir", "", "cache directory for downloaded templates")
	flag.BoolVar(&debugFlag, "debug", false, "enable debug logging to ~/.lignore/debug.log")
	flag.Usage = printHelp
	flag.Parse()

	if err := config.CreateExampleConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	userCfg, err := config.LoadUserConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if debugFlag {
		userCfg.Debug = true
	}

	initLogging(userCfg)
	defer logging.Shutdown()
	initColorProfile()
	update.SetCheckInterval(userCfg.Updates.CheckIntervalHours)

	theme := ui.ResolveTheme(userCfg.Theme)
	cacheDir, err := config.ResolveCacheDir(cacheDirFlag, userCfg)
	if err != nil {
		fatal(err)
	}

	args := flag.Args()
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "", "generate", "gen":
		err = runGenerate(cacheDir, theme, args)
	case "update":
		err = runUpdate(cacheDir, theme)
	case "list", "ls":
		err = runList(cacheDir, theme)
	case "self-update":
		err = runSelfUpdate(theme)
	case "version":
		fmt.Printf("lignore v%s\n", Version)
	case "help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}

	if cmd != "self-update" && userCfg.Updates.CheckEnabled {
		printUpdateNotice()
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	logging.Shutdown()
	os.Exit(1)
}

func initLogging(cfg config.UserConfig) {
	logDir := ""
	if cfg.Debug {
		if dir, err := config.LignoreDir(); err == nil {
			logDir = dir
		}
	}
	level := "info"
	if cfg.Debug {
		level = "debug"
	}
	logging.Init(logging.Config{
		LogDir: logDir,
		Level:  level,
		Debug:  cfg.Debug,
	})
}

// initColorProfile configures lipgloss based on terminal capabilities.
// LIGNORE_COLOR overrides detection: truecolor, 256, 16, none.
func initColorProfile() {
	switch os.Getenv("LIGNORE_COLOR") {
	case "truecolor":
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	case "256":
		lipgloss.SetColorProfile(termenv.ANSI256)
		return
	case "16":
		lipgloss.SetColorProfile(termenv.ANSI)
		return
	case "none":
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	if os.Getenv("COLORTERM") == "truecolor" || os.Getenv("COLORTERM") == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}
	lipgloss.SetColorProfile(termenv.ANSI256)
}

// printUpdateNotice prints a one-liner when a newer release is available.
// A fresh check cache answers without a network round trip.
func printUpdateNotice() {
	info, err := update.Check(Version, false)
	if err != nil || info == nil || !info.Available {
		return
	}
	fmt.Fprintf(os.Stderr, "\nUpdate available: v%s → v%s (run: lignore self-update)\n",
		info.CurrentVersion, info.LatestVersion)
}

func printHelp() {
	fmt.Printf("lignore v%s\n", Version)
	fmt.Println("Interactive .gitignore generator")
	fmt.Println()
	fmt.Println("Usage: lignore [flags] [command]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -cache-dir <path>   Cache directory for downloaded templates")
	fmt.Println("  -debug              Enable debug logging to ~/.lignore/debug.log")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  (none), generate    Interactively build a .gitignore (default)")
	fmt.Println("      -o <path>       Output file path (default: ./.gitignore)")
	fmt.Println("  update              Refresh the local template cache")
	fmt.Println("  list, ls            List available templates")
	fmt.Println("  self-update         Update lignore to the latest release")
	fmt.Println("  version             Show version")
	fmt.Println("  help                Show this help")
}
