package ui

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/kmizuki/lignore/internal/logging"
)

var uiLog = logging.ForComponent(logging.CompUI)

// ErrTerminalUnavailable is returned when interactive selection is requested
// without a real terminal on stdin/stdout.
var ErrTerminalUnavailable = errors.New("interactive selection requires a terminal")

// Result is the outcome of one selection session. Cancelled is distinct from
// an empty selection: it means the user backed out and nothing should be
// written.
type Result struct {
	Selected  []string
	Cancelled bool
}

// SelectTemplates runs the interactive multi-select over items, seeding the
// selection from previous (unknown entries are ignored). The terminal is
// switched to the alternate screen in raw mode with the cursor hidden for
// the duration of the session; the bubbletea runtime restores it exactly
// once on every exit path, including panics inside Update or View.
func SelectTemplates(items []string, previous []string, theme Theme) (Result, error) {
	if len(items) == 0 {
		return Result{Selected: []string{}}, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return Result{}, ErrTerminalUnavailable
	}

	model := NewSelector(items, previous, theme)
	prog := tea.NewProgram(model, tea.WithAltScreen())

	final, err := prog.Run()
	if err != nil {
		return Result{}, fmt.Errorf("selector: %w", err)
	}

	sel := final.(*Selector)
	if !sel.confirmed {
		uiLog.Debug("selection cancelled")
		return Result{Cancelled: true}, nil
	}

	chosen := sel.Selected()
	uiLog.Debug("selection confirmed", "count", len(chosen))
	return Result{Selected: chosen}, nil
}
