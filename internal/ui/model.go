package ui

import (
	"sort"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Selector is the interactive multi-select model. It owns the immutable item
// list, the selection set (keyed by canonical item index, never by filtered
// position), the filtered view, cursor and viewport state, and the search
// input. One Selector drives exactly one selection session.
type Selector struct {
	items    []string
	theme    Theme
	input    textinput.Model
	filtered []int
	selected map[int]bool

	// cursor is a position within the filtered view; offset is the filtered
	// index of the first visible cell and is kept page-aligned.
	cursor int
	offset int

	width     int
	height    int
	layout    *gridLayout
	searching bool

	confirmed bool
	cancelled bool
}

// NewSelector builds a selector over items, pre-selecting any item whose
// display string appears in previous. Unknown previous entries are ignored.
func NewSelector(items []string, previous []string, theme Theme) *Selector {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 128

	s := &Selector{
		items:    items,
		theme:    theme,
		input:    ti,
		selected: make(map[int]bool),
		width:    80,
		height:   24,
	}
	s.refreshFilter(true)

	prev := make(map[string]bool, len(previous))
	for _, p := range previous {
		prev[p] = true
	}
	for i, item := range items {
		if prev[item] {
			s.selected[i] = true
		}
	}
	return s
}

func (s *Selector) Init() tea.Cmd {
	return nil
}

func (s *Selector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.invalidateLayout()
		return s, nil

	case tea.KeyMsg:
		if s.handleSearchKey(msg) {
			return s, nil
		}

		switch msg.String() {
		case "esc", "q", "ctrl+c":
			s.cancelled = true
			return s, tea.Quit
		case "enter":
			s.confirmed = true
			return s, tea.Quit
		case " ", "　":
			s.ToggleCurrent()
		case "up", "k":
			s.MoveUp()
		case "down", "j":
			s.MoveDown()
		case "left", "h":
			s.MoveLeft()
		case "right", "l":
			s.MoveRight()
		case "pgup":
			s.PageUp()
		case "pgdown":
			s.PageDown()
		case "home":
			s.MoveHome()
		case "end":
			s.MoveEnd()
		case "ctrl+a":
			s.SelectAll()
		case "ctrl+u":
			s.ClearAll()
		}
	}
	return s, nil
}

// handleSearchKey routes keys between the searching and navigating states.
// It returns true when the key was consumed; false lets the key fall through
// to the navigation handler.
func (s *Selector) handleSearchKey(msg tea.KeyMsg) bool {
	if s.searching {
		switch msg.Type {
		case tea.KeyEsc:
			s.clearSearch()
			return true
		case tea.KeyBackspace:
			if s.input.Value() == "" {
				s.exitSearch()
			} else {
				s.input, _ = s.input.Update(msg)
				s.refreshFilter(true)
			}
			return true
		case tea.KeyDelete:
			if s.input.Value() != "" {
				s.clearSearch()
			}
			return true
		case tea.KeyEnter:
			// Confirms the query only; the session keeps running with the
			// filter applied.
			s.exitSearch()
			return true
		case tea.KeySpace:
			return false
		case tea.KeyRunes:
			if msg.Alt {
				return false
			}
			if len(msg.Runes) == 1 && (msg.Runes[0] == ' ' || msg.Runes[0] == '　') {
				return false
			}
			s.input, _ = s.input.Update(msg)
			s.refreshFilter(true)
			return true
		}
		return false
	}

	switch {
	case msg.String() == "/":
		s.enterSearch()
		return true
	case msg.Type == tea.KeyRunes && !msg.Alt && len(msg.Runes) == 1:
		r := msg.Runes[0]
		if !unicode.IsPrint(r) || isReservedHotkey(r) {
			return false
		}
		// Typing starts a fresh search with this rune as the first query
		// character.
		s.input.SetValue("")
		s.enterSearch()
		s.input, _ = s.input.Update(msg)
		s.refreshFilter(true)
		return true
	}
	return false
}

// isReservedHotkey reports whether r is claimed by navigation while in the
// navigating state. These keys never start an implicit search.
func isReservedHotkey(r rune) bool {
	switch r {
	case 'q', 'j', 'k', 'h', 'l', ' ', '　':
		return true
	}
	return false
}

func (s *Selector) enterSearch() {
	s.searching = true
	s.input.Focus()
}

func (s *Selector) exitSearch() {
	s.searching = false
	s.input.Blur()
}

func (s *Selector) clearSearch() {
	if s.input.Value() != "" {
		s.input.SetValue("")
		s.refreshFilter(true)
	}
	s.exitSearch()
}

func (s *Selector) invalidateLayout() {
	s.layout = nil
}

// grid returns the cached layout, computing it from the current terminal
// size and filtered items if needed.
func (s *Selector) grid() gridLayout {
	if s.layout == nil {
		l := computeLayout(s.width, s.height, s.items, s.filtered)
		s.layout = &l
	}
	return *s.layout
}

// ensureVisible clamps the cursor into the filtered view and snaps the
// viewport to the cursor's page. The offset stays a multiple of the page
// size.
func (s *Selector) ensureVisible(l gridLayout) {
	visible := len(s.filtered)
	if visible == 0 {
		s.cursor = 0
		s.offset = 0
		return
	}
	if s.cursor >= visible {
		s.cursor = visible - 1
	}

	page := l.pageSize()
	if page == 0 {
		s.offset = 0
		return
	}

	if s.cursor/page != s.offset/page {
		s.offset = (s.cursor / page) * page
	}

	maxOffset := 0
	if visible > page {
		maxOffset = ((visible - 1) / page) * page
	}
	if s.offset > maxOffset {
		s.offset = maxOffset
	}
}

func (s *Selector) MoveUp() {
	l := s.grid()
	if s.cursor >= l.columns {
		s.cursor -= l.columns
	}
	s.ensureVisible(l)
}

func (s *Selector) MoveDown() {
	l := s.grid()
	visible := len(s.filtered)
	if visible == 0 {
		return
	}
	if s.cursor+l.columns < visible {
		s.cursor += l.columns
	} else {
		s.cursor = visible - 1
	}
	s.ensureVisible(l)
}

func (s *Selector) MoveLeft() {
	if s.cursor > 0 {
		s.cursor--
	}
	s.ensureVisible(s.grid())
}

func (s *Selector) MoveRight() {
	if s.cursor+1 < len(s.filtered) {
		s.cursor++
	}
	s.ensureVisible(s.grid())
}

func (s *Selector) PageUp() {
	l := s.grid()
	step := l.pageSize()
	if s.cursor >= step {
		s.cursor -= step
	} else {
		s.cursor = 0
	}
	s.ensureVisible(l)
}

func (s *Selector) PageDown() {
	l := s.grid()
	visible := len(s.filtered)
	if visible == 0 {
		return
	}
	if step := l.pageSize(); s.cursor+step < visible {
		s.cursor += step
	} else {
		s.cursor = visible - 1
	}
	s.ensureVisible(l)
}

func (s *Selector) MoveHome() {
	s.cursor = 0
	s.ensureVisible(s.grid())
}

func (s *Selector) MoveEnd() {
	if visible := len(s.filtered); visible > 0 {
		s.cursor = visible - 1
		s.ensureVisible(s.grid())
	}
}

// currentIndex returns the canonical index under the cursor.
func (s *Selector) currentIndex() (int, bool) {
	if s.cursor >= len(s.filtered) {
		return 0, false
	}
	return s.filtered[s.cursor], true
}

// ToggleCurrent flips selection of the item under the cursor. No-op when the
// filtered view is empty.
func (s *Selector) ToggleCurrent() {
	idx, ok := s.currentIndex()
	if !ok {
		return
	}
	if s.selected[idx] {
		delete(s.selected, idx)
	} else {
		s.selected[idx] = true
	}
}

// filterMatchesAll reports whether the filtered view currently shows every
// item.
func (s *Selector) filterMatchesAll() bool {
	return len(s.filtered) == len(s.items)
}

// SelectAll selects every filtered item. With the full list showing it
// replaces the selection outright; under a narrower filter it only adds the
// filtered items, leaving selections outside the filter untouched.
func (s *Selector) SelectAll() {
	if s.filterMatchesAll() {
		s.selected = make(map[int]bool, len(s.filtered))
	}
	for _, idx := range s.filtered {
		s.selected[idx] = true
	}
}

// ClearAll mirrors SelectAll: the full selection under a full filter, only
// the filtered items under a narrower one.
func (s *Selector) ClearAll() {
	if s.filterMatchesAll() {
		s.selected = make(map[int]bool)
		return
	}
	for _, idx := range s.filtered {
		delete(s.selected, idx)
	}
}

// Selected returns the chosen display strings in ascending canonical order.
func (s *Selector) Selected() []string {
	indices := make([]int, 0, len(s.selected))
	for idx := range s.selected {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		out = append(out, s.items[idx])
	}
	return out
}
