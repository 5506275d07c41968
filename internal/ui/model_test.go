package ui

import (
	"fmt"
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestSelector(items []string, previous []string) *Selector {
	s := NewSelector(items, previous, DarkTheme())
	s.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return s
}

func pressRune(s *Selector, r rune) {
	s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func pressKey(s *Selector, t tea.KeyType) {
	s.Update(tea.KeyMsg{Type: t})
}

func manyItems(n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("item-%02d", i)
	}
	return items
}

func TestNewSelectorSeedsPreviousSelection(t *testing.T) {
	s := newTestSelector([]string{"W", "X", "Y", "Z"}, []string{"X", "Z", "Unknown"})

	got := s.Selected()
	want := []string{"X", "Z"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Selected() = %v, want %v", got, want)
	}
}

func TestRoundTripWithoutOperations(t *testing.T) {
	s := newTestSelector([]string{"W", "X", "Y", "Z"}, []string{"X", "Z"})
	pressKey(s, tea.KeyEnter)

	if !s.confirmed {
		t.Fatal("Enter should confirm the session")
	}
	if got, want := s.Selected(), []string{"X", "Z"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Selected() = %v, want %v", got, want)
	}
}

func TestToggleCurrentFlipsMembership(t *testing.T) {
	s := newTestSelector([]string{"A", "B", "C"}, nil)

	s.ToggleCurrent()
	if got := s.Selected(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("after toggle Selected() = %v, want [A]", got)
	}

	s.ToggleCurrent()
	if got := s.Selected(); len(got) != 0 {
		t.Errorf("toggle twice should clear, got %v", got)
	}
}

func TestToggleOnEmptyFilterIsNoop(t *testing.T) {
	s := newTestSelector([]string{"A", "B"}, nil)
	pressRune(s, 'z')
	pressRune(s, 'z')

	if len(s.filtered) != 0 {
		t.Fatalf("filter 'zz' should match nothing, got %v", s.filtered)
	}
	pressKey(s, tea.KeySpace)
	if len(s.selected) != 0 {
		t.Errorf("toggle on empty view should not select anything, got %v", s.selected)
	}
}

func TestSelectionKeyedByCanonicalIndex(t *testing.T) {
	s := newTestSelector([]string{"Go", "Rust", "Ruby", "Rails"}, nil)

	// Filter down to the R-names, toggle the item under the cursor.
	pressRune(s, 'r')
	if len(s.filtered) != 3 {
		t.Fatalf("filter 'r' should match 3 items, got %d", len(s.filtered))
	}
	s.MoveRight()
	s.ToggleCurrent() // Ruby, canonical index 2

	// Clearing the filter must keep the same canonical item selected.
	pressKey(s, tea.KeyEsc)
	if got, want := s.Selected(), []string{"Ruby"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Selected() after filter clear = %v, want %v", got, want)
	}
}

func TestSelectAllUnderFullFilterReplacesSelection(t *testing.T) {
	s := newTestSelector([]string{"A", "B", "C"}, []string{"B"})
	s.SelectAll()

	if got, want := s.Selected(), []string{"A", "B", "C"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Selected() = %v, want %v", got, want)
	}
}

func TestSelectAllUnderPartialFilterKeepsOutsideSelection(t *testing.T) {
	s := newTestSelector([]string{"Apple", "Boat", "Cat"}, []string{"Boat"})

	pressRune(s, 'a')
	pressRune(s, 'p') // matches only Apple
	if len(s.filtered) != 1 {
		t.Fatalf("filter 'ap' should match 1 item, got %d", len(s.filtered))
	}

	s.SelectAll()
	if got, want := s.Selected(), []string{"Apple", "Boat"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Selected() = %v, want %v (Boat retained, Apple added)", got, want)
	}
}

func TestClearAllUnderPartialFilterKeepsOutsideSelection(t *testing.T) {
	s := newTestSelector([]string{"Apple", "Boat", "Cat"}, []string{"Apple", "Boat"})

	pressRune(s, 'a')
	pressRune(s, 'p')
	s.ClearAll()

	if got, want := s.Selected(), []string{"Boat"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Selected() = %v, want %v", got, want)
	}
}

func TestClearAllUnderFullFilterClearsEverything(t *testing.T) {
	s := newTestSelector([]string{"A", "B", "C"}, []string{"A", "C"})
	s.ClearAll()

	if got := s.Selected(); len(got) != 0 {
		t.Errorf("Selected() = %v, want empty", got)
	}
}

func TestImplicitSearchStart(t *testing.T) {
	s := newTestSelector([]string{"Go", "Git"}, nil)

	pressRune(s, 'g')
	if !s.searching {
		t.Fatal("typing a non-hotkey rune should enter search mode")
	}
	if got := s.input.Value(); got != "g" {
		t.Errorf("query = %q, want %q", got, "g")
	}

	pressKey(s, tea.KeyBackspace)
	if got := s.input.Value(); got != "" {
		t.Errorf("query after backspace = %q, want empty", got)
	}
	if !s.searching {
		t.Error("backspace on non-empty query should stay in search mode")
	}

	pressKey(s, tea.KeyBackspace)
	if s.searching {
		t.Error("backspace on empty query should exit search mode")
	}
	if s.cancelled || s.confirmed {
		t.Error("leaving search mode must not end the session")
	}
}

func TestReservedHotkeysDoNotStartSearch(t *testing.T) {
	for _, r := range []rune{'j', 'k', 'h', 'l'} {
		s := newTestSelector(manyItems(30), nil)
		pressRune(s, r)
		if s.searching {
			t.Errorf("rune %q should navigate, not start a search", r)
		}
	}
}

func TestExplicitSearchKeyPreservesQuery(t *testing.T) {
	s := newTestSelector([]string{"Go", "Git", "Rust"}, nil)

	pressRune(s, 'g')
	pressKey(s, tea.KeyEnter)
	if s.searching {
		t.Fatal("Enter should confirm the query and leave search mode")
	}
	if s.confirmed {
		t.Fatal("Enter in search mode must not confirm the session")
	}
	if got := s.input.Value(); got != "g" {
		t.Errorf("query after confirm = %q, want %q", got, "g")
	}

	// "/" re-enters search with the query intact.
	pressRune(s, '/')
	if !s.searching {
		t.Error("/ should enter search mode")
	}
	if got := s.input.Value(); got != "g" {
		t.Errorf("query after / = %q, want %q", got, "g")
	}
}

func TestDeleteClearsQueryAndExitsSearch(t *testing.T) {
	s := newTestSelector([]string{"Go", "Git", "Rust"}, nil)

	pressRune(s, 'g')
	pressKey(s, tea.KeyDelete)
	if s.searching {
		t.Error("Delete should exit search mode")
	}
	if got := s.input.Value(); got != "" {
		t.Errorf("query after Delete = %q, want empty", got)
	}
	if len(s.filtered) != 3 {
		t.Errorf("filter should show all items again, got %d", len(s.filtered))
	}
}

func TestHotkeysAreLiteralWhileSearching(t *testing.T) {
	s := newTestSelector([]string{"jquery", "Go"}, nil)

	pressRune(s, 'j') // navigates (reserved)
	if s.searching {
		t.Fatal("j should not start a search")
	}

	pressRune(s, '/')
	pressRune(s, 'j') // literal query text now
	if got := s.input.Value(); got != "j" {
		t.Errorf("query = %q, want %q", got, "j")
	}
	if got := len(s.filtered); got != 1 {
		t.Errorf("filter 'j' should match 1 item, got %d", got)
	}
}

func TestSpaceTogglesWhileSearching(t *testing.T) {
	s := newTestSelector([]string{"Go", "Git"}, nil)

	pressRune(s, 'g')
	pressKey(s, tea.KeySpace)
	if got := s.input.Value(); got != "g" {
		t.Errorf("space should not be appended to the query, got %q", got)
	}
	if len(s.selected) != 1 {
		t.Errorf("space should toggle the item under the cursor, selected = %v", s.selected)
	}
}

func TestFullWidthSpaceToggles(t *testing.T) {
	s := newTestSelector([]string{"Go", "Git"}, nil)

	pressRune(s, '　')
	if s.searching {
		t.Fatal("full-width space should not start a search")
	}
	if got := s.Selected(); !reflect.DeepEqual(got, []string{"Go"}) {
		t.Errorf("full-width space should toggle the item under the cursor, got %v", got)
	}

	// It stays a toggle while the search input is focused.
	pressRune(s, 'g')
	pressRune(s, '　')
	if got := s.input.Value(); got != "g" {
		t.Errorf("full-width space should not be appended to the query, got %q", got)
	}
	if got := s.Selected(); len(got) != 0 {
		t.Errorf("second toggle should clear the selection, got %v", got)
	}
}

func TestQuitLetterCancelsWhileNavigating(t *testing.T) {
	s := newTestSelector([]string{"A", "B"}, nil)
	pressRune(s, 'q')
	if !s.cancelled {
		t.Error("q should cancel the session while navigating")
	}
}

func TestEscCancelsWhileNavigating(t *testing.T) {
	s := newTestSelector([]string{"A", "B"}, nil)
	pressKey(s, tea.KeyEsc)
	if !s.cancelled {
		t.Error("Esc should cancel the session while navigating")
	}
}

func TestCursorInvariantAcrossNavigation(t *testing.T) {
	s := newTestSelector(manyItems(57), nil)

	ops := []func(){
		s.MoveDown, s.MoveDown, s.MoveRight, s.PageDown, s.PageDown,
		s.MoveEnd, s.MoveDown, s.MoveRight, s.PageDown, s.MoveUp,
		s.PageUp, s.MoveLeft, s.MoveHome, s.MoveUp, s.MoveLeft,
		s.PageUp, s.MoveEnd, s.PageUp, s.MoveDown,
	}
	for i, op := range ops {
		op()
		if len(s.filtered) > 0 && s.cursor >= len(s.filtered) {
			t.Fatalf("op %d: cursor %d out of range (filtered %d)", i, s.cursor, len(s.filtered))
		}
		if page := s.grid().pageSize(); page > 0 && s.offset%page != 0 {
			t.Fatalf("op %d: offset %d not page-aligned (page %d)", i, s.offset, page)
		}
	}
}

func TestNavigationClampsAtEdges(t *testing.T) {
	s := newTestSelector(manyItems(5), nil)

	s.MoveUp()
	s.MoveLeft()
	s.PageUp()
	if s.cursor != 0 {
		t.Errorf("cursor = %d, want 0 after upward motion at top", s.cursor)
	}

	s.MoveEnd()
	s.MoveDown()
	s.MoveRight()
	s.PageDown()
	if s.cursor != 4 {
		t.Errorf("cursor = %d, want 4 after downward motion at bottom", s.cursor)
	}
}

func TestViewportFollowsCursorPages(t *testing.T) {
	s := newTestSelector(manyItems(200), nil)

	l := s.grid()
	page := l.pageSize()
	s.MoveEnd()
	if s.offset != ((len(s.filtered)-1)/page)*page {
		t.Errorf("offset = %d, want last page offset", s.offset)
	}

	s.MoveHome()
	if s.offset != 0 {
		t.Errorf("offset = %d, want 0 on first page", s.offset)
	}
}

func TestResizeKeepsCursorAndSelection(t *testing.T) {
	s := newTestSelector(manyItems(60), nil)
	s.ToggleCurrent()
	s.MoveDown()
	s.MoveDown()
	cursor := s.cursor
	selected := s.Selected()

	s.Update(tea.WindowSizeMsg{Width: 40, Height: 12})
	if s.layout != nil {
		t.Error("resize should invalidate the cached layout")
	}
	if s.cursor != cursor {
		t.Errorf("resize changed cursor: %d -> %d", cursor, s.cursor)
	}
	if got := s.Selected(); !reflect.DeepEqual(got, selected) {
		t.Errorf("resize changed selection: %v -> %v", selected, got)
	}

	// Next access recomputes geometry for the new size.
	l := s.grid()
	if l.visibleRows != 7 {
		t.Errorf("visibleRows = %d, want 7 for height 12", l.visibleRows)
	}
}

func TestFilterInsertionResetsCursor(t *testing.T) {
	s := newTestSelector(manyItems(60), nil)
	s.MoveEnd()

	pressRune(s, 'i') // every item matches "i"
	if s.cursor != 0 || s.offset != 0 {
		t.Errorf("query edits should reset position, cursor=%d offset=%d", s.cursor, s.offset)
	}
}

func TestSelectedOrderIsCanonical(t *testing.T) {
	s := newTestSelector([]string{"C", "A", "B"}, nil)

	s.MoveEnd()
	s.ToggleCurrent() // B (canonical 2)
	s.MoveHome()
	s.ToggleCurrent() // C (canonical 0)

	if got, want := s.Selected(), []string{"C", "B"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Selected() = %v, want canonical order %v", got, want)
	}
}
