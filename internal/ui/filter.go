package ui

import "strings"

// refreshFilter recomputes the filtered view from the current query. The
// filtered view is always an ascending list of canonical item indices; an
// empty query matches everything. When resetPosition is true the cursor and
// viewport jump back to the top (query edits); otherwise they are clamped in
// place (resize-style recomputes).
func (s *Selector) refreshFilter(resetPosition bool) {
	query := strings.ToLower(s.input.Value())
	if query == "" {
		s.filtered = s.filtered[:0]
		for i := range s.items {
			s.filtered = append(s.filtered, i)
		}
	} else {
		s.filtered = s.filtered[:0]
		for i, item := range s.items {
			if strings.Contains(strings.ToLower(item), query) {
				s.filtered = append(s.filtered, i)
			}
		}
	}

	if resetPosition {
		s.cursor = 0
		s.offset = 0
	} else if last := len(s.filtered) - 1; last >= 0 {
		s.cursor = min(s.cursor, last)
		s.offset = min(s.offset, last)
	} else {
		s.cursor = 0
		s.offset = 0
	}

	// The widest filtered item may have changed.
	s.invalidateLayout()

	if !resetPosition {
		// Clamping can land the offset mid-page; keep it a multiple of the
		// page capacity.
		if page := s.grid().pageSize(); page > 0 {
			s.offset -= s.offset % page
		}
	}
}
