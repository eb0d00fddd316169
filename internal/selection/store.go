// Package selection implements the multi-item selection engine used by the
// email list: a set of selected identifiers with range-select anchoring,
// derived select-all state, and best-effort local persistence.
package selection

import (
	"context"
	"log"
	"sort"
	"sync"
)

// Persister saves and restores a selected-id set under a named slot.
// Failures are reported but never fatal; callers treat a failed load as
// "no persisted selection".
type Persister interface {
	SaveSelection(ctx context.Context, slot string, ids []string) error
	LoadSelection(ctx context.Context, slot string) ([]string, bool, error)
	ClearSelection(ctx context.Context, slot string) error
}

// Store holds the set of selected item identifiers and derived flags.
// All operations are total: invalid input degrades to a no-op rather than
// an error.
type Store struct {
	mu         sync.RWMutex
	selected   map[string]bool
	anchor     int // last acted-upon index, -1 when unset
	totalCount int

	persister Persister // optional
	slot      string
	logger    *log.Logger // optional
}

// NewStore creates an empty selection store. persister may be nil, in which
// case the selection is session-only.
func NewStore(persister Persister, slot string) *Store {
	return &Store{
		selected:  make(map[string]bool),
		anchor:    -1,
		persister: persister,
		slot:      slot,
	}
}

// SetLogger sets the logger for persistence failure reporting
func (s *Store) SetLogger(logger *log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// Restore loads any persisted selection into the store. A missing, failed or
// malformed slot yields an empty selection.
func (s *Store) Restore(ctx context.Context) {
	if s.persister == nil {
		return
	}
	ids, ok, err := s.persister.LoadSelection(ctx, s.slot)
	if err != nil {
		s.logf("selection: restore %q failed: %v", s.slot, err)
		return
	}
	if !ok {
		return
	}
	s.mu.Lock()
	s.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			s.selected[id] = true
		}
	}
	s.mu.Unlock()
}

// Toggle flips membership of id and records index as the range anchor
func (s *Store) Toggle(id string, index int) {
	if id == "" {
		return
	}
	s.mu.Lock()
	if s.selected[id] {
		delete(s.selected, id)
	} else {
		s.selected[id] = true
	}
	s.anchor = index
	s.mu.Unlock()
	s.persist()
}

// Select adds id to the selection and records index as the range anchor.
// Selecting an already-selected id is a no-op besides moving the anchor.
func (s *Store) Select(id string, index int) {
	if id == "" {
		return
	}
	s.mu.Lock()
	s.selected[id] = true
	s.anchor = index
	s.mu.Unlock()
	s.persist()
}

// Deselect removes id from the selection; unknown ids are a no-op
func (s *Store) Deselect(id string) {
	s.mu.Lock()
	_, ok := s.selected[id]
	if ok {
		delete(s.selected, id)
	}
	s.mu.Unlock()
	if ok {
		s.persist()
	}
}

// SelectRange adds every id in the inclusive index span between start and end
// to the selection. The span is normalized, ids outside it are left alone
// (range select is additive), and out-of-bounds indices are clamped to items.
func (s *Store) SelectRange(start, end int, items []string) {
	if len(items) == 0 {
		return
	}
	lo, hi := start, end
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi >= len(items) {
		hi = len(items) - 1
	}
	if lo > hi {
		return
	}
	s.mu.Lock()
	for i := lo; i <= hi; i++ {
		if items[i] != "" {
			s.selected[items[i]] = true
		}
	}
	s.mu.Unlock()
	s.persist()
}

// ShiftSelect extends the selection from the current anchor to index, the
// shift-click gesture. With no anchor set it degrades to a plain toggle.
func (s *Store) ShiftSelect(id string, index int, items []string) {
	s.mu.RLock()
	anchor := s.anchor
	s.mu.RUnlock()

	if anchor < 0 {
		s.Toggle(id, index)
		return
	}
	s.SelectRange(anchor, index, items)
}

// SelectAll replaces the selection with every id in items
func (s *Store) SelectAll(items []string) {
	s.mu.Lock()
	s.selected = make(map[string]bool, len(items))
	for _, id := range items {
		if id != "" {
			s.selected[id] = true
		}
	}
	s.mu.Unlock()
	s.persist()
}

// DeselectAll empties the selection and clears the anchor
func (s *Store) DeselectAll() {
	s.mu.Lock()
	s.selected = make(map[string]bool)
	s.anchor = -1
	s.mu.Unlock()
	s.persist()
}

// SetTotalCount records the size of the currently visible collection, which
// the derived select-all flag is computed against
func (s *Store) SetTotalCount(n int) {
	if n < 0 {
		n = 0
	}
	s.mu.Lock()
	s.totalCount = n
	s.mu.Unlock()
}

// IsSelected reports whether id is in the selection
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[id]
}

// Count returns the number of selected ids
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}

// HasSelection reports whether anything is selected
func (s *Store) HasSelection() bool {
	return s.Count() > 0
}

// AllSelected reports the derived select-all flag: true iff every item of a
// non-empty collection is selected. It is always recomputed, never stored.
func (s *Store) AllSelected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalCount > 0 && len(s.selected) == s.totalCount
}

// Anchor returns the last acted-upon index, or false when none is set
func (s *Store) Anchor() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.anchor < 0 {
		return 0, false
	}
	return s.anchor, true
}

// SelectedIDs returns the selected ids in lexical order
func (s *Store) SelectedIDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// SelectedFrom returns the subset of items that is selected, preserving the
// order of items
func (s *Store) SelectedFrom(items []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.selected))
	for _, id := range items {
		if s.selected[id] {
			out = append(out, id)
		}
	}
	return out
}

// persist writes the current selection through the persister. Failures are
// logged and swallowed; persistence must never block or break selection.
func (s *Store) persist() {
	if s.persister == nil {
		return
	}
	ids := s.SelectedIDs()
	if err := s.persister.SaveSelection(context.Background(), s.slot, ids); err != nil {
		s.logf("selection: persist %q failed: %v", s.slot, err)
	}
}

func (s *Store) logf(format string, args ...interface{}) {
	s.mu.RLock()
	logger := s.logger
	s.mu.RUnlock()
	if logger != nil {
		logger.Printf(format, args...)
	}
}
