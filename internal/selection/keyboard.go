package selection

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Bindings names the key gestures the router understands. Values follow the
// config file syntax: a single character ("x", " "), "ctrl-<letter>" or "esc".
type Bindings struct {
	ToggleSelect   string
	SelectAll      string
	ClearSelection string
}

// DefaultBindings returns the stock gestures: space toggles, Ctrl+A selects
// all, Escape clears.
func DefaultBindings() Bindings {
	return Bindings{
		ToggleSelect:   " ",
		SelectAll:      "ctrl-a",
		ClearSelection: "esc",
	}
}

// Router maps key events on the selection surface to store transitions. It
// never inspects anything beyond the event and the arguments it is handed.
type Router struct {
	store    *Store
	bindings Bindings
}

// NewRouter creates a keyboard router over store. Empty binding fields fall
// back to the defaults.
func NewRouter(store *Store, bindings Bindings) *Router {
	def := DefaultBindings()
	if bindings.ToggleSelect == "" {
		bindings.ToggleSelect = def.ToggleSelect
	}
	if bindings.SelectAll == "" {
		bindings.SelectAll = def.SelectAll
	}
	if bindings.ClearSelection == "" {
		bindings.ClearSelection = def.ClearSelection
	}
	return &Router{store: store, bindings: bindings}
}

// Handle routes ev to a selection transition. focusedID/focusedIndex identify
// the item under the cursor and visible is the ordered id list of the current
// collection. It returns true when the event was consumed, so the host can
// suppress default behavior; anything unrecognized returns false and falls
// through to other handlers.
func (r *Router) Handle(ev *tcell.EventKey, focusedID string, focusedIndex int, visible []string) bool {
	if ev == nil || r.store == nil {
		return false
	}

	switch {
	case matchBinding(ev, r.bindings.ClearSelection):
		r.store.DeselectAll()
		return true
	case matchBinding(ev, r.bindings.SelectAll):
		r.store.SelectAll(visible)
		return true
	case matchBinding(ev, r.bindings.ToggleSelect):
		if focusedID == "" {
			return false
		}
		if ev.Modifiers()&tcell.ModShift != 0 {
			r.store.ShiftSelect(focusedID, focusedIndex, visible)
		} else {
			r.store.Toggle(focusedID, focusedIndex)
		}
		return true
	}
	return false
}

// matchBinding reports whether ev matches a config-syntax binding
func matchBinding(ev *tcell.EventKey, binding string) bool {
	switch {
	case binding == "esc":
		return ev.Key() == tcell.KeyEscape
	case strings.HasPrefix(binding, "ctrl-") && len(binding) == len("ctrl-")+1:
		letter := binding[len("ctrl-")]
		if letter < 'a' || letter > 'z' {
			return false
		}
		return ev.Key() == tcell.Key(letter-'a'+1)
	case len([]rune(binding)) == 1:
		return ev.Key() == tcell.KeyRune && ev.Rune() == []rune(binding)[0]
	}
	return false
}
