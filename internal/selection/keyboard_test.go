package selection

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

func TestRouter_EscapeClearsSelection(t *testing.T) {
	items := itemIDs(5)
	s := NewStore(nil, "")
	s.Select("email-01", 1)
	s.Select("email-02", 2)
	r := NewRouter(s, DefaultBindings())

	ev := tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)
	assert.True(t, r.Handle(ev, "email-03", 3, items))
	assert.Equal(t, 0, s.Count())
}

func TestRouter_CtrlASelectsAllVisible(t *testing.T) {
	items := itemIDs(5)
	s := NewStore(nil, "")
	s.SetTotalCount(5)
	r := NewRouter(s, DefaultBindings())

	ev := tcell.NewEventKey(tcell.KeyCtrlA, 0, tcell.ModCtrl)
	assert.True(t, r.Handle(ev, "", -1, items))
	assert.Equal(t, 5, s.Count())
	assert.True(t, s.AllSelected())
}

func TestRouter_SpaceTogglesFocusedItem(t *testing.T) {
	items := itemIDs(5)
	s := NewStore(nil, "")
	r := NewRouter(s, DefaultBindings())

	ev := tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)
	assert.True(t, r.Handle(ev, "email-02", 2, items))
	assert.True(t, s.IsSelected("email-02"))

	assert.True(t, r.Handle(ev, "email-02", 2, items))
	assert.False(t, s.IsSelected("email-02"))
}

func TestRouter_ShiftSpaceExtendsRange(t *testing.T) {
	items := itemIDs(8)
	s := NewStore(nil, "")
	r := NewRouter(s, DefaultBindings())

	r.Handle(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), "email-01", 1, items)
	r.Handle(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModShift), "email-05", 5, items)

	assert.Equal(t, 5, s.Count())
	for i := 1; i <= 5; i++ {
		assert.True(t, s.IsSelected(items[i]))
	}
}

func TestRouter_SpaceWithoutFocusedItemFallsThrough(t *testing.T) {
	s := NewStore(nil, "")
	r := NewRouter(s, DefaultBindings())

	ev := tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)
	assert.False(t, r.Handle(ev, "", 0, itemIDs(3)))
	assert.Equal(t, 0, s.Count())
}

func TestRouter_UnhandledKeysFallThrough(t *testing.T) {
	items := itemIDs(3)
	s := NewStore(nil, "")
	s.Select("email-00", 0)
	r := NewRouter(s, DefaultBindings())

	tests := []struct {
		name string
		ev   *tcell.EventKey
	}{
		{"letter", tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone)},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)},
		{"ctrl_c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)},
		{"nil_event", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, r.Handle(tt.ev, "email-01", 1, items))
		})
	}
	// Unhandled keys never disturb the selection
	assert.Equal(t, 1, s.Count())
}

func TestRouter_ConfigurableBindings(t *testing.T) {
	items := itemIDs(4)
	s := NewStore(nil, "")
	r := NewRouter(s, Bindings{ToggleSelect: "x", SelectAll: "ctrl-t", ClearSelection: "esc"})

	// Stock space no longer handled once rebound
	assert.False(t, r.Handle(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), "email-01", 1, items))

	assert.True(t, r.Handle(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), "email-01", 1, items))
	assert.True(t, s.IsSelected("email-01"))

	assert.True(t, r.Handle(tcell.NewEventKey(tcell.KeyCtrlT, 0, tcell.ModCtrl), "", -1, items))
	assert.Equal(t, 4, s.Count())
}

func TestRouter_EmptyBindingsFallBackToDefaults(t *testing.T) {
	s := NewStore(nil, "")
	r := NewRouter(s, Bindings{})

	assert.True(t, r.Handle(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), "email-01", 1, itemIDs(2)))
	assert.True(t, s.IsSelected("email-01"))
}
