package input

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Action is what a key press asks the editor to do.
type Action int

const (
	ActionNone Action = iota

	ActionCharacterForward
	ActionCharacterBackward
	ActionWordForward
	ActionWordBackward
	ActionLineStart
	ActionLineEnd

	ActionDeleteCharacterBackward
	ActionDeleteCharacterForward // Ctrl+D on an empty line is EOF
	ActionDeleteWordBackward
	ActionDeleteWordForward
	ActionDeleteBeforeCursor
	ActionDeleteAfterCursor

	// Up/Down walk history, or cycle candidates while completing.
	ActionCursorUp
	ActionCursorDown

	ActionComplete
	ActionCompleteBackward

	ActionSubmit
	ActionCancel
	ActionInterrupt
	ActionClearScreen
	ActionPaste
)

var actionNames = map[Action]string{
	ActionNone:                    "None",
	ActionCharacterForward:        "CharacterForward",
	ActionCharacterBackward:       "CharacterBackward",
	ActionWordForward:             "WordForward",
	ActionWordBackward:            "WordBackward",
	ActionLineStart:               "LineStart",
	ActionLineEnd:                 "LineEnd",
	ActionDeleteCharacterBackward: "DeleteCharacterBackward",
	ActionDeleteCharacterForward:  "DeleteCharacterForward",
	ActionDeleteWordBackward:      "DeleteWordBackward",
	ActionDeleteWordForward:       "DeleteWordForward",
	ActionDeleteBeforeCursor:      "DeleteBeforeCursor",
	ActionDeleteAfterCursor:       "DeleteAfterCursor",
	ActionCursorUp:                "CursorUp",
	ActionCursorDown:              "CursorDown",
	ActionComplete:                "Complete",
	ActionCompleteBackward:        "CompleteBackward",
	ActionSubmit:                  "Submit",
	ActionCancel:                  "Cancel",
	ActionInterrupt:               "Interrupt",
	ActionClearScreen:             "ClearScreen",
	ActionPaste:                   "Paste",
}

// String returns the string representation of an Action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

type actionBinding struct {
	action  Action
	binding key.Binding
}

// KeyMap maps key presses to actions. It implements help.KeyMap so the
// bindings can be rendered with the bubbles help component.
type KeyMap struct {
	bindings []actionBinding
}

// DefaultKeyMap returns Emacs-style key bindings.
func DefaultKeyMap() *KeyMap {
	bind := func(action Action, help, desc string, keys ...string) actionBinding {
		return actionBinding{
			action:  action,
			binding: key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc)),
		}
	}

	return &KeyMap{bindings: []actionBinding{
		bind(ActionComplete, "tab", "complete path", "tab"),
		bind(ActionCompleteBackward, "shift+tab", "previous completion", "shift+tab"),
		bind(ActionCancel, "esc", "cancel completion", "esc"),
		bind(ActionSubmit, "enter", "run", "enter"),
		bind(ActionCursorUp, "↑/ctrl+p", "previous command", "up", "ctrl+p"),
		bind(ActionCursorDown, "↓/ctrl+n", "next command", "down", "ctrl+n"),

		bind(ActionCharacterForward, "→/ctrl+f", "forward", "right", "ctrl+f"),
		bind(ActionCharacterBackward, "←/ctrl+b", "back", "left", "ctrl+b"),
		bind(ActionWordForward, "alt+f", "word forward", "alt+right", "ctrl+right", "alt+f"),
		bind(ActionWordBackward, "alt+b", "word back", "alt+left", "ctrl+left", "alt+b"),
		bind(ActionLineStart, "ctrl+a", "line start", "home", "ctrl+a"),
		bind(ActionLineEnd, "ctrl+e", "line end", "end", "ctrl+e"),

		bind(ActionDeleteCharacterBackward, "backspace", "delete back", "backspace", "ctrl+h"),
		bind(ActionDeleteCharacterForward, "ctrl+d", "delete / exit", "delete", "ctrl+d"),
		bind(ActionDeleteWordBackward, "ctrl+w", "delete word back", "ctrl+w", "alt+backspace"),
		bind(ActionDeleteWordForward, "alt+d", "delete word", "alt+d", "alt+delete"),
		bind(ActionDeleteBeforeCursor, "ctrl+u", "delete to start", "ctrl+u"),
		bind(ActionDeleteAfterCursor, "ctrl+k", "delete to end", "ctrl+k"),

		bind(ActionInterrupt, "ctrl+c", "interrupt", "ctrl+c"),
		bind(ActionClearScreen, "ctrl+l", "clear screen", "ctrl+l"),
		bind(ActionPaste, "ctrl+v", "paste", "ctrl+v"),
	}}
}

// Lookup returns the action bound to msg, or ActionNone.
func (km *KeyMap) Lookup(msg tea.KeyMsg) Action {
	for _, b := range km.bindings {
		if key.Matches(msg, b.binding) {
			return b.action
		}
	}
	return ActionNone
}

// Binding returns the binding of an action.
func (km *KeyMap) Binding(action Action) (key.Binding, bool) {
	for _, b := range km.bindings {
		if b.action == action {
			return b.binding, true
		}
	}
	return key.Binding{}, false
}

// SetKeys replaces the keys bound to an action, adding the action if it has
// no binding yet. Passing no keys disables the action.
func (km *KeyMap) SetKeys(action Action, keys ...string) {
	for i := range km.bindings {
		if km.bindings[i].action == action {
			km.bindings[i].binding.SetKeys(keys...)
			km.bindings[i].binding.SetEnabled(len(keys) > 0)
			return
		}
	}
	if len(keys) == 0 {
		return
	}
	km.bindings = append(km.bindings, actionBinding{
		action:  action,
		binding: key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], action.String())),
	})
}

// ShortHelp implements help.KeyMap.
func (km *KeyMap) ShortHelp() []key.Binding {
	var short []key.Binding
	for _, action := range []Action{ActionComplete, ActionCompleteBackward, ActionCancel, ActionSubmit} {
		if b, ok := km.Binding(action); ok {
			short = append(short, b)
		}
	}
	return short
}

// FullHelp implements help.KeyMap. Bindings are grouped in columns of six.
func (km *KeyMap) FullHelp() [][]key.Binding {
	var columns [][]key.Binding
	for i := 0; i < len(km.bindings); i += 6 {
		var column []key.Binding
		for _, b := range km.bindings[i:min(i+6, len(km.bindings))] {
			column = append(column, b.binding)
		}
		columns = append(columns, column)
	}
	return columns
}
