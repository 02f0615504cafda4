// Package input provides the line editor of the fsagent REPL: a Bubble Tea
// component with Emacs-style editing, history navigation and trigger-based
// path completion.
package input

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// ResultType indicates the type of result from the input component.
type ResultType int

const (
	// ResultNone indicates no result yet (still editing).
	ResultNone ResultType = iota
	// ResultSubmit indicates the user submitted the input (Enter).
	ResultSubmit
	// ResultInterrupt indicates the user interrupted (Ctrl+C).
	ResultInterrupt
	// ResultEOF indicates end of input (Ctrl+D on empty line).
	ResultEOF
)

// Result contains the outcome of an input session.
type Result struct {
	Type ResultType
	// Value is the input text (empty for interrupt/EOF).
	Value string
}

// Model is the Bubble Tea model of the line editor.
type Model struct {
	buffer  *Buffer
	keymap  *KeyMap
	focused bool
	prompt  string

	// historyValues holds previous commands, most recent first.
	historyValues       []string
	historyIndex        int // 0 = current input, 1+ = history entries
	savedCurrentInput   string
	hasNavigatedHistory bool

	completion         *CompletionState
	completionProvider CompletionProvider

	renderer *Renderer
	width    int

	result Result
	logger *zap.Logger

	// readClipboard is replaceable in tests.
	readClipboard func() (string, error)
}

// Config holds configuration for creating a new Model.
type Config struct {
	Prompt string

	// HistoryValues is the list of previous commands, most recent first.
	HistoryValues []string

	// CompletionProvider provides Tab completion candidates. Nil disables completion.
	CompletionProvider CompletionProvider

	// KeyMap provides key bindings. If nil, DefaultKeyMap is used.
	KeyMap *KeyMap

	// RenderConfig provides styling. If nil, DefaultRenderConfig is used.
	RenderConfig *RenderConfig

	// Width is the initial terminal width.
	Width int

	Logger *zap.Logger
}

// New creates a new input Model with the given configuration.
func New(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	keymap := cfg.KeyMap
	if keymap == nil {
		keymap = DefaultKeyMap()
	}

	renderConfig := DefaultRenderConfig()
	if cfg.RenderConfig != nil {
		renderConfig = *cfg.RenderConfig
	}

	width := cfg.Width
	if width <= 0 {
		width = 80
	}
	renderer := NewRenderer(renderConfig)
	renderer.SetWidth(width)

	return Model{
		buffer:             NewBuffer(),
		keymap:             keymap,
		focused:            true,
		prompt:             cfg.Prompt,
		historyValues:      cfg.HistoryValues,
		completion:         NewCompletionState(),
		completionProvider: cfg.CompletionProvider,
		renderer:           renderer,
		width:              width,
		result:             Result{Type: ResultNone},
		logger:             logger,
		readClipboard:      clipboard.ReadAll,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.renderer.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case pasteMsg:
		return m.handleInsertRunes([]rune(string(msg)))
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	switch m.result.Type {
	case ResultNone:
		return m.renderer.RenderFullView(m.prompt, m.buffer, m.focused, m.completion)
	case ResultInterrupt:
		return ""
	default:
		return m.renderer.RenderInputLine(m.prompt, m.buffer, false)
	}
}

// Result returns the current result. Check Type != ResultNone to see if complete.
func (m Model) Result() Result {
	return m.result
}

// Value returns the current input text.
func (m Model) Value() string {
	return m.buffer.Text()
}

// SetValue sets the input text and moves cursor to end.
func (m *Model) SetValue(text string) {
	m.buffer.SetText(text)
	m.historyIndex = 0
	m.hasNavigatedHistory = false
}

// Focus sets the focus state on the model.
func (m *Model) Focus() {
	m.focused = true
}

// Blur removes focus from the model.
func (m *Model) Blur() {
	m.focused = false
}

// SetPrompt updates the prompt string.
func (m *Model) SetPrompt(prompt string) {
	m.prompt = prompt
}

// SetHistoryValues replaces the history used for Up/Down navigation.
func (m *Model) SetHistoryValues(values []string) {
	m.historyValues = values
	m.historyIndex = 0
	m.hasNavigatedHistory = false
}

// Reset clears the input state for a new input session.
func (m *Model) Reset() {
	m.buffer.Clear()
	m.completion.Reset()
	m.historyIndex = 0
	m.savedCurrentInput = ""
	m.hasNavigatedHistory = false
	m.result = Result{Type: ResultNone}
}

// Buffer returns the underlying buffer.
func (m Model) Buffer() *Buffer {
	return m.buffer
}

// Completion returns the completion state.
func (m Model) Completion() *CompletionState {
	return m.completion
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keymap.Lookup(msg)

	if m.completion.IsActive() {
		switch action {
		case ActionComplete, ActionCursorDown:
			return m.handleComplete()
		case ActionCompleteBackward, ActionCursorUp:
			return m.handleCompleteBackward()
		case ActionCancel:
			text, cursor := m.completion.Cancel()
			m.buffer.SetText(text)
			m.buffer.SetPos(cursor)
			return m, nil
		}
		// Any other key accepts the applied candidate.
		m.completion.Reset()
	}

	switch action {
	case ActionSubmit:
		m.result = Result{Type: ResultSubmit, Value: m.buffer.Text()}
		return m, tea.Quit

	case ActionInterrupt:
		m.result = Result{Type: ResultInterrupt}
		return m, tea.Quit

	case ActionDeleteCharacterForward:
		if m.buffer.Len() == 0 {
			m.result = Result{Type: ResultEOF}
			return m, tea.Quit
		}
		m.buffer.DeleteCharForward()

	case ActionClearScreen:
		return m, tea.ClearScreen

	case ActionPaste:
		return m, m.paste

	case ActionComplete:
		return m.handleComplete()

	case ActionCompleteBackward, ActionCancel:
		// Nothing to cycle or cancel outside a completion session.

	case ActionCharacterForward:
		m.buffer.SetPos(m.buffer.Pos() + 1)
	case ActionCharacterBackward:
		m.buffer.SetPos(m.buffer.Pos() - 1)
	case ActionWordForward:
		m.buffer.WordForward()
	case ActionWordBackward:
		m.buffer.WordBackward()
	case ActionLineStart:
		m.buffer.CursorStart()
	case ActionLineEnd:
		m.buffer.CursorEnd()

	case ActionDeleteCharacterBackward:
		m.buffer.DeleteCharBackward()
	case ActionDeleteWordBackward:
		m.buffer.DeleteWordBackward()
	case ActionDeleteWordForward:
		m.buffer.DeleteWordForward()
	case ActionDeleteBeforeCursor:
		m.buffer.DeleteBeforeCursor()
	case ActionDeleteAfterCursor:
		m.buffer.DeleteAfterCursor()

	case ActionCursorUp:
		m.historyPrevious()
	case ActionCursorDown:
		m.historyNext()

	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			return m.handleInsertRunes(msg.Runes)
		}
	}

	return m, nil
}

func (m Model) handleInsertRunes(runes []rune) (tea.Model, tea.Cmd) {
	m.completion.Reset()
	m.buffer.InsertRunes(sanitizeRunes(runes))
	m.historyIndex = 0
	m.hasNavigatedHistory = false
	return m, nil
}

func (m *Model) historyPrevious() {
	if len(m.historyValues) == 0 || m.historyIndex >= len(m.historyValues) {
		return
	}
	if !m.hasNavigatedHistory {
		m.savedCurrentInput = m.buffer.Text()
		m.hasNavigatedHistory = true
	}
	m.historyIndex++
	m.buffer.SetText(m.historyValues[m.historyIndex-1])
}

func (m *Model) historyNext() {
	if m.historyIndex <= 0 {
		return
	}
	m.historyIndex--
	if m.historyIndex == 0 {
		m.buffer.SetText(m.savedCurrentInput)
	} else {
		m.buffer.SetText(m.historyValues[m.historyIndex-1])
	}
}

// handleComplete starts a completion session or advances the current one.
// A single candidate is applied and the session ends right away.
func (m Model) handleComplete() (tea.Model, tea.Cmd) {
	if m.completionProvider == nil {
		return m, nil
	}

	if m.completion.IsActive() {
		if candidate, ok := m.completion.Next(); ok {
			m.completion.Apply(m.buffer, candidate)
		}
		return m, nil
	}

	text, cursor := m.buffer.Text(), m.buffer.Pos()
	candidates := m.completionProvider.Complete(text, cursor)
	m.logger.Debug("completion requested", zap.Int("cursor", cursor), zap.Int("candidates", len(candidates)))
	if len(candidates) == 0 {
		return m, nil
	}

	m.completion.Activate(candidates, text, cursor)
	candidate, _ := m.completion.Next()
	m.completion.Apply(m.buffer, candidate)
	if len(candidates) == 1 {
		m.completion.Reset()
	}
	return m, nil
}

func (m Model) handleCompleteBackward() (tea.Model, tea.Cmd) {
	if candidate, ok := m.completion.Prev(); ok {
		m.completion.Apply(m.buffer, candidate)
	}
	return m, nil
}

// pasteMsg is sent when paste content is available.
type pasteMsg string

func (m Model) paste() tea.Msg {
	str, err := m.readClipboard()
	if err != nil {
		m.logger.Debug("failed to read clipboard", zap.Error(err))
		return nil
	}
	return pasteMsg(str)
}

// sanitizeRunes replaces tabs and newlines with spaces.
func sanitizeRunes(runes []rune) []rune {
	result := make([]rune, len(runes))
	for i, r := range runes {
		switch r {
		case '\t', '\n', '\r':
			result[i] = ' '
		default:
			result[i] = r
		}
	}
	return result
}
