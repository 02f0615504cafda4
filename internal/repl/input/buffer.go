package input

import (
	"slices"
	"unicode"
)

// Buffer holds the line being edited as runes together with the cursor
// position. All positions are rune offsets.
type Buffer struct {
	runes []rune
	pos   int
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{runes: []rune{}}
}

// NewBufferWithText creates a buffer with initial text and the cursor at the end.
func NewBufferWithText(text string) *Buffer {
	b := NewBuffer()
	b.SetText(text)
	return b
}

// Text returns the whole line.
func (b *Buffer) Text() string {
	return string(b.runes)
}

// Len is the line length in runes.
func (b *Buffer) Len() int {
	return len(b.runes)
}

func (b *Buffer) Pos() int {
	return b.pos
}

// SetText replaces the content and moves the cursor to the end.
func (b *Buffer) SetText(text string) {
	b.runes = []rune(text)
	b.pos = len(b.runes)
}

// Clear removes all text and resets the cursor.
func (b *Buffer) Clear() {
	b.runes = b.runes[:0]
	b.pos = 0
}

// SetPos moves the cursor, clamped to [0, Len()].
func (b *Buffer) SetPos(pos int) {
	b.pos = clamp(pos, 0, len(b.runes))
}

func (b *Buffer) CursorStart() {
	b.pos = 0
}

func (b *Buffer) CursorEnd() {
	b.pos = len(b.runes)
}

// Insert inserts text at the cursor and moves the cursor past it.
func (b *Buffer) Insert(text string) {
	b.InsertRunes([]rune(text))
}

// InsertRunes inserts runes at the cursor and moves the cursor past them.
func (b *Buffer) InsertRunes(runes []rune) {
	b.runes = slices.Insert(b.runes, b.pos, runes...)
	b.pos += len(runes)
}

// ReplaceRange replaces the runes in [start, end) with text and places the
// cursor right after the inserted text. Out of range bounds are clamped.
func (b *Buffer) ReplaceRange(start, end int, text string) {
	start = clamp(start, 0, len(b.runes))
	end = clamp(end, start, len(b.runes))
	replacement := []rune(text)
	b.runes = slices.Replace(b.runes, start, end, replacement...)
	b.pos = start + len(replacement)
}

// DeleteCharBackward deletes the rune before the cursor.
func (b *Buffer) DeleteCharBackward() bool {
	if b.pos == 0 {
		return false
	}
	b.runes = slices.Delete(b.runes, b.pos-1, b.pos)
	b.pos--
	return true
}

// DeleteCharForward deletes the rune at the cursor.
func (b *Buffer) DeleteCharForward() bool {
	if b.pos >= len(b.runes) {
		return false
	}
	b.runes = slices.Delete(b.runes, b.pos, b.pos+1)
	return true
}

// DeleteBeforeCursor removes everything left of the cursor (Ctrl+U).
func (b *Buffer) DeleteBeforeCursor() {
	b.runes = slices.Delete(b.runes, 0, b.pos)
	b.pos = 0
}

// DeleteAfterCursor removes everything right of the cursor (Ctrl+K).
func (b *Buffer) DeleteAfterCursor() {
	b.runes = b.runes[:b.pos]
}

// DeleteWordBackward removes the word left of the cursor (Ctrl+W).
func (b *Buffer) DeleteWordBackward() {
	end := b.pos
	b.WordBackward()
	b.runes = slices.Delete(b.runes, b.pos, end)
}

// DeleteWordForward removes the word right of the cursor (Alt+D).
func (b *Buffer) DeleteWordForward() {
	start := b.pos
	b.WordForward()
	b.runes = slices.Delete(b.runes, start, b.pos)
	b.pos = start
}

// WordBackward moves the cursor to the start of the previous
// whitespace-delimited word.
func (b *Buffer) WordBackward() {
	i := b.pos
	for i > 0 && unicode.IsSpace(b.runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(b.runes[i-1]) {
		i--
	}
	b.pos = i
}

// WordForward moves the cursor past the end of the next
// whitespace-delimited word.
func (b *Buffer) WordForward() {
	i := b.pos
	for i < len(b.runes) && unicode.IsSpace(b.runes[i]) {
		i++
	}
	for i < len(b.runes) && !unicode.IsSpace(b.runes[i]) {
		i++
	}
	b.pos = i
}

func (b *Buffer) TextBeforeCursor() string {
	return string(b.runes[:b.pos])
}

func (b *Buffer) TextAfterCursor() string {
	return string(b.runes[b.pos:])
}

func clamp(v, low, high int) int {
	return max(low, min(v, high))
}
