// Package text provides the single-line editor behind textboxes.
package text

import "github.com/mattn/go-runewidth"

// Line is a rune buffer with a cursor. Positions count runes.
type Line struct {
	r   []rune
	q   int // cursor, 0 <= q <= len(r)
	seq int // modification sequence number
}

// Set replaces the contents and moves the cursor to the end.
func (l *Line) Set(s string) {
	l.r = []rune(s)
	l.q = len(l.r)
	l.seq++
}

// String returns the contents.
func (l *Line) String() string {
	return string(l.r)
}

// Nc returns the number of runes.
func (l *Line) Nc() int {
	return len(l.r)
}

// Cursor returns the cursor position.
func (l *Line) Cursor() int {
	return l.q
}

// Col returns the display column of the cursor.
func (l *Line) Col() int {
	return runewidth.StringWidth(string(l.r[:l.q]))
}

// Seq returns the modification sequence number.
func (l *Line) Seq() int {
	return l.seq
}

// Insert inserts r at the cursor and advances it.
func (l *Line) Insert(r ...rune) {
	l.r = append(l.r, make([]rune, len(r))...)
	copy(l.r[l.q+len(r):], l.r[l.q:])
	copy(l.r[l.q:], r)
	l.q += len(r)
	l.seq++
}

// Delete removes runes [q0, q1), clamped, and keeps the cursor on the
// same text.
func (l *Line) Delete(q0, q1 int) {
	q0, q1 = max(q0, 0), min(q1, len(l.r))
	if q0 >= q1 {
		return
	}
	l.r = append(l.r[:q0], l.r[q1:]...)
	switch {
	case l.q >= q1:
		l.q -= q1 - q0
	case l.q > q0:
		l.q = q0
	}
	l.seq++
}

// Backspace deletes the rune before the cursor.
func (l *Line) Backspace() {
	l.Delete(l.q-1, l.q)
}

// DeleteForward deletes the rune under the cursor.
func (l *Line) DeleteForward() {
	l.Delete(l.q, l.q+1)
}

// KillLine deletes from the cursor to the end.
func (l *Line) KillLine() {
	l.Delete(l.q, len(l.r))
}

// Move moves the cursor by n runes, clamped.
func (l *Line) Move(n int) {
	l.q = min(max(l.q+n, 0), len(l.r))
}

// Home moves the cursor to the start.
func (l *Line) Home() { l.q = 0 }

// End moves the cursor to the end.
func (l *Line) End() { l.q = len(l.r) }
