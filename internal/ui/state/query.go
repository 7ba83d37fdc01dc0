package state

import "unicode"

// Query is the editable filter text of a menu with a rune cursor. Editing
// methods report whether anything changed.
type Query struct {
	text []rune
	pos  int
}

func (q Query) String() string { return string(q.text) }

// Pos returns the cursor offset in runes.
func (q Query) Pos() int { return q.pos }

// Insert adds s at the cursor.
func (q *Query) Insert(s string) bool {
	add := []rune(s)
	if len(add) == 0 {
		return false
	}
	text := make([]rune, 0, len(q.text)+len(add))
	text = append(text, q.text[:q.pos]...)
	text = append(text, add...)
	q.text = append(text, q.text[q.pos:]...)
	q.pos += len(add)
	return true
}

// Backspace removes the rune before the cursor.
func (q *Query) Backspace() bool {
	if q.pos == 0 {
		return false
	}
	q.text = append(q.text[:q.pos-1], q.text[q.pos:]...)
	q.pos--
	return true
}

// DeleteWord removes the word before the cursor and the spaces after it.
func (q *Query) DeleteWord() bool {
	start := q.wordStart()
	if start == q.pos {
		return false
	}
	q.text = append(q.text[:start], q.text[q.pos:]...)
	q.pos = start
	return true
}

// Clear empties the query.
func (q *Query) Clear() bool {
	if len(q.text) == 0 {
		return false
	}
	q.text, q.pos = nil, 0
	return true
}

func (q *Query) Left() bool  { return q.moveTo(q.pos - 1) }
func (q *Query) Right() bool { return q.moveTo(q.pos + 1) }
func (q *Query) Home() bool  { return q.moveTo(0) }
func (q *Query) End() bool   { return q.moveTo(len(q.text)) }

// WordLeft moves to the start of the previous word.
func (q *Query) WordLeft() bool { return q.moveTo(q.wordStart()) }

// WordRight moves past the next word and the spaces after it.
func (q *Query) WordRight() bool {
	i := q.pos
	for i < len(q.text) && !unicode.IsSpace(q.text[i]) {
		i++
	}
	for i < len(q.text) && unicode.IsSpace(q.text[i]) {
		i++
	}
	return q.moveTo(i)
}

func (q *Query) wordStart() int {
	i := q.pos
	for i > 0 && unicode.IsSpace(q.text[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(q.text[i-1]) {
		i--
	}
	return i
}

func (q *Query) moveTo(pos int) bool {
	if pos < 0 || pos > len(q.text) || pos == q.pos {
		return false
	}
	q.pos = pos
	return true
}
