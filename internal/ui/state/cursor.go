package state

// Move shifts the cursor by delta, stopping at either end.
func (l *Level) Move(delta int) bool {
	return l.moveTo(l.Cursor + delta)
}

// Home moves to the first item.
func (l *Level) Home() bool { return l.moveTo(0) }

// End moves to the last item.
func (l *Level) End() bool { return l.moveTo(len(l.Items) - 1) }

// Page moves one screen of rows in the direction of dir.
func (l *Level) Page(dir, rows int) bool {
	if rows < 1 {
		rows = 1
	}
	if dir < 0 {
		rows = -rows
	}
	return l.Move(rows)
}

func (l *Level) moveTo(idx int) bool {
	old := l.Cursor
	l.Cursor = idx
	l.clamp()
	return l.Cursor != old
}

func (l *Level) clamp() {
	if l.Cursor >= len(l.Items) {
		l.Cursor = len(l.Items) - 1
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
}

// Scroll moves the viewport of rows lines so it shows the cursor and never
// runs past the last item.
func (l *Level) Scroll(rows int) {
	l.clamp()
	if rows <= 0 || len(l.Items) <= rows {
		l.Offset = 0
		return
	}
	if l.Cursor < l.Offset {
		l.Offset = l.Cursor
	}
	if l.Cursor >= l.Offset+rows {
		l.Offset = l.Cursor - rows + 1
	}
	if last := len(l.Items) - rows; l.Offset > last {
		l.Offset = last
	}
	if l.Offset < 0 {
		l.Offset = 0
	}
}
