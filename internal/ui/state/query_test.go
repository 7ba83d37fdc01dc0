package state

import "testing"

func typed(s string) *Query {
	q := &Query{}
	q.Insert(s)
	return q
}

func TestQueryInsertAndBackspace(t *testing.T) {
	q := typed("nde")
	q.Left()
	q.Left()
	if !q.Insert("o") {
		t.Fatal("insert reported no change")
	}
	if q.String() != "node" || q.Pos() != 2 {
		t.Fatalf("got %q at %d", q.String(), q.Pos())
	}
	q.End()
	q.Backspace()
	if q.String() != "nod" {
		t.Fatalf("got %q after backspace", q.String())
	}
	q.Home()
	if q.Backspace() {
		t.Fatal("backspace at start should be a no-op")
	}
	if q.Insert("") {
		t.Fatal("empty insert should be a no-op")
	}
}

func TestQueryWordMotion(t *testing.T) {
	q := typed("gpu  idle nodes")
	if !q.WordLeft() || q.Pos() != 10 {
		t.Fatalf("expected start of last word, got %d", q.Pos())
	}
	q.WordLeft()
	if q.Pos() != 5 {
		t.Fatalf("expected start of middle word, got %d", q.Pos())
	}
	q.Home()
	if !q.WordRight() || q.Pos() != 5 {
		t.Fatalf("expected to skip word and spaces, got %d", q.Pos())
	}
	if q.Left(); q.Pos() != 4 {
		t.Fatalf("expected left to move one rune, got %d", q.Pos())
	}
	q.End()
	if q.Right() {
		t.Fatal("right at end should be a no-op")
	}
}

func TestQueryDeleteWord(t *testing.T) {
	q := typed("state idle ")
	if !q.DeleteWord() || q.String() != "state " {
		t.Fatalf("got %q", q.String())
	}
	q.DeleteWord()
	if q.String() != "" || q.Pos() != 0 {
		t.Fatalf("got %q at %d", q.String(), q.Pos())
	}
	if q.DeleteWord() || q.Clear() {
		t.Fatal("empty query reported a change")
	}
}

func TestQueryHandlesWideRunes(t *testing.T) {
	q := typed("ノード")
	q.Backspace()
	if q.String() != "ノー" || q.Pos() != 2 {
		t.Fatalf("got %q at %d", q.String(), q.Pos())
	}
}
