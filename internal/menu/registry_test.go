package menu

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("pages", "Pages", func() (Menu, error) { return Menu{Title: "Pages"}, nil })
	r.Register("fields", "Fields", func() (Menu, error) { return Menu{Title: "Fields"}, nil })
	r.Register("pages", "Pages", func() (Menu, error) { return Menu{Title: "Pages v2"}, nil })

	var opened string
	root := r.Root(func(id string) Action {
		return func(Item) tea.Cmd {
			opened = id
			return nil
		}
	})
	if got := root.Labels(); len(got) != 2 || got[0] != "Pages" || got[1] != "Fields" {
		t.Fatalf("unexpected root order %v", got)
	}
	if _, err := root.Activate("fields"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if opened != "fields" {
		t.Fatalf("expected fields opened, got %q", opened)
	}

	m, err := r.Load("pages")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Title != "Pages v2" || m.ID != "pages" {
		t.Fatalf("unexpected menu %+v", m)
	}
}

func TestRegistryLoadErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Load("missing"); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
	boom := errors.New("no selection")
	r.Register("context", "Context", func() (Menu, error) { return Menu{}, boom })
	if _, err := r.Load("context"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
