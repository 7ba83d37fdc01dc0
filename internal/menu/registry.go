package menu

import (
	"fmt"
	"sort"
)

// Loader builds a menu on demand.
type Loader func() (Menu, error)

type entry struct {
	label  string
	order  int
	loader Loader
}

// Registry exposes lookup utilities for menus the UI can open by id.
type Registry struct {
	entries map[string]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds or replaces the loader for id. Entries keep their first
// registration order in the root menu.
func (r *Registry) Register(id, label string, loader Loader) {
	order := len(r.entries)
	if prev, ok := r.entries[id]; ok {
		order = prev.order
	}
	r.entries[id] = entry{label: label, order: order, loader: loader}
}

// Load builds menu id.
func (r *Registry) Load(id string) (Menu, error) {
	e, ok := r.entries[id]
	if !ok {
		return Menu{}, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	m, err := e.loader()
	if err != nil {
		return Menu{}, fmt.Errorf("load %s menu: %w", id, err)
	}
	if m.ID == "" {
		m.ID = id
	}
	return m, nil
}

// Root lists every registered menu. Activating an item calls open with its id.
func (r *Registry) Root(open func(id string) Action) Menu {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.entries[ids[i]].order < r.entries[ids[j]].order
	})
	m := Menu{ID: "root", Title: "Menu"}
	for _, id := range ids {
		item := Item{ID: id, Label: r.entries[id].label}
		if open != nil {
			item.Action = open(id)
		}
		m.Items = append(m.Items, item)
	}
	return m
}
