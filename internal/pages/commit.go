package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atomicstack/sview/internal/cluster"
	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/format/duration"
)

const defaultReason = "set from sview"

var (
	ErrReadOnly   = errors.New("column cannot be edited")
	ErrEmptyValue = errors.New("empty value")
)

// commitFor returns the edit commit of category c. It runs scontrol update
// for the row's object and, once that succeeds, stores the new value.
func (b *Book) commitFor(c display.Category) display.EditCommit {
	return func(e display.Edit) error {
		if e.Store == nil || e.Row == nil {
			return fmt.Errorf("%s edit: no row", c)
		}
		top := e.Row
		for parent := e.Store.Parent(top); parent != nil; parent = e.Store.Parent(top) {
			top = parent
		}
		id := e.Store.Text(top, keyColumn(c))
		u, stored, err := b.update(c, e.Column, id, e.Value)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), b.opts.CommitTimeout)
		defer cancel()
		if err := b.admin.Update(ctx, u); err != nil {
			return fmt.Errorf("update %s %s: %w", c, id, err)
		}
		if err := e.Store.Set(e.Row, e.Column, stored); err != nil {
			return err
		}
		if b.onCommit != nil {
			b.onCommit()
		}
		return nil
	}
}

// update translates an edit of column col into an scontrol update, and
// returns the text to show in the cell afterwards.
func (b *Book) update(c display.Category, col int, id, value string) (cluster.Update, string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return cluster.Update{}, "", ErrEmptyValue
	}
	switch {
	case c == display.Partition && col == PartAvail:
		v := strings.ToUpper(value)
		return cluster.Update{Entity: cluster.EntityPartition, ID: id, Field: "State", Value: v}, v, nil
	case c == display.Partition && col == PartTimeLimit:
		d, err := duration.Parse(value)
		if err != nil {
			return cluster.Update{}, "", err
		}
		v := duration.Format(d)
		return cluster.Update{Entity: cluster.EntityPartition, ID: id, Field: "MaxTime", Value: v}, v, nil
	case c == display.Job && col == JobTimeLimit:
		d, err := duration.Parse(value)
		if err != nil {
			return cluster.Update{}, "", err
		}
		v := duration.Format(d)
		return cluster.Update{Entity: cluster.EntityJob, ID: id, Field: "TimeLimit", Value: v}, v, nil
	case c == display.Node && col == NodeState:
		v := strings.ToUpper(value)
		u := cluster.Update{Entity: cluster.EntityNode, ID: id, Field: "State", Value: v}
		if cluster.NeedsReason(v) {
			u.Reason = cluster.FormatReason(defaultReason, b.opts.User, b.now())
		}
		return u, strings.ToLower(v), nil
	case c == display.Block && col == BlockState:
		v := strings.ToUpper(value)
		return cluster.Update{Entity: cluster.EntityBlock, ID: id, Field: "State", Value: v}, v, nil
	}
	return cluster.Update{}, "", fmt.Errorf("%w: %s column %d", ErrReadOnly, c, col)
}
