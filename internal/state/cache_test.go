package state

import (
	"context"
	"errors"
	"testing"

	"github.com/atomicstack/sview/internal/cluster"
	"github.com/stretchr/testify/require"
)

func TestCacheNotLoaded(t *testing.T) {
	c := NewCache()
	_, err := c.Jobs(context.Background())
	require.ErrorIs(t, err, ErrNotLoaded)

	boom := errors.New("squeue failed")
	c.SetError("jobs", boom)
	_, err = c.Jobs(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, c.LastError(), boom)
}

func TestCacheServesCopies(t *testing.T) {
	c := NewCache()
	c.SetNodes([]cluster.Node{{Name: "node01"}})
	nodes, err := c.Nodes(context.Background())
	require.NoError(t, err)
	nodes[0].Name = "changed"
	again, err := c.Nodes(context.Background())
	require.NoError(t, err)
	require.Equal(t, "node01", again[0].Name)
	require.False(t, c.Updated("nodes").IsZero())
	require.True(t, c.Updated("blocks").IsZero())
}

func TestCacheKeepsDataAfterError(t *testing.T) {
	c := NewCache()
	c.SetPartitions([]cluster.Partition{{Name: "debug"}})
	c.SetError("partitions", errors.New("sinfo timed out"))
	parts, err := c.Partitions(context.Background())
	require.NoError(t, err)
	require.Len(t, parts, 1)
	require.Error(t, c.LastError())
	c.ClearError()
	require.NoError(t, c.LastError())
}
