package pages

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/atomicstack/sview/internal/cluster"
	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/store"
	"github.com/atomicstack/sview/internal/table"
	"github.com/stretchr/testify/require"
)

type popupTarget struct {
	*Target
	origin   display.Category
	identity string
}

func (p popupTarget) Origin() display.Category { return p.origin }
func (p popupTarget) Identity() string         { return p.identity }

type recordingAdmin struct {
	updates []cluster.Update
	err     error
}

func (r *recordingAdmin) Update(_ context.Context, u cluster.Update) error {
	r.updates = append(r.updates, u)
	return r.err
}

type flakySource struct {
	cluster.Source
	fail bool
}

func (f *flakySource) Jobs(ctx context.Context) ([]cluster.Job, error) {
	if f.fail {
		return nil, errors.New("squeue: socket timed out")
	}
	return f.Source.Jobs(ctx)
}

func newTarget(t *testing.T, b *Book, c display.Category) *Target {
	t.Helper()
	cols := b.Columns(c)
	st, err := table.NewStore(cols)
	require.NoError(t, err)
	return NewTarget(c, st, cols)
}

func keys(st *store.TreeStore, col int) []string {
	var out []string
	for _, r := range st.Roots() {
		out = append(out, st.Text(r, col))
	}
	sort.Strings(out)
	return out
}

func TestRefreshFillsMainPage(t *testing.T) {
	b := New(cluster.Demo(), nil, Options{})
	target := newTarget(t, b, display.Job)
	require.NoError(t, b.Refresh(context.Background(), target))
	require.Equal(t, []string{"1001", "1002", "1003", "1004", "1010"}, keys(target.Store(), JobID))

	row := target.Store().Find(nil, JobID, "1002")
	require.NotNil(t, row)
	require.Equal(t, "2-00:00:00", target.Store().Text(row, JobTimeLimit))
	require.Equal(t, 8, target.Store().Int(row, JobNodes))
	require.Equal(t, 1, target.Store().Int(row, JobUpdated))
}

func TestRefreshFailureLeavesRows(t *testing.T) {
	src := &flakySource{Source: cluster.Demo()}
	b := New(src, nil, Options{})
	target := newTarget(t, b, display.Job)
	require.NoError(t, b.Refresh(context.Background(), target))
	before := target.Store().Len()

	src.fail = true
	require.Error(t, b.Refresh(context.Background(), target))
	require.Equal(t, before, target.Store().Len())
	target.Store().Walk(func(r *store.Row) bool {
		require.Equal(t, 1, target.Store().Int(r, JobUpdated))
		return true
	})
}

func TestRefreshPrunesVanishedRows(t *testing.T) {
	static := cluster.NewStatic(nil, []cluster.Job{{ID: "1"}, {ID: "2"}}, nil, nil)
	b := New(static, nil, Options{})
	target := newTarget(t, b, display.Job)
	require.NoError(t, b.Refresh(context.Background(), target))
	kept := target.Store().Find(nil, JobID, "1")

	b.source = cluster.NewStatic(nil, []cluster.Job{{ID: "1", State: "RUNNING"}}, nil, nil)
	require.NoError(t, b.Refresh(context.Background(), target))
	require.Equal(t, []string{"1"}, keys(target.Store(), JobID))
	require.Same(t, kept, target.Store().Find(nil, JobID, "1"), "rows are updated in place")
	require.Equal(t, "RUNNING", target.Store().Text(kept, JobState))
}

func TestPartitionStateGroupsBecomeChildren(t *testing.T) {
	b := New(cluster.Demo(), nil, Options{})
	target := newTarget(t, b, display.Partition)
	require.NoError(t, b.Refresh(context.Background(), target))
	st := target.Store()
	debug := st.Find(nil, PartName, "debug")
	require.NotNil(t, debug)
	require.Len(t, st.Children(debug), 2)
	require.Equal(t, 3, st.Int(debug, PartNodes))
	gpu := st.Find(nil, PartName, "gpu")
	require.False(t, st.HasChildren(gpu))
	require.Equal(t, "UNLIMITED", st.Text(gpu, PartTimeLimit))

	sel := Selection(display.Partition, st, st.Children(debug)[0])
	require.Equal(t, "debug", sel.Identity)
}

func TestRelatedRecords(t *testing.T) {
	b := New(cluster.Demo(), nil, Options{Blocks: true})
	ctx := context.Background()
	cases := []struct {
		name     string
		dest     display.Category
		origin   display.Category
		identity string
		want     []string
	}{
		{"jobs for partition", display.Job, display.Partition, "batch", []string{"1002", "1004"}},
		{"nodes for job", display.Node, display.Job, "1001", []string{"gpu1", "gpu2"}},
		{"partitions for node", display.Partition, display.Node, "node03", []string{"debug"}},
		{"jobs for node", display.Job, display.Node, "node07", []string{"1002"}},
		{"job info", display.Job, display.Job, "1003", []string{"1003"}},
		{"nodes for partition", display.Node, display.Partition, "debug", []string{"node01", "node02", "node03"}},
		{"blocks for job", display.Block, display.Job, "1002", []string{"RMP1"}},
		{"jobs for block", display.Job, display.Block, "RMP0", []string{"1003"}},
		{"vanished origin", display.Job, display.Job, "999", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := popupTarget{Target: newTarget(t, b, tc.dest), origin: tc.origin, identity: tc.identity}
			require.NoError(t, b.Refresh(ctx, target))
			require.Equal(t, tc.want, keys(target.Store(), KeyColumn(tc.dest)))
		})
	}
}

func TestRefreshUnknownPage(t *testing.T) {
	b := New(cluster.Demo(), nil, Options{})
	target := NewTarget(display.None, store.New(), nil)
	require.ErrorIs(t, b.Refresh(context.Background(), target), ErrUnknownPage)
}

func TestColumnsWithoutAdminAreReadOnly(t *testing.T) {
	b := New(cluster.Demo(), &recordingAdmin{}, Options{})
	for _, col := range table.BuildColumns(b.Columns(display.Node)) {
		require.False(t, col.Editable(), "column %s", col.Title)
	}
}

func TestColumnsWithAdmin(t *testing.T) {
	b := New(cluster.Demo(), &recordingAdmin{}, Options{Admin: true})
	cols := table.BuildColumns(b.Columns(display.Node))
	require.Equal(t, "State", cols[NodeState].Title)
	require.Equal(t, table.RendererCombo, cols[NodeState].Renderer)
	require.True(t, cols[NodeState].HasEntry)

	cols = table.BuildColumns(b.Columns(display.Job))
	require.Equal(t, table.RendererText, cols[JobTimeLimit].Renderer)
	require.Equal(t, table.RendererDisplay, cols[JobName].Renderer)
}

func TestHiddenColumns(t *testing.T) {
	b := New(cluster.Demo(), nil, Options{Hidden: map[string][]string{"jobs": {"user", "NodeList"}}})
	descs := b.Columns(display.Job)
	require.False(t, descs[JobUser].Visible)
	require.False(t, descs[JobNodeList].Visible)
	require.True(t, descs[JobName].Visible)
	require.True(t, b.Columns(display.Node)[NodeName].Visible)
}

func TestCommitRunsUpdateAndStoresValue(t *testing.T) {
	admin := &recordingAdmin{}
	b := New(cluster.Demo(), admin, Options{Admin: true})
	committed := 0
	b.OnCommit(func() { committed++ })
	target := newTarget(t, b, display.Job)
	require.NoError(t, b.Refresh(context.Background(), target))
	st := target.Store()
	row := st.Find(nil, JobID, "1003")

	desc, ok := target.Columns().Find(JobTimeLimit)
	require.True(t, ok)
	require.NoError(t, desc.Caps.Commit(display.Edit{Column: JobTimeLimit, Value: "90", Store: st, Row: row}))
	require.Len(t, admin.updates, 1)
	require.Equal(t, []string{"update", "JobId=1003", "TimeLimit=1:30:00"}, admin.updates[0].Args())
	require.Equal(t, "1:30:00", st.Text(row, JobTimeLimit))
	require.Equal(t, 1, committed)
}

func TestCommitFailureKeepsCell(t *testing.T) {
	admin := &recordingAdmin{err: errors.New("Access/permission denied")}
	b := New(cluster.Demo(), admin, Options{Admin: true})
	target := newTarget(t, b, display.Partition)
	require.NoError(t, b.Refresh(context.Background(), target))
	st := target.Store()
	row := st.Find(nil, PartName, "gpu")
	desc, _ := target.Columns().Find(PartAvail)
	err := desc.Caps.Commit(display.Edit{Column: PartAvail, Value: "DOWN", Store: st, Row: row})
	require.ErrorIs(t, err, admin.err)
	require.Equal(t, "UP", st.Text(row, PartAvail))
	require.Equal(t, []string{"update", "PartitionName=gpu", "State=DOWN"}, admin.updates[0].Args())
}

func TestNodeDrainCarriesReason(t *testing.T) {
	admin := &recordingAdmin{}
	b := New(cluster.Demo(), admin, Options{Admin: true, User: "root"})
	b.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	target := newTarget(t, b, display.Node)
	require.NoError(t, b.Refresh(context.Background(), target))
	st := target.Store()
	row := st.Find(nil, NodeName, "node07")
	desc, _ := target.Columns().Find(NodeState)
	require.NoError(t, desc.Caps.Commit(display.Edit{Column: NodeState, Value: "drain", Store: st, Row: row}))
	require.Equal(t, []string{
		"update", "NodeName=node07", "State=DRAIN", "Reason=set from sview [root@2024-05-06T07:08:09]",
	}, admin.updates[0].Args())
	require.Equal(t, "drain", st.Text(row, NodeState))
}

func TestCommitRejectsBadTime(t *testing.T) {
	admin := &recordingAdmin{}
	b := New(cluster.Demo(), admin, Options{Admin: true})
	_, _, err := b.update(display.Job, JobTimeLimit, "1", "soon")
	require.Error(t, err)
	_, _, err = b.update(display.Job, JobName, "1", "x")
	require.ErrorIs(t, err, ErrReadOnly)
	_, _, err = b.update(display.Job, JobTimeLimit, "1", "  ")
	require.ErrorIs(t, err, ErrEmptyValue)
	require.Empty(t, admin.updates)
}

func TestPagesAndOptions(t *testing.T) {
	b := New(cluster.Demo(), nil, Options{})
	pages := b.Pages()
	require.Equal(t, 3, pages.Len())
	require.Equal(t, "Jobs", pages[0].Name)

	b = New(cluster.Demo(), nil, Options{Blocks: true})
	pages = b.Pages()
	require.Equal(t, 4, pages.Len())

	part, _ := pages.Find(1)
	require.Equal(t, display.Partition, part.Dest)
	opts := part.Caps.Menu(display.Selection{Category: display.Partition, Identity: "debug"})
	var names []string
	opts.Each(func(d *display.Descriptor) bool {
		names = append(names, d.Name)
		return true
	})
	require.Equal(t, []string{"Info", "Jobs", "Nodes", "Blocks"}, names)
	require.Equal(t, 0, part.Caps.Menu(display.Selection{Category: display.Partition}).Len())
}

func TestRequestTitles(t *testing.T) {
	b := New(cluster.Demo(), nil, Options{})
	sel := display.Selection{Category: display.Partition, Identity: "debug"}
	req := b.Request(display.Job, sel, &display.Descriptor{Name: "Jobs", Dest: display.Job})
	require.Equal(t, "Jobs for partition debug", req.Key.Title)
	require.Equal(t, display.Job, req.Key.Dest)
	require.Equal(t, int(display.Partition), req.Key.RowType)
	require.Equal(t, display.Partition, req.Origin)
	require.NoError(t, req.Columns.Validate())

	info := b.Request(display.Node, display.Selection{Category: display.Node, Identity: "node07"},
		&display.Descriptor{Name: "Info", Dest: display.Node})
	require.Equal(t, "Node node07", info.Key.Title)
}
