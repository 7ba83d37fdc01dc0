package backend

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atomicstack/sview/internal/cluster"
)

type countingSource struct {
	*cluster.Static
	jobs atomic.Int32
	fail error
}

func (c *countingSource) Jobs(ctx context.Context) ([]cluster.Job, error) {
	c.jobs.Add(1)
	if c.fail != nil {
		return nil, c.fail
	}
	return c.Static.Jobs(ctx)
}

func collect(t *testing.T, w *Watcher, want int) map[Kind]Event {
	t.Helper()
	got := make(map[Kind]Event)
	deadline := time.After(2 * time.Second)
	for len(got) < want {
		select {
		case evt := <-w.Events():
			got[evt.Kind] = evt
		case <-deadline:
			t.Fatalf("received %d kinds, want %d", len(got), want)
		}
	}
	return got
}

func TestWatcherEmitsEveryKind(t *testing.T) {
	w := NewWatcher(cluster.Demo(), time.Hour, WithBlocks(true))
	defer func() {
		w.Stop()
		w.Wait()
	}()
	got := collect(t, w, 4)
	jobs, ok := got[KindJobs].Data.([]cluster.Job)
	if !ok || len(jobs) == 0 {
		t.Fatalf("expected jobs, got %#v", got[KindJobs].Data)
	}
	if _, ok := got[KindBlocks].Data.([]cluster.Block); !ok {
		t.Fatalf("expected blocks, got %#v", got[KindBlocks].Data)
	}
}

func TestWatcherSkipsBlocksByDefault(t *testing.T) {
	w := NewWatcher(cluster.Demo(), time.Hour)
	got := collect(t, w, 3)
	if _, ok := got[KindBlocks]; ok {
		t.Fatalf("blocks polled without WithBlocks")
	}
	w.Stop()
	w.Wait()
}

func TestWatcherReportsErrors(t *testing.T) {
	boom := errors.New("squeue: slurm_load_jobs error")
	src := &countingSource{Static: cluster.Demo(), fail: boom}
	w := NewWatcher(src, time.Hour)
	defer func() {
		w.Stop()
		w.Wait()
	}()
	got := collect(t, w, 3)
	if !errors.Is(got[KindJobs].Err, boom) {
		t.Fatalf("expected job error, got %v", got[KindJobs].Err)
	}
}

func TestWatcherPoke(t *testing.T) {
	src := &countingSource{Static: cluster.Demo()}
	w := NewWatcher(src, time.Hour)
	defer func() {
		w.Stop()
		w.Wait()
	}()
	collect(t, w, 3)
	w.Poke()
	deadline := time.After(2 * time.Second)
	for src.jobs.Load() < 2 {
		select {
		case <-w.Events():
		case <-deadline:
			t.Fatalf("poke did not trigger a poll")
		}
	}
}

func TestKindString(t *testing.T) {
	if KindNodes.String() != "nodes" || Kind(9).String() != "unknown" {
		t.Fatalf("unexpected kind names")
	}
}

func TestThrottleSpacesCommands(t *testing.T) {
	th := newThrottle(30 * time.Millisecond)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := th.wait(ctx); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Fatalf("three commands ran within %s", elapsed)
	}
}

func TestThrottleHonoursCancel(t *testing.T) {
	th := newThrottle(time.Hour)
	if err := th.wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := th.wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
