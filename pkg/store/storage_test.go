package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"
	"github.com/OFFIS-RIT/pathways/backend/pkg/graph/graphtest"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"
)

type fakeLoader struct {
	calls   atomic.Int32
	fail    atomic.Bool
	release chan struct{}
}

func (f *fakeLoader) Load(ctx context.Context, src source.RecordSource) (*graph.Graph, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.fail.Load() {
		return nil, errors.New("upstream down")
	}
	client, _ := graph.NewGraphClient(graph.NewGraphClientParams{})
	return client.Load(ctx, src)
}

type countingSource struct {
	source.RecordSource
	invalidated atomic.Int32
}

func (c *countingSource) Invalidate() {
	c.invalidated.Add(1)
}

func newStore(t *testing.T, loader GraphLoader, src source.RecordSource) *GraphStore {
	t.Helper()
	s, err := NewGraphStore(NewGraphStoreParams{Loader: loader, Source: src})
	if err != nil {
		t.Fatalf("NewGraphStore() error = %v", err)
	}
	return s
}

func TestCurrentBeforeLoad(t *testing.T) {
	s := newStore(t, &fakeLoader{}, graphtest.Snapshot())
	if _, err := s.Current(); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	if _, err := s.Explorer(); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestReloadInvalidatesAndSwaps(t *testing.T) {
	src := &countingSource{RecordSource: graphtest.Snapshot()}
	s := newStore(t, &fakeLoader{}, src)

	g, err := s.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if src.invalidated.Load() != 1 {
		t.Fatalf("expected source to be invalidated once, got %d", src.invalidated.Load())
	}
	current, err := s.Current()
	if err != nil || current != g {
		t.Fatalf("Current() = %p, %v; want %p", current, err, g)
	}
	if _, err := s.Explorer(); err != nil {
		t.Fatalf("Explorer() error = %v", err)
	}
}

func TestFailedReloadKeepsPreviousGraph(t *testing.T) {
	loader := &fakeLoader{}
	s := newStore(t, loader, graphtest.Snapshot())

	first, err := s.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	loader.fail.Store(true)
	if _, err := s.Reload(context.Background()); err == nil {
		t.Fatal("expected reload to fail")
	}

	current, err := s.Current()
	if err != nil || current != first {
		t.Fatal("failed reload replaced the served graph")
	}
}

func TestConcurrentReloadsShareOneLoad(t *testing.T) {
	loader := &fakeLoader{release: make(chan struct{})}
	s := newStore(t, loader, graphtest.Snapshot())

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*graph.Graph, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := s.Reload(context.Background())
			if err != nil {
				t.Errorf("Reload() error = %v", err)
				return
			}
			results[i] = g
		}(i)
	}

	// wait until the first load is running, then let it finish
	deadline := time.Now().Add(time.Second)
	for loader.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(loader.release)
	wg.Wait()

	if loader.calls.Load() != 1 {
		t.Fatalf("expected a single load, got %d", loader.calls.Load())
	}
	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatal("callers received different graphs")
		}
	}
}

func TestCancelledCallerDoesNotFailJoinedReload(t *testing.T) {
	loader := &fakeLoader{release: make(chan struct{})}
	s := newStore(t, loader, graphtest.Snapshot())

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Reload(first)
		firstErr <- err
	}()

	deadline := time.Now().Add(time.Second)
	for loader.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	type result struct {
		g   *graph.Graph
		err error
	}
	second := make(chan result, 1)
	go func() {
		g, err := s.Reload(context.Background())
		second <- result{g, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled caller to return context.Canceled, got %v", err)
	}

	close(loader.release)
	res := <-second
	if res.err != nil {
		t.Fatalf("joined Reload() error = %v", res.err)
	}
	if cur, err := s.Current(); err != nil || cur != res.g {
		t.Fatalf("expected reloaded graph to be served, err=%v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected a single load, got %d", loader.calls.Load())
	}
}

func TestNewGraphStoreRequiresDependencies(t *testing.T) {
	if _, err := NewGraphStore(NewGraphStoreParams{Source: graphtest.Snapshot()}); err == nil {
		t.Fatal("expected error without loader")
	}
	if _, err := NewGraphStore(NewGraphStoreParams{Loader: &fakeLoader{}}); err == nil {
		t.Fatal("expected error without source")
	}
}
