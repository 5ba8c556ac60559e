package watcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeSource struct {
	mu    sync.Mutex
	fp    string
	reads int
}

func (f *fakeSource) Fingerprint(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return f.fp, nil
}

func (f *fakeSource) set(fp string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fp = fp
}

// awaitBaseline blocks until the watcher has taken its initial
// fingerprint, so a subsequent set is seen as a change.
func (f *fakeSource) awaitBaseline(t *testing.T) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		f.mu.Lock()
		reads := f.reads
		f.mu.Unlock()
		if reads > 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("watcher never took a baseline fingerprint")
		case <-time.After(time.Millisecond):
		}
	}
}

type countingRunner struct {
	mu       sync.Mutex
	restarts int
}

func (r *countingRunner) Restart(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restarts++
	return nil
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restarts
}

func TestWatcherRestartsAfterChange(t *testing.T) {
	source := &fakeSource{fp: "v1"}
	runner := &countingRunner{}
	w := New(source, runner, zerolog.Nop(), Config{
		Poll:     5 * time.Millisecond,
		Debounce: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	source.awaitBaseline(t)
	source.set("v2")

	deadline := time.After(time.Second)
	for runner.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("no restart within deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
	if got := runner.count(); got != 1 {
		t.Errorf("restarts = %d, want 1", got)
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	source := &fakeSource{fp: "v0"}
	runner := &countingRunner{}
	w := New(source, runner, zerolog.Nop(), Config{
		Poll:     5 * time.Millisecond,
		Debounce: 60 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// A burst of edits inside the quiet period.
	source.awaitBaseline(t)
	for i := 1; i <= 5; i++ {
		source.set(string(rune('a' + i)))
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.After(time.Second)
	for runner.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("no restart within deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}
	// Allow a stray second restart to surface if debouncing is broken.
	time.Sleep(100 * time.Millisecond)

	cancel()
	<-done
	if got := runner.count(); got != 1 {
		t.Errorf("restarts = %d, want exactly 1 for one burst", got)
	}
}

func TestWatcherNoChangeNoRestart(t *testing.T) {
	source := &fakeSource{fp: "stable"}
	runner := &countingRunner{}
	w := New(source, runner, zerolog.Nop(), Config{
		Poll:     5 * time.Millisecond,
		Debounce: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	if got := runner.count(); got != 0 {
		t.Errorf("restarts = %d, want 0 when nothing changed", got)
	}
}
