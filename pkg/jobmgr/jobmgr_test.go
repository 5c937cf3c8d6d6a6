package jobmgr

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStartAsyncRejectsDuplicateName(t *testing.T) {
	m := NewManager(context.Background(), nil)
	release := make(chan struct{})

	err := m.StartAsync("import:a", func(ctx context.Context) error {
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.StartAsync("import:a", func(ctx context.Context) error { return nil }); !errors.Is(err, ErrJobRunning) {
		t.Fatalf("expected ErrJobRunning, got %v", err)
	}

	close(release)
	m.Wait()
	if len(m.List()) != 0 {
		t.Fatalf("expected job removed after completion, got %v", m.List())
	}
}

func TestStopPrefixCancelsMatchingJobs(t *testing.T) {
	m := NewManager(context.Background(), nil)

	var mu sync.Mutex
	cancelled := map[string]bool{}
	block := func(name string) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				mu.Lock()
				cancelled[name] = true
				mu.Unlock()
				return ctx.Err()
			case <-time.After(2 * time.Second):
				return nil
			}
		}
	}

	_ = m.StartAsync("import:a", block("a"))
	_ = m.StartAsync("import:b", block("b"))
	_ = m.StartAsync("other", block("other"))

	if n := m.StopPrefix("import:"); n != 2 {
		t.Fatalf("expected 2 stopped, got %d", n)
	}
	if got := m.List(); len(got) != 1 || got[0] != "other" {
		t.Fatalf("expected only other left, got %v", got)
	}
	if err := m.Stop("import:a"); !errors.Is(err, ErrJobNotRunning) {
		t.Fatalf("expected ErrJobNotRunning, got %v", err)
	}

	m.StopAll()
	m.Wait()

	mu.Lock()
	defer mu.Unlock()
	if !cancelled["a"] || !cancelled["b"] || !cancelled["other"] {
		t.Fatalf("expected all jobs cancelled, got %v", cancelled)
	}
}

func TestReporterSeesLifecycle(t *testing.T) {
	var mu sync.Mutex
	var events []string
	m := NewManager(context.Background(), func(s string) {
		mu.Lock()
		events = append(events, s)
		mu.Unlock()
	})

	_ = m.StartAsync("ok", func(ctx context.Context) error { return nil })
	m.Wait()
	_ = m.StartAsync("bad", func(ctx context.Context) error { return errors.New("boom") })
	m.Wait()

	mu.Lock()
	defer mu.Unlock()
	want := []string{"running:ok", "done:ok", "running:bad", "error:bad:boom"}
	if len(events) != len(want) {
		t.Fatalf("expected %v, got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, events)
		}
	}
}

func TestParentCancellationStopsJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(ctx, nil)

	done := make(chan error, 1)
	_ = m.StartAsync("job", func(ctx context.Context) error {
		<-ctx.Done()
		done <- ctx.Err()
		return nil
	})

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("job not cancelled by parent")
	}
	m.Wait()
}
