package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"discord-music-bot/internal/music/parsers"
)

type fakeStreamer struct {
	name    string
	err     error
	cleaned bool
}

func (f *fakeStreamer) Name() string { return f.name }

func (f *fakeStreamer) Open(ctx context.Context, videoID string) (io.ReadCloser, func(), error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return io.NopCloser(strings.NewReader(videoID)), func() { f.cleaned = true }, nil
}

func TestAutoOpenStreamFallsBack(t *testing.T) {
	broken := &fakeStreamer{name: "broken", err: errors.New("boom")}
	working := &fakeStreamer{name: "working"}

	ts, err := AutoOpenStream(context.Background(), "abc", []parsers.Streamer{broken, working})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if ts.Parser != "working" {
		t.Fatalf("expected working parser, got %q", ts.Parser)
	}
	ts.Close()
	if !working.cleaned {
		t.Fatalf("expected cleanup on close")
	}
}

func TestAutoOpenStreamAllFail(t *testing.T) {
	a := &fakeStreamer{name: "a", err: errors.New("one")}
	b := &fakeStreamer{name: "b", err: errors.New("two")}

	_, err := AutoOpenStream(context.Background(), "abc", []parsers.Streamer{a, b})
	if err == nil || !strings.Contains(err.Error(), "one") || !strings.Contains(err.Error(), "two") {
		t.Fatalf("expected combined error, got %v", err)
	}

	if _, err := AutoOpenStream(context.Background(), "abc", nil); err == nil {
		t.Fatalf("expected error with no parsers")
	}
}

func TestRegistrySelectKeepsOrder(t *testing.T) {
	r := NewRegistry(&fakeStreamer{name: "a"}, &fakeStreamer{name: "b"})
	got := r.Select([]string{"b", "missing", " a "})
	if len(got) != 2 || got[0].Name() != "b" || got[1].Name() != "a" {
		t.Fatalf("unexpected selection %v", got)
	}
}
