package autoplay

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"discord-music-bot/internal/music"
	"discord-music-bot/internal/music/catalog"
	"discord-music-bot/internal/music/sources/youtube"
	"discord-music-bot/pkg/jobmgr"
)

type fakeMeta struct {
	videos map[string]youtube.Video
}

func (f *fakeMeta) Video(ctx context.Context, id string) (youtube.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return youtube.Video{}, youtube.ErrNotFound
	}
	return v, nil
}

func (f *fakeMeta) Search(ctx context.Context, q string) (string, error) {
	return "", youtube.ErrNoResults
}

func (f *fakeMeta) PlaylistPage(ctx context.Context, id, token string) (youtube.Page, error) {
	return youtube.Page{}, nil
}

type recordingQueue struct {
	mu     sync.Mutex
	tracks []music.Track
}

func (q *recordingQueue) Enqueue(t music.Track) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tracks = append(q.tracks, t)
	return len(q.tracks)
}

func TestEntriesSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autoplaylist.txt")
	content := "https://youtu.be/aaa\n\n  bbb  \n# comment\nccc\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewList(path).Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(got) != 3 || got[0] != "https://youtu.be/aaa" || got[1] != "bbb" || got[2] != "ccc" {
		t.Fatalf("unexpected entries %v", got)
	}
}

func TestMissingListIsEmpty(t *testing.T) {
	got, err := NewList(filepath.Join(t.TempDir(), "none.txt")).Entries()
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty list, got %v (%v)", got, err)
	}
}

func TestAppendPersists(t *testing.T) {
	l := NewList(filepath.Join(t.TempDir(), "sub", "autoplaylist.txt"))
	if err := l.Append("one"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := l.Append("two"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := l.Append("   "); err == nil {
		t.Fatalf("expected error for blank entry")
	}

	got, _ := l.Entries()
	if len(got) != 2 || got[1] != "two" {
		t.Fatalf("unexpected entries %v", got)
	}
}

func TestReplenishQueuesMutedFiller(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autoplaylist.txt")
	if err := os.WriteFile(path, []byte("https://youtu.be/v1\nmissing\nv2\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	meta := &fakeMeta{videos: map[string]youtube.Video{
		"v1": {ID: "v1", Title: "One"},
		"v2": {ID: "v2", Title: "Two"},
	}}
	q := &recordingQueue{}
	cat := catalog.New(meta, nil, q, jobmgr.NewManager(context.Background(), nil))

	NewReplenisher(NewList(path), cat, nil).Run(context.Background())

	if len(q.tracks) != 2 {
		t.Fatalf("expected 2 queued, got %d", len(q.tracks))
	}
	for _, tr := range q.tracks {
		if tr.RequestedBy != music.AutoPlayRequester || !tr.Silent {
			t.Fatalf("expected muted auto-play track, got %+v", tr)
		}
	}
}
