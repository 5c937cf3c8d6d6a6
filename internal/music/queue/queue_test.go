package queue

import (
	"errors"
	"testing"

	"discord-music-bot/internal/music"
)

func filled(titles ...string) *Queue {
	q := New()
	for _, title := range titles {
		q.PushBack(music.Track{VideoID: title + "-id", Title: title})
	}
	return q
}

func titles(q *Queue) []string {
	var out []string
	for _, t := range q.Items() {
		out = append(out, t.Title)
	}
	return out
}

func TestPushBackKeepsOrderAndDuplicates(t *testing.T) {
	q := filled("a", "b", "a")

	got := titles(q)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "a" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestPushFrontInsertsAtOne(t *testing.T) {
	q := filled("a", "b")
	if pos := q.PushFront(music.Track{Title: "x"}); pos != 1 {
		t.Fatalf("expected position 1, got %d", pos)
	}
	if front, _ := q.PeekFront(); front.Title != "x" {
		t.Fatalf("expected x at front, got %q", front.Title)
	}
}

func TestRemoveLastRemovesFinalElement(t *testing.T) {
	for n := 1; n <= 5; n++ {
		q := New()
		for i := 0; i < n; i++ {
			q.PushBack(music.Track{Title: string(rune('a' + i))})
		}
		want := q.Items()[n-1]

		removed, err := q.RemoveLast()
		if err != nil {
			t.Fatalf("n=%d remove last: %v", n, err)
		}
		if removed.Title != want.Title {
			t.Fatalf("n=%d expected %q, got %q", n, want.Title, removed.Title)
		}
		if q.Len() != n-1 {
			t.Fatalf("n=%d expected len %d, got %d", n, n-1, q.Len())
		}
	}
}

func TestRemoveAtOutOfRangeLeavesQueue(t *testing.T) {
	empty := New()
	if _, err := empty.RemoveAt(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange on empty queue, got %v", err)
	}
	if _, err := empty.RemoveLast(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for last on empty queue, got %v", err)
	}

	q := filled("a", "b", "c")
	for _, idx := range []int{0, -1, 4, 100} {
		if _, err := q.RemoveAt(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("index %d: expected ErrIndexOutOfRange, got %v", idx, err)
		}
	}
	if got := titles(q); len(got) != 3 {
		t.Fatalf("expected queue unchanged, got %v", got)
	}
}

func TestRemoveAtMiddle(t *testing.T) {
	q := filled("a", "b", "c")
	removed, err := q.RemoveAt(2)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.Title != "b" {
		t.Fatalf("expected b, got %q", removed.Title)
	}
	if got := titles(q); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("unexpected remainder %v", got)
	}
}

func TestPopFrontAndClear(t *testing.T) {
	q := filled("a", "b")

	first, err := q.PopFront()
	if err != nil || first.Title != "a" {
		t.Fatalf("expected a, got %q (%v)", first.Title, err)
	}
	if n := q.Clear(); n != 1 {
		t.Fatalf("expected 1 cleared, got %d", n)
	}
	if !q.IsEmpty() {
		t.Fatalf("expected empty queue")
	}
	if _, err := q.PopFront(); !errors.Is(err, ErrEmptyQueue) {
		t.Fatalf("expected ErrEmptyQueue, got %v", err)
	}
	if _, ok := q.PeekFront(); ok {
		t.Fatalf("expected no front on empty queue")
	}
}
