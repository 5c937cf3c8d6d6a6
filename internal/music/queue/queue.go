package queue

import (
	"errors"
	"slices"
	"sync"

	"discord-music-bot/internal/music"
)

var (
	ErrEmptyQueue      = errors.New("queue is empty")
	ErrIndexOutOfRange = errors.New("queue index out of range")
)

// Queue is an ordered list of pending tracks. It is safe for concurrent use.
// Duplicates are allowed and there is no capacity bound.
type Queue struct {
	mu      sync.Mutex
	entries []music.Track
}

func New() *Queue {
	return &Queue{}
}

// PushBack appends a track and returns its one-based position.
func (q *Queue) PushBack(t music.Track) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, t)
	return len(q.entries)
}

// PushFront inserts a track at position 1.
func (q *Queue) PushFront(t music.Track) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = slices.Insert(q.entries, 0, t)
	return 1
}

// RemoveAt removes the entry at a one-based index.
func (q *Queue) RemoveAt(index int) (music.Track, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(index)
}

// RemoveLast removes the final entry.
func (q *Queue) RemoveLast() (music.Track, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(len(q.entries))
}

func (q *Queue) removeLocked(index int) (music.Track, error) {
	if len(q.entries) == 0 || index < 1 || index > len(q.entries) {
		return music.Track{}, ErrIndexOutOfRange
	}
	removed := q.entries[index-1]
	q.entries = slices.Delete(q.entries, index-1, index)
	return removed, nil
}

// Clear drops every entry and returns how many were removed.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.entries)
	q.entries = nil
	return n
}

func (q *Queue) PeekFront() (music.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return music.Track{}, false
	}
	return q.entries[0], true
}

// PopFront removes and returns the first entry. Callers check IsEmpty first.
func (q *Queue) PopFront() (music.Track, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return music.Track{}, ErrEmptyQueue
	}
	t := q.entries[0]
	q.entries = slices.Delete(q.entries, 0, 1)
	return t, nil
}

func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Items returns a copy of the pending entries.
func (q *Queue) Items() []music.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.entries)
}
