package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T, dir string) *Storage {
	t.Helper()
	s, err := New(filepath.Join(dir, "aliases.json"), filepath.Join(dir, "history.json"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	return s
}

func TestAliasSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	s := openTemp(t, dir)
	if err := s.SetAlias("foo", "bar"); err != nil {
		t.Fatalf("set alias: %v", err)
	}

	// Simulate a crash: reopen without closing the first instance.
	restarted := openTemp(t, dir)
	got, ok := restarted.Alias("foo")
	if !ok || got != "bar" {
		t.Fatalf("expected foo -> bar after restart, got %q (%v)", got, ok)
	}
}

func TestAliasKeysAreCaseFolded(t *testing.T) {
	s := openTemp(t, t.TempDir())

	if err := s.SetAlias("MyMix", "PLxyz"); err != nil {
		t.Fatalf("set alias: %v", err)
	}
	if got, ok := s.Alias("mymix"); !ok || got != "PLxyz" {
		t.Fatalf("expected lowercase lookup to hit, got %q (%v)", got, ok)
	}
	if got, ok := s.Alias("MYMIX"); !ok || got != "PLxyz" {
		t.Fatalf("expected uppercase lookup to hit, got %q (%v)", got, ok)
	}
	names := s.AliasNames()
	if len(names) != 1 || names[0] != "mymix" {
		t.Fatalf("expected stored key mymix, got %v", names)
	}
}

func TestSetAliasOverwrites(t *testing.T) {
	s := openTemp(t, t.TempDir())
	_ = s.SetAlias("a", "one")
	_ = s.SetAlias("A", "two")

	if got, _ := s.Alias("a"); got != "two" {
		t.Fatalf("expected overwrite, got %q", got)
	}
}

func TestDeleteAlias(t *testing.T) {
	dir := t.TempDir()
	s := openTemp(t, dir)

	if err := s.DeleteAlias("ghost"); !errors.Is(err, ErrAliasNotFound) {
		t.Fatalf("expected ErrAliasNotFound, got %v", err)
	}

	_ = s.SetAlias("foo", "bar")
	if err := s.DeleteAlias("FOO"); err != nil {
		t.Fatalf("delete alias: %v", err)
	}

	restarted := openTemp(t, dir)
	if _, ok := restarted.Alias("foo"); ok {
		t.Fatalf("expected deletion to be persisted")
	}
}

func TestCommandHistoryIsCapped(t *testing.T) {
	s := openTemp(t, t.TempDir())

	for i := 0; i < commandHistoryLimit+5; i++ {
		if err := s.SetCommand("c1", "u1", "user", "np", nil); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := s.AppendCommandToHistory(CommandHistoryRecord{UserID: "u2", Command: "purge", Denied: true}); err != nil {
		t.Fatalf("append denied: %v", err)
	}

	list, err := s.FetchCommandHistory()
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(list) != commandHistoryLimit {
		t.Fatalf("expected %d entries, got %d", commandHistoryLimit, len(list))
	}
	last := list[len(list)-1]
	if last.Command != "purge" || !last.Denied || last.Datetime.IsZero() {
		t.Fatalf("unexpected last record %+v", last)
	}
}
