// Package autoplay manages the newline-delimited list of filler tracks
// queued when the queue runs dry.
package autoplay

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"discord-music-bot/internal/music"
	"discord-music-bot/internal/music/catalog"
	"discord-music-bot/internal/music/sources/youtube"
)

type List struct {
	mu   sync.Mutex
	path string
}

func NewList(path string) *List {
	return &List{path: path}
}

func (l *List) Path() string {
	return l.path
}

// Entries returns the non-blank lines of the list. A missing file is an
// empty list.
func (l *List) Entries() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open auto-play list: %w", err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("read auto-play list: %w", err)
	}
	return out, nil
}

// Append adds one entry to the end of the list.
func (l *List) Append(entry string) error {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return errors.New("empty auto-play entry")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open auto-play list: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(entry + "\n"); err != nil {
		return fmt.Errorf("write auto-play list: %w", err)
	}
	return nil
}

// Replenisher resolves every list entry independently and queues it
// muted under the auto-play requester. Playlist entries are imported
// page by page. Failures are logged and skipped.
type Replenisher struct {
	list    *List
	catalog *catalog.Catalog
	aliases youtube.AliasLookup
	logger  zerolog.Logger
}

func NewReplenisher(list *List, cat *catalog.Catalog, aliases youtube.AliasLookup) *Replenisher {
	return &Replenisher{
		list:    list,
		catalog: cat,
		aliases: aliases,
		logger:  log.With().Str("component", "autoplay").Logger(),
	}
}

// Run has the player.Replenisher signature.
func (r *Replenisher) Run(ctx context.Context) {
	entries, err := r.list.Entries()
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to read auto-play list")
		return
	}
	if len(entries) == 0 {
		r.logger.Info().Str("path", r.list.Path()).Msg("Auto-play list is empty")
		return
	}

	queued := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		target := youtube.Resolve(entry, r.aliases)
		if target.Playlist {
			n, err := r.catalog.ImportPlaylist(ctx, target.ID, music.AutoPlayRequester)
			if err != nil {
				r.logger.Warn().Err(err).Str("entry", entry).Msg("Skipping auto-play playlist")
			}
			queued += n
			continue
		}

		if _, err := r.catalog.EnqueueVideo(ctx, target.ID, music.AutoPlayRequester, true); err != nil {
			r.logger.Warn().Err(err).Str("entry", entry).Msg("Skipping auto-play entry")
			continue
		}
		queued++
	}

	r.logger.Info().Int("queued", queued).Int("entries", len(entries)).Msg("Auto-play replenished")
}
