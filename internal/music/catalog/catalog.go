// Package catalog turns user requests into queued tracks: it resolves
// aliases and URLs, looks up metadata, runs searches and imports
// playlists page by page.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"discord-music-bot/internal/music"
	"discord-music-bot/internal/music/sources/youtube"
	"discord-music-bot/pkg/jobmgr"
	"discord-music-bot/pkg/util"
)

var ErrEmptyPlaylist = errors.New("no videos found within playlist")

const (
	importJobPrefix = "import:"
	importWorkers   = 4
)

// Metadata is the video platform collaborator.
type Metadata interface {
	Video(ctx context.Context, id string) (youtube.Video, error)
	Search(ctx context.Context, query string) (string, error)
	PlaylistPage(ctx context.Context, playlistID, pageToken string) (youtube.Page, error)
}

// Enqueuer receives resolved tracks. It returns the 1-based position.
type Enqueuer interface {
	Enqueue(t music.Track) int
}

// Result describes what a request did.
type Result struct {
	Track      music.Track
	Position   int
	Playlist   bool
	PlaylistID string
}

// ImportDone is called when a background playlist import finishes.
type ImportDone func(playlistID string, added int, err error)

type Catalog struct {
	meta    Metadata
	aliases youtube.AliasLookup
	queue   Enqueuer
	jobs    *jobmgr.Manager
	logger  zerolog.Logger
}

func New(meta Metadata, aliases youtube.AliasLookup, queue Enqueuer, jobs *jobmgr.Manager) *Catalog {
	return &Catalog{
		meta:    meta,
		aliases: aliases,
		queue:   queue,
		jobs:    jobs,
		logger:  log.With().Str("component", "catalog").Logger(),
	}
}

// Request resolves raw (alias, URL or ID) and queues it. Playlists are
// imported in the background; done is called when the import ends.
func (c *Catalog) Request(ctx context.Context, raw, requester string, done ImportDone) (Result, error) {
	target := youtube.Resolve(raw, c.aliases)
	if target.ID == "" {
		return Result{}, fmt.Errorf("%w: empty identifier", youtube.ErrNotFound)
	}

	if target.Playlist {
		if err := c.StartImport(target.ID, requester, done); err != nil {
			return Result{}, err
		}
		return Result{Playlist: true, PlaylistID: target.ID}, nil
	}

	return c.EnqueueVideo(ctx, target.ID, requester, false)
}

// Search queues the best match for query.
func (c *Catalog) Search(ctx context.Context, query, requester string) (Result, error) {
	id, err := c.meta.Search(ctx, query)
	if err != nil {
		return Result{}, err
	}
	return c.EnqueueVideo(ctx, id, requester, false)
}

// EnqueueVideo looks up a single video and queues it. Muted tracks are
// marked silent so playback failures are only logged.
func (c *Catalog) EnqueueVideo(ctx context.Context, videoID, requester string, muted bool) (Result, error) {
	t, err := c.lookup(ctx, videoID, requester, muted)
	if err != nil {
		return Result{}, err
	}

	pos := c.queue.Enqueue(t)
	return Result{Track: t, Position: pos}, nil
}

func (c *Catalog) lookup(ctx context.Context, videoID, requester string, muted bool) (music.Track, error) {
	v, err := c.meta.Video(ctx, videoID)
	if err != nil {
		return music.Track{}, err
	}

	t := music.Track{
		VideoID:         v.ID,
		Title:           v.Title,
		RequestedBy:     requester,
		DurationSeconds: v.DurationSeconds,
		Silent:          muted,
	}
	if t.VideoID == "" {
		t.VideoID = videoID
	}
	return t, nil
}

// ImportPlaylist walks every page of a playlist and mutedly queues each
// entry in playlist order. Metadata for a page is fetched concurrently. A
// failing entry is logged and skipped; a failing page aborts.
func (c *Catalog) ImportPlaylist(ctx context.Context, playlistID, requester string) (int, error) {
	logger := c.logger.With().Str("playlist", playlistID).Logger()

	added, seen := 0, 0
	token := ""
	for {
		if err := ctx.Err(); err != nil {
			return added, err
		}

		page, err := c.meta.PlaylistPage(ctx, playlistID, token)
		if err != nil {
			return added, err
		}
		if seen == 0 && len(page.Items) == 0 {
			return 0, ErrEmptyPlaylist
		}
		seen += len(page.Items)

		tracks, err := util.Map(ctx, page.Items, importWorkers, func(ctx context.Context, item youtube.PlaylistItem) (*music.Track, error) {
			t, err := c.lookup(ctx, item.VideoID, requester, true)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn().Err(err).Str("video", item.VideoID).Msg("Skipping playlist entry")
				}
				return nil, nil
			}
			return &t, nil
		})
		if err != nil {
			return added, err
		}

		for _, t := range tracks {
			if t == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return added, err
			}
			c.queue.Enqueue(*t)
			added++
		}

		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}

	logger.Info().Int("added", added).Int("entries", seen).Msg("Playlist imported")
	return added, nil
}

// StartImport runs ImportPlaylist as a named background job.
func (c *Catalog) StartImport(playlistID, requester string, done ImportDone) error {
	return c.jobs.StartAsync(importJobPrefix+playlistID, func(ctx context.Context) error {
		added, err := c.ImportPlaylist(ctx, playlistID, requester)
		if done != nil && !errors.Is(err, context.Canceled) {
			done(playlistID, added, err)
		}
		return err
	})
}

// CancelImports stops every running playlist import.
func (c *Catalog) CancelImports() int {
	n := c.jobs.StopPrefix(importJobPrefix)
	if n > 0 {
		c.logger.Info().Int("count", n).Msg("Cancelled playlist imports")
	}
	return n
}

// Imports lists the playlist IDs being imported.
func (c *Catalog) Imports() []string {
	var out []string
	for _, name := range c.jobs.List() {
		if id, ok := strings.CutPrefix(name, importJobPrefix); ok {
			out = append(out, id)
		}
	}
	return out
}
