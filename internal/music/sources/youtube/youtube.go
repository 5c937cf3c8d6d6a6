// Package youtube resolves user input to YouTube identifiers and fetches
// video metadata, search results and playlist pages.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"

	kkdai "github.com/kkdai/youtube/v2"
	"github.com/ppalone/ytsearch"
)

var (
	ErrNotFound   = errors.New("video not found")
	ErrUnplayable = errors.New("video cannot be streamed")
	ErrNoResults  = errors.New("no search results")
)

// Video is the metadata needed to queue a track.
type Video struct {
	ID              string
	Title           string
	DurationSeconds int
}

type PlaylistItem struct {
	VideoID string
	Title   string
}

// Page is one page of a playlist listing. NextPageToken is empty on the
// last page.
type Page struct {
	Items         []PlaylistItem
	NextPageToken string
}

// Source combines the scraping client, the keyless search client and,
// when a key is configured, the Data API client.
type Source struct {
	client *kkdai.Client
	api    *APIClient
	search *ytsearch.Client
}

type Options struct {
	APIKey string
	Proxy  string
	RPS    float64
}

func New(opts Options) *Source {
	httpClient := NewHTTPClient(opts.Proxy)

	s := &Source{
		client: &kkdai.Client{HTTPClient: httpClient},
		search: ytsearch.NewClient(nil),
	}
	if opts.APIKey != "" {
		s.api = NewAPIClient(opts.APIKey, httpClient, opts.RPS)
	}
	return s
}

// Client exposes the scraping client so stream parsers share its proxy.
func (s *Source) Client() *kkdai.Client {
	return s.client
}

// Video looks up title and duration for a video ID.
func (s *Source) Video(ctx context.Context, id string) (Video, error) {
	v, err := s.client.GetVideoContext(ctx, id)
	if err != nil {
		return Video{}, fmt.Errorf("%w: %s: %v", ErrNotFound, id, err)
	}
	if len(v.Formats.WithAudioChannels()) == 0 {
		return Video{}, fmt.Errorf("%w: %s has no audio formats", ErrUnplayable, id)
	}
	return Video{
		ID:              v.ID,
		Title:           v.Title,
		DurationSeconds: int(v.Duration.Seconds()),
	}, nil
}

// Search returns the best-matching video ID for a free-text query.
func (s *Source) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrNoResults
	}

	if s.api != nil {
		return s.api.Search(ctx, query)
	}

	res, err := s.search.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", query, err)
	}
	for _, r := range res.Results {
		if r.VideoID != "" {
			return r.VideoID, nil
		}
	}
	return "", ErrNoResults
}

// PlaylistPage lists one page of a playlist. Without an API key the
// scraping client returns the whole playlist as a single page.
func (s *Source) PlaylistPage(ctx context.Context, playlistID, pageToken string) (Page, error) {
	if s.api != nil {
		return s.api.PlaylistItems(ctx, playlistID, pageToken)
	}

	pl, err := s.client.GetPlaylistContext(ctx, "https://www.youtube.com/playlist?list="+playlistID)
	if err != nil {
		return Page{}, fmt.Errorf("%w: playlist %s: %v", ErrNotFound, playlistID, err)
	}

	page := Page{Items: make([]PlaylistItem, 0, len(pl.Videos))}
	for _, entry := range pl.Videos {
		page.Items = append(page.Items, PlaylistItem{VideoID: entry.ID, Title: entry.Title})
	}
	return page, nil
}
