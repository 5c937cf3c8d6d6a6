package music

import (
	"fmt"
	"time"
)

// AutoPlayRequester tags tracks loaded from the auto-play list.
const AutoPlayRequester = "auto-play"

// Track is a resolved playback request.
type Track struct {
	VideoID         string `json:"id"`
	Title           string `json:"title"`
	RequestedBy     string `json:"requested_by"`
	DurationSeconds int    `json:"duration_seconds"`

	// Silent marks muted enqueues (playlist imports, auto-play); playback
	// failures for these are logged instead of reported in chat.
	Silent bool `json:"-"`
}

func (t Track) URL() string {
	return "https://www.youtube.com/watch?v=" + t.VideoID
}

func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationSeconds) * time.Second
}

// IsAutoPlay reports whether the track is auto-play filler.
func (t Track) IsAutoPlay() bool {
	return t.RequestedBy == AutoPlayRequester
}

// FormatDuration renders seconds as m:ss or h:mm:ss.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "live"
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
