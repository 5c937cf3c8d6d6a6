// /internal/music/sources/youtube/resolver.go
package youtube

import (
	"regexp"
	"strings"
)

// Playlist IDs on YouTube are 34 characters long; video IDs are 11.
const playlistIDLength = 34

var (
	listParamPattern = regexp.MustCompile(`[?&]list=([^#&?]*)`)
	videoIDPattern   = regexp.MustCompile(`(?:\?v=|&v=|youtu\.be/|/shorts/)(.*?)(?:\?|&|#|$)`)
)

// Target is a canonical identifier extracted from user input.
type Target struct {
	ID       string
	Playlist bool
}

// AliasLookup resolves a short name to its stored target. Implementations
// fold case themselves.
type AliasLookup interface {
	Lookup(name string) (string, bool)
}

// Resolve substitutes a matching alias and then parses the result.
func Resolve(raw string, aliases AliasLookup) Target {
	input := strings.TrimSpace(raw)
	if aliases != nil {
		if target, ok := aliases.Lookup(input); ok {
			input = strings.TrimSpace(target)
		}
	}
	return ParseTarget(input)
}

// ParseTarget extracts a video or playlist ID from a URL or bare ID.
// Input matching no known pattern is passed through unchanged.
func ParseTarget(input string) Target {
	input = strings.TrimSpace(input)

	if m := listParamPattern.FindStringSubmatch(input); m != nil && m[1] != "" {
		return Target{ID: m[1], Playlist: true}
	}

	if m := videoIDPattern.FindStringSubmatch(input); m != nil && m[1] != "" {
		return Target{ID: m[1]}
	}

	return Target{ID: input, Playlist: len(input) == playlistIDLength}
}

// WatchURL builds the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
