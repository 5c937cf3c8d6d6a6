package playback

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"discord-music-bot/internal/command"
	"discord-music-bot/internal/music"
	"discord-music-bot/internal/music/catalog"
	"discord-music-bot/internal/music/queue"
	"discord-music-bot/internal/music/sources/youtube"
	"discord-music-bot/pkg/jobmgr"
)

// Discord rejects messages over 2000 characters.
const maxMessageLength = 1900

func request(ctx context.Context, mc *command.MessageContext, params []string) error {
	res, err := mc.Deps.Catalog.Request(ctx, params[0], mc.Sender.AuthorName, importReporter(mc))
	if err != nil {
		return mc.Reply(describeError(params[0], err))
	}

	if res.Playlist {
		return mc.Reply("Importing playlist " + res.PlaylistID + "...")
	}
	return mc.Reply(fmt.Sprintf("%q has been added to the queue.", res.Track.Title))
}

// importReporter tells the requester how a background import ended.
func importReporter(mc *command.MessageContext) catalog.ImportDone {
	return func(playlistID string, added int, err error) {
		switch {
		case err != nil:
			_ = mc.Reply(describeError(playlistID, err))
		default:
			_ = mc.Reply(fmt.Sprintf("Added %d videos from the playlist to the queue.", added))
		}
	}
}

func search(ctx context.Context, mc *command.MessageContext, params []string) error {
	query := strings.Join(params, " ")

	res, err := mc.Deps.Catalog.Search(ctx, query, mc.Sender.AuthorName)
	if err != nil {
		return mc.Reply(describeError(query, err))
	}
	return mc.Reply(fmt.Sprintf("%q has been added to the queue.", res.Track.Title))
}

// describeError renders a resolution failure for chat.
func describeError(subject string, err error) string {
	var apiErr *youtube.APIError
	switch {
	case errors.As(err, &apiErr):
		return fmt.Sprintf("An error has occurred: %s - %s", apiErr.Message, apiErr.Reason)
	case errors.Is(err, youtube.ErrNoResults):
		return "No videos found matching the search criteria."
	case errors.Is(err, catalog.ErrEmptyPlaylist):
		return "No videos found within playlist."
	case errors.Is(err, jobmgr.ErrJobRunning):
		return "That playlist is already being imported."
	case errors.Is(err, youtube.ErrNotFound), errors.Is(err, youtube.ErrUnplayable):
		return fmt.Sprintf("The requested video (%s) does not exist or cannot be played.", subject)
	default:
		return "An error has occurred: " + err.Error()
	}
}

func showQueue(ctx context.Context, mc *command.MessageContext, _ []string) error {
	items := mc.Deps.Player.Queue()
	if len(items) == 0 {
		return mc.Reply("the queue is empty.")
	}

	lines := make([]string, len(items))
	for i, t := range items {
		lines[i] = fmt.Sprintf("%d. %q (requested by %s) [%s]", i+1, t.Title, t.RequestedBy, music.FormatDuration(t.DurationSeconds))
	}
	return mc.Reply(joinLimited("", lines))
}

// joinLimited puts header and each line on its own line, stopping before
// the text would exceed maxMessageLength.
func joinLimited(header string, lines []string) string {
	var sb strings.Builder
	sb.WriteString(header)
	for i, line := range lines {
		if sb.Len()+1+len(line) > maxMessageLength {
			fmt.Fprintf(&sb, "\n...and %d more", len(lines)-i)
			break
		}
		sb.WriteString("\n")
		sb.WriteString(line)
	}
	return sb.String()
}

func clearQueue(ctx context.Context, mc *command.MessageContext, _ []string) error {
	mc.Deps.Catalog.CancelImports()
	mc.Deps.Player.Clear()
	return mc.Reply("Queue has been cleared!")
}

func remove(ctx context.Context, mc *command.MessageContext, params []string) error {
	arg := params[0]
	n := mc.Deps.Player.QueueLen()

	if n == 0 {
		return mc.Reply("The queue is empty")
	}

	var (
		removed music.Track
		err     error
		index   int
	)
	if strings.EqualFold(arg, "last") {
		index = n
		removed, err = mc.Deps.Player.RemoveLast()
	} else {
		index, err = strconv.Atoi(arg)
		if err != nil {
			return mc.Reply(fmt.Sprintf("Argument '%s' is not a valid index.", arg))
		}
		removed, err = mc.Deps.Player.RemoveAt(index)
	}

	if errors.Is(err, queue.ErrIndexOutOfRange) {
		return mc.Reply(fmt.Sprintf("Cannot remove request #%d from the queue (there are only %d requests currently)", index, mc.Deps.Player.QueueLen()))
	}
	if err != nil {
		return err
	}
	return mc.Reply(fmt.Sprintf("Request %q was removed from the queue.", removed.Title))
}

func savePlaylist(ctx context.Context, mc *command.MessageContext, params []string) error {
	entry := params[0]
	if err := mc.Deps.AutoPlay.Append(entry); err != nil {
		return mc.Reply("Error: Unable to save to the auto-play list")
	}
	return mc.Reply(fmt.Sprintf("%s saved to the auto-play list.", entry))
}
