package playback

import (
	"context"
	"errors"
	"fmt"

	"discord-music-bot/internal/command"
	"discord-music-bot/internal/music/player"
)

func stop(ctx context.Context, mc *command.MessageContext, _ []string) error {
	mc.Deps.Catalog.CancelImports()
	if err := mc.Deps.Player.Stop(); errors.Is(err, player.ErrAlreadyStopped) {
		return mc.Reply("Playback is already stopped!")
	}
	return mc.Reply("Stopping!")
}

func resume(ctx context.Context, mc *command.MessageContext, _ []string) error {
	if err := mc.Deps.Player.Resume(); errors.Is(err, player.ErrAlreadyRunning) {
		return mc.Reply("Playback is already running")
	}
	return mc.Reply("Resuming!")
}

func pause(ctx context.Context, mc *command.MessageContext, _ []string) error {
	switch err := mc.Deps.Player.Pause(); {
	case errors.Is(err, player.ErrNoTrackPlaying):
		return mc.Reply("There is nothing being played.")
	case errors.Is(err, player.ErrAlreadyPaused):
		return mc.Reply("Playback is already paused!")
	case err != nil:
		return err
	}
	return mc.Reply("Pausing!")
}

func skip(ctx context.Context, mc *command.MessageContext, _ []string) error {
	if _, err := mc.Deps.Player.Skip(); errors.Is(err, player.ErrNoTrackPlaying) {
		return mc.Reply("There is nothing being played.")
	}
	return mc.Reply("Skipping...")
}

func nowPlaying(ctx context.Context, mc *command.MessageContext, _ []string) error {
	t, ok := mc.Deps.Player.NowPlaying()
	if !ok {
		return mc.Reply("Now playing: nothing!")
	}

	response := fmt.Sprintf("Now playing: %q (requested by %s)", t.Title, t.RequestedBy)
	if mc.Deps.Player.State() == player.StatePaused {
		response += " " + player.StatePaused.StringEmoji()
	}
	return mc.Reply(response)
}

func setNowPlaying(ctx context.Context, mc *command.MessageContext, params []string) error {
	on, ok := onOff(params[0])
	if !ok {
		return mc.Reply("Sorry?")
	}

	mc.Deps.Player.SetAnnounce(on)
	if on {
		return mc.Reply("Will announce song names in chat")
	}
	return mc.Reply("Will no longer announce song names in chat")
}

func setAutoPlay(ctx context.Context, mc *command.MessageContext, params []string) error {
	on, ok := onOff(params[0])
	if !ok {
		return mc.Reply("Sorry?")
	}

	mc.Deps.Player.SetAutoPlay(on)
	if on {
		return mc.Reply("Auto-play enabled, the auto-play list fills in when the queue runs dry")
	}
	return mc.Reply("Auto-play disabled")
}
