package playback

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"discord-music-bot/internal/command"
)

func setAvatar(ctx context.Context, mc *command.MessageContext, params []string) error {
	image := substituteAlias(mc, params[0])

	if err := mc.Deps.Transport.SetAvatar(ctx, image); err != nil {
		log.Warn().Err(err).Str("image", image).Msg("Error on setavatar command")
		return mc.Reply("Error: Unable to set avatar")
	}
	return mc.Reply("✔ Avatar set!")
}

func setUsername(ctx context.Context, mc *command.MessageContext, params []string) error {
	name := substituteAlias(mc, params[0])

	if err := mc.Deps.Transport.SetUsername(name); err != nil {
		log.Warn().Err(err).Str("username", name).Msg("Error on setusername command")
		return mc.Reply("Error: Unable to set username")
	}
	return mc.Reply("✔ Username set!")
}

func joinMe(ctx context.Context, mc *command.MessageContext, _ []string) error {
	if err := mc.Deps.Transport.JoinUser(mc.Sender.AuthorID); err != nil {
		return mc.Reply("Unable to join your voice channel: " + err.Error())
	}
	return mc.Reply("On my way!")
}

func home(ctx context.Context, mc *command.MessageContext, _ []string) error {
	if err := mc.Deps.Transport.JoinHome(); err != nil {
		return mc.Reply("Unable to go home: " + err.Error())
	}
	return mc.Reply("Back home.")
}

func purge(ctx context.Context, mc *command.MessageContext, _ []string) error {
	if mc.Sender.DirectMessage {
		return mc.Reply("Nothing to purge here.")
	}

	n, err := mc.Deps.Transport.Purge(mc.Sender.ChannelID, mc.Deps.PurgeLimit)
	if err != nil {
		return mc.Direct(fmt.Sprintf("Purge stopped after %d messages: %v", n, err))
	}
	return mc.Direct(fmt.Sprintf("Deleted %d messages.", n))
}

func pin(ctx context.Context, mc *command.MessageContext, params []string) error {
	if err := mc.Deps.Transport.Pin(mc.Sender.ChannelID, params[0]); err != nil {
		return mc.Reply("Error: Unable to pin message " + params[0])
	}
	return mc.Reply("📌 Message pinned.")
}

func unpin(ctx context.Context, mc *command.MessageContext, params []string) error {
	if err := mc.Deps.Transport.Unpin(mc.Sender.ChannelID, params[0]); err != nil {
		return mc.Reply("Error: Unable to unpin message " + params[0])
	}
	return mc.Reply("Message unpinned.")
}
