package playback

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"discord-music-bot/internal/command"
	"discord-music-bot/pkg/cmd"
)

func listCommands(ctx context.Context, mc *command.MessageContext, _ []string) error {
	lines := lo.Map(mc.Deps.Registry.GetAll(), func(c cmd.Command, _ int) string {
		return command.Usage(mc.Deps.Prefix, c) + ": " + c.Description()
	})
	return mc.Reply("Available commands:\n" + strings.Join(lines, "\n"))
}
