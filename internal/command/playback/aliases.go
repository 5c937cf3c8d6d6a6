package playback

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"discord-music-bot/internal/command"
	"discord-music-bot/internal/storage"
)

func listAliases(ctx context.Context, mc *command.MessageContext, _ []string) error {
	table := mc.Deps.Aliases.Aliases()
	names := lo.Keys(table)
	sort.Strings(names)

	lines := lo.Map(names, func(name string, _ int) string {
		return name + " -> " + table[name]
	})
	return mc.Reply(joinLimited("Current aliases:", lines))
}

func setAlias(ctx context.Context, mc *command.MessageContext, params []string) error {
	name := strings.ToLower(params[0])
	target := params[1]

	if err := mc.Deps.Aliases.SetAlias(name, target); err != nil {
		return fmt.Errorf("set alias %s: %w", name, err)
	}
	return mc.Reply(fmt.Sprintf("Alias %s -> %s set successfully.", name, target))
}

func deleteAlias(ctx context.Context, mc *command.MessageContext, params []string) error {
	name := strings.ToLower(params[0])

	err := mc.Deps.Aliases.DeleteAlias(name)
	switch {
	case errors.Is(err, storage.ErrAliasNotFound):
		return mc.Reply(fmt.Sprintf("Alias %s does not exist", name))
	case err != nil:
		return fmt.Errorf("delete alias %s: %w", name, err)
	}
	return mc.Reply(fmt.Sprintf("Alias %q deleted successfully.", name))
}

// substituteAlias returns the alias target for s, or s itself.
func substituteAlias(mc *command.MessageContext, s string) string {
	if target, ok := mc.Deps.Aliases.Lookup(s); ok {
		return target
	}
	return s
}
