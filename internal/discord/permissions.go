package discord

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

var ErrMissingPermission = errors.New("bot lacks the Manage Messages permission")

// checkManageMessages reports whether the bot may delete or pin other
// users' messages in channelID.
func (b *Bot) checkManageMessages(channelID string) error {
	perms, err := b.dg.UserChannelPermissions(b.dg.State.User.ID, channelID)
	if err != nil {
		return fmt.Errorf("failed to read channel permissions: %w", err)
	}
	if perms&discordgo.PermissionManageMessages == 0 {
		return ErrMissingPermission
	}
	return nil
}
