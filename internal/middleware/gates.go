package middleware

import (
	"context"
	"errors"
	"fmt"

	"discord-music-bot/internal/command"
	"discord-music-bot/pkg/cmd"
)

var (
	ErrDirectMessageOnly      = errors.New("command is only available in direct messages")
	ErrUnauthorized           = errors.New("sender is not an admin")
	ErrInsufficientParameters = errors.New("insufficient parameters")
)

// AdminChecker is the static admin allowlist.
type AdminChecker interface {
	IsAdmin(userID string) bool
}

// Auditor records refused admin commands.
type Auditor interface {
	Audit(sender command.Sender, verb, reason string)
}

// Gates returns the rejection middlewares in the order they must run:
// direct-message check, then admin check, then parameter count.
func Gates(admins AdminChecker, audit Auditor) []cmd.Middleware {
	return []cmd.Middleware{
		WithDirectMessageOnly(),
		WithAdminOnly(admins, audit),
		WithParameterCheck(),
	}
}

// reject deletes the invoking message and tells the sender privately.
func reject(mc *command.MessageContext, text string) {
	mc.DeleteInvocation()
	_ = mc.Direct(text)
}

// WithDirectMessageOnly refuses DM-only commands sent to a channel.
func WithDirectMessageOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			mc := command.FromInvocation(inv)
			meta, ok := cmd.As[command.ChatMeta](c)
			if mc == nil || !ok || !meta.RequireDM() || mc.Sender.DirectMessage {
				return c.Run(ctx, inv)
			}

			reject(mc, fmt.Sprintf("The %s%s command only works in a direct message.", mc.Deps.Prefix, c.Name()))
			return fmt.Errorf("%s: %w", c.Name(), ErrDirectMessageOnly)
		})
	}
}

// WithAdminOnly refuses admin commands from anyone outside the allowlist
// and writes one audit entry per refusal.
func WithAdminOnly(admins AdminChecker, audit Auditor) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			mc := command.FromInvocation(inv)
			meta, ok := cmd.As[command.ChatMeta](c)
			if mc == nil || !ok || !meta.RequireAdmin() {
				return c.Run(ctx, inv)
			}
			if admins != nil && admins.IsAdmin(mc.Sender.AuthorID) {
				return c.Run(ctx, inv)
			}

			if audit != nil {
				audit.Audit(mc.Sender, c.Name(), ErrUnauthorized.Error())
			}
			reject(mc, fmt.Sprintf("You are not allowed to use %s%s.", mc.Deps.Prefix, c.Name()))
			return fmt.Errorf("%s: %w", c.Name(), ErrUnauthorized)
		})
	}
}

// WithParameterCheck refuses calls with fewer arguments than declared.
func WithParameterCheck() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			mc := command.FromInvocation(inv)
			meta, ok := cmd.As[command.ChatMeta](c)
			if mc == nil || !ok || len(inv.Args) >= len(meta.Parameters()) {
				return c.Run(ctx, inv)
			}

			reject(mc, "Insufficient parameters! Usage: "+command.Usage(mc.Deps.Prefix, c))
			return fmt.Errorf("%s: %w", c.Name(), ErrInsufficientParameters)
		})
	}
}
