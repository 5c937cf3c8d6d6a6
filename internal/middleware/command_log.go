package middleware

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"discord-music-bot/internal/command"
	"discord-music-bot/internal/storage"
	"discord-music-bot/pkg/cmd"
)

// History is where executed and refused commands are recorded.
type History interface {
	AppendCommandToHistory(record storage.CommandHistoryRecord) error
}

// WithCommandLogger records every command it wraps. Apply it inside the
// gates so refused commands are left to the Auditor.
func WithCommandLogger(history History) cmd.Middleware {
	logger := log.With().Str("component", "commands").Logger()

	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)

			mc := command.FromInvocation(inv)
			if mc == nil {
				return err
			}

			ev := logger.Info()
			if err != nil {
				ev = logger.Warn().Err(err)
			}
			ev.Str("verb", c.Name()).
				Strs("params", inv.Args).
				Str("user_id", mc.Sender.AuthorID).
				Str("user", mc.Sender.AuthorName).
				Msg("Command executed")

			if history != nil {
				record := storage.CommandHistoryRecord{
					ChannelID: mc.Sender.ChannelID,
					UserID:    mc.Sender.AuthorID,
					Username:  mc.Sender.AuthorName,
					Command:   c.Name(),
					Params:    inv.Args,
				}
				if e := history.AppendCommandToHistory(record); e != nil {
					logger.Warn().Err(e).Str("verb", c.Name()).Msg("Failed to record command")
				}
			}
			return err
		})
	}
}

// HistoryAuditor writes refusals to the audit log and the history file.
type HistoryAuditor struct {
	history History
	logger  zerolog.Logger
}

func NewHistoryAuditor(history History) *HistoryAuditor {
	return &HistoryAuditor{
		history: history,
		logger:  log.With().Str("component", "audit").Bool("audit", true).Logger(),
	}
}

func (a *HistoryAuditor) Audit(sender command.Sender, verb, reason string) {
	a.logger.Warn().
		Str("user_id", sender.AuthorID).
		Str("user", sender.AuthorName).
		Str("channel_id", sender.ChannelID).
		Str("verb", verb).
		Str("reason", reason).
		Msg("Refused admin command")

	if a.history == nil {
		return
	}
	err := a.history.AppendCommandToHistory(storage.CommandHistoryRecord{
		ChannelID: sender.ChannelID,
		UserID:    sender.AuthorID,
		Username:  sender.AuthorName,
		Command:   verb,
		Denied:    true,
		Reason:    reason,
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to persist audit entry")
	}
}
