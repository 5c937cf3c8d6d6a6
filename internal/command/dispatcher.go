package command

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"discord-music-bot/pkg/cmd"
)

// Dispatcher turns command text into registry calls.
type Dispatcher struct {
	deps   *Deps
	logger zerolog.Logger
}

func NewDispatcher(deps *Deps) *Dispatcher {
	return &Dispatcher{
		deps:   deps,
		logger: log.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch runs the command in text (prefix already stripped). Unknown
// verbs return nil. A panicking handler is recovered and reported as an
// error.
func (d *Dispatcher) Dispatch(ctx context.Context, text string, sender Sender) (err error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	verb, params := fields[0], fields[1:]

	c := d.deps.Registry.Get(verb)
	if c == nil {
		d.logger.Debug().Str("verb", verb).Str("user", sender.AuthorName).Msg("Ignoring unknown command")
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().
				Str("verb", c.Name()).
				Str("user", sender.AuthorName).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Command panicked")
			err = fmt.Errorf("command %s panicked: %v", c.Name(), r)
		}
	}()

	inv := &cmd.Invocation{
		Verb: strings.ToLower(verb),
		Args: params,
		Data: &MessageContext{Sender: sender, Deps: d.deps},
	}
	return c.Run(ctx, inv)
}
