// Package cmd is a transport-agnostic command core: a command has a name,
// a description and Run(ctx, invocation). Chat adapters decide how text
// turns into an Invocation and how replies are delivered.
package cmd

import "context"

// Invocation carries the parsed input of one command call. Data is the
// adapter's own context (sender, transport handles, ...).
type Invocation struct {
	Verb string
	Args []string
	Data any
}

// Command is identity plus execution. Permissions and usage metadata live
// in adapters and middleware.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
