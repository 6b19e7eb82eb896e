package core

import "context"

// Channels a mutation can arrive through.
const (
	ChannelWeb       = "web"
	ChannelCLI       = "cli"
	ChannelScheduler = "scheduler"
)

// Caller identifies who started an operation. The audit trail copies it onto
// every entry recorded under the same context.
type Caller struct {
	Channel string
	Address string // Client address after proxy headers were applied
	Agent   string
}

type callerKey struct{}

// WithCaller returns a copy of ctx carrying c.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored in ctx, or the zero Caller.
func CallerFrom(ctx context.Context) Caller {
	c, _ := ctx.Value(callerKey{}).(Caller)
	return c
}
