package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallerFrom(t *testing.T) {
	assert.Equal(t, Caller{}, CallerFrom(context.Background()))

	want := Caller{Channel: ChannelWeb, Address: "203.0.113.7", Agent: "curl/8.5"}
	ctx := WithCaller(context.Background(), want)
	assert.Equal(t, want, CallerFrom(ctx))

	inner := WithCaller(ctx, Caller{Channel: ChannelCLI})
	assert.Equal(t, Caller{Channel: ChannelCLI}, CallerFrom(inner))
	assert.Equal(t, want, CallerFrom(ctx))
}

func TestAuditTrail_RecordsCaller(t *testing.T) {
	trail := NewAuditTrail(4)
	ctx := WithCaller(context.Background(), Caller{Channel: ChannelWeb, Address: "203.0.113.7", Agent: "curl/8.5"})

	entry := trail.Record(ctx, AuditLogParams{Action: ActionEdit, Target: "day 1"})
	assert.Equal(t, ChannelWeb, entry.Channel)
	assert.Equal(t, "203.0.113.7", entry.IPAddress)
	assert.Equal(t, "curl/8.5", entry.UserAgent)

	anon := trail.Record(context.Background(), AuditLogParams{Action: ActionExport})
	assert.Empty(t, anon.Channel)
	assert.Empty(t, anon.IPAddress)
}
