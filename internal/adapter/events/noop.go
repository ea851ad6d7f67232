package events

import "context"

// NoopPublisher discards events. Used when NATS_URL is not set.
type NoopPublisher struct{}

func (p *NoopPublisher) Publish(_ context.Context, _ string, _ any) error { return nil }
func (p *NoopPublisher) Close() error                                     { return nil }
