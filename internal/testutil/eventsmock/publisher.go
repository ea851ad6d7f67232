package eventsmock

import (
	"context"
	"sync"
)

type Published struct {
	Topic string
	Event any
}

// Publisher records published events. Err, when set, is returned from Publish.
type Publisher struct {
	mu     sync.Mutex
	events []Published
	Err    error
}

func (p *Publisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, Published{Topic: topic, Event: event})
	return nil
}

func (p *Publisher) Close() error { return nil }

func (p *Publisher) Events() []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Published, len(p.events))
	copy(out, p.events)
	return out
}
