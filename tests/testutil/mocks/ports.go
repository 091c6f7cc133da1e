package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/t1tandr/uevent/internal/domain/shared"
)

// ObjectStorage mocks shared.ObjectStorage
type ObjectStorage struct{ mock.Mock }

func (m *ObjectStorage) Upload(ctx context.Context, folder, filename string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, folder, filename, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *ObjectStorage) DeleteByURL(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

// EventPublisher records published domain events
type EventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	Err    error
}

func (p *EventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.Err
}

// Published returns the recorded events in publish order
func (p *EventPublisher) Published() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Types returns the event types of the recorded events
func (p *EventPublisher) Types() []string {
	events := p.Published()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

var (
	_ shared.ObjectStorage  = (*ObjectStorage)(nil)
	_ shared.EventPublisher = (*EventPublisher)(nil)
)
