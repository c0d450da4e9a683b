package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// LoggingPublisher writes events to the log only. It is the default sink
// for local development and tests.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	p.logger.InfoContext(ctx, "published event", "event_type", eventType, "payload", string(payload))
	return nil
}

// Event is one published domain event as delivered to subscribers.
type Event struct {
	Type       string
	Payload    []byte
	OccurredAt time.Time
}

// ChannelPublisher fans events out to in-process subscribers over bounded
// channels. Delivery is best-effort: a subscriber that cannot keep up has
// events dropped with a warning rather than blocking the publishing flow.
type ChannelPublisher struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers []chan Event
	buffer      int
	closed      bool
}

func NewChannelPublisher(logger *slog.Logger, buffer int) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelPublisher{logger: logger, buffer: buffer}
}

// Subscribe registers a new subscriber channel. The returned channel is
// closed when the publisher shuts down.
func (p *ChannelPublisher) Subscribe() <-chan Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan Event, p.buffer)
	if p.closed {
		close(ch)
		return ch
	}
	p.subscribers = append(p.subscribers, ch)
	return ch
}

func (p *ChannelPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	event := Event{
		Type:       eventType,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil
	}
	for _, ch := range p.subscribers {
		select {
		case ch <- event:
		default:
			p.logger.WarnContext(ctx, "event dropped for slow subscriber",
				"module", "events.publisher",
				"layer", "adapter",
				"operation", "publish_event",
				"outcome", "warning",
				"event_type", eventType,
			)
		}
	}
	return nil
}

// Close stops delivery and closes all subscriber channels.
func (p *ChannelPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, ch := range p.subscribers {
		close(ch)
	}
	p.subscribers = nil
}
