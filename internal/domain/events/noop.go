package events

import "context"

// NoopPublisher discards events. Used where event delivery is not wired.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) error { return nil }

// CapturePublisher records published events in memory for tests.
type CapturePublisher struct {
	Events []Event
}

func (c *CapturePublisher) Publish(ctx context.Context, event Event) error {
	c.Events = append(c.Events, event)
	return nil
}

// ByType returns captured events matching the given type.
func (c *CapturePublisher) ByType(eventType string) []Event {
	var out []Event
	for _, e := range c.Events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}
