package events

import "context"

// MultiPublisher fans one event out to several publishers. Errors are
// collected best-effort: every publisher gets the event, the first error
// is returned.
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher combines publishers; nil entries are skipped.
func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	var active []Publisher
	for _, p := range publishers {
		if p != nil {
			active = append(active, p)
		}
	}
	return &MultiPublisher{publishers: active}
}

func (m *MultiPublisher) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
