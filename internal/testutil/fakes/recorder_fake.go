package fakes

import (
	"context"
	"sync"
	"time"

	"github.com/smswithoutborders/reliability-store/internal/models"
	"github.com/smswithoutborders/reliability-store/internal/storage"
)

// FakeEventRecorder is an in-memory Recorder with the same validation and
// ordering semantics as the real event store.
type FakeEventRecorder struct {
	mu     sync.Mutex
	nextID int64
	events []models.ReliabilityEvent
}

func NewFakeEventRecorder() *FakeEventRecorder {
	return &FakeEventRecorder{nextID: 1}
}

func (f *FakeEventRecorder) Record(_ context.Context, clientID string, kind models.Kind, detail string) (*models.ReliabilityEvent, error) {
	if clientID == "" {
		return nil, storage.NewValidationError("client_id must not be empty")
	}
	if !kind.Valid() {
		return nil, storage.NewValidationError("unrecognized event kind %q", string(kind))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	event := models.ReliabilityEvent{
		ID:        f.nextID,
		ClientID:  clientID,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	if detail != "" {
		d := detail
		event.Detail = &d
	}
	f.nextID++
	f.events = append(f.events, event)

	cpy := event
	return &cpy, nil
}

func (f *FakeEventRecorder) Query(_ context.Context, filter models.EventFilter) ([]models.ReliabilityEvent, error) {
	if !filter.Since.IsZero() && !filter.Until.IsZero() && filter.Until.Before(filter.Since) {
		return nil, storage.NewQueryError("filter end time precedes start time")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.ReliabilityEvent{}
	for _, ev := range f.events {
		if filter.ClientID != "" && ev.ClientID != filter.ClientID {
			continue
		}
		if filter.Kind != "" && ev.Kind != filter.Kind {
			continue
		}
		if !filter.Since.IsZero() && ev.CreatedAt.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && ev.CreatedAt.After(filter.Until) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (f *FakeEventRecorder) Count(ctx context.Context, filter models.EventFilter) (int64, error) {
	events, err := f.Query(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(events)), nil
}
