package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smswithoutborders/reliability-store/internal/logging"
	"github.com/smswithoutborders/reliability-store/internal/models"
	"github.com/smswithoutborders/reliability-store/pkg/clock"
)

// EventStore is the persistence surface the reliability harness records
// against. It is the only interface the rest of the system uses; nothing
// outside this package depends on which engine is active.
type EventStore struct {
	provider *Provider
	logger   logging.Logger
	clock    clock.Clock
}

// NewEventStore creates an event store over an engine-specific provider.
func NewEventStore(provider *Provider, logger logging.Logger) *EventStore {
	return NewEventStoreWithClock(provider, logger, clock.RealClock{})
}

// NewEventStoreWithClock fixes the timestamp source for deterministic tests.
func NewEventStoreWithClock(provider *Provider, logger logging.Logger, clk clock.Clock) *EventStore {
	return &EventStore{provider: provider, logger: logger, clock: clk}
}

// Record validates and durably inserts one reliability event, returning it
// with the engine-assigned identifier and its creation timestamp. The insert
// is a single statement, so it commits atomically or not at all.
func (s *EventStore) Record(ctx context.Context, clientID string, kind models.Kind, detail string) (*models.ReliabilityEvent, error) {
	if clientID == "" {
		return nil, NewValidationError("client_id must not be empty")
	}
	if !kind.Valid() {
		return nil, NewValidationError("unrecognized event kind %q, must be one of %v", string(kind), models.Kinds())
	}

	db, err := s.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.provider.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	event := &models.ReliabilityEvent{
		ClientID:  clientID,
		Kind:      kind,
		CreatedAt: s.clock.Now().UTC(),
	}
	if detail != "" {
		event.Detail = &detail
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO reliability_events (client_id, kind, detail, created_at) VALUES (?, ?, ?, ?)`,
		event.ClientID,
		event.Kind,
		event.Detail,
		event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record reliability event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read assigned event id: %w", err)
	}
	event.ID = id

	s.logger.Debug("reliability event recorded",
		zap.Int64("event_id", id),
		zap.String("client_id", clientID),
		zap.String("kind", string(kind)))
	return event, nil
}

// Query returns events matching the filter ordered by ascending identifier,
// which is insertion order. The result is a finite snapshot; rerun the query
// to observe later inserts.
func (s *EventStore) Query(ctx context.Context, filter models.EventFilter) ([]models.ReliabilityEvent, error) {
	whereClause, args, err := buildFilter(filter)
	if err != nil {
		return nil, err
	}

	db, err := s.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.provider.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, client_id, kind, detail, created_at
		FROM reliability_events
		%s
		ORDER BY id ASC
	`, whereClause)

	events := []models.ReliabilityEvent{}
	if err := db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query reliability events: %w", err)
	}
	return events, nil
}

// Count reports the cardinality of Query(filter) without materializing rows.
func (s *EventStore) Count(ctx context.Context, filter models.EventFilter) (int64, error) {
	whereClause, args, err := buildFilter(filter)
	if err != nil {
		return 0, err
	}

	db, err := s.provider.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.provider.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	var total int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM reliability_events %s", whereClause)
	if err := db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count reliability events: %w", err)
	}
	return total, nil
}

// buildFilter translates an EventFilter into a WHERE clause and its args.
func buildFilter(filter models.EventFilter) (string, []interface{}, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return "", nil, NewQueryError("unrecognized event kind %q in filter", string(filter.Kind))
	}
	if !filter.Since.IsZero() && !filter.Until.IsZero() && filter.Until.Before(filter.Since) {
		return "", nil, NewQueryError("filter end time %s precedes start time %s",
			filter.Until.Format(time.RFC3339),
			filter.Since.Format(time.RFC3339))
	}

	whereClauses := []string{}
	args := []interface{}{}

	if filter.ClientID != "" {
		whereClauses = append(whereClauses, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.Kind != "" {
		whereClauses = append(whereClauses, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if !filter.Since.IsZero() {
		whereClauses = append(whereClauses, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}
	if !filter.Until.IsZero() {
		whereClauses = append(whereClauses, "created_at <= ?")
		args = append(args, filter.Until.UTC())
	}

	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauses, " AND ")
	}
	return whereClause, args, nil
}
