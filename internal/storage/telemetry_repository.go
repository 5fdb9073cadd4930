package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ad/tonblast-bot/internal/domain"
)

// TelemetryRepository appends telemetry events to SQLite
type TelemetryRepository struct {
	queue *DBQueue
}

// NewTelemetryRepository creates a new TelemetryRepository
func NewTelemetryRepository(queue *DBQueue) *TelemetryRepository {
	return &TelemetryRepository{queue: queue}
}

// Append stores one event. Events are never updated.
func (r *TelemetryRepository) Append(ctx context.Context, event *domain.TelemetryEvent) error {
	if event == nil {
		return fmt.Errorf("nil telemetry event")
	}

	data := "null"
	if len(event.Data) > 0 {
		data = string(event.Data)
	}

	return r.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO telemetry_events (id, user_id, kind, data_json, received_at)
			 VALUES (?, ?, ?, ?, ?)`,
			event.ID, event.UserID, string(event.Kind), data, event.ReceivedAt.UTC(),
		)
		return err
	})
}
