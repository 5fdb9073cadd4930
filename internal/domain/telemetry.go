package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TelemetryKind names a game telemetry event
type TelemetryKind string

const (
	TelemetryGameCompleted       TelemetryKind = "game_completed"
	TelemetryPremiumPurchased    TelemetryKind = "premium_purchased"
	TelemetryWithdrawalRequested TelemetryKind = "withdrawal_requested"
)

// IsKnown reports whether the kind is one the sink accepts
func (k TelemetryKind) IsKnown() bool {
	switch k {
	case TelemetryGameCompleted, TelemetryPremiumPurchased, TelemetryWithdrawalRequested:
		return true
	default:
		return false
	}
}

// TelemetryEvent is a single write-only telemetry record
type TelemetryEvent struct {
	ID         string
	UserID     string
	Kind       TelemetryKind
	Data       json.RawMessage
	ReceivedAt time.Time
}

// TelemetryJournal persists accepted telemetry events. There is no read path.
type TelemetryJournal interface {
	Append(ctx context.Context, event *TelemetryEvent) error
}

// TelemetrySink accepts game telemetry and writes it to the log stream
// and, when configured, to a journal
type TelemetrySink struct {
	journal TelemetryJournal
	logger  Logger
	now     func() time.Time
}

// NewTelemetrySink creates a sink. journal may be nil.
func NewTelemetrySink(journal TelemetryJournal, logger Logger) *TelemetrySink {
	return &TelemetrySink{
		journal: journal,
		logger:  logger,
		now:     time.Now,
	}
}

// Record writes a telemetry event. Unknown kinds are logged and ignored;
// the returned bool reports whether the kind was recognized.
func (s *TelemetrySink) Record(ctx context.Context, userID string, kind TelemetryKind, data json.RawMessage) (bool, error) {
	if !kind.IsKnown() {
		s.logger.Warn("unknown stat action", "action", string(kind), "user_id", userID)
		return false, nil
	}

	event := &TelemetryEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		Kind:       kind,
		Data:       data,
		ReceivedAt: s.now().UTC(),
	}

	switch kind {
	case TelemetryGameCompleted:
		s.logger.Info("game completed", "user_id", userID, "data", string(data), "telemetry_id", event.ID)
	case TelemetryPremiumPurchased:
		s.logger.Info("premium purchased", "user_id", userID, "telemetry_id", event.ID)
	case TelemetryWithdrawalRequested:
		s.logger.Info("withdrawal requested", "user_id", userID, "data", string(data), "telemetry_id", event.ID)
	}

	if s.journal == nil {
		return true, nil
	}

	if err := s.journal.Append(ctx, event); err != nil {
		s.logger.Error("failed to append telemetry event", "telemetry_id", event.ID, "kind", string(kind), "error", err)
		return true, fmt.Errorf("append telemetry event: %w", err)
	}

	return true, nil
}
