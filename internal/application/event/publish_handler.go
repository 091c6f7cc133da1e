package event

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/infrastructure/telemetry"
)

// PublishHandler runs delayed publish jobs
type PublishHandler struct {
	events    event.EventRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewPublishHandler creates the handler for the publish queue
func NewPublishHandler(events event.EventRepository, publisher shared.EventPublisher, logger *zap.Logger) *PublishHandler {
	return &PublishHandler{events: events, publisher: publisher, logger: logger}
}

// Handle switches a draft event to PUBLISHED. Cancelled, already published
// and deleted events are skipped without error so the job is not retried.
// The switch is conditional on the stored status, so a cancellation that
// lands between the read and the write wins.
func (h *PublishHandler) Handle(ctx context.Context, eventID uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "event", "publish", telemetry.AttrEventID.String(eventID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	e, err := h.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("publish job for missing event", zap.String("event_id", eventID.String()))
			return nil
		}
		return err
	}
	if !e.Publish() {
		h.logger.Debug("publish job skipped",
			zap.String("event_id", eventID.String()), zap.String("status", string(e.Status)))
		return nil
	}
	switched, err := h.events.SetStatus(ctx, eventID, event.StatusPublished, event.StatusDraft)
	if err != nil {
		return err
	}
	if !switched {
		h.logger.Debug("publish job lost to a concurrent status change", zap.String("event_id", eventID.String()))
		return nil
	}
	h.logger.Info("event published", zap.String("event_id", eventID.String()))
	publishEvents(ctx, h.publisher, h.logger, e)
	return nil
}
