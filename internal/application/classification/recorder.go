package classification

import (
	"context"
	"time"

	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

// ConditionClassifiedEvent announces a classification outcome to downstream
// consumers.
type ConditionClassifiedEvent struct {
	ConditionID  string                    `json:"condition_id"`
	TenderID     string                    `json:"tender_id"`
	Status       condition.ConditionStatus `json:"status"`
	ClassifiedAt time.Time                 `json:"classified_at"`
}

// EventPublisher delivers classification events.  The Kafka producer under
// internal/infrastructure/messaging implements it.
type EventPublisher interface {
	PublishConditionClassified(ctx context.Context, event ConditionClassifiedEvent) error
}

type statusRecorder struct {
	repo   condition.Repository
	events EventPublisher
	logger logging.Logger
	now    func() time.Time
}

// NewRecorder builds a Recorder that writes the status to the condition
// store and then publishes a classification event.  events may be nil when
// no broker is configured.
func NewRecorder(repo condition.Repository, events EventPublisher, logger logging.Logger) Recorder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &statusRecorder{
		repo:   repo,
		events: events,
		logger: logger.Named("classification.recorder"),
		now:    time.Now,
	}
}

func (r *statusRecorder) Record(ctx context.Context, cond *condition.GateCondition, res *Result) error {
	if err := r.repo.UpdateStatus(ctx, cond.ID, res.Status); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "updating condition status")
	}

	if r.events == nil {
		return nil
	}
	event := ConditionClassifiedEvent{
		ConditionID:  cond.ID.String(),
		TenderID:     cond.TenderID.String(),
		Status:       res.Status,
		ClassifiedAt: r.now(),
	}
	if err := r.events.PublishConditionClassified(ctx, event); err != nil {
		// The status write already succeeded; a lost event is logged and
		// surfaced, not rolled back.
		r.logger.Error("publishing classification event",
			logging.String("condition_id", event.ConditionID),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeExternalService, "publishing classification event")
	}
	return nil
}
