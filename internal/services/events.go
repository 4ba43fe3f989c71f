package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sjperalta/fintera-coop/internal/jobs"
	"github.com/sjperalta/fintera-coop/pkg/logger"
)

// EventType names something that happened once its unit of work committed
type EventType string

const (
	EventPlanCreated               EventType = "PLAN_CREATED"
	EventPlanUpdated               EventType = "PLAN_UPDATED"
	EventSubscriptionCreated       EventType = "SUBSCRIPTION_CREATED"
	EventSubscriptionStatusChanged EventType = "SUBSCRIPTION_STATUS_CHANGED"
	EventSubscriptionAmountChanged EventType = "SUBSCRIPTION_AMOUNT_CHANGED"
	EventPaymentSubmitted          EventType = "PAYMENT_SUBMITTED"
	EventPaymentApproved           EventType = "PAYMENT_APPROVED"
	EventPaymentRejected           EventType = "PAYMENT_REJECTED"
	EventScheduleSettled           EventType = "SCHEDULE_SETTLED"
	EventBulkSettled               EventType = "BULK_SETTLED"
	EventSchedulesExtended         EventType = "SCHEDULES_EXTENDED"
)

// Event is a post-commit record handed to audit and notification subscribers
type Event struct {
	Type          EventType
	ActorID       uint
	CooperativeID uint
	MemberID      uint
	SubjectID     uint
	Amount        float64
	Description   string
	Metadata      map[string]interface{}
	OccurredAt    time.Time
}

// EventSubscriber reacts to committed events
type EventSubscriber interface {
	Handle(ctx context.Context, event Event) error
}

// EventPublisher accepts committed events for delivery
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event)
}

// EventDispatcher fans events out to subscribers on the worker pool. With no
// worker, delivery happens inline.
type EventDispatcher struct {
	worker      *jobs.Worker
	subscribers []EventSubscriber
}

// NewEventDispatcher creates a dispatcher delivering to subscribers
func NewEventDispatcher(worker *jobs.Worker, subscribers ...EventSubscriber) *EventDispatcher {
	return &EventDispatcher{worker: worker, subscribers: subscribers}
}

// Subscribe registers another subscriber
func (d *EventDispatcher) Subscribe(s EventSubscriber) {
	d.subscribers = append(d.subscribers, s)
}

// Publish delivers each event to every subscriber. Delivery failures are
// logged and never reach the caller.
func (d *EventDispatcher) Publish(ctx context.Context, events ...Event) {
	for _, event := range events {
		if event.OccurredAt.IsZero() {
			event.OccurredAt = time.Now()
		}
		for _, sub := range d.subscribers {
			event, sub := event, sub
			job := func(ctx context.Context) error {
				if err := sub.Handle(ctx, event); err != nil {
					return fmt.Errorf("deliver %s: %w", event.Type, err)
				}
				return nil
			}
			if d.worker == nil {
				if err := job(context.WithoutCancel(ctx)); err != nil {
					logger.Warn("event delivery failed", "event", string(event.Type), logger.Err(err))
				}
				continue
			}
			d.worker.EnqueueAsync(job)
		}
	}
}

// discardPublisher drops events; used when a service is built without one
type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, ...Event) {}
