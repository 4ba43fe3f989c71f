package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/sjperalta/fintera-coop/internal/models"
)

// Subscription events
const (
	EventPause  = "pause"
	EventResume = "resume"
	EventCancel = "cancel"
)

// SubscriptionFSM wraps a subscription with its state machine
type SubscriptionFSM struct {
	subscription *models.ContributionSubscription
	fsm          *fsm.FSM
	now          func() time.Time
}

// NewSubscriptionFSM creates a new subscription state machine
func NewSubscriptionFSM(sub *models.ContributionSubscription) *SubscriptionFSM {
	sfsm := &SubscriptionFSM{
		subscription: sub,
		now:          time.Now,
	}

	sfsm.fsm = fsm.NewFSM(
		sub.Status,
		fsm.Events{
			{Name: EventPause, Src: []string{models.SubscriptionStatusActive}, Dst: models.SubscriptionStatusPaused},
			{Name: EventResume, Src: []string{models.SubscriptionStatusPaused}, Dst: models.SubscriptionStatusActive},
			// cancelled is terminal; subscriptions are never deleted
			{Name: EventCancel, Src: []string{models.SubscriptionStatusActive, models.SubscriptionStatusPaused}, Dst: models.SubscriptionStatusCancelled},
		},
		fsm.Callbacks{
			"enter_" + models.SubscriptionStatusPaused: func(_ context.Context, e *fsm.Event) {
				now := sfsm.now()
				sfsm.subscription.PausedAt = &now
			},
			"enter_" + models.SubscriptionStatusActive: func(_ context.Context, e *fsm.Event) {
				sfsm.subscription.PausedAt = nil
			},
			"enter_" + models.SubscriptionStatusCancelled: func(_ context.Context, e *fsm.Event) {
				now := sfsm.now()
				sfsm.subscription.CancelledAt = &now
			},
		},
	)

	return sfsm
}

// EventFor maps a requested target status to the event that reaches it
func EventFor(targetStatus string) (string, error) {
	switch targetStatus {
	case models.SubscriptionStatusPaused:
		return EventPause, nil
	case models.SubscriptionStatusActive:
		return EventResume, nil
	case models.SubscriptionStatusCancelled:
		return EventCancel, nil
	default:
		return "", fmt.Errorf("unknown subscription status: %s", targetStatus)
	}
}

// Transition moves the subscription to targetStatus
func (s *SubscriptionFSM) Transition(ctx context.Context, targetStatus string) error {
	event, err := EventFor(targetStatus)
	if err != nil {
		return err
	}

	if !s.allowed(event) || !s.fsm.Can(event) {
		return fmt.Errorf("subscription cannot move from %s to %s", s.subscription.Status, targetStatus)
	}

	if err := s.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("failed to %s subscription: %w", event, err)
	}

	s.subscription.Status = s.fsm.Current()
	return nil
}

func (s *SubscriptionFSM) allowed(event string) bool {
	switch event {
	case EventPause:
		return s.subscription.MayPause()
	case EventResume:
		return s.subscription.MayResume()
	case EventCancel:
		return s.subscription.MayCancel()
	}
	return false
}
