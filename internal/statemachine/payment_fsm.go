package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/fintera-coop/internal/models"
)

// Payment events
const (
	EventApprove = "approve"
	EventReject  = "reject"
)

// PaymentFSM wraps a contribution payment with its state machine
type PaymentFSM struct {
	payment *models.ContributionPayment
	fsm     *fsm.FSM
}

// NewPaymentFSM creates a new payment state machine
func NewPaymentFSM(payment *models.ContributionPayment) *PaymentFSM {
	pfsm := &PaymentFSM{
		payment: payment,
	}

	pfsm.fsm = fsm.NewFSM(
		payment.Status,
		fsm.Events{
			// approved and rejected are terminal
			{Name: EventApprove, Src: []string{models.PaymentStatusPending}, Dst: models.PaymentStatusApproved},
			{Name: EventReject, Src: []string{models.PaymentStatusPending}, Dst: models.PaymentStatusRejected},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Approve transitions payment to approved state. The store applies the
// same pending guard when it persists the decision.
func (p *PaymentFSM) Approve(ctx context.Context) error {
	if !p.payment.MayApprove() {
		return fmt.Errorf("payment cannot be approved in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, EventApprove); err != nil {
		return fmt.Errorf("failed to approve payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Reject transitions payment to rejected state
func (p *PaymentFSM) Reject(ctx context.Context) error {
	if !p.payment.MayReject() {
		return fmt.Errorf("payment cannot be rejected in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, EventReject); err != nil {
		return fmt.Errorf("failed to reject payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}
