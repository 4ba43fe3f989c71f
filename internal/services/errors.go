package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a service failure for callers and transports
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindPermission ErrorKind = "permission"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindState      ErrorKind = "state"
)

// Error is a classified service error. A bare Error with no message matches
// any error of the same kind under errors.Is.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches kind sentinels such as ErrConflict
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == e.Kind
}

// Kind sentinels
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrPermission = &Error{Kind: KindPermission}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrState      = &Error{Kind: KindState}
)

// Specific failures
var (
	ErrAlreadySubscribed    = &Error{Kind: KindConflict, Message: "member is already subscribed to this plan"}
	ErrAmountOutOfRange     = &Error{Kind: KindValidation, Message: "amount is outside the plan's allowed range"}
	ErrPlanInactive         = &Error{Kind: KindState, Message: "plan is not accepting subscriptions"}
	ErrNotOwner             = &Error{Kind: KindPermission, Message: "subscription belongs to another member"}
	ErrSubscriptionInactive = &Error{Kind: KindState, Message: "subscription is not active"}
	ErrAlreadyPaid          = &Error{Kind: KindConflict, Message: "schedule is already paid"}
	ErrAlreadyProcessed     = &Error{Kind: KindConflict, Message: "payment has already been processed"}
	ErrMissingReason        = &Error{Kind: KindValidation, Message: "a rejection reason is required"}
	ErrInvalidTransition    = &Error{Kind: KindState, Message: "status transition is not allowed"}
	ErrAdminOnlyTransition  = &Error{Kind: KindState, Message: "only administrators can pause or resume subscriptions"}
	ErrFixedAmount          = &Error{Kind: KindState, Message: "amount cannot be changed on a fixed plan"}
	ErrBulkInProgress       = &Error{Kind: KindConflict, Message: "a bulk settlement is already running for this cohort"}
)

func validationError(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(entity string, id uint) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

func permissionError(required string) error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf("missing permission %s", required)}
}

// KindOf returns the kind of a service error, empty for unclassified errors
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
