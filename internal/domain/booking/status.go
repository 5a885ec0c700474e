package booking

import (
	"fmt"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

type PaymentStatus string

const (
	PaymentPending        PaymentStatus = "pending"
	PaymentDepositPending PaymentStatus = "deposit_pending"
	PaymentDepositPaid    PaymentStatus = "deposit_paid"
	PaymentFullyPaid      PaymentStatus = "fully_paid"
	PaymentCancelled      PaymentStatus = "cancelled"
	PaymentRefunded       PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	MethodOnline PaymentMethod = "online"
	MethodInShop PaymentMethod = "in_shop"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case "", MethodOnline:
		return MethodOnline, true
	case MethodInShop:
		return MethodInShop, true
	}
	return "", false
}

// ===============================
// Transition table
// ===============================

type Operation string

const (
	OpConfirm    Operation = "confirm"
	OpReschedule Operation = "reschedule"
	OpCancel     Operation = "cancel"
	OpExpireHold Operation = "expire_hold"
	OpComplete   Operation = "complete"
	OpNoShow     Operation = "no_show"
)

// transitions is the only place where the legality of a status change is
// declared. Completed and cancelled bookings have no outgoing edges.
var transitions = map[Status]map[Operation]Status{
	StatusPending: {
		OpConfirm:    StatusConfirmed,
		OpReschedule: StatusPending,
		OpCancel:     StatusCancelled,
		OpExpireHold: StatusCancelled,
		OpComplete:   StatusCompleted,
		OpNoShow:     StatusNoShow,
	},
	StatusConfirmed: {
		OpReschedule: StatusConfirmed,
		OpCancel:     StatusCancelled,
		OpComplete:   StatusCompleted,
		OpNoShow:     StatusNoShow,
	},
	StatusNoShow: {
		OpReschedule: StatusNoShow,
		OpCancel:     StatusCancelled,
		OpComplete:   StatusCompleted,
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Transition returns the status reached by applying op to current, or a
// bad request error when the table has no such edge.
func Transition(current Status, op Operation) (Status, error) {
	next, ok := transitions[current][op]
	if !ok {
		return "", httperr.ErrBadRequest(
			"invalid_state",
			fmt.Sprintf("Cannot %s a booking with status %s.", op, current),
		)
	}
	return next, nil
}

func CanApply(current Status, op Operation) bool {
	_, ok := transitions[current][op]
	return ok
}

// IsTerminal reports whether no operation can leave s.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// BlocksSlot reports whether a booking in status s occupies its time range.
func BlocksSlot(s Status) bool {
	return s != StatusCancelled
}
