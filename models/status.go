package models

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDelivery OrderType = "delivery"
)

// Status is the kitchen-workflow state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// PaymentStatus is the settlement state of an order, independent of Status.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// statusEdges is the full set of legal forward transitions. Status never
// moves backward, never skips pending -> completed, and an order can only
// be rejected before the kitchen starts preparing it.
var statusEdges = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusRejected},
	StatusProcessing: {StatusCompleted},
}

// CanTransition validates a requested status edge. It returns nil for a
// legal edge and an *IllegalTransitionError otherwise. Self-edges are not
// legal: repeating a transition the cache already shows is a caller bug,
// not idempotence.
func CanTransition(from, to Status) error {
	for _, next := range statusEdges[from] {
		if next == to {
			return nil
		}
	}
	return &IllegalTransitionError{From: from, To: to}
}

// NextStatus returns the single forward preparation step for a status, used
// by the dashboard "advance" action. Rejection is a separate explicit edge.
func NextStatus(from Status) (Status, bool) {
	switch from {
	case StatusPending:
		return StatusProcessing, true
	case StatusProcessing:
		return StatusCompleted, true
	}
	return from, false
}

// PaymentChanges reports whether a requested payment status actually moves
// the flag. unpaid -> paid is the only real edge; paid -> paid and
// paid -> unpaid are idempotent no-ops, never errors.
func PaymentChanges(from, to PaymentStatus) bool {
	return from == PaymentUnpaid && to == PaymentPaid
}
