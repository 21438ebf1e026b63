package order

import "strings"

// Status is an order lifecycle state.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusConfirmed      Status = "CONFIRMED"
	StatusPreparing      Status = "PREPARING"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

var statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

// transitions lists the legal targets for every status. Terminal statuses
// have none, and an order in the courier's hands can no longer be cancelled.
var transitions = map[Status][]Status{
	StatusPending:        statuses,
	StatusConfirmed:      statuses,
	StatusPreparing:      statuses,
	StatusOutForDelivery: {StatusPending, StatusConfirmed, StatusPreparing, StatusOutForDelivery, StatusDelivered},
	StatusDelivered:      nil,
	StatusCancelled:      nil,
}

// Statuses returns every status in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range statuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// Terminal reports whether no transition out of s is allowed.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order in status from may move to to.
func CanTransition(from, to Status) bool {
	for _, st := range transitions[from] {
		if st == to {
			return true
		}
	}
	return false
}
