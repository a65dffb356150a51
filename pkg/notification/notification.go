package notification

import (
	"time"
)

type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Error   Kind = "error"
)

// Notification is a short-lived message shown to the user, like a toast.
type Notification struct {
	ID        uint64
	Kind      Kind
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (n Notification) Live(now time.Time) bool {
	return now.Before(n.ExpiresAt)
}
