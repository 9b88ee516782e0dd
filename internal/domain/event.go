package domain

import "time"

// Event kinds published to the notification sink.
const (
	EventApplicationReceived = "application.received"
	EventApplicationStatus   = "application.status"
	EventPaymentConfirmed    = "payment.confirmed"
	EventPaymentFailed       = "payment.failed"
	EventSessionSignedIn     = "session.signedin"
	EventSessionSignedOut    = "session.signedout"
)

// Event is a fire-and-forget user-facing notification. Payload is
// presentation data; core logic never depends on delivery.
type Event struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
