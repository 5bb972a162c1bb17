// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// AuthQueueName is the durable queue carrying auth lifecycle events.
const AuthQueueName = "auth.events"

// AuthEvent is published whenever an account signs up, signs in, signs
// out, or updates its profile. It carries enough for downstream consumers
// to log and to materialize a user notification without querying the
// primary database.
type AuthEvent struct {
	EventID    string `json:"event_id"`
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	OccurredAt string `json:"occurred_at"`
}

// NewAuthEvent builds an event with a fresh ID and the current timestamp.
func NewAuthEvent(userID, email, kind, title, body string) AuthEvent {
	return AuthEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Email:      email,
		Kind:       kind,
		Title:      title,
		Body:       body,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
