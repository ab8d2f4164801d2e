package domain

import "time"

// EventType identifies an announced side effect
type EventType string

const (
	EventUserRegistered EventType = "user.registered"
)

// UserEvent announces a change to a user account
type UserEvent struct {
	Type       EventType `json:"type"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewUserRegistered builds the event emitted after a successful registration
func NewUserRegistered(username string, at time.Time) UserEvent {
	return UserEvent{
		Type:       EventUserRegistered,
		Username:   username,
		OccurredAt: at,
	}
}
