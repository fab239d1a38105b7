package domain

import "time"

// EventType classifies a supply lifecycle transition.
type EventType string

const (
	EventStarted   EventType = "started"
	EventWarning   EventType = "warning"
	EventReady     EventType = "ready"
	EventCancelled EventType = "cancelled"
)

// SupplyEvent is one entry of the supplies history log.
type SupplyEvent struct {
	ID         string
	ObjectKey  string
	ObjectName string
	Type       EventType
	ActorID    string
	ActorName  string
	OccurredAt time.Time
}
