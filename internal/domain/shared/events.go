// Package shared contains common domain types, errors and events
// that are used across all domain packages.
package shared

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents a completed state change or
// a derived result that other parts of the system may mirror.
const (
	// Registry events
	EventStudentAdded EventType = "student.added"
	EventCourseAdded  EventType = "course.added"

	// Grade events
	EventRegistrationRecorded EventType = "registration.recorded"

	// Leaderboard events
	EventRankingCalculated EventType = "leaderboard.ranking_calculated"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventID returns the unique identifier of this event instance.
	EventID() string

	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventID implements Event interface.
func (e BaseEvent) EventID() string {
	return e.ID
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Registry Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentAddedEvent is emitted when a student joins the grade book.
type StudentAddedEvent struct {
	BaseEvent
	Email string `json:"email"`
	Names string `json:"names"`
}

// NewStudentAddedEvent creates a StudentAddedEvent keyed by email.
func NewStudentAddedEvent(email, names string) StudentAddedEvent {
	return StudentAddedEvent{
		BaseEvent: NewBaseEvent(EventStudentAdded, email),
		Email:     email,
		Names:     names,
	}
}

// Payload implements Event interface.
func (e StudentAddedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"email": e.Email,
		"names": e.Names,
	}
}

// CourseAddedEvent is emitted when a course is defined.
type CourseAddedEvent struct {
	BaseEvent
	Name      string  `json:"name"`
	Trimester string  `json:"trimester"`
	Credits   float64 `json:"credits"`
}

// NewCourseAddedEvent creates a CourseAddedEvent keyed by course name.
func NewCourseAddedEvent(name, trimester string, credits float64) CourseAddedEvent {
	return CourseAddedEvent{
		BaseEvent: NewBaseEvent(EventCourseAdded, name),
		Name:      name,
		Trimester: trimester,
		Credits:   credits,
	}
}

// Payload implements Event interface.
func (e CourseAddedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"name":      e.Name,
		"trimester": e.Trimester,
		"credits":   e.Credits,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Grade Events
// ═══════════════════════════════════════════════════════════════════════════

// RegistrationRecordedEvent is emitted after a grade registration is appended
// and carries the student's GPA after the change.
type RegistrationRecordedEvent struct {
	BaseEvent
	RegistrationID string  `json:"registration_id"`
	Email          string  `json:"email"`
	Names          string  `json:"names"`
	CourseName     string  `json:"course_name"`
	Grade          float64 `json:"grade"`
	Credits        float64 `json:"credits"`
	GPA            float64 `json:"gpa"`
}

// Payload implements Event interface.
func (e RegistrationRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"registration_id": e.RegistrationID,
		"email":           e.Email,
		"names":           e.Names,
		"course_name":     e.CourseName,
		"grade":           e.Grade,
		"credits":         e.Credits,
		"gpa":             e.GPA,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Leaderboard Events
// ═══════════════════════════════════════════════════════════════════════════

// RankedStudent is one row of a calculated ranking.
type RankedStudent struct {
	Rank  int     `json:"rank"`
	Email string  `json:"email"`
	Names string  `json:"names"`
	GPA   float64 `json:"gpa"`
}

// RankingCalculatedEvent is emitted every time the ranking is recalculated.
type RankingCalculatedEvent struct {
	BaseEvent
	Entries []RankedStudent `json:"entries"`
}

// NewRankingCalculatedEvent creates a RankingCalculatedEvent.
func NewRankingCalculatedEvent(entries []RankedStudent) RankingCalculatedEvent {
	return RankingCalculatedEvent{
		BaseEvent: NewBaseEvent(EventRankingCalculated, "ranking"),
		Entries:   entries,
	}
}

// Payload implements Event interface.
func (e RankingCalculatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"entries": e.Entries,
		"count":   len(e.Entries),
	}
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
