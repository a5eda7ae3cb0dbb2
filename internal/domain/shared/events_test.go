package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent_AssignsDistinctIDs(t *testing.T) {
	a := NewStudentAddedEvent("a@x.com", "Alice")
	b := NewStudentAddedEvent("a@x.com", "Alice")

	_, err := uuid.Parse(a.EventID())
	require.NoError(t, err)
	assert.NotEqual(t, a.EventID(), b.EventID())
	assert.Equal(t, EventStudentAdded, a.EventType())
	assert.Equal(t, "a@x.com", a.AggregateID())
	assert.Equal(t, 1, a.Version)
}

func TestBaseEvent_WithCorrelationIDKeepsID(t *testing.T) {
	e := NewCourseAddedEvent("Math", "T1", 3)
	id := e.EventID()

	e.BaseEvent = e.WithCorrelationID("corr-1")
	assert.Equal(t, id, e.EventID())
	assert.Equal(t, "corr-1", e.CorrelationID)
}
