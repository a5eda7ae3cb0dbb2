// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD STUDENT COMMAND
// Registers a new student identity in the grade book.
// ══════════════════════════════════════════════════════════════════════════════

// AddStudentCommand contains the data for a new student.
type AddStudentCommand struct {
	// Email uniquely identifies the student.
	Email string

	// Names is the display name. Not required to be unique.
	Names string

	// CorrelationID for tracing.
	CorrelationID string
}

// AddStudentResult contains the result of adding a student.
type AddStudentResult struct {
	// Email of the new student.
	Email string

	// Names of the new student.
	Names string

	// CreatedAt is when the student was added.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AddStudentHandler handles the AddStudentCommand.
type AddStudentHandler struct {
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher
}

// NewAddStudentHandler creates a new AddStudentHandler.
func NewAddStudentHandler(
	studentRepo student.Repository,
	eventPublisher shared.EventPublisher,
) *AddStudentHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}
	return &AddStudentHandler{
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the add student command.
func (h *AddStudentHandler) Handle(ctx context.Context, cmd AddStudentCommand) (*AddStudentResult, error) {
	stud := student.NewStudent(cmd.Email, cmd.Names)
	if err := h.studentRepo.Add(ctx, stud); err != nil {
		return nil, fmt.Errorf("add_student: %w", err)
	}

	event := shared.NewStudentAddedEvent(stud.Email, stud.Names)
	event.BaseEvent = event.WithCorrelationID(cmd.CorrelationID)
	_ = h.eventPublisher.Publish(event)

	return &AddStudentResult{
		Email:     stud.Email,
		Names:     stud.Names,
		CreatedAt: stud.CreatedAt,
	}, nil
}
