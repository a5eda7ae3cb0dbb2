package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/gradebook/internal/domain/course"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER STUDENT FOR COURSE COMMAND
// Records a grade obtained by a student in a course. The course credits are
// captured on the registration so later changes never rewrite past GPA.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterCommand contains the data for a grade registration.
type RegisterCommand struct {
	// Email identifies the student.
	Email string

	// CourseName identifies the course.
	CourseName string

	// Grade obtained. Any number is accepted.
	Grade float64

	// CorrelationID for tracing.
	CorrelationID string
}

// RegisterResult contains the result of a registration.
type RegisterResult struct {
	// RegistrationID is the generated id of the new registration.
	RegistrationID string

	// Email and Names of the student.
	Email string
	Names string

	// CourseName of the course.
	CourseName string

	// Grade and Credits as stored on the registration.
	Grade   float64
	Credits float64

	// GPA of the student after the registration.
	GPA float64

	// RegisteredAt is when the registration was recorded.
	RegisteredAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RegisterHandler handles the RegisterCommand.
type RegisterHandler struct {
	studentRepo    student.Repository
	courseRepo     course.Repository
	eventPublisher shared.EventPublisher

	newID func() string
	now   func() time.Time
}

// NewRegisterHandler creates a new RegisterHandler.
func NewRegisterHandler(
	studentRepo student.Repository,
	courseRepo course.Repository,
	eventPublisher shared.EventPublisher,
) *RegisterHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}
	return &RegisterHandler{
		studentRepo:    studentRepo,
		courseRepo:     courseRepo,
		eventPublisher: eventPublisher,
		newID:          uuid.NewString,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Handle executes the registration command.
// A missing student or course yields ErrStudentOrCourseNotFound and no state change.
func (h *RegisterHandler) Handle(ctx context.Context, cmd RegisterCommand) (*RegisterResult, error) {
	stud, err := h.studentRepo.FindByEmail(ctx, cmd.Email)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrStudentOrCourseNotFound
		}
		return nil, fmt.Errorf("register: failed to get student: %w", err)
	}

	c, err := h.courseRepo.FindByName(ctx, cmd.CourseName)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrStudentOrCourseNotFound
		}
		return nil, fmt.Errorf("register: failed to get course: %w", err)
	}

	reg := stud.Register(h.newID(), c, cmd.Grade, h.now())

	if err := h.studentRepo.Update(ctx, stud); err != nil {
		return nil, fmt.Errorf("register: failed to save: %w", err)
	}

	gpa := stud.GPA()

	event := shared.RegistrationRecordedEvent{
		BaseEvent:      shared.NewBaseEvent(shared.EventRegistrationRecorded, stud.Email).WithCorrelationID(cmd.CorrelationID),
		RegistrationID: reg.ID,
		Email:          stud.Email,
		Names:          stud.Names,
		CourseName:     reg.CourseName,
		Grade:          reg.Grade,
		Credits:        reg.Credits,
		GPA:            gpa,
	}
	_ = h.eventPublisher.Publish(event)

	return &RegisterResult{
		RegistrationID: reg.ID,
		Email:          stud.Email,
		Names:          stud.Names,
		CourseName:     reg.CourseName,
		Grade:          reg.Grade,
		Credits:        reg.Credits,
		GPA:            gpa,
		RegisteredAt:   reg.RegisteredAt,
	}, nil
}
