package command

import (
	"context"
	"fmt"

	"github.com/alem-hub/gradebook/internal/domain/course"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD COURSE COMMAND
// Defines a course with its trimester label and credit weight.
// ══════════════════════════════════════════════════════════════════════════════

// AddCourseCommand contains the data for a new course.
type AddCourseCommand struct {
	// Name uniquely identifies the course.
	Name string

	// Trimester is a free-form term label.
	Trimester string

	// Credits is the weight of the course in GPA. Must be positive.
	Credits float64

	// CorrelationID for tracing.
	CorrelationID string
}

// AddCourseResult contains the result of adding a course.
type AddCourseResult struct {
	Name      string
	Trimester string
	Credits   float64
}

// AddCourseHandler handles the AddCourseCommand.
type AddCourseHandler struct {
	courseRepo     course.Repository
	eventPublisher shared.EventPublisher
}

// NewAddCourseHandler creates a new AddCourseHandler.
func NewAddCourseHandler(
	courseRepo course.Repository,
	eventPublisher shared.EventPublisher,
) *AddCourseHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}
	return &AddCourseHandler{
		courseRepo:     courseRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the add course command.
func (h *AddCourseHandler) Handle(ctx context.Context, cmd AddCourseCommand) (*AddCourseResult, error) {
	c, err := course.NewCourse(cmd.Name, cmd.Trimester, cmd.Credits)
	if err != nil {
		return nil, err
	}

	if err := h.courseRepo.Add(ctx, c); err != nil {
		return nil, fmt.Errorf("add_course: %w", err)
	}

	event := shared.NewCourseAddedEvent(c.Name, c.Trimester, c.Credits.Float64())
	event.BaseEvent = event.WithCorrelationID(cmd.CorrelationID)
	_ = h.eventPublisher.Publish(event)

	return &AddCourseResult{
		Name:      c.Name,
		Trimester: c.Trimester,
		Credits:   c.Credits.Float64(),
	}, nil
}
