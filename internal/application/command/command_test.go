package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/memory"
)

type recordingPublisher struct {
	events []shared.Event
}

func (p *recordingPublisher) Publish(e shared.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []shared.EventType {
	out := make([]shared.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type fixture struct {
	students *memory.StudentRepository
	courses  *memory.CourseRepository
	pub      *recordingPublisher

	addStudent *AddStudentHandler
	addCourse  *AddCourseHandler
	register   *RegisterHandler
}

func newFixture() *fixture {
	f := &fixture{
		students: memory.NewStudentRepository(),
		courses:  memory.NewCourseRepository(),
		pub:      &recordingPublisher{},
	}
	f.addStudent = NewAddStudentHandler(f.students, f.pub)
	f.addCourse = NewAddCourseHandler(f.courses, f.pub)
	f.register = NewRegisterHandler(f.students, f.courses, f.pub)
	return f
}

func TestAddStudentHandler(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	res, err := f.addStudent.Handle(ctx, AddStudentCommand{Email: "a@x.com", Names: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", res.Email)
	assert.Equal(t, "Alice", res.Names)
	assert.Equal(t, []shared.EventType{shared.EventStudentAdded}, f.pub.types())

	_, err = f.addStudent.Handle(ctx, AddStudentCommand{Email: "a@x.com", Names: "Other"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	assert.Len(t, f.pub.events, 1, "failed commands must not publish")

	res, err = f.addStudent.Handle(ctx, AddStudentCommand{Email: "", Names: "Blank"})
	require.NoError(t, err)
	assert.Equal(t, "", res.Email)
	assert.Len(t, f.pub.events, 2)
}

func TestAddCourseHandler(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	res, err := f.addCourse.Handle(ctx, AddCourseCommand{Name: "Math", Trimester: "T1", Credits: 3})
	require.NoError(t, err)
	assert.Equal(t, &AddCourseResult{Name: "Math", Trimester: "T1", Credits: 3}, res)

	_, err = f.addCourse.Handle(ctx, AddCourseCommand{Name: "Math", Trimester: "T2", Credits: 5})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = f.addCourse.Handle(ctx, AddCourseCommand{Name: "Bio", Trimester: "T1", Credits: 0})
	assert.ErrorIs(t, err, shared.ErrInvalidCredits)
	assert.True(t, shared.IsValidation(err))

	assert.Equal(t, []shared.EventType{shared.EventCourseAdded}, f.pub.types())
}

func TestRegisterHandler_WorkedExample(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.register.newID = func() string { return "reg-1" }
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.register.now = func() time.Time { return fixed }

	_, err := f.addStudent.Handle(ctx, AddStudentCommand{Email: "a@x.com", Names: "Alice"})
	require.NoError(t, err)
	_, err = f.addCourse.Handle(ctx, AddCourseCommand{Name: "Math", Trimester: "T1", Credits: 3})
	require.NoError(t, err)
	_, err = f.addCourse.Handle(ctx, AddCourseCommand{Name: "Bio", Trimester: "T1", Credits: 4})
	require.NoError(t, err)

	first, err := f.register.Handle(ctx, RegisterCommand{Email: "a@x.com", CourseName: "Math", Grade: 3.5})
	require.NoError(t, err)
	assert.Equal(t, 3.5, first.GPA)
	assert.Equal(t, "reg-1", first.RegistrationID)
	assert.Equal(t, fixed, first.RegisteredAt)

	second, err := f.register.Handle(ctx, RegisterCommand{Email: "a@x.com", CourseName: "Bio", Grade: 4.0})
	require.NoError(t, err)
	assert.Equal(t, "Alice", second.Names)
	assert.Equal(t, "Bio", second.CourseName)
	assert.Equal(t, 4.0, second.Credits)
	assert.InDelta(t, 3.7857142857142856, second.GPA, 1e-12)

	stored, err := f.students.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.RegistrationCount())

	last := f.pub.events[len(f.pub.events)-1]
	recorded, ok := last.(shared.RegistrationRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, "Bio", recorded.CourseName)
	assert.InDelta(t, 3.7857142857142856, recorded.GPA, 1e-12)
}

func TestRegisterHandler_NotFoundLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.addStudent.Handle(ctx, AddStudentCommand{Email: "a@x.com", Names: "Alice"})
	require.NoError(t, err)
	_, err = f.addCourse.Handle(ctx, AddCourseCommand{Name: "Math", Trimester: "T1", Credits: 3})
	require.NoError(t, err)
	published := len(f.pub.events)

	cases := []RegisterCommand{
		{Email: "ghost@x.com", CourseName: "Math", Grade: 3},
		{Email: "a@x.com", CourseName: "Chem", Grade: 3},
		{Email: "ghost@x.com", CourseName: "Chem", Grade: 3},
	}
	for _, cmd := range cases {
		_, err := f.register.Handle(ctx, cmd)
		assert.ErrorIs(t, err, shared.ErrStudentOrCourseNotFound)
		assert.True(t, shared.IsNotFound(err))
	}

	stored, err := f.students.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.RegistrationCount())
	assert.Equal(t, 0.0, stored.GPA())

	nStudents, _ := f.students.Count(ctx)
	nCourses, _ := f.courses.Count(ctx)
	assert.Equal(t, 1, nStudents)
	assert.Equal(t, 1, nCourses)
	assert.Len(t, f.pub.events, published)
}

func TestRegisterHandler_DuplicatesAreKept(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.addStudent.Handle(ctx, AddStudentCommand{Email: "a@x.com", Names: "Alice"})
	require.NoError(t, err)
	_, err = f.addCourse.Handle(ctx, AddCourseCommand{Name: "Math", Trimester: "T1", Credits: 3})
	require.NoError(t, err)

	r1, err := f.register.Handle(ctx, RegisterCommand{Email: "a@x.com", CourseName: "Math", Grade: 2})
	require.NoError(t, err)
	r2, err := f.register.Handle(ctx, RegisterCommand{Email: "a@x.com", CourseName: "Math", Grade: 4})
	require.NoError(t, err)

	assert.NotEqual(t, r1.RegistrationID, r2.RegistrationID)
	assert.Equal(t, 3.0, r2.GPA)
}
