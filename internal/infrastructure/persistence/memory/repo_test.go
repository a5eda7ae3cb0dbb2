package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/course"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

func newStudent(t *testing.T, email, names string) *student.Student {
	t.Helper()
	return student.NewStudent(email, names)
}

func emails(students []*student.Student) []string {
	out := make([]string, len(students))
	for i, s := range students {
		out[i] = s.Email
	}
	return out
}

func TestStudentRepository_AddAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository()

	require.NoError(t, repo.Add(ctx, newStudent(t, "a@x.com", "Alice")))

	got, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Names)

	_, err = repo.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStudentRepository_RejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository()

	require.NoError(t, repo.Add(ctx, newStudent(t, "a@x.com", "Alice")))
	err := repo.Add(ctx, newStudent(t, "a@x.com", "Impostor"))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	got, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Names)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStudentRepository_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository()
	require.NoError(t, repo.Add(ctx, newStudent(t, "a@x.com", "Alice")))

	math, err := course.NewCourse("Math", "T1", 3)
	require.NoError(t, err)

	got, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	got.Register("r1", math, 4, time.Now())

	again, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 0, again.RegistrationCount())

	require.NoError(t, repo.Update(ctx, got))
	again, err = repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, again.RegistrationCount())
}

func TestStudentRepository_UpdateUnknown(t *testing.T) {
	repo := NewStudentRepository()
	err := repo.Update(context.Background(), newStudent(t, "ghost@x.com", "Ghost"))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStudentRepository_OrderAndReorder(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository()
	for _, e := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Add(ctx, newStudent(t, e, e)))
	}

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, emails(all))

	require.NoError(t, repo.Reorder(ctx, []string{"c", "a", "b"}))
	all, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, emails(all))

	assert.ErrorIs(t, repo.Reorder(ctx, []string{"a", "b"}), shared.ErrInvalidInput)
	assert.ErrorIs(t, repo.Reorder(ctx, []string{"a", "a", "b"}), shared.ErrInvalidInput)
	assert.ErrorIs(t, repo.Reorder(ctx, []string{"a", "b", "z"}), shared.ErrInvalidInput)

	all, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, emails(all))
}

func TestStudentRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewStudentRepository()
	assert.ErrorIs(t, repo.Add(ctx, newStudent(t, "a", "A")), context.Canceled)
	_, err := repo.All(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository()

	math, err := course.NewCourse("Math", "T1", 3)
	require.NoError(t, err)
	bio, err := course.NewCourse("Bio", "T2", 4)
	require.NoError(t, err)

	require.NoError(t, repo.Add(ctx, math))
	require.NoError(t, repo.Add(ctx, bio))
	assert.ErrorIs(t, repo.Add(ctx, math), shared.ErrAlreadyExists)

	got, err := repo.FindByName(ctx, "Bio")
	require.NoError(t, err)
	assert.Equal(t, course.Credits(4), got.Credits)

	got.Credits = 99
	again, err := repo.FindByName(ctx, "Bio")
	require.NoError(t, err)
	assert.Equal(t, course.Credits(4), again.Credits)

	_, err = repo.FindByName(ctx, "Chem")
	assert.ErrorIs(t, err, shared.ErrCourseNotFound)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Math", all[0].Name)
	assert.Equal(t, "Bio", all[1].Name)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
