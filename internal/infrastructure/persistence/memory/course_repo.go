package memory

import (
	"context"
	"sync"

	"github.com/alem-hub/gradebook/internal/domain/course"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// CourseRepository implements course.Repository in memory.
type CourseRepository struct {
	mu     sync.RWMutex
	byName map[string]*course.Course
	order  []string
}

// NewCourseRepository creates an empty CourseRepository.
func NewCourseRepository() *CourseRepository {
	return &CourseRepository{
		byName: make(map[string]*course.Course),
		order:  make([]string, 0),
	}
}

// Add stores a new course.
func (r *CourseRepository) Add(ctx context.Context, c *course.Course) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[c.Name]; exists {
		return shared.ErrCourseAlreadyExists
	}

	stored := *c
	r.byName[c.Name] = &stored
	r.order = append(r.order, c.Name)
	return nil
}

// FindByName returns a copy of the course with the given name.
func (r *CourseRepository) FindByName(ctx context.Context, name string) (*course.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byName[name]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	found := *c
	return &found, nil
}

// All returns copies of all courses in insertion order.
func (r *CourseRepository) All(ctx context.Context) ([]*course.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*course.Course, 0, len(r.order))
	for _, name := range r.order {
		c := *r.byName[name]
		out = append(out, &c)
	}
	return out, nil
}

// Count returns the number of stored courses.
func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order), nil
}

var _ course.Repository = (*CourseRepository)(nil)
