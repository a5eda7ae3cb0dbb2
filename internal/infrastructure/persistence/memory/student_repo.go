// Package memory implements the in-process registries of the grade book.
// Each registry is indexed by its unique key and keeps a separate ordered
// slice of keys so iteration order stays deterministic.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository in memory.
// Stored students are cloned on the way in and out, so callers can only
// change state through Add and Update.
type StudentRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*student.Student
	order   []string
}

// NewStudentRepository creates an empty StudentRepository.
func NewStudentRepository() *StudentRepository {
	return &StudentRepository{
		byEmail: make(map[string]*student.Student),
		order:   make([]string, 0),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Add stores a new student.
func (r *StudentRepository) Add(ctx context.Context, s *student.Student) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[s.Email]; exists {
		return shared.ErrStudentAlreadyExists
	}

	r.byEmail[s.Email] = s.Clone()
	r.order = append(r.order, s.Email)
	return nil
}

// FindByEmail returns a copy of the student with the given email.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*student.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byEmail[email]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return s.Clone(), nil
}

// Update replaces the stored student.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[s.Email]; !ok {
		return shared.ErrStudentNotFound
	}
	r.byEmail[s.Email] = s.Clone()
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bulk Operations
// ─────────────────────────────────────────────────────────────────────────────

// All returns copies of all students in canonical order.
func (r *StudentRepository) All(ctx context.Context) ([]*student.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*student.Student, 0, len(r.order))
	for _, email := range r.order {
		out = append(out, r.byEmail[email].Clone())
	}
	return out, nil
}

// Reorder replaces the canonical order. emails must be a permutation of the
// stored keys.
func (r *StudentRepository) Reorder(ctx context.Context, emails []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(emails) != len(r.order) {
		return shared.WrapError("student", "Reorder", shared.ErrInvalidInput,
			"order must list every student exactly once",
			fmt.Errorf("got %d emails, have %d students", len(emails), len(r.order)))
	}

	seen := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if _, ok := r.byEmail[email]; !ok {
			return shared.WrapError("student", "Reorder", shared.ErrInvalidInput,
				"order references unknown student", fmt.Errorf("email %q", email))
		}
		if _, dup := seen[email]; dup {
			return shared.WrapError("student", "Reorder", shared.ErrInvalidInput,
				"order lists a student twice", fmt.Errorf("email %q", email))
		}
		seen[email] = struct{}{}
	}

	r.order = append(r.order[:0], emails...)
	return nil
}

// Count returns the number of stored students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order), nil
}

var _ student.Repository = (*StudentRepository)(nil)
