package query

import (
	"context"
	"fmt"

	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEARCH BY GRADE QUERY
// Находит все регистрации с заданной оценкой.
// Сравнение точное (==), без допуска на погрешность.
// ══════════════════════════════════════════════════════════════════════════════

// SearchByGradeQuery содержит искомую оценку.
type SearchByGradeQuery struct {
	Grade float64
}

// GradeMatchDTO - одна найденная регистрация.
type GradeMatchDTO struct {
	Names      string  `json:"names"`
	Email      string  `json:"email"`
	CourseName string  `json:"course_name"`
	Grade      float64 `json:"grade"`
}

// SearchByGradeResult - результат поиска.
type SearchByGradeResult struct {
	Grade   float64         `json:"grade"`
	Matches []GradeMatchDTO `json:"matches"`
}

// SearchByGradeHandler обрабатывает поиск по оценке.
type SearchByGradeHandler struct {
	studentRepo student.Repository
}

// NewSearchByGradeHandler создаёт новый обработчик.
func NewSearchByGradeHandler(studentRepo student.Repository) *SearchByGradeHandler {
	return &SearchByGradeHandler{studentRepo: studentRepo}
}

// Handle возвращает совпадения в каноническом порядке студентов,
// затем в порядке регистраций.
func (h *SearchByGradeHandler) Handle(ctx context.Context, q SearchByGradeQuery) (*SearchByGradeResult, error) {
	students, err := h.studentRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("search_by_grade: failed to get students: %w", err)
	}

	result := &SearchByGradeResult{
		Grade:   q.Grade,
		Matches: make([]GradeMatchDTO, 0),
	}
	for _, s := range students {
		for _, r := range s.Registrations() {
			if r.Grade != q.Grade {
				continue
			}
			result.Matches = append(result.Matches, GradeMatchDTO{
				Names:      s.Names,
				Email:      s.Email,
				CourseName: r.CourseName,
				Grade:      r.Grade,
			})
		}
	}

	return result, nil
}
