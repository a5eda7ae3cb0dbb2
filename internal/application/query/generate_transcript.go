package query

import (
	"context"
	"fmt"

	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERATE TRANSCRIPT QUERY
// Выписка оценок студента в порядке регистрации и итоговый GPA.
// ══════════════════════════════════════════════════════════════════════════════

// GenerateTranscriptQuery содержит email студента.
type GenerateTranscriptQuery struct {
	Email string
}

// TranscriptLineDTO - одна строка выписки.
type TranscriptLineDTO struct {
	CourseName string  `json:"course_name"`
	Grade      float64 `json:"grade"`
	Credits    float64 `json:"credits"`
}

// TranscriptResult - выписка студента.
type TranscriptResult struct {
	Email        string              `json:"email"`
	Names        string              `json:"names"`
	Lines        []TranscriptLineDTO `json:"lines"`
	TotalCredits float64             `json:"total_credits"`
	GPA          float64             `json:"gpa"`
}

// GenerateTranscriptHandler обрабатывает запрос выписки.
type GenerateTranscriptHandler struct {
	studentRepo student.Repository
}

// NewGenerateTranscriptHandler создаёт новый обработчик.
func NewGenerateTranscriptHandler(studentRepo student.Repository) *GenerateTranscriptHandler {
	return &GenerateTranscriptHandler{studentRepo: studentRepo}
}

// Handle возвращает выписку или ошибку ErrStudentNotFound.
func (h *GenerateTranscriptHandler) Handle(ctx context.Context, q GenerateTranscriptQuery) (*TranscriptResult, error) {
	stud, err := h.studentRepo.FindByEmail(ctx, q.Email)
	if err != nil {
		return nil, fmt.Errorf("generate_transcript: %w", err)
	}

	regs := stud.Registrations()
	result := &TranscriptResult{
		Email:        stud.Email,
		Names:        stud.Names,
		Lines:        make([]TranscriptLineDTO, 0, len(regs)),
		TotalCredits: stud.TotalCredits(),
		GPA:          stud.GPA(),
	}
	for _, r := range regs {
		result.Lines = append(result.Lines, TranscriptLineDTO{
			CourseName: r.CourseName,
			Grade:      r.Grade,
			Credits:    r.Credits,
		})
	}

	return result, nil
}
