// Package query contains read operations following CQRS pattern.
// Each query is a self-contained use case with its own request/response types.
// CalculateRanking is the one exception that writes: it persists the sorted
// canonical order back to the student registry.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/leaderboard"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// CALCULATE RANKING QUERY
// Сортирует студентов по убыванию GPA (стабильно) и присваивает ранги 1..N.
// ══════════════════════════════════════════════════════════════════════════════

// CalculateRankingQuery содержит параметры расчёта рейтинга.
type CalculateRankingQuery struct {
	// CorrelationID для трассировки.
	CorrelationID string
}

// RankingEntryDTO - одна строка рейтинга.
type RankingEntryDTO struct {
	Rank  int     `json:"rank"`
	Email string  `json:"email"`
	Names string  `json:"names"`
	GPA   float64 `json:"gpa"`
}

// RankingResult - результат расчёта рейтинга.
type RankingResult struct {
	// Entries в порядке рейтинга.
	Entries []RankingEntryDTO `json:"entries"`

	// TotalStudents - количество студентов в журнале.
	TotalStudents int `json:"total_students"`

	// CalculatedAt - время расчёта.
	CalculatedAt time.Time `json:"calculated_at"`
}

// CalculateRankingHandler обрабатывает запрос рейтинга.
type CalculateRankingHandler struct {
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher
}

// NewCalculateRankingHandler создаёт новый обработчик.
func NewCalculateRankingHandler(
	studentRepo student.Repository,
	eventPublisher shared.EventPublisher,
) *CalculateRankingHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}
	return &CalculateRankingHandler{
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle рассчитывает рейтинг и сохраняет новый канонический порядок студентов.
func (h *CalculateRankingHandler) Handle(ctx context.Context, q CalculateRankingQuery) (*RankingResult, error) {
	students, err := h.studentRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("calculate_ranking: failed to get students: %w", err)
	}

	candidates := make([]leaderboard.Candidate, 0, len(students))
	for _, s := range students {
		candidates = append(candidates, leaderboard.Candidate{
			Email: s.Email,
			Names: s.Names,
			GPA:   s.GPA(),
		})
	}

	ranking, err := leaderboard.Build(candidates)
	if err != nil {
		return nil, fmt.Errorf("calculate_ranking: %w", err)
	}

	if err := h.studentRepo.Reorder(ctx, ranking.Emails()); err != nil {
		return nil, fmt.Errorf("calculate_ranking: failed to persist order: %w", err)
	}

	result := &RankingResult{
		Entries:       make([]RankingEntryDTO, 0, ranking.Len()),
		TotalStudents: len(students),
		CalculatedAt:  time.Now().UTC(),
	}
	ranked := make([]shared.RankedStudent, 0, ranking.Len())
	for _, e := range ranking.Entries() {
		result.Entries = append(result.Entries, RankingEntryDTO{
			Rank:  int(e.Rank),
			Email: e.Email,
			Names: e.Names,
			GPA:   e.GPA,
		})
		ranked = append(ranked, shared.RankedStudent{
			Rank:  int(e.Rank),
			Email: e.Email,
			Names: e.Names,
			GPA:   e.GPA,
		})
	}

	event := shared.NewRankingCalculatedEvent(ranked)
	event.BaseEvent = event.WithCorrelationID(q.CorrelationID)
	_ = h.eventPublisher.Publish(event)

	return result, nil
}
