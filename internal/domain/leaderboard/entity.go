// Package leaderboard содержит доменную модель рейтинга студентов по GPA.
package leaderboard

import (
	"errors"
	"fmt"
	"sort"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Rank представляет позицию студента в рейтинге.
// Rank начинается с 1 (первое место).
type Rank int

// IsValid проверяет, что ранг положительный.
func (r Rank) IsValid() bool {
	return r > 0
}

// IsTop10 возвращает true, если студент в топ-10.
func (r Rank) IsTop10() bool {
	return r >= 1 && r <= 10
}

// String возвращает строковое представление ранга.
func (r Rank) String() string {
	return fmt.Sprintf("#%d", r)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Candidate - входные данные для построения рейтинга.
type Candidate struct {
	Email string
	Names string
	GPA   float64
}

// LeaderboardEntry представляет одну запись рейтинга.
type LeaderboardEntry struct {
	// Rank - позиция в рейтинге.
	Rank Rank

	// Email - идентификатор студента.
	Email string

	// Names - отображаемое имя студента.
	Names string

	// GPA - средневзвешенная оценка на момент расчёта.
	GPA float64
}

// String возвращает строковое представление записи.
func (e LeaderboardEntry) String() string {
	return fmt.Sprintf("%s %s (%.4f)", e.Rank, e.Names, e.GPA)
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING (Ranked List)
// ══════════════════════════════════════════════════════════════════════════════

// Ranking представляет полный отсортированный список студентов.
type Ranking struct {
	entries []LeaderboardEntry
	byEmail map[string]int
}

// Build сортирует кандидатов по убыванию GPA и присваивает ранги.
//
// Сортировка стабильная: при равном GPA сохраняется исходный порядок.
// Ранги идут подряд 1..N даже при равных GPA (без общих мест).
func Build(candidates []Candidate) (*Ranking, error) {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GPA > sorted[j].GPA
	})

	r := &Ranking{
		entries: make([]LeaderboardEntry, 0, len(sorted)),
		byEmail: make(map[string]int, len(sorted)),
	}
	for i, c := range sorted {
		if _, exists := r.byEmail[c.Email]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStudent, c.Email)
		}
		r.byEmail[c.Email] = i
		r.entries = append(r.entries, LeaderboardEntry{
			Rank:  Rank(i + 1),
			Email: c.Email,
			Names: c.Names,
			GPA:   c.GPA,
		})
	}

	return r, nil
}

// Entries возвращает копию записей в порядке рейтинга.
func (r *Ranking) Entries() []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len возвращает количество записей.
func (r *Ranking) Len() int {
	return len(r.entries)
}

// Emails возвращает email студентов в порядке рейтинга.
func (r *Ranking) Emails() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Email
	}
	return out
}

// GetByEmail возвращает запись студента.
func (r *Ranking) GetByEmail(email string) (LeaderboardEntry, bool) {
	idx, ok := r.byEmail[email]
	if !ok {
		return LeaderboardEntry{}, false
	}
	return r.entries[idx], true
}

// Top возвращает топ-N записей.
func (r *Ranking) Top(n int) []LeaderboardEntry {
	if n <= 0 {
		return nil
	}
	if n > len(r.entries) {
		n = len(r.entries)
	}
	out := make([]LeaderboardEntry, n)
	copy(out, r.entries[:n])
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrDuplicateStudent - студент встречается в рейтинге дважды.
	ErrDuplicateStudent = errors.New("student already exists in ranking")
)
