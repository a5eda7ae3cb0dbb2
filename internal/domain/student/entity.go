// Package student содержит доменную модель студента и расчёт GPA.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package student

import (
	"time"

	"github.com/alem-hub/gradebook/internal/domain/course"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION
// ══════════════════════════════════════════════════════════════════════════════

// Registration - запись студента на курс с полученной оценкой.
// Кредиты копируются из курса в момент регистрации, поэтому
// последующие изменения курса не влияют на уже рассчитанный GPA.
type Registration struct {
	// ID - уникальный идентификатор записи (UUID).
	// Две регистрации на один и тот же курс остаются разными записями.
	ID string

	// CourseName - имя курса.
	CourseName string

	// Grade - полученная оценка.
	Grade float64

	// Credits - кредиты курса на момент регистрации.
	Credits float64

	// RegisteredAt - время регистрации.
	RegisteredAt time.Time
}

// Points возвращает вклад регистрации в числитель GPA.
func (r Registration) Points() float64 {
	return r.Grade * r.Credits
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student - студент с упорядоченным списком регистраций.
type Student struct {
	// Email - уникальный идентификатор студента.
	Email string

	// Names - отображаемое имя (не обязано быть уникальным).
	Names string

	// CreatedAt - время добавления в журнал.
	CreatedAt time.Time

	// registrations хранятся в порядке добавления.
	registrations []Registration
}

// NewStudent создаёт студента без регистраций.
// Email принимается как есть, включая пустую строку.
func NewStudent(email, names string) *Student {
	return &Student{
		Email:         email,
		Names:         names,
		CreatedAt:     time.Now().UTC(),
		registrations: make([]Registration, 0),
	}
}

// Register добавляет регистрацию на курс и возвращает её.
// Дубликаты не сливаются.
func (s *Student) Register(id string, c *course.Course, grade float64, at time.Time) Registration {
	reg := Registration{
		ID:           id,
		CourseName:   c.Name,
		Grade:        grade,
		Credits:      c.Credits.Float64(),
		RegisteredAt: at,
	}
	s.registrations = append(s.registrations, reg)
	return reg
}

// Registrations возвращает копию списка регистраций в порядке добавления.
func (s *Student) Registrations() []Registration {
	out := make([]Registration, len(s.registrations))
	copy(out, s.registrations)
	return out
}

// RegistrationCount возвращает количество регистраций.
func (s *Student) RegistrationCount() int {
	return len(s.registrations)
}

// TotalCredits возвращает сумму кредитов по всем регистрациям.
func (s *Student) TotalCredits() float64 {
	var total float64
	for _, r := range s.registrations {
		total += r.Credits
	}
	return total
}

// GPA вычисляет средневзвешенную оценку по кредитам.
// Значение вычисляется при каждом вызове, поэтому не может устареть.
// Без регистраций или при нулевой сумме кредитов возвращает 0.
func (s *Student) GPA() float64 {
	if len(s.registrations) == 0 {
		return 0.0
	}

	var points, credits float64
	for _, r := range s.registrations {
		points += r.Points()
		credits += r.Credits
	}
	if credits <= 0 {
		return 0.0
	}
	return points / credits
}

// HasRegistrations возвращает true, если у студента есть хотя бы одна оценка.
func (s *Student) HasRegistrations() bool {
	return len(s.registrations) > 0
}

// Clone возвращает глубокую копию студента.
func (s *Student) Clone() *Student {
	clone := *s
	clone.registrations = s.Registrations()
	return &clone
}
