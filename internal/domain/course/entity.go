// Package course содержит доменную модель учебного курса.
// Здесь нет внешних зависимостей - только стандартная библиотека.
package course

import (
	"math"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Credits - вес курса при расчёте GPA.
type Credits float64

// IsValid проверяет, что кредиты - положительное конечное число.
func (c Credits) IsValid() bool {
	f := float64(c)
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Float64 возвращает значение как float64.
func (c Credits) Float64() float64 {
	return float64(c)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: COURSE
// ══════════════════════════════════════════════════════════════════════════════

// Course - курс, на который регистрируются студенты.
// После создания курс не изменяется.
type Course struct {
	// Name - уникальное имя курса (идентификатор в реестре).
	Name string

	// Trimester - метка учебного периода. В расчётах не участвует.
	Trimester string

	// Credits - вес курса.
	Credits Credits
}

// NewCourse создаёт курс с валидацией имени и кредитов.
func NewCourse(name, trimester string, credits float64) (*Course, error) {
	c := Credits(credits)
	if !c.IsValid() {
		return nil, shared.ErrInvalidCredits
	}

	return &Course{
		Name:      name,
		Trimester: trimester,
		Credits:   c,
	}, nil
}
