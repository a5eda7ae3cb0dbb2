package student

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции реестра студентов.
type Repository interface {
	// Add сохраняет нового студента.
	// Возвращает ErrStudentAlreadyExists, если email уже занят.
	Add(ctx context.Context, student *Student) error

	// FindByEmail возвращает студента по email.
	// Возвращает ErrStudentNotFound, если студент не найден.
	FindByEmail(ctx context.Context, email string) (*Student, error)

	// Update сохраняет изменения студента (новые регистрации).
	// Возвращает ErrStudentNotFound, если студент не найден.
	Update(ctx context.Context, student *Student) error

	// All возвращает студентов в каноническом порядке:
	// порядок добавления, пока его не переставит расчёт рейтинга.
	All(ctx context.Context) ([]*Student, error)

	// Reorder задаёт новый канонический порядок.
	// emails должен быть перестановкой всех email реестра.
	Reorder(ctx context.Context, emails []string) error

	// Count возвращает количество студентов.
	Count(ctx context.Context) (int, error)
}
