package course

import "context"

// Repository определяет контракт реестра курсов.
// Реализация находится в infrastructure/persistence.
type Repository interface {
	// Add сохраняет новый курс.
	// Возвращает ErrCourseAlreadyExists, если курс с таким именем уже есть.
	Add(ctx context.Context, course *Course) error

	// FindByName возвращает курс по имени.
	// Возвращает ErrCourseNotFound, если курс не найден.
	FindByName(ctx context.Context, name string) (*Course, error)

	// All возвращает все курсы в порядке добавления.
	All(ctx context.Context) ([]*Course, error)

	// Count возвращает количество курсов.
	Count(ctx context.Context) (int, error)
}
