// Package student содержит доменную модель студента и расчёт GPA.
//
// Пакет определяет:
//
//   - Сущности: Student, Registration
//   - Интерфейс репозитория: Repository
//
// # GPA
//
// GPA не хранится отдельным полем, а вычисляется из списка регистраций:
//
//	GPA = Σ(grade * credits) / Σ(credits)
//
// Пустой список или нулевая сумма кредитов дают 0.0.
//
// # Пример использования
//
//	st := NewStudent("a@x.com", "Alice")
//
//	math, _ := course.NewCourse("Math", "T1", 3)
//	st.Register(uuid.New().String(), math, 3.5, time.Now())
//	fmt.Println(st.GPA()) // 3.5
package student
