package shell

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRESENTER
// Превращает результаты фасада в строки меню. Цвета включаются только
// когда вывод идёт в терминал: рендерер определяет профиль по io.Writer.
// ══════════════════════════════════════════════════════════════════════════════

var (
	colorTitle   = lipgloss.Color("#8BC34A")
	colorError   = lipgloss.Color("#e53935")
	colorMuted   = lipgloss.Color("#9aa5b1")
	colorSuccess = lipgloss.Color("#4db6ac")
)

// Presenter пишет отформатированный вывод оболочки.
type Presenter struct {
	w io.Writer

	title   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	prompt  lipgloss.Style
}

// NewPresenter создаёт презентер для w.
func NewPresenter(w io.Writer) *Presenter {
	r := lipgloss.NewRenderer(w)
	return &Presenter{
		w:       w,
		title:   r.NewStyle().Foreground(colorTitle).Bold(true),
		success: r.NewStyle().Foreground(colorSuccess),
		failure: r.NewStyle().Foreground(colorError),
		prompt:  r.NewStyle().Foreground(colorMuted),
	}
}

func (p *Presenter) println(s string) {
	fmt.Fprintln(p.w, s)
}

// Menu печатает семь пунктов меню.
func (p *Presenter) Menu() {
	p.println("")
	p.println(p.title.Render("--- Grade Book Application ---"))
	for i, label := range menuLabels {
		p.println(fmt.Sprintf("%d. %s", i+1, label))
	}
}

// Prompt печатает приглашение без перевода строки.
func (p *Presenter) Prompt(text string) {
	fmt.Fprint(p.w, p.prompt.Render(text))
}

// Info печатает обычную строку.
func (p *Presenter) Info(text string) {
	p.println(text)
}

// Error печатает сообщение об ошибке.
func (p *Presenter) Error(text string) {
	p.println(p.failure.Render(text))
}

// ─────────────────────────────────────────────────────────────────────────────
// RESULTS
// ─────────────────────────────────────────────────────────────────────────────

// StudentAdded печатает подтверждение добавления студента.
func (p *Presenter) StudentAdded(res *command.AddStudentResult) {
	p.println(p.success.Render(fmt.Sprintf("Student %s added successfully.", res.Names)))
}

// CourseAdded печатает подтверждение добавления курса.
func (p *Presenter) CourseAdded(res *command.AddCourseResult) {
	p.println(p.success.Render(fmt.Sprintf("Course %s added successfully.", res.Name)))
}

// Registered печатает подтверждение регистрации.
func (p *Presenter) Registered(res *command.RegisterResult) {
	p.println(p.success.Render(fmt.Sprintf("Student %s registered for course %s with grade %s.",
		res.Names, res.CourseName, FormatNumber(res.Grade))))
}

// Ranking печатает строки рейтинга.
func (p *Presenter) Ranking(res *query.RankingResult) {
	if len(res.Entries) == 0 {
		p.println("No students yet.")
		return
	}
	for _, e := range res.Entries {
		p.println(fmt.Sprintf("Rank %d: %s with GPA %s", e.Rank, e.Names, FormatNumber(e.GPA)))
	}
}

// Matches печатает результаты поиска по оценке.
func (p *Presenter) Matches(res *query.SearchByGradeResult) {
	if len(res.Matches) == 0 {
		p.println(fmt.Sprintf("No registrations with grade %s.", FormatNumber(res.Grade)))
		return
	}
	for _, m := range res.Matches {
		p.println(fmt.Sprintf("Student %s obtained grade %s in course %s",
			m.Names, FormatNumber(m.Grade), m.CourseName))
	}
}

// Transcript печатает выписку студента.
func (p *Presenter) Transcript(res *query.TranscriptResult) {
	p.println(p.title.Render(fmt.Sprintf("Transcript for %s:", res.Names)))
	for _, l := range res.Lines {
		p.println(fmt.Sprintf("Course: %s, Grade: %s, Credits: %s",
			l.CourseName, FormatNumber(l.Grade), FormatNumber(l.Credits)))
	}
	p.println(fmt.Sprintf("Overall GPA: %s", FormatNumber(res.GPA)))
}

// FormatNumber печатает число в кратчайшей точной форме и всегда с дробной
// частью: 4 -> "4.0", 3.7857142857142856 без изменений.
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
