// Package shell implements the interactive numbered menu over the grade book.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/internal/application/query"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/pkg/logger"
)

// GradeBook is the facade the shell drives.
type GradeBook interface {
	AddStudent(ctx context.Context, email, names string) (*command.AddStudentResult, error)
	AddCourse(ctx context.Context, name, trimester string, credits float64) (*command.AddCourseResult, error)
	RegisterStudentForCourse(ctx context.Context, email, courseName string, grade float64) (*command.RegisterResult, error)
	CalculateRanking(ctx context.Context) (*query.RankingResult, error)
	SearchByGrade(ctx context.Context, grade float64) (*query.SearchByGradeResult, error)
	GenerateTranscript(ctx context.Context, email string) (*query.TranscriptResult, error)
}

var menuLabels = []string{
	"Add student",
	"Add course",
	"Register student for course",
	"Calculate ranking",
	"Search by grade",
	"Generate transcript",
	"Exit",
}

// errEndOfInput is returned by readLine when the input is exhausted.
var errEndOfInput = errors.New("end of input")

// Shell reads menu choices line by line and prints results.
type Shell struct {
	gb     GradeBook
	in     *bufio.Scanner
	out    *Presenter
	logger *logger.Logger
}

// New creates a Shell reading from in and writing to out.
func New(gb GradeBook, in io.Reader, out io.Writer, log *logger.Logger) *Shell {
	if log == nil {
		log = logger.Nop()
	}
	return &Shell{
		gb:     gb,
		in:     bufio.NewScanner(in),
		out:    NewPresenter(out),
		logger: log.With(logger.Component("shell")),
	}
}

// Run shows the menu until the user picks Exit, the input ends, or ctx is done.
// Domain failures are printed and the loop continues; only a read error or
// context cancellation is returned.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.out.Menu()
		choice, err := s.ask("Choose an action: ")
		if err != nil {
			return s.finish(err)
		}

		s.logger.Debug("menu choice", logger.String("choice", choice))

		switch choice {
		case "1":
			err = s.addStudent(ctx)
		case "2":
			err = s.addCourse(ctx)
		case "3":
			err = s.register(ctx)
		case "4":
			err = s.ranking(ctx)
		case "5":
			err = s.search(ctx)
		case "6":
			err = s.transcript(ctx)
		case "7":
			s.out.Info("Exiting the application.")
			return nil
		default:
			s.out.Error("Invalid choice. Please try again.")
			continue
		}

		if err != nil {
			if errors.Is(err, errEndOfInput) {
				return s.finish(err)
			}
			if !s.report(err) {
				return err
			}
		}
	}
}

func (s *Shell) finish(err error) error {
	if errors.Is(err, errEndOfInput) {
		s.out.Info("Exiting the application.")
		return nil
	}
	return err
}

// ask prints prompt and returns the next input line without surrounding spaces.
func (s *Shell) ask(prompt string) (string, error) {
	s.out.Prompt(prompt)
	if !s.in.Scan() {
		s.out.Info("")
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("shell: read input: %w", err)
		}
		return "", errEndOfInput
	}
	return strings.TrimSpace(s.in.Text()), nil
}

// askNumber reads a finite float. Malformed input, NaN and infinities
// return *invalidNumberError.
func (s *Shell) askNumber(prompt string) (float64, error) {
	line, err := s.ask(prompt)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(line, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &invalidNumberError{input: line}
	}
	return v, nil
}

type invalidNumberError struct {
	input string
}

func (e *invalidNumberError) Error() string {
	return fmt.Sprintf("Invalid number %q. Please try again.", e.input)
}

// report prints a recoverable error and reports whether it was one.
func (s *Shell) report(err error) bool {
	var numErr *invalidNumberError
	switch {
	case errors.As(err, &numErr):
		s.out.Error(numErr.Error())
	case errors.Is(err, shared.ErrStudentOrCourseNotFound):
		s.out.Error("Student or course not found.")
	case errors.Is(err, shared.ErrStudentNotFound):
		s.out.Error("Student not found.")
	case errors.Is(err, shared.ErrStudentAlreadyExists):
		s.out.Error("A student with this email already exists.")
	case errors.Is(err, shared.ErrCourseAlreadyExists):
		s.out.Error("A course with this name already exists.")
	case errors.Is(err, shared.ErrInvalidCredits):
		s.out.Error("Credits must be a positive number.")
	case shared.IsValidation(err):
		s.out.Error(validationMessage(err))
	default:
		return false
	}
	return true
}

func validationMessage(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) && de.Message != "" {
		msg := de.Message
		return strings.ToUpper(msg[:1]) + msg[1:] + "."
	}
	return err.Error()
}

// ─────────────────────────────────────────────────────────────────────────────
// ACTIONS
// ─────────────────────────────────────────────────────────────────────────────

func (s *Shell) addStudent(ctx context.Context) error {
	email, err := s.ask("Enter student email: ")
	if err != nil {
		return err
	}
	names, err := s.ask("Enter student names: ")
	if err != nil {
		return err
	}

	res, err := s.gb.AddStudent(ctx, email, names)
	if err != nil {
		return err
	}
	s.out.StudentAdded(res)
	return nil
}

func (s *Shell) addCourse(ctx context.Context) error {
	name, err := s.ask("Enter course name: ")
	if err != nil {
		return err
	}
	trimester, err := s.ask("Enter course trimester: ")
	if err != nil {
		return err
	}
	credits, err := s.askNumber("Enter course credits: ")
	if err != nil {
		return err
	}

	res, err := s.gb.AddCourse(ctx, name, trimester, credits)
	if err != nil {
		return err
	}
	s.out.CourseAdded(res)
	return nil
}

func (s *Shell) register(ctx context.Context) error {
	email, err := s.ask("Enter student email: ")
	if err != nil {
		return err
	}
	courseName, err := s.ask("Enter course name: ")
	if err != nil {
		return err
	}
	grade, err := s.askNumber("Enter grade: ")
	if err != nil {
		return err
	}

	res, err := s.gb.RegisterStudentForCourse(ctx, email, courseName, grade)
	if err != nil {
		return err
	}
	s.out.Registered(res)
	return nil
}

func (s *Shell) ranking(ctx context.Context) error {
	res, err := s.gb.CalculateRanking(ctx)
	if err != nil {
		return err
	}
	s.out.Ranking(res)
	return nil
}

func (s *Shell) search(ctx context.Context) error {
	grade, err := s.askNumber("Enter grade to search: ")
	if err != nil {
		return err
	}

	res, err := s.gb.SearchByGrade(ctx, grade)
	if err != nil {
		return err
	}
	s.out.Matches(res)
	return nil
}

func (s *Shell) transcript(ctx context.Context) error {
	email, err := s.ask("Enter student email: ")
	if err != nil {
		return err
	}

	res, err := s.gb.GenerateTranscript(ctx, email)
	if err != nil {
		return err
	}
	s.out.Transcript(res)
	return nil
}
