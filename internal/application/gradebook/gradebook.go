// Package gradebook is the facade over the student and course registries.
// Every operation runs under one mutex covering both registries, so a
// registration and the GPA it produces are never observed half-applied.
package gradebook

import (
	"context"
	"sync"

	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/internal/application/query"
	"github.com/alem-hub/gradebook/internal/domain/course"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/pkg/logger"
)

// GradeBook coordinates the command and query handlers.
type GradeBook struct {
	mu     sync.Mutex
	logger *logger.Logger

	addStudent *command.AddStudentHandler
	addCourse  *command.AddCourseHandler
	register   *command.RegisterHandler

	ranking    *query.CalculateRankingHandler
	search     *query.SearchByGradeHandler
	transcript *query.GenerateTranscriptHandler
}

// Options configures a GradeBook. Nil fields fall back to no-op implementations.
type Options struct {
	Publisher shared.EventPublisher
	Logger    *logger.Logger
}

// New creates a GradeBook over the given registries.
func New(students student.Repository, courses course.Repository, opts Options) *GradeBook {
	if opts.Publisher == nil {
		opts.Publisher = shared.NopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	return &GradeBook{
		logger:     opts.Logger.With(logger.Component("gradebook")),
		addStudent: command.NewAddStudentHandler(students, opts.Publisher),
		addCourse:  command.NewAddCourseHandler(courses, opts.Publisher),
		register:   command.NewRegisterHandler(students, courses, opts.Publisher),
		ranking:    query.NewCalculateRankingHandler(students, opts.Publisher),
		search:     query.NewSearchByGradeHandler(students),
		transcript: query.NewGenerateTranscriptHandler(students),
	}
}

// AddStudent adds a student with no registrations.
func (g *GradeBook) AddStudent(ctx context.Context, email, names string) (*command.AddStudentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	res, err := g.addStudent.Handle(ctx, command.AddStudentCommand{Email: email, Names: names})
	if err != nil {
		g.logger.Warn("add student rejected", logger.Operation("AddStudent"), logger.Email(email), logger.Err(err))
		return nil, err
	}
	g.logger.Debug("student added", logger.Email(email))
	return res, nil
}

// AddCourse defines a course.
func (g *GradeBook) AddCourse(ctx context.Context, name, trimester string, credits float64) (*command.AddCourseResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	res, err := g.addCourse.Handle(ctx, command.AddCourseCommand{Name: name, Trimester: trimester, Credits: credits})
	if err != nil {
		g.logger.Warn("add course rejected", logger.Operation("AddCourse"), logger.CourseName(name), logger.Err(err))
		return nil, err
	}
	g.logger.Debug("course added", logger.CourseName(name), logger.Float64("credits", credits))
	return res, nil
}

// RegisterStudentForCourse records a grade. A missing student or course
// returns shared.ErrStudentOrCourseNotFound and changes nothing.
func (g *GradeBook) RegisterStudentForCourse(ctx context.Context, email, courseName string, grade float64) (*command.RegisterResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	res, err := g.register.Handle(ctx, command.RegisterCommand{Email: email, CourseName: courseName, Grade: grade})
	if err != nil {
		g.logger.Warn("registration rejected",
			logger.Operation("RegisterStudentForCourse"),
			logger.Email(email), logger.CourseName(courseName), logger.Err(err))
		return nil, err
	}
	g.logger.Debug("registration recorded",
		logger.Email(email), logger.CourseName(courseName), logger.Grade(grade), logger.GPA(res.GPA))
	return res, nil
}

// CalculateRanking sorts students by descending GPA, keeping the prior order
// of ties, and stores that order as the new canonical student order.
func (g *GradeBook) CalculateRanking(ctx context.Context) (*query.RankingResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	res, err := g.ranking.Handle(ctx, query.CalculateRankingQuery{})
	if err != nil {
		g.logger.Error("ranking failed", logger.Operation("CalculateRanking"), logger.Err(err))
		return nil, err
	}
	g.logger.Debug("ranking calculated", logger.Int("students", len(res.Entries)))
	return res, nil
}

// SearchByGrade returns every registration whose grade equals grade exactly.
func (g *GradeBook) SearchByGrade(ctx context.Context, grade float64) (*query.SearchByGradeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.search.Handle(ctx, query.SearchByGradeQuery{Grade: grade})
}

// GenerateTranscript returns a student's registrations and GPA.
func (g *GradeBook) GenerateTranscript(ctx context.Context, email string) (*query.TranscriptResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.transcript.Handle(ctx, query.GenerateTranscriptQuery{Email: email})
}
