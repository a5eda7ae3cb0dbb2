// Package seed loads students, courses and registrations from .hcl or .yaml
// files and applies them to a grade book.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MODEL
// ══════════════════════════════════════════════════════════════════════════════

// File is the format-agnostic content of a seed file.
type File struct {
	Courses       []Course       `yaml:"courses"`
	Students      []Student      `yaml:"students"`
	Registrations []Registration `yaml:"registrations"`
}

// Course is one course definition.
type Course struct {
	Name      string  `yaml:"name"`
	Trimester string  `yaml:"trimester"`
	Credits   float64 `yaml:"credits"`
}

// Student is one student identity.
type Student struct {
	Email string `yaml:"email"`
	Names string `yaml:"names"`
}

// Registration is one grade obtained by a student in a course.
type Registration struct {
	Email  string  `yaml:"email"`
	Course string  `yaml:"course"`
	Grade  float64 `yaml:"grade"`
}

// hclFile mirrors File with block labels:
//
//	course "Math" { trimester = "T1"  credits = 3 }
//	student "a@x.com" { names = "Alice" }
//	registration { email = "a@x.com"  course = "Math"  grade = 3.5 }
type hclFile struct {
	Courses       []*hclCourse       `hcl:"course,block"`
	Students      []*hclStudent      `hcl:"student,block"`
	Registrations []*hclRegistration `hcl:"registration,block"`
}

type hclCourse struct {
	Name      string  `hcl:"name,label"`
	Trimester string  `hcl:"trimester,optional"`
	Credits   float64 `hcl:"credits"`
}

type hclStudent struct {
	Email string `hcl:"email,label"`
	Names string `hcl:"names,optional"`
}

type hclRegistration struct {
	Email  string  `hcl:"email"`
	Course string  `hcl:"course"`
	Grade  float64 `hcl:"grade"`
}

// ══════════════════════════════════════════════════════════════════════════════
// LOADING
// ══════════════════════════════════════════════════════════════════════════════

// ErrUnsupportedFormat is returned for files that are neither HCL nor YAML.
var ErrUnsupportedFormat = errors.New("seed: unsupported file format")

// Load reads and parses the seed file at path, choosing the parser by extension.
func Load(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return ParseHCL(src, path)
	case ".yaml", ".yml":
		return ParseYAML(src)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ParseHCL parses seed content in HCL syntax. filename is used in diagnostics.
func ParseHCL(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("seed: failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(f.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("seed: failed to decode HCL file %s: %w", filename, diags)
	}

	out := &File{
		Courses:       make([]Course, 0, len(parsed.Courses)),
		Students:      make([]Student, 0, len(parsed.Students)),
		Registrations: make([]Registration, 0, len(parsed.Registrations)),
	}
	for _, c := range parsed.Courses {
		out.Courses = append(out.Courses, Course{Name: c.Name, Trimester: c.Trimester, Credits: c.Credits})
	}
	for _, s := range parsed.Students {
		out.Students = append(out.Students, Student{Email: s.Email, Names: s.Names})
	}
	for _, r := range parsed.Registrations {
		out.Registrations = append(out.Registrations, Registration{Email: r.Email, Course: r.Course, Grade: r.Grade})
	}
	return out, nil
}

// ParseYAML parses seed content in YAML syntax. Unknown keys are rejected.
func ParseYAML(src []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var out File
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("seed: failed to decode YAML: %w", err)
	}
	return &out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLYING
// ══════════════════════════════════════════════════════════════════════════════

// Target is the subset of the grade book that seeding writes through.
type Target interface {
	AddCourse(ctx context.Context, name, trimester string, credits float64) (*command.AddCourseResult, error)
	AddStudent(ctx context.Context, email, names string) (*command.AddStudentResult, error)
	RegisterStudentForCourse(ctx context.Context, email, courseName string, grade float64) (*command.RegisterResult, error)
}

// Report summarizes an Apply run.
type Report struct {
	Courses       int
	Students      int
	Registrations int
	Skipped       []error
}

// Apply adds courses, then students, then registrations to target.
// In strict mode the first rejected record aborts; otherwise it is logged and skipped.
func Apply(ctx context.Context, target Target, f *File, strict bool, log *logger.Logger) (*Report, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.Component("seed"))
	report := &Report{}

	skip := func(kind string, err error) error {
		err = fmt.Errorf("seed: %s: %w", kind, err)
		if strict {
			return err
		}
		log.Warn("skipped seed record", logger.Err(err))
		report.Skipped = append(report.Skipped, err)
		return nil
	}

	for _, c := range f.Courses {
		if _, err := target.AddCourse(ctx, c.Name, c.Trimester, c.Credits); err != nil {
			if err := skip("course "+c.Name, err); err != nil {
				return report, err
			}
			continue
		}
		report.Courses++
	}

	for _, s := range f.Students {
		if _, err := target.AddStudent(ctx, s.Email, s.Names); err != nil {
			if err := skip("student "+s.Email, err); err != nil {
				return report, err
			}
			continue
		}
		report.Students++
	}

	for _, r := range f.Registrations {
		if _, err := target.RegisterStudentForCourse(ctx, r.Email, r.Course, r.Grade); err != nil {
			if err := skip(fmt.Sprintf("registration %s/%s", r.Email, r.Course), err); err != nil {
				return report, err
			}
			continue
		}
		report.Registrations++
	}

	log.Info("seed applied",
		logger.Int("courses", report.Courses),
		logger.Int("students", report.Students),
		logger.Int("registrations", report.Registrations),
		logger.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}
