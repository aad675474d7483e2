package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/user"
)

type Assignment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SubjectID   string    `json:"subjectId"`
	LecturerID  string    `json:"lecturerId"`
	InstituteID string    `json:"instituteId"`
	DueDate     time.Time `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Submission struct {
	ID           string     `json:"id"`
	AssignmentID string     `json:"assignmentId"`
	StudentID    string     `json:"studentId"`
	FileURL      string     `json:"fileUrl"`
	Score        *float64   `json:"score"`
	Feedback     string     `json:"feedback,omitempty"`
	SubmittedAt  time.Time  `json:"submittedAt"`
	GradedAt     *time.Time `json:"gradedAt,omitempty"`
}

// StudentSubmission is a Submission along with its student.
type StudentSubmission struct {
	Submission
	Student *user.Summary `json:"student,omitempty"`
}

// AssignmentRef is the part of an Assignment shown alongside a student's own submissions.
type AssignmentRef struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"dueDate"`
}

// OwnSubmission is a Submission along with its assignment.
type OwnSubmission struct {
	Submission
	Assignment *AssignmentRef `json:"assignment,omitempty"`
}

// NewAssignment contains information needed to post an Assignment.
type NewAssignment struct {
	Title       string `json:"title"`
	Description string `json:"description" validate:"max=5000"`
	SubjectID   string `json:"subjectId"`
	DueDate     string `json:"dueDate"`

	due time.Time
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.SanitizeText(na.Title)
	na.Description = core.SanitizeText(na.Description)
	na.SubjectID = core.CleanString(na.SubjectID)
	if na.Title == "" || na.SubjectID == "" || core.CleanString(na.DueDate) == "" {
		return ErrMissingFields
	}
	due, err := core.ParseDateTime(na.DueDate)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "dueDate", Error: "must be a valid date"})
	}
	na.due = due
	return validate.Struct(na)
}

// NewSubmission contains information needed to hand in an Assignment.
type NewSubmission struct {
	AssignmentID string `json:"assignmentId"`
	FileURL      string `json:"fileUrl" validate:"omitempty,url"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.AssignmentID = core.CleanString(ns.AssignmentID)
	ns.FileURL = core.CleanString(ns.FileURL)
	if ns.AssignmentID == "" || ns.FileURL == "" {
		return ErrSubmissionFieldsRequired
	}
	return validate.Struct(ns)
}

// Grade is a lecturer's evaluation of a Submission.
type Grade struct {
	Score    *float64 `json:"score" validate:"required,gte=0"`
	Feedback string   `json:"feedback" validate:"max=2000"`
}

func (g *Grade) Validate(validate *validator.Validate) error {
	g.Feedback = core.SanitizeText(g.Feedback)
	return validate.Struct(g)
}
