package classroom

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/user"
)

type Class struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	InstituteID string    `json:"instituteId"`
	LecturerID  string    `json:"lecturerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Details is a Class along with its lead lecturer.
type Details struct {
	Class
	Lecturer *user.Summary `json:"lecturer,omitempty"`
}

// Roster is a Class with its students and their gender breakdown.
type Roster struct {
	Class
	Students      []user.User `json:"-"`
	TotalStudents int         `json:"totalStudents"`
	TotalMale     int         `json:"totalMale"`
	TotalFemale   int         `json:"totalFemale"`
}

func newRoster(cls Class, students []user.User) Roster {
	male, female := user.GenderCounts(students)
	if students == nil {
		students = []user.User{}
	}
	return Roster{
		Class:         cls,
		Students:      students,
		TotalStudents: len(students),
		TotalMale:     male,
		TotalFemale:   female,
	}
}

// NewClass contains information needed to create a Class.
type NewClass struct {
	Name       string `json:"name" validate:"max=100"`
	LecturerID string `json:"lecturerId"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.SanitizeText(nc.Name)
	nc.LecturerID = core.CleanString(nc.LecturerID)
	if nc.Name == "" || nc.LecturerID == "" {
		return ErrFieldsRequired
	}
	return validate.Struct(nc)
}

// Membership links a student or lecturer to a class.
type Membership struct {
	ClassID    string `json:"classId" validate:"required"`
	StudentID  string `json:"studentId,omitempty"`
	LecturerID string `json:"lecturerId,omitempty"`
}

func (m *Membership) Validate(validate *validator.Validate) error {
	m.ClassID = core.CleanString(m.ClassID)
	m.StudentID = core.CleanString(m.StudentID)
	m.LecturerID = core.CleanString(m.LecturerID)
	return validate.Struct(m)
}
