package subject

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/user"
)

const DefaultTotalMarks = 100

type Subject struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code,omitempty"`
	ClassID     string    `json:"classId"`
	LecturerID  string    `json:"lecturerId,omitempty"`
	InstituteID string    `json:"instituteId"`
	TotalMarks  int       `json:"totalMarks"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Details is a Subject along with its class name and lecturer.
type Details struct {
	Subject
	ClassName string        `json:"className,omitempty"`
	Lecturer  *user.Summary `json:"lecturer,omitempty"`
}

// NewSubject contains information needed to add a Subject to a class.
type NewSubject struct {
	Name       string `json:"name" validate:"required,max=100"`
	Code       string `json:"code" validate:"omitempty,max=20,alphanum_"`
	ClassID    string `json:"classId" validate:"required"`
	LecturerID string `json:"lecturerId"`
	TotalMarks int    `json:"totalMarks" validate:"omitempty,min=1,max=1000"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.SanitizeText(ns.Name)
	ns.Code = strings.ToUpper(core.CleanString(ns.Code))
	ns.ClassID = core.CleanString(ns.ClassID)
	ns.LecturerID = core.CleanString(ns.LecturerID)
	if ns.TotalMarks == 0 {
		ns.TotalMarks = DefaultTotalMarks
	}
	return validate.Struct(ns)
}

type AssignLecturer struct {
	SubjectID  string `json:"subjectId" validate:"required"`
	LecturerID string `json:"lecturerId" validate:"required"`
}

func (al *AssignLecturer) Validate(validate *validator.Validate) error {
	al.SubjectID = core.CleanString(al.SubjectID)
	al.LecturerID = core.CleanString(al.LecturerID)
	return validate.Struct(al)
}

// QueryFilter applies AND operation on the set fields.
type QueryFilter struct {
	IDs         []string
	InstituteID string
	ClassID     string
	LecturerID  string
}
