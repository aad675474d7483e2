package result

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/subject"
	"github.com/trezcool/studman/core/user"
)

var (
	// errors
	ErrMarksExceedTotal = core.BadRequest("Marks exceed total marks")
	ErrCannotAssign     = core.NewPermissionError("Only admins and lecturers can assign marks")
)

type Result struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"studentId"`
	SubjectID     string    `json:"subjectId"`
	ClassID       string    `json:"classId"`
	InstituteID   string    `json:"instituteId"`
	MarksObtained float64   `json:"marksObtained"`
	TotalMarks    int       `json:"totalMarks"`
	Grade         string    `json:"grade"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewMarks contains information needed to grade a student in a subject.
type NewMarks struct {
	StudentID string   `json:"studentId" validate:"required"`
	SubjectID string   `json:"subjectId" validate:"required"`
	ClassID   string   `json:"classId" validate:"required"`
	Marks     *float64 `json:"marks" validate:"required,gte=0"`
}

func (nm *NewMarks) Validate(validate *validator.Validate) error {
	nm.StudentID = core.CleanString(nm.StudentID)
	nm.SubjectID = core.CleanString(nm.SubjectID)
	nm.ClassID = core.CleanString(nm.ClassID)
	return validate.Struct(nm)
}

// QueryFilter applies AND operation on the set fields.
type QueryFilter struct {
	InstituteID string
	ClassID     string
	SubjectID   string
	StudentID   string
}

// Grade maps a percentage to a letter grade.
func Grade(percentage float64) string {
	switch {
	case percentage >= 70:
		return "A"
	case percentage >= 60:
		return "B"
	case percentage >= 50:
		return "C"
	case percentage >= 40:
		return "D"
	}
	return "F"
}

type (
	Repository interface {
		// Upsert inserts the result or updates the one of the same (student, subject, class).
		Upsert(ctx context.Context, res Result) (Result, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Result, error)
	}

	Service struct {
		repo     Repository
		subjects *subject.Service
		users    *user.Service
	}
)

func NewService(repo Repository, subjects *subject.Service, users *user.Service) *Service {
	return &Service{repo: repo, subjects: subjects, users: users}
}

// AssignMarks records (or overwrites) a student's marks in a subject of their class.
func (svc *Service) AssignMarks(ctx context.Context, usr user.User, nm NewMarks) (Result, error) {
	if !usr.HasAnyRole(user.RoleAdmin, user.RoleLecturer) {
		return Result{}, ErrCannotAssign
	}
	student, err := svc.users.GetStudent(ctx, usr.InstituteID, nm.StudentID)
	if err != nil {
		return Result{}, err
	}
	sub, err := svc.subjects.GetInClass(ctx, usr.InstituteID, nm.ClassID, nm.SubjectID)
	if err != nil {
		return Result{}, err
	}
	if *nm.Marks > float64(sub.TotalMarks) {
		return Result{}, ErrMarksExceedTotal
	}

	now := time.Now().UTC()
	return svc.repo.Upsert(ctx, Result{
		ID:            uuid.NewString(),
		StudentID:     student.ID,
		SubjectID:     sub.ID,
		ClassID:       sub.ClassID,
		InstituteID:   sub.InstituteID,
		MarksObtained: *nm.Marks,
		TotalMarks:    sub.TotalMarks,
		Grade:         Grade(*nm.Marks / float64(sub.TotalMarks) * 100),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func (svc *Service) ForClass(ctx context.Context, instituteID, classID string) ([]Result, error) {
	if instituteID == "" {
		return []Result{}, nil
	}
	return svc.repo.Filter(ctx, QueryFilter{InstituteID: instituteID, ClassID: classID})
}

func (svc *Service) ForSubject(ctx context.Context, instituteID, subjectID string) ([]Result, error) {
	if instituteID == "" {
		return []Result{}, nil
	}
	return svc.repo.Filter(ctx, QueryFilter{InstituteID: instituteID, SubjectID: subjectID})
}

func (svc *Service) ForStudent(ctx context.Context, student user.User) ([]Result, error) {
	return svc.repo.Filter(ctx, QueryFilter{StudentID: student.ID})
}
