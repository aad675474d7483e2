package subject

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/classroom"
	"github.com/trezcool/studman/core/user"
)

var (
	// errors
	ErrNotFound   = core.NewNotFoundError("Subject not found")
	ErrNotOwned   = core.NewNotFoundError("Subject not found or unauthorized")
	ErrCodeExists = core.NewConflictError("Subject code already exists in this class")
)

type (
	Repository interface {
		Create(ctx context.Context, sub Subject) (Subject, error)
		Update(ctx context.Context, sub Subject) (Subject, error)
		GetByID(ctx context.Context, id string) (Subject, error)
		CodeExists(ctx context.Context, classID, code string) (bool, error)
		// Filter applies AND operation on available QueryFilter fields, sorted by name.
		Filter(ctx context.Context, filter QueryFilter) ([]Subject, error)
	}

	Service struct {
		repo    Repository
		classes *classroom.Service
		users   *user.Service
	}
)

func NewService(repo Repository, classes *classroom.Service, users *user.Service) *Service {
	return &Service{repo: repo, classes: classes, users: users}
}

// Create adds a subject to a class of the admin's institute.
func (svc *Service) Create(ctx context.Context, admin user.User, ns NewSubject) (Subject, error) {
	if admin.InstituteID == "" {
		return Subject{}, user.ErrInstituteRequired
	}
	cls, err := svc.classes.Get(ctx, admin.InstituteID, ns.ClassID)
	if err != nil {
		return Subject{}, err
	}
	if ns.LecturerID != "" {
		if _, err := svc.users.GetLecturer(ctx, admin.InstituteID, ns.LecturerID); err != nil {
			return Subject{}, err
		}
	}
	if ns.Code != "" {
		exists, err := svc.repo.CodeExists(ctx, cls.ID, ns.Code)
		if err != nil {
			return Subject{}, err
		}
		if exists {
			return Subject{}, ErrCodeExists
		}
	}

	now := time.Now().UTC()
	return svc.repo.Create(ctx, Subject{
		ID:          uuid.NewString(),
		Name:        ns.Name,
		Code:        ns.Code,
		ClassID:     cls.ID,
		LecturerID:  ns.LecturerID,
		InstituteID: admin.InstituteID,
		TotalMarks:  ns.TotalMarks,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// AssignLecturer sets the lecturer teaching a subject.
func (svc *Service) AssignLecturer(ctx context.Context, admin user.User, al AssignLecturer) (Subject, error) {
	sub, err := svc.Get(ctx, admin.InstituteID, al.SubjectID)
	if err != nil {
		return Subject{}, err
	}
	if _, err := svc.users.GetLecturer(ctx, admin.InstituteID, al.LecturerID); err != nil {
		return Subject{}, err
	}
	sub.LecturerID = al.LecturerID
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.Update(ctx, sub)
}

// Get returns a subject of the institute.
func (svc *Service) Get(ctx context.Context, instituteID, id string) (Subject, error) {
	sub, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	if instituteID == "" || sub.InstituteID != instituteID {
		return Subject{}, ErrNotFound
	}
	return sub, nil
}

// GetInClass returns a subject of the institute that belongs to the class.
func (svc *Service) GetInClass(ctx context.Context, instituteID, classID, id string) (Subject, error) {
	sub, err := svc.Get(ctx, instituteID, id)
	if err != nil {
		return Subject{}, err
	}
	if sub.ClassID != classID {
		return Subject{}, ErrNotFound
	}
	return sub, nil
}

// Owned returns the subject when the lecturer teaches it.
// Admins own every subject of their institute.
func (svc *Service) Owned(ctx context.Context, usr user.User, id string) (Subject, error) {
	sub, err := svc.Get(ctx, usr.InstituteID, id)
	if err != nil {
		if core.IsNotFound(err) {
			return Subject{}, ErrNotOwned
		}
		return Subject{}, err
	}
	if usr.IsLecturer() && sub.LecturerID != usr.ID {
		return Subject{}, ErrNotOwned
	}
	return sub, nil
}

func (svc *Service) List(ctx context.Context, instituteID string) ([]Subject, error) {
	if instituteID == "" {
		return []Subject{}, nil
	}
	return svc.repo.Filter(ctx, QueryFilter{InstituteID: instituteID})
}

func (svc *Service) ForLecturer(ctx context.Context, lecturerID string) ([]Subject, error) {
	return svc.repo.Filter(ctx, QueryFilter{LecturerID: lecturerID})
}

func (svc *Service) ForClass(ctx context.Context, classID string) ([]Subject, error) {
	return svc.repo.Filter(ctx, QueryFilter{ClassID: classID})
}

// ForStudent lists the subjects of the student's class.
func (svc *Service) ForStudent(ctx context.Context, student user.User) ([]Subject, error) {
	if student.ClassID == "" {
		return []Subject{}, nil
	}
	return svc.ForClass(ctx, student.ClassID)
}

func (svc *Service) ListByIDs(ctx context.Context, ids ...string) ([]Subject, error) {
	if len(ids) == 0 {
		return []Subject{}, nil
	}
	return svc.repo.Filter(ctx, QueryFilter{IDs: ids})
}

// WithDetails attaches class names and lecturer summaries.
func (svc *Service) WithDetails(ctx context.Context, subjects ...Subject) ([]Details, error) {
	classIDs := make([]string, 0, len(subjects))
	lecturerIDs := make([]string, 0, len(subjects))
	for _, sub := range subjects {
		classIDs = append(classIDs, sub.ClassID)
		if sub.LecturerID != "" {
			lecturerIDs = append(lecturerIDs, sub.LecturerID)
		}
	}

	classNames, err := svc.classes.Names(ctx, classIDs...)
	if err != nil {
		return nil, err
	}
	lecturers := make(map[string]user.Summary)
	if len(lecturerIDs) > 0 {
		users, err := svc.users.Filter(ctx, user.QueryFilter{IDs: lecturerIDs})
		if err != nil {
			return nil, err
		}
		for _, usr := range users {
			lecturers[usr.ID] = usr.Summary()
		}
	}

	details := make([]Details, 0, len(subjects))
	for _, sub := range subjects {
		d := Details{Subject: sub, ClassName: classNames[sub.ClassID]}
		if lec, ok := lecturers[sub.LecturerID]; ok {
			d.Lecturer = &lec
		}
		details = append(details, d)
	}
	return details, nil
}
