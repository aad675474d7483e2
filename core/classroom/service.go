package classroom

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/user"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("Class not found")
	ErrExists         = core.NewConflictError("Class already exists")
	ErrFieldsRequired = core.BadRequest("All fields are required")
	ErrStudentInClass = core.BadRequest("Student already in class")
)

type (
	Repository interface {
		Create(ctx context.Context, cls Class) (Class, error)
		Update(ctx context.Context, cls Class) (Class, error)
		GetByID(ctx context.Context, id string) (Class, error)
		NameExists(ctx context.Context, instituteID, name string) (bool, error)
		ListByInstitute(ctx context.Context, instituteID string) ([]Class, error)
		ListByIDs(ctx context.Context, ids ...string) ([]Class, error)
		// ListForLecturer lists classes a lecturer leads or teaches at least one subject in.
		ListForLecturer(ctx context.Context, lecturerID string) ([]Class, error)
	}

	Service struct {
		repo  Repository
		users *user.Service
	}
)

func NewService(repo Repository, users *user.Service) *Service {
	return &Service{repo: repo, users: users}
}

// Create creates a class of the admin's institute, led by one of its lecturers.
func (svc *Service) Create(ctx context.Context, admin user.User, nc NewClass) (Class, error) {
	if admin.InstituteID == "" {
		return Class{}, user.ErrInstituteRequired
	}
	if _, err := svc.users.GetLecturer(ctx, admin.InstituteID, nc.LecturerID); err != nil {
		return Class{}, err
	}
	exists, err := svc.repo.NameExists(ctx, admin.InstituteID, nc.Name)
	if err != nil {
		return Class{}, err
	}
	if exists {
		return Class{}, ErrExists
	}

	now := time.Now().UTC()
	return svc.repo.Create(ctx, Class{
		ID:          uuid.NewString(),
		Name:        nc.Name,
		InstituteID: admin.InstituteID,
		LecturerID:  nc.LecturerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// Get returns a class of the institute.
func (svc *Service) Get(ctx context.Context, instituteID, id string) (Class, error) {
	cls, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if instituteID == "" || cls.InstituteID != instituteID {
		return Class{}, ErrNotFound
	}
	return cls, nil
}

func (svc *Service) List(ctx context.Context, instituteID string) ([]Class, error) {
	if instituteID == "" {
		return []Class{}, nil
	}
	return svc.repo.ListByInstitute(ctx, instituteID)
}

func (svc *Service) ListByIDs(ctx context.Context, ids ...string) ([]Class, error) {
	if len(ids) == 0 {
		return []Class{}, nil
	}
	return svc.repo.ListByIDs(ctx, ids...)
}

// Names maps class ids to class names.
func (svc *Service) Names(ctx context.Context, ids ...string) (map[string]string, error) {
	classes, err := svc.ListByIDs(ctx, ids...)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(classes))
	for _, cls := range classes {
		names[cls.ID] = cls.Name
	}
	return names, nil
}

// ForLecturer lists the classes a lecturer leads or teaches in.
func (svc *Service) ForLecturer(ctx context.Context, lecturer user.User) ([]Class, error) {
	return svc.repo.ListForLecturer(ctx, lecturer.ID)
}

// ForStudent lists the class a student belongs to, if any.
func (svc *Service) ForStudent(ctx context.Context, student user.User) ([]Class, error) {
	if student.ClassID == "" {
		return []Class{}, nil
	}
	cls, err := svc.repo.GetByID(ctx, student.ClassID)
	if err != nil {
		if core.IsNotFound(err) {
			return []Class{}, nil
		}
		return nil, err
	}
	return []Class{cls}, nil
}

// WithLecturers attaches the lead lecturer summary to each class.
func (svc *Service) WithLecturers(ctx context.Context, classes ...Class) ([]Details, error) {
	ids := make([]string, 0, len(classes))
	for _, cls := range classes {
		if cls.LecturerID != "" {
			ids = append(ids, cls.LecturerID)
		}
	}
	lecturers := make(map[string]user.Summary)
	if len(ids) > 0 {
		users, err := svc.users.Filter(ctx, user.QueryFilter{IDs: ids})
		if err != nil {
			return nil, err
		}
		for _, usr := range users {
			lecturers[usr.ID] = usr.Summary()
		}
	}

	details := make([]Details, 0, len(classes))
	for _, cls := range classes {
		d := Details{Class: cls}
		if lec, ok := lecturers[cls.LecturerID]; ok {
			d.Lecturer = &lec
		}
		details = append(details, d)
	}
	return details, nil
}

// AddStudent moves a student of the institute into the class.
func (svc *Service) AddStudent(ctx context.Context, admin user.User, classID, studentID string) error {
	cls, err := svc.Get(ctx, admin.InstituteID, classID)
	if err != nil {
		return err
	}
	student, err := svc.users.GetStudent(ctx, admin.InstituteID, studentID)
	if err != nil {
		return err
	}
	if student.ClassID == cls.ID {
		return ErrStudentInClass
	}
	student.ClassID = cls.ID
	_, err = svc.users.Save(ctx, student)
	return err
}

// AssignLecturer makes a lecturer of the institute the class lead.
func (svc *Service) AssignLecturer(ctx context.Context, admin user.User, classID, lecturerID string) (Class, error) {
	cls, err := svc.Get(ctx, admin.InstituteID, classID)
	if err != nil {
		return Class{}, err
	}
	if _, err := svc.users.GetLecturer(ctx, admin.InstituteID, lecturerID); err != nil {
		return Class{}, err
	}
	cls.LecturerID = lecturerID
	cls.UpdatedAt = time.Now().UTC()
	return svc.repo.Update(ctx, cls)
}

// CreateStudent creates an approved student directly in one of the institute's classes.
// The generated temporary password is emailed and returned.
func (svc *Service) CreateStudent(ctx context.Context, admin user.User, ns user.NewStudent) (user.User, string, error) {
	if admin.InstituteID == "" {
		return user.User{}, "", user.ErrInstituteRequired
	}
	cls, err := svc.Get(ctx, admin.InstituteID, ns.ClassID)
	if err != nil {
		return user.User{}, "", err
	}
	tempPwd, err := user.NewTempPassword()
	if err != nil {
		return user.User{}, "", err
	}

	student := user.User{
		FullName:       ns.FullName,
		Email:          ns.Email,
		Role:           user.RoleStudent,
		Approved:       true,
		IsActive:       true,
		InstituteID:    admin.InstituteID,
		ClassID:        cls.ID,
		StudentProfile: ns.StudentProfile,
	}
	student, err = svc.users.Register(ctx, student, tempPwd, user.ErrStudentExists)
	if err != nil {
		return user.User{}, "", err
	}
	svc.users.SendAccountCreatedMail(student, tempPwd)
	return student, tempPwd, nil
}

// Roster returns the class with its students.
func (svc *Service) Roster(ctx context.Context, instituteID, classID string) (Roster, error) {
	cls, err := svc.Get(ctx, instituteID, classID)
	if err != nil {
		return Roster{}, err
	}
	students, err := svc.users.Students(ctx, instituteID, cls.ID)
	if err != nil {
		return Roster{}, err
	}
	return newRoster(cls, students), nil
}

// Rosters returns every class of the institute with its students.
func (svc *Service) Rosters(ctx context.Context, instituteID string) ([]Roster, error) {
	classes, err := svc.List(ctx, instituteID)
	if err != nil {
		return nil, err
	}
	students, err := svc.users.Students(ctx, instituteID, "")
	if err != nil {
		return nil, err
	}
	byClass := make(map[string][]user.User)
	for _, st := range students {
		byClass[st.ClassID] = append(byClass[st.ClassID], st)
	}

	rosters := make([]Roster, 0, len(classes))
	for _, cls := range classes {
		rosters = append(rosters, newRoster(cls, byClass[cls.ID]))
	}
	return rosters, nil
}
