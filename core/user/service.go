package user

import (
	"context"
	"io"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studman/core"
)

const tempPasswordLen = 8

var (
	// errors
	ErrNotFound                = core.NewNotFoundError("User not found")
	ErrStudentNotFound         = core.NewNotFoundError("Student not found")
	ErrLecturerNotFound        = core.NewNotFoundError("Lecturer not found")
	ErrEmailExists             = core.NewConflictError("Email already in use")
	ErrStudentExists           = core.NewConflictError("Student already exists")
	ErrLecturerExists          = core.NewConflictError("Lecturer already exists")
	ErrInvalidCredentials      = core.NewAuthenticationError("Invalid credentials")
	ErrAccountDeactivated      = core.NewPermissionError("Account deactivated")
	ErrPendingApproval         = core.NewPermissionError("Account pending approval")
	ErrInstituteRequired       = core.BadRequest("Institute required")
	ErrLecturerProfileRequired = core.BadRequest("Lecturer profile data is required")
	ErrProfilePhotoNotFound    = core.NewNotFoundError("Profile photo not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		Create(ctx context.Context, usr User) (User, error)
		Update(ctx context.Context, usr User) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		EmailExists(ctx context.Context, email string) (bool, error)
		// Filter applies AND operation on available QueryFilter fields.
		Filter(ctx context.Context, filter QueryFilter) ([]User, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		files   core.FileStore
		logger  core.Logger
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, files core.FileStore, logger core.Logger, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, files: files, logger: logger, conf: conf}
}

func now() time.Time { return NowFunc().UTC() }

// Authenticate checks credentials of any approved, active user and records the login.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}
	if !usr.Approved {
		return User{}, ErrPendingApproval
	}
	return svc.touchLastLogin(ctx, usr)
}

// AuthenticateSuperAdmin only accepts super admin credentials.
func (svc *Service) AuthenticateSuperAdmin(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !usr.IsSuperAdmin() || !usr.IsActive {
		return User{}, ErrInvalidCredentials
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return svc.touchLastLogin(ctx, usr)
}

func (svc *Service) touchLastLogin(ctx context.Context, usr User) (User, error) {
	t := now()
	usr.LastLogin = &t
	return svc.repo.Update(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]User, error) {
	return svc.repo.Filter(ctx, filter)
}

// RequestAdminAccount records an unapproved admin; a super admin has to approve it.
func (svc *Service) RequestAdminAccount(ctx context.Context, ar AdminRequest) (User, error) {
	usr := User{
		FullName: ar.FullName,
		Email:    ar.Email,
		Role:     RoleAdmin,
		IsActive: true,
	}
	usr, err := svc.Register(ctx, usr, ar.Password, ErrEmailExists)
	if err != nil {
		return User{}, err
	}
	svc.sendMail(usr, "Your administrator request", "admin_request_received", nil)
	return usr, nil
}

// Register hashes pwd and persists usr, returning conflictErr when the email is taken.
func (svc *Service) Register(ctx context.Context, usr User, pwd string, conflictErr error) (User, error) {
	exists, err := svc.repo.EmailExists(ctx, usr.Email)
	if err != nil {
		return User{}, err
	}
	if exists {
		return User{}, conflictErr
	}

	t := now()
	usr.ID = uuid.NewString()
	usr.CreatedAt = t
	usr.UpdatedAt = t
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err = svc.repo.Create(ctx, usr)
	if errors.Is(err, ErrEmailExists) { // taken since the check above
		return User{}, conflictErr
	}
	return usr, err
}

// NewTempPassword generates the initial password of accounts created by admins.
func NewTempPassword() (string, error) {
	return core.RandomString(tempPasswordLen)
}

// CreateLecturer creates an approved lecturer in the admin's institute and emails a temporary password.
func (svc *Service) CreateLecturer(ctx context.Context, admin User, nl NewLecturer) (User, string, error) {
	if admin.InstituteID == "" {
		return User{}, "", ErrInstituteRequired
	}
	tempPwd, err := NewTempPassword()
	if err != nil {
		return User{}, "", err
	}
	usr := User{
		FullName:        nl.FullName,
		Email:           nl.Email,
		Role:            RoleLecturer,
		Approved:        true,
		IsActive:        true,
		InstituteID:     admin.InstituteID,
		LecturerProfile: nl.LecturerProfile,
	}
	usr, err = svc.Register(ctx, usr, tempPwd, ErrLecturerExists)
	if err != nil {
		return User{}, "", err
	}
	svc.SendAccountCreatedMail(usr, tempPwd)
	return usr, tempPwd, nil
}

// UpdateLecturer changes the name and/or profile of a lecturer of the admin's institute.
func (svc *Service) UpdateLecturer(ctx context.Context, admin User, id string, ul UpdateLecturer) (User, error) {
	lec, err := svc.GetLecturer(ctx, admin.InstituteID, id)
	if err != nil {
		return User{}, err
	}
	if ul.FullName != "" {
		lec.FullName = ul.FullName
	}
	if ul.LecturerProfile != nil {
		lec.LecturerProfile = ul.LecturerProfile
	}
	lec.UpdatedAt = now()
	return svc.repo.Update(ctx, lec)
}

// ApproveAdmin approves a pending admin account and notifies its owner.
func (svc *Service) ApproveAdmin(ctx context.Context, id string) (User, error) {
	usr, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !usr.IsAdmin() {
		return User{}, ErrNotFound
	}
	usr.Approved = true
	usr.UpdatedAt = now()
	if usr, err = svc.repo.Update(ctx, usr); err != nil {
		return User{}, err
	}
	svc.sendMail(usr, "Your administrator account is approved", "admin_approved", nil)
	return usr, nil
}

// PendingAdmins lists admins awaiting approval, newest first.
func (svc *Service) PendingAdmins(ctx context.Context) ([]User, error) {
	approved := false
	return svc.repo.Filter(ctx, QueryFilter{
		Roles:    []string{RoleAdmin},
		Approved: &approved,
		Ordering: []core.DBOrdering{{Field: "created_at"}},
	})
}

// ResetPassword sets a new password for usr.
func (svc *Service) ResetPassword(ctx context.Context, usr User, pwd string) error {
	if err := usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = now()
	_, err := svc.repo.Update(ctx, usr)
	return err
}

// EnsureSuperAdmin creates the super admin account, or resets its password if it exists.
func (svc *Service) EnsureSuperAdmin(ctx context.Context, email, pwd string) (User, bool, error) {
	email = core.CleanString(email, true /* lower */)
	usr, err := svc.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		usr.Role = RoleSuperAdmin
		usr.Approved = true
		usr.IsActive = true
		return usr, false, svc.ResetPassword(ctx, usr, pwd)
	case !core.IsNotFound(err):
		return User{}, false, err
	}

	usr = User{
		FullName: "System Owner",
		Email:    email,
		Role:     RoleSuperAdmin,
		Approved: true,
		IsActive: true,
	}
	usr, err = svc.Register(ctx, usr, pwd, ErrEmailExists)
	return usr, err == nil, err
}

func (svc *Service) listMembers(ctx context.Context, role, instituteID, classID string) ([]User, error) {
	if instituteID == "" {
		return []User{}, nil
	}
	return svc.repo.Filter(ctx, QueryFilter{
		Roles:       []string{role},
		InstituteID: instituteID,
		ClassID:     classID,
		Ordering:    []core.DBOrdering{{Field: "full_name", Ascending: true}},
	})
}

// Students lists the students of an institute, optionally restricted to one class.
func (svc *Service) Students(ctx context.Context, instituteID, classID string) ([]User, error) {
	return svc.listMembers(ctx, RoleStudent, instituteID, classID)
}

func (svc *Service) Lecturers(ctx context.Context, instituteID string) ([]User, error) {
	return svc.listMembers(ctx, RoleLecturer, instituteID, "")
}

func (svc *Service) getMember(ctx context.Context, role, instituteID, id string, notFound error) (User, error) {
	usr, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, notFound
		}
		return User{}, err
	}
	if usr.Role != role || instituteID == "" || usr.InstituteID != instituteID {
		return User{}, notFound
	}
	return usr, nil
}

// GetStudent returns a student of the institute.
func (svc *Service) GetStudent(ctx context.Context, instituteID, id string) (User, error) {
	return svc.getMember(ctx, RoleStudent, instituteID, id, ErrStudentNotFound)
}

// GetLecturer returns a lecturer of the institute.
func (svc *Service) GetLecturer(ctx context.Context, instituteID, id string) (User, error) {
	return svc.getMember(ctx, RoleLecturer, instituteID, id, ErrLecturerNotFound)
}

// Save persists changes made to usr by other domain services.
func (svc *Service) Save(ctx context.Context, usr User) (User, error) {
	usr.UpdatedAt = now()
	return svc.repo.Update(ctx, usr)
}

// SetProfilePhoto stores the uploaded image and points the user's profile photo at it.
func (svc *Service) SetProfilePhoto(ctx context.Context, usr User, r io.Reader, size int64, contentType, filename string) (User, error) {
	ext := strings.ToLower(path.Ext(filename))
	key := path.Join("profile-photos", usr.ID, uuid.NewString()+ext)
	url, err := svc.files.Save(ctx, key, r, size, contentType)
	if err != nil {
		return User{}, errors.Wrap(err, "storing profile photo")
	}
	usr.ProfilePhoto = url
	return svc.Save(ctx, usr)
}

// SendAccountCreatedMail sends the credentials of a freshly created account.
func (svc *Service) SendAccountCreatedMail(usr User, tempPwd string) {
	svc.sendMail(usr, "Your account has been created", "account_created", map[string]string{
		"Role":         usr.Role,
		"TempPassword": tempPwd,
	})
}

func (svc *Service) sendMail(usr User, subject, tmpl string, extra map[string]string) {
	data := map[string]string{"FullName": usr.FullName, "Email": usr.Email}
	for k, v := range extra {
		data[k] = v
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: data,
	})
}
