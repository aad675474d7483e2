package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/studman/core"
)

// Roles
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleLecturer   = "lecturer"
	RoleStudent    = "student"
)

var (
	AllRoles = []string{RoleSuperAdmin, RoleAdmin, RoleLecturer, RoleStudent}

	PasswordHashCost = 12 // mockable
)

type (
	Guardian struct {
		Name         string `json:"guardianName,omitempty"`
		Phone        string `json:"guardianPhone,omitempty"`
		Email        string `json:"guardianEmail,omitempty" validate:"omitempty,email"`
		Address      string `json:"guardianAddress,omitempty"`
		Relationship string `json:"guardianRelationship,omitempty"`
		Occupation   string `json:"guardianOccupation,omitempty"`
	}

	StudentProfile struct {
		RegistrationNumber string    `json:"registrationNumber,omitempty"`
		DateOfAdmission    core.Date `json:"dateOfAdmission"`
		DateOfBirth        core.Date `json:"dateOfBirth"`
		Gender             string    `json:"gender,omitempty"`
		MobileNumber       string    `json:"mobileNumber,omitempty"`
		Address            string    `json:"address,omitempty"`
		BloodGroup         string    `json:"bloodGroup,omitempty"`
		Religion           string    `json:"religion,omitempty"`
		OrphanStatus       string    `json:"orphanStatus,omitempty"`
		PreviousSchool     string    `json:"previousSchool,omitempty"`
		FamilyType         string    `json:"familyType,omitempty"`
		MedicalInfo        string    `json:"medicalInfo,omitempty"`
		Guardian           *Guardian `json:"guardian,omitempty"`
	}

	LecturerProfile struct {
		EmployeeID     string    `json:"employeeId,omitempty"`
		Designation    string    `json:"designation,omitempty"`
		Department     string    `json:"department,omitempty"`
		Qualification  string    `json:"qualification,omitempty"`
		Experience     string    `json:"experience,omitempty"`
		Specialization string    `json:"specialization,omitempty"`
		Gender         string    `json:"gender,omitempty"`
		DateOfBirth    core.Date `json:"dateOfBirth"`
		DateOfJoining  core.Date `json:"dateOfJoining"`
		MobileNumber   string    `json:"mobileNumber,omitempty"`
		Address        string    `json:"address,omitempty"`
		Salary         float64   `json:"salary,omitempty" validate:"gte=0"`
	}
)

type User struct {
	ID              string           `json:"id"`
	FullName        string           `json:"fullName"`
	Email           string           `json:"email"`
	Role            string           `json:"role"`
	Approved        bool             `json:"approved"`
	IsActive        bool             `json:"isActive"`
	InstituteID     string           `json:"instituteId,omitempty"`
	ClassID         string           `json:"classId,omitempty"`
	ProfilePhoto    string           `json:"profilePhoto"`
	StudentProfile  *StudentProfile  `json:"studentProfile,omitempty"`
	LecturerProfile *LecturerProfile `json:"lecturerProfile,omitempty"`
	PasswordHash    []byte           `json:"-"`
	CreatedAt       time.Time        `json:"createdAt"`           // UTC
	UpdatedAt       time.Time        `json:"updatedAt"`           // UTC
	LastLogin       *time.Time       `json:"lastLogin,omitempty"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), PasswordHashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsSuperAdmin() bool { return u.Role == RoleSuperAdmin }
func (u User) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u User) IsLecturer() bool   { return u.Role == RoleLecturer }
func (u User) IsStudent() bool    { return u.Role == RoleStudent }

// HasAnyRole reports whether the user's role is one of roles.
func (u User) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// Gender returns the lower-cased gender recorded in the user's profile.
func (u User) Gender() string {
	switch {
	case u.StudentProfile != nil:
		return strings.ToLower(core.CleanString(u.StudentProfile.Gender))
	case u.LecturerProfile != nil:
		return strings.ToLower(core.CleanString(u.LecturerProfile.Gender))
	}
	return ""
}

// GenderCounts counts male and female users (case-insensitive).
func GenderCounts(users []User) (male, female int) {
	for _, usr := range users {
		switch usr.Gender() {
		case "male":
			male++
		case "female":
			female++
		}
	}
	return
}

// Summary is the public subset of a User embedded in other resources.
type Summary struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role}
}

// AdminRequest is a public sign-up request for an administrator account.
type AdminRequest struct {
	FullName string `json:"fullName" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (ar *AdminRequest) Validate(validate *validator.Validate) error {
	ar.FullName = core.SanitizeText(ar.FullName)
	ar.Email = core.CleanString(ar.Email, true /* lower */)
	return validate.Struct(ar)
}

// NewStudent contains information needed to enroll a student in a class.
type NewStudent struct {
	FullName       string          `json:"fullName" validate:"required,max=150"`
	Email          string          `json:"email" validate:"required,email"`
	ClassID        string          `json:"classId" validate:"required"`
	StudentProfile *StudentProfile `json:"studentProfile" validate:"omitempty"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FullName = core.SanitizeText(ns.FullName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.ClassID = core.CleanString(ns.ClassID)
	if ns.StudentProfile != nil {
		ns.StudentProfile.clean()
	}
	return validate.Struct(ns)
}

// NewLecturer contains information needed to hire a lecturer.
type NewLecturer struct {
	FullName        string           `json:"fullName" validate:"required,max=150"`
	Email           string           `json:"email" validate:"required,email"`
	LecturerProfile *LecturerProfile `json:"lecturerProfile"`
}

func (nl *NewLecturer) Validate(validate *validator.Validate) error {
	nl.FullName = core.SanitizeText(nl.FullName)
	nl.Email = core.CleanString(nl.Email, true /* lower */)
	if nl.LecturerProfile == nil {
		return ErrLecturerProfileRequired
	}
	nl.LecturerProfile.clean()
	return validate.Struct(nl)
}

// UpdateLecturer defines what may be changed on an existing lecturer.
type UpdateLecturer struct {
	FullName        string           `json:"fullName" validate:"omitempty,max=150"`
	LecturerProfile *LecturerProfile `json:"lecturerProfile"`
}

func (ul *UpdateLecturer) Validate(validate *validator.Validate) error {
	ul.FullName = core.SanitizeText(ul.FullName)
	if ul.LecturerProfile != nil {
		ul.LecturerProfile.clean()
	}
	return validate.Struct(ul)
}

// ResetPassword changes the password of the authenticated user.
type ResetPassword struct {
	NewPassword string `json:"newPassword" validate:"required"`

	// attributes the new password is compared against
	FullName string `json:"-"`
	Email    string `json:"-"`
}

func (rp *ResetPassword) Validate(validate *validator.Validate, usr User) error {
	rp.FullName = usr.FullName
	rp.Email = usr.Email
	return validate.Struct(rp)
}

func (p *StudentProfile) clean() {
	p.RegistrationNumber = core.SanitizeText(p.RegistrationNumber)
	p.Gender = core.CleanString(p.Gender, true /* lower */)
	p.MobileNumber = core.CleanString(p.MobileNumber)
	p.Address = core.SanitizeText(p.Address)
	p.PreviousSchool = core.SanitizeText(p.PreviousSchool)
	p.MedicalInfo = core.SanitizeText(p.MedicalInfo)
	if p.Guardian != nil {
		p.Guardian.Name = core.SanitizeText(p.Guardian.Name)
		p.Guardian.Email = core.CleanString(p.Guardian.Email, true /* lower */)
		p.Guardian.Address = core.SanitizeText(p.Guardian.Address)
	}
}

func (p *LecturerProfile) clean() {
	p.EmployeeID = core.SanitizeText(p.EmployeeID)
	p.Designation = core.SanitizeText(p.Designation)
	p.Department = core.SanitizeText(p.Department)
	p.Qualification = core.SanitizeText(p.Qualification)
	p.Gender = core.CleanString(p.Gender, true /* lower */)
	p.MobileNumber = core.CleanString(p.MobileNumber)
	p.Address = core.SanitizeText(p.Address)
}

// QueryFilter applies AND operation on the set fields.
type QueryFilter struct {
	IDs         []string
	Roles       []string
	InstituteID string
	ClassID     string
	Approved    *bool
	Ordering    []core.DBOrdering
}
