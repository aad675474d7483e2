// Package testutil prepares in-memory databases, services and fixtures for tests.
package testutil

import (
	"bytes"
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/assignment"
	"github.com/trezcool/studman/core/attendance"
	"github.com/trezcool/studman/core/classroom"
	"github.com/trezcool/studman/core/fee"
	"github.com/trezcool/studman/core/feestructure"
	"github.com/trezcool/studman/core/institute"
	"github.com/trezcool/studman/core/result"
	"github.com/trezcool/studman/core/stats"
	"github.com/trezcool/studman/core/subject"
	"github.com/trezcool/studman/core/theme"
	"github.com/trezcool/studman/core/user"
	appfs "github.com/trezcool/studman/fs"
	cachesvc "github.com/trezcool/studman/services/cache"
	emailsvc "github.com/trezcool/studman/services/email"
	"github.com/trezcool/studman/services/filestore"
	logsvc "github.com/trezcool/studman/services/logger"
	"github.com/trezcool/studman/storage/database"
	"github.com/trezcool/studman/storage/database/gormrepos"
	"github.com/trezcool/studman/storage/database/sqlxrepos"
)

func init() {
	user.PasswordHashCost = bcrypt.MinCost
}

// NewConfig returns the configuration used by tests.
func NewConfig() *core.Config {
	return &core.Config{
		Env:              "test",
		AppName:          "studman",
		TestMode:         true,
		SecretKey:        "test-secret",
		FrontendBaseURL:  "http://front.test",
		DefaultFromEmail: mail.Address{Name: "studman", Address: "noreply@studman.io"},
		LogLevel:         "error",
		SuperAdminEmail:  "superadmin@system.com",
		Server: core.ServerConfig{
			JWTExpirationDelta:           6 * 24 * time.Hour,
			SuperAdminJWTExpirationDelta: 24 * time.Hour,
			JWTRefreshExpirationDelta:    4 * time.Hour,
			CookieMaxAge:                 7 * 24 * time.Hour,
			CORSAllowOrigins:             []string{"*"},
			BodyLimit:                    "10M",
			MaxUploadSize:                6 << 20,
		},
		Storage: core.StorageConfig{Backend: "local", PublicURL: "/media"},
		Cache:   core.CacheConfig{ThemeTTL: 10 * time.Minute},
	}
}

// PrepareDB opens a private in-memory SQLite database with the application schema.
func PrepareDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(NewConfig()))
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1) // one connection keeps the in-memory DB alive and serializes writes
	if err := gormrepos.AutoMigrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// Env holds the services of the application, wired on a fresh database.
type Env struct {
	Conf       *core.Config
	DB         *gorm.DB
	Logger     core.Logger
	Mail       *emailsvc.Mock
	Cache      core.Cache
	Files      core.FileStore
	Validate   *validator.Validate
	Translator ut.Translator

	Users         *user.Service
	Institutes    *institute.Service
	Classes       *classroom.Service
	Subjects      *subject.Service
	Assignments   *assignment.Service
	Attendance    *attendance.Service
	Results       *result.Service
	Fees          *fee.Service
	FeeStructures *feestructure.Service
	Themes        *theme.Service
	Stats         *stats.Service
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	conf := NewConfig()
	conf.Storage.LocalDir = t.TempDir()
	db := PrepareDB(t)
	sqlxDB, err := database.NewSQLX(db)
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	logger := logsvc.New(&bytes.Buffer{}, conf)
	tmpls, err := core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf)
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	validate, translator := NewValidator()

	env := &Env{
		Conf:       conf,
		DB:         db,
		Logger:     logger,
		Mail:       emailsvc.NewMock(conf, tmpls, logger),
		Cache:      cachesvc.NewMemoryCache(),
		Files:      filestore.NewLocalStore(conf.Storage.LocalDir, conf.Storage.PublicURL),
		Validate:   validate,
		Translator: translator,
	}

	tx := gormrepos.NewTransactor(db)
	env.Users = user.NewService(gormrepos.NewUserRepository(db), env.Mail, env.Files, logger, conf)
	env.Institutes = institute.NewService(gormrepos.NewInstituteRepository(db), env.Users, tx)
	env.Classes = classroom.NewService(gormrepos.NewClassRepository(db), env.Users)
	env.Subjects = subject.NewService(gormrepos.NewSubjectRepository(db), env.Classes, env.Users)
	env.Assignments = assignment.NewService(gormrepos.NewAssignmentRepository(db), env.Subjects, env.Users)
	env.Attendance = attendance.NewService(
		gormrepos.NewAttendanceRepository(db),
		sqlxrepos.NewAttendanceReports(sqlxDB),
		env.Classes,
		env.Subjects,
		env.Users,
	)
	env.Results = result.NewService(gormrepos.NewResultRepository(db), env.Subjects, env.Users)
	env.Fees = fee.NewService(gormrepos.NewFeeRepository(db), env.Classes, env.Users, tx)
	env.FeeStructures = feestructure.NewService(gormrepos.NewFeeStructureRepository(db), env.Classes, env.Users)
	env.Themes = theme.NewService(gormrepos.NewThemeRepository(db), tx, env.Cache, logger, conf)
	env.Stats = stats.NewService(sqlxrepos.NewStatsRepository(sqlxDB))
	return env
}

// Fixtures

// CreateUser persists usr as is, with pwd as password when set.
func CreateUser(t *testing.T, db *gorm.DB, usr user.User, pwd string, createdAt ...time.Time) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}
	usr.CreatedAt = tstamp
	usr.UpdatedAt = tstamp
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := gormrepos.NewUserRepository(db).Create(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateSuperAdmin(t *testing.T, db *gorm.DB, email, pwd string) user.User {
	t.Helper()
	return CreateUser(t, db, user.User{
		FullName: "System Owner",
		Email:    email,
		Role:     user.RoleSuperAdmin,
		Approved: true,
		IsActive: true,
	}, pwd)
}

// CreateAdmin creates an approved admin owning a fresh institute.
func CreateAdmin(t *testing.T, db *gorm.DB, name, email, pwd, instituteName string) (user.User, institute.Institute) {
	t.Helper()

	admin := CreateUser(t, db, user.User{
		FullName: name,
		Email:    email,
		Role:     user.RoleAdmin,
		Approved: true,
		IsActive: true,
	}, pwd)
	if instituteName == "" {
		return admin, institute.Institute{}
	}

	now := time.Now().UTC()
	inst, err := gormrepos.NewInstituteRepository(db).Create(context.Background(), institute.Institute{
		ID:        uuid.NewString(),
		Name:      instituteName,
		AdminID:   admin.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	admin.InstituteID = inst.ID
	if admin, err = gormrepos.NewUserRepository(db).Update(context.Background(), admin); err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	return admin, inst
}

func CreateLecturer(t *testing.T, db *gorm.DB, instituteID, name, email, gender string) user.User {
	t.Helper()
	return CreateUser(t, db, user.User{
		FullName:        name,
		Email:           email,
		Role:            user.RoleLecturer,
		Approved:        true,
		IsActive:        true,
		InstituteID:     instituteID,
		LecturerProfile: &user.LecturerProfile{Gender: gender},
	}, "s3cr3t!pwd")
}

func CreateStudent(t *testing.T, db *gorm.DB, instituteID, classID, name, email, gender string) user.User {
	t.Helper()
	return CreateUser(t, db, user.User{
		FullName:       name,
		Email:          email,
		Role:           user.RoleStudent,
		Approved:       true,
		IsActive:       true,
		InstituteID:    instituteID,
		ClassID:        classID,
		StudentProfile: &user.StudentProfile{Gender: gender},
	}, "s3cr3t!pwd")
}

func CreateClass(t *testing.T, db *gorm.DB, instituteID, lecturerID, name string) classroom.Class {
	t.Helper()

	now := time.Now().UTC()
	cls, err := gormrepos.NewClassRepository(db).Create(context.Background(), classroom.Class{
		ID:          uuid.NewString(),
		Name:        name,
		InstituteID: instituteID,
		LecturerID:  lecturerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateSubject(t *testing.T, db *gorm.DB, cls classroom.Class, lecturerID, name, code string, totalMarks int) subject.Subject {
	t.Helper()

	now := time.Now().UTC()
	sub, err := gormrepos.NewSubjectRepository(db).Create(context.Background(), subject.Subject{
		ID:          uuid.NewString(),
		Name:        name,
		Code:        code,
		ClassID:     cls.ID,
		LecturerID:  lecturerID,
		InstituteID: cls.InstituteID,
		TotalMarks:  totalMarks,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}
