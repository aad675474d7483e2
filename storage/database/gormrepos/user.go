package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"github.com/trezcool/studman/core/user"
)

type userRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) toModel(usr user.User) *userModel {
	return &userModel{
		ID:              usr.ID,
		FullName:        usr.FullName,
		Email:           usr.Email,
		Role:            usr.Role,
		Approved:        usr.Approved,
		IsActive:        usr.IsActive,
		InstituteID:     nullString(usr.InstituteID),
		ClassID:         nullString(usr.ClassID),
		ProfilePhoto:    usr.ProfilePhoto,
		StudentProfile:  usr.StudentProfile,
		LecturerProfile: usr.LecturerProfile,
		PasswordHash:    usr.PasswordHash,
		CreatedAt:       usr.CreatedAt.UTC(),
		UpdatedAt:       usr.UpdatedAt.UTC(),
		LastLogin:       null.TimeFromPtr(usr.LastLogin),
	}
}

func (repo userRepository) fromModel(m *userModel) user.User {
	usr := user.User{
		ID:              m.ID,
		FullName:        m.FullName,
		Email:           m.Email,
		Role:            m.Role,
		Approved:        m.Approved,
		IsActive:        m.IsActive,
		InstituteID:     m.InstituteID.String,
		ClassID:         m.ClassID.String,
		ProfilePhoto:    m.ProfilePhoto,
		StudentProfile:  m.StudentProfile,
		LecturerProfile: m.LecturerProfile,
		PasswordHash:    m.PasswordHash,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
	if m.LastLogin.Valid {
		t := m.LastLogin.Time.UTC()
		usr.LastLogin = &t
	}
	return usr
}

func (repo userRepository) fromModels(models []userModel) []user.User {
	users := make([]user.User, 0, len(models))
	for i := range models {
		users = append(users, repo.fromModel(&models[i]))
	}
	return users
}

func (repo userRepository) Create(ctx context.Context, usr user.User) (user.User, error) {
	m := repo.toModel(usr)
	if err := conn(ctx, repo.db).Create(m).Error; err != nil {
		return user.User{}, trapDuplicate(err, user.ErrEmailExists, "inserting user")
	}
	return repo.fromModel(m), nil
}

func (repo userRepository) Update(ctx context.Context, usr user.User) (user.User, error) {
	m := repo.toModel(usr)
	if err := conn(ctx, repo.db).Save(m).Error; err != nil {
		return user.User{}, trapDuplicate(err, user.ErrEmailExists, "updating user")
	}
	return repo.fromModel(m), nil
}

func (repo userRepository) get(ctx context.Context, query interface{}, args ...interface{}) (user.User, error) {
	var m userModel
	if err := conn(ctx, repo.db).Where(query, args...).Take(&m).Error; err != nil {
		return user.User{}, trapNotFound(err, user.ErrNotFound, "getting user")
	}
	return repo.fromModel(&m), nil
}

func (repo userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	return repo.get(ctx, "id = ?", id)
}

func (repo userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.get(ctx, "email = ?", email)
}

func (repo userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	ok, err := exists(conn(ctx, repo.db).Model(&userModel{}).Where("email = ?", email))
	return ok, errors.Wrap(err, "checking email")
}

func (repo userRepository) Filter(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	q := conn(ctx, repo.db).Model(&userModel{})
	if len(filter.IDs) > 0 {
		q = q.Where("id IN ?", filter.IDs)
	}
	if len(filter.Roles) > 0 {
		q = q.Where("role IN ?", filter.Roles)
	}
	if filter.InstituteID != "" {
		q = q.Where("institute_id = ?", filter.InstituteID)
	}
	if filter.ClassID != "" {
		q = q.Where("class_id = ?", filter.ClassID)
	}
	if filter.Approved != nil {
		q = q.Where("approved = ?", *filter.Approved)
	}

	var models []userModel
	if err := applyOrdering(q, filter.Ordering).Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return repo.fromModels(models), nil
}
