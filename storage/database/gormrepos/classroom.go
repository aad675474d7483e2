package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/studman/core/classroom"
)

type classRepository struct {
	db *gorm.DB
}

var _ classroom.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *gorm.DB) *classRepository {
	return &classRepository{db: db}
}

func (repo classRepository) toModel(cls classroom.Class) *classModel {
	return &classModel{
		ID:          cls.ID,
		Name:        cls.Name,
		InstituteID: cls.InstituteID,
		LecturerID:  nullString(cls.LecturerID),
		CreatedAt:   cls.CreatedAt.UTC(),
		UpdatedAt:   cls.UpdatedAt.UTC(),
	}
}

func (repo classRepository) fromModel(m *classModel) classroom.Class {
	return classroom.Class{
		ID:          m.ID,
		Name:        m.Name,
		InstituteID: m.InstituteID,
		LecturerID:  m.LecturerID.String,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func (repo classRepository) list(q *gorm.DB) ([]classroom.Class, error) {
	var models []classModel
	if err := q.Order("name ASC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "listing classes")
	}
	classes := make([]classroom.Class, 0, len(models))
	for i := range models {
		classes = append(classes, repo.fromModel(&models[i]))
	}
	return classes, nil
}

func (repo classRepository) Create(ctx context.Context, cls classroom.Class) (classroom.Class, error) {
	m := repo.toModel(cls)
	if err := conn(ctx, repo.db).Create(m).Error; err != nil {
		return classroom.Class{}, trapDuplicate(err, classroom.ErrExists, "inserting class")
	}
	return repo.fromModel(m), nil
}

func (repo classRepository) Update(ctx context.Context, cls classroom.Class) (classroom.Class, error) {
	m := repo.toModel(cls)
	if err := conn(ctx, repo.db).Save(m).Error; err != nil {
		return classroom.Class{}, trapDuplicate(err, classroom.ErrExists, "updating class")
	}
	return repo.fromModel(m), nil
}

func (repo classRepository) GetByID(ctx context.Context, id string) (classroom.Class, error) {
	var m classModel
	if err := conn(ctx, repo.db).Where("id = ?", id).Take(&m).Error; err != nil {
		return classroom.Class{}, trapNotFound(err, classroom.ErrNotFound, "getting class")
	}
	return repo.fromModel(&m), nil
}

func (repo classRepository) NameExists(ctx context.Context, instituteID, name string) (bool, error) {
	q := conn(ctx, repo.db).Model(&classModel{}).Where("institute_id = ? AND LOWER(name) = LOWER(?)", instituteID, name)
	ok, err := exists(q)
	return ok, errors.Wrap(err, "checking class name")
}

func (repo classRepository) ListByInstitute(ctx context.Context, instituteID string) ([]classroom.Class, error) {
	return repo.list(conn(ctx, repo.db).Where("institute_id = ?", instituteID))
}

func (repo classRepository) ListByIDs(ctx context.Context, ids ...string) ([]classroom.Class, error) {
	return repo.list(conn(ctx, repo.db).Where("id IN ?", ids))
}

func (repo classRepository) ListForLecturer(ctx context.Context, lecturerID string) ([]classroom.Class, error) {
	db := conn(ctx, repo.db)
	taught := db.Model(&subjectModel{}).Select("class_id").Where("lecturer_id = ?", lecturerID)
	return repo.list(db.Where("lecturer_id = ? OR id IN (?)", lecturerID, taught))
}
