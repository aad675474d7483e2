package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/studman/core/subject"
)

type subjectRepository struct {
	db *gorm.DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *gorm.DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo subjectRepository) toModel(sub subject.Subject) *subjectModel {
	return &subjectModel{
		ID:          sub.ID,
		Name:        sub.Name,
		Code:        nullString(sub.Code),
		ClassID:     sub.ClassID,
		LecturerID:  nullString(sub.LecturerID),
		InstituteID: sub.InstituteID,
		TotalMarks:  sub.TotalMarks,
		CreatedAt:   sub.CreatedAt.UTC(),
		UpdatedAt:   sub.UpdatedAt.UTC(),
	}
}

func (repo subjectRepository) fromModel(m *subjectModel) subject.Subject {
	return subject.Subject{
		ID:          m.ID,
		Name:        m.Name,
		Code:        m.Code.String,
		ClassID:     m.ClassID,
		LecturerID:  m.LecturerID.String,
		InstituteID: m.InstituteID,
		TotalMarks:  m.TotalMarks,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func (repo subjectRepository) Create(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	m := repo.toModel(sub)
	if err := conn(ctx, repo.db).Create(m).Error; err != nil {
		return subject.Subject{}, trapDuplicate(err, subject.ErrCodeExists, "inserting subject")
	}
	return repo.fromModel(m), nil
}

func (repo subjectRepository) Update(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	m := repo.toModel(sub)
	if err := conn(ctx, repo.db).Save(m).Error; err != nil {
		return subject.Subject{}, trapDuplicate(err, subject.ErrCodeExists, "updating subject")
	}
	return repo.fromModel(m), nil
}

func (repo subjectRepository) GetByID(ctx context.Context, id string) (subject.Subject, error) {
	var m subjectModel
	if err := conn(ctx, repo.db).Where("id = ?", id).Take(&m).Error; err != nil {
		return subject.Subject{}, trapNotFound(err, subject.ErrNotFound, "getting subject")
	}
	return repo.fromModel(&m), nil
}

func (repo subjectRepository) CodeExists(ctx context.Context, classID, code string) (bool, error) {
	q := conn(ctx, repo.db).Model(&subjectModel{}).Where("class_id = ? AND code = ?", classID, code)
	ok, err := exists(q)
	return ok, errors.Wrap(err, "checking subject code")
}

func (repo subjectRepository) Filter(ctx context.Context, filter subject.QueryFilter) ([]subject.Subject, error) {
	q := conn(ctx, repo.db).Model(&subjectModel{})
	if len(filter.IDs) > 0 {
		q = q.Where("id IN ?", filter.IDs)
	}
	if filter.InstituteID != "" {
		q = q.Where("institute_id = ?", filter.InstituteID)
	}
	if filter.ClassID != "" {
		q = q.Where("class_id = ?", filter.ClassID)
	}
	if filter.LecturerID != "" {
		q = q.Where("lecturer_id = ?", filter.LecturerID)
	}

	var models []subjectModel
	if err := q.Order("name ASC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "filtering subjects")
	}
	subjects := make([]subject.Subject, 0, len(models))
	for i := range models {
		subjects = append(subjects, repo.fromModel(&models[i]))
	}
	return subjects, nil
}
