package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trezcool/studman/core/result"
)

type resultRepository struct {
	db *gorm.DB
}

var _ result.Repository = (*resultRepository)(nil) // interface compliance check

func NewResultRepository(db *gorm.DB) *resultRepository {
	return &resultRepository{db: db}
}

func (repo resultRepository) fromModel(m *resultModel) result.Result {
	return result.Result{
		ID:            m.ID,
		StudentID:     m.StudentID,
		SubjectID:     m.SubjectID,
		ClassID:       m.ClassID,
		InstituteID:   m.InstituteID,
		MarksObtained: m.MarksObtained,
		TotalMarks:    m.TotalMarks,
		Grade:         m.Grade,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func (repo resultRepository) Upsert(ctx context.Context, res result.Result) (result.Result, error) {
	m := &resultModel{
		ID:            res.ID,
		StudentID:     res.StudentID,
		SubjectID:     res.SubjectID,
		ClassID:       res.ClassID,
		InstituteID:   res.InstituteID,
		MarksObtained: res.MarksObtained,
		TotalMarks:    res.TotalMarks,
		Grade:         res.Grade,
		CreatedAt:     res.CreatedAt.UTC(),
		UpdatedAt:     res.UpdatedAt.UTC(),
	}
	db := conn(ctx, repo.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "subject_id"}, {Name: "class_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"marks_obtained", "total_marks", "grade", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return result.Result{}, errors.Wrap(err, "upserting result")
	}

	// the row kept its original id on conflict
	var saved resultModel
	err = db.Where("student_id = ? AND subject_id = ? AND class_id = ?", res.StudentID, res.SubjectID, res.ClassID).
		Take(&saved).Error
	if err != nil {
		return result.Result{}, errors.Wrap(err, "reloading result")
	}
	return repo.fromModel(&saved), nil
}

func (repo resultRepository) Filter(ctx context.Context, filter result.QueryFilter) ([]result.Result, error) {
	q := conn(ctx, repo.db).Model(&resultModel{})
	if filter.InstituteID != "" {
		q = q.Where("institute_id = ?", filter.InstituteID)
	}
	if filter.ClassID != "" {
		q = q.Where("class_id = ?", filter.ClassID)
	}
	if filter.SubjectID != "" {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.StudentID != "" {
		q = q.Where("student_id = ?", filter.StudentID)
	}

	var models []resultModel
	if err := q.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "filtering results")
	}
	results := make([]result.Result, 0, len(models))
	for i := range models {
		results = append(results, repo.fromModel(&models[i]))
	}
	return results, nil
}
