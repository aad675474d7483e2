package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/feestructure"
)

type feeStructureRepository struct {
	db *gorm.DB
}

var _ feestructure.Repository = (*feeStructureRepository)(nil) // interface compliance check

func NewFeeStructureRepository(db *gorm.DB) *feeStructureRepository {
	return &feeStructureRepository{db: db}
}

func (repo feeStructureRepository) toModel(fs feestructure.FeeStructure) *feeStructureModel {
	return &feeStructureModel{
		ID:          fs.ID,
		Category:    fs.Category,
		ClassID:     nullString(fs.ClassID),
		StudentID:   nullString(fs.StudentID),
		Particulars: fs.Particulars,
		TotalAmount: fs.TotalAmount,
		InstituteID: fs.InstituteID,
		CreatedBy:   fs.CreatedBy,
		CreatedAt:   fs.CreatedAt.UTC(),
		UpdatedAt:   fs.UpdatedAt.UTC(),
	}
}

func (repo feeStructureRepository) fromModel(m *feeStructureModel) feestructure.FeeStructure {
	particulars := m.Particulars
	if particulars == nil {
		particulars = []feestructure.Particular{}
	}
	return feestructure.FeeStructure{
		ID:          m.ID,
		Category:    m.Category,
		ClassID:     m.ClassID.String,
		StudentID:   m.StudentID.String,
		Particulars: particulars,
		TotalAmount: m.TotalAmount,
		InstituteID: m.InstituteID,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func (repo feeStructureRepository) filter(ctx context.Context, filter feestructure.QueryFilter) *gorm.DB {
	q := conn(ctx, repo.db).Model(&feeStructureModel{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.ClassID != "" {
		q = q.Where("class_id = ?", filter.ClassID)
	}
	if filter.StudentID != "" {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.InstituteID != "" {
		q = q.Where("institute_id = ?", filter.InstituteID)
	}
	return q
}

func (repo feeStructureRepository) Create(ctx context.Context, fs feestructure.FeeStructure) (feestructure.FeeStructure, error) {
	m := repo.toModel(fs)
	if err := conn(ctx, repo.db).Create(m).Error; err != nil {
		return feestructure.FeeStructure{}, errors.Wrap(err, "inserting fee structure")
	}
	return repo.fromModel(m), nil
}

func (repo feeStructureRepository) Update(ctx context.Context, fs feestructure.FeeStructure) (feestructure.FeeStructure, error) {
	m := repo.toModel(fs)
	if err := conn(ctx, repo.db).Save(m).Error; err != nil {
		return feestructure.FeeStructure{}, errors.Wrap(err, "updating fee structure")
	}
	return repo.fromModel(m), nil
}

func (repo feeStructureRepository) Delete(ctx context.Context, id string) error {
	res := conn(ctx, repo.db).Where("id = ?", id).Delete(&feeStructureModel{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting fee structure")
	}
	if res.RowsAffected == 0 {
		return feestructure.ErrNotFound
	}
	return nil
}

func (repo feeStructureRepository) GetByID(ctx context.Context, id string) (feestructure.FeeStructure, error) {
	var m feeStructureModel
	if err := conn(ctx, repo.db).Where("id = ?", id).Take(&m).Error; err != nil {
		return feestructure.FeeStructure{}, trapNotFound(err, feestructure.ErrNotFound, "getting fee structure")
	}
	return repo.fromModel(&m), nil
}

func (repo feeStructureRepository) Filter(ctx context.Context, filter feestructure.QueryFilter, page core.Pagination) ([]feestructure.FeeStructure, error) {
	var models []feeStructureModel
	q := applyOrdering(repo.filter(ctx, filter), filter.Ordering).Offset(page.Offset()).Limit(page.Limit)
	if err := q.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "filtering fee structures")
	}
	items := make([]feestructure.FeeStructure, 0, len(models))
	for i := range models {
		items = append(items, repo.fromModel(&models[i]))
	}
	return items, nil
}

func (repo feeStructureRepository) Count(ctx context.Context, filter feestructure.QueryFilter) (int64, error) {
	var n int64
	if err := repo.filter(ctx, filter).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "counting fee structures")
	}
	return n, nil
}
