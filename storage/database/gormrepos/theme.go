package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/theme"
)

type themeRepository struct {
	db *gorm.DB
}

var _ theme.Repository = (*themeRepository)(nil) // interface compliance check

func NewThemeRepository(db *gorm.DB) *themeRepository {
	return &themeRepository{db: db}
}

func (repo themeRepository) toModel(th theme.Theme) *themeModel {
	return &themeModel{
		ID:              th.ID,
		Name:            th.Name,
		Description:     th.Description,
		InstituteID:     th.InstituteID,
		Colors:          th.Colors,
		FontFamily:      th.FontFamily,
		FontSize:        th.FontSize,
		Logo:            th.Logo,
		Favicon:         th.Favicon,
		BackgroundImage: th.BackgroundImage,
		IsActive:        th.IsActive,
		CreatedBy:       th.CreatedBy,
		CreatedAt:       th.CreatedAt.UTC(),
		UpdatedAt:       th.UpdatedAt.UTC(),
	}
}

func (repo themeRepository) fromModel(m *themeModel) theme.Theme {
	return theme.Theme{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		InstituteID:     m.InstituteID,
		Colors:          m.Colors,
		FontFamily:      m.FontFamily,
		FontSize:        m.FontSize,
		Logo:            m.Logo,
		Favicon:         m.Favicon,
		BackgroundImage: m.BackgroundImage,
		IsActive:        m.IsActive,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

func (repo themeRepository) filter(ctx context.Context, filter theme.QueryFilter) *gorm.DB {
	q := conn(ctx, repo.db).Model(&themeModel{})
	if filter.InstituteID != "" {
		q = q.Where("institute_id = ?", filter.InstituteID)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	return q
}

func (repo themeRepository) Create(ctx context.Context, th theme.Theme) (theme.Theme, error) {
	m := repo.toModel(th)
	if err := conn(ctx, repo.db).Create(m).Error; err != nil {
		return theme.Theme{}, errors.Wrap(err, "inserting theme")
	}
	return repo.fromModel(m), nil
}

func (repo themeRepository) Update(ctx context.Context, th theme.Theme) (theme.Theme, error) {
	m := repo.toModel(th)
	if err := conn(ctx, repo.db).Save(m).Error; err != nil {
		return theme.Theme{}, errors.Wrap(err, "updating theme")
	}
	return repo.fromModel(m), nil
}

func (repo themeRepository) Delete(ctx context.Context, id string) error {
	res := conn(ctx, repo.db).Where("id = ?", id).Delete(&themeModel{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting theme")
	}
	if res.RowsAffected == 0 {
		return theme.ErrNotFound
	}
	return nil
}

func (repo themeRepository) GetByID(ctx context.Context, id string) (theme.Theme, error) {
	var m themeModel
	if err := conn(ctx, repo.db).Where("id = ?", id).Take(&m).Error; err != nil {
		return theme.Theme{}, trapNotFound(err, theme.ErrNotFound, "getting theme")
	}
	return repo.fromModel(&m), nil
}

func (repo themeRepository) GetActive(ctx context.Context, instituteID string) (theme.Theme, error) {
	var m themeModel
	err := conn(ctx, repo.db).
		Where("institute_id = ? AND is_active = ?", instituteID, true).
		Order("updated_at DESC").
		Take(&m).Error
	if err != nil {
		return theme.Theme{}, trapNotFound(err, theme.ErrNoActiveTheme, "getting active theme")
	}
	return repo.fromModel(&m), nil
}

func (repo themeRepository) DeactivateOthers(ctx context.Context, instituteID, keepID string) error {
	err := conn(ctx, repo.db).Model(&themeModel{}).
		Where("institute_id = ? AND id <> ? AND is_active = ?", instituteID, keepID, true).
		Update("is_active", false).Error
	return errors.Wrap(err, "deactivating themes")
}

func (repo themeRepository) Filter(ctx context.Context, filter theme.QueryFilter, page core.Pagination) ([]theme.Theme, error) {
	var models []themeModel
	q := applyOrdering(repo.filter(ctx, filter), filter.Ordering).Offset(page.Offset()).Limit(page.Limit)
	if err := q.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "filtering themes")
	}
	themes := make([]theme.Theme, 0, len(models))
	for i := range models {
		themes = append(themes, repo.fromModel(&models[i]))
	}
	return themes, nil
}

func (repo themeRepository) Count(ctx context.Context, filter theme.QueryFilter) (int64, error) {
	var n int64
	if err := repo.filter(ctx, filter).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "counting themes")
	}
	return n, nil
}
