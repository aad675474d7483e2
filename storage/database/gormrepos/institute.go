package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/studman/core/institute"
)

type instituteRepository struct {
	db *gorm.DB
}

var _ institute.Repository = (*instituteRepository)(nil) // interface compliance check

func NewInstituteRepository(db *gorm.DB) *instituteRepository {
	return &instituteRepository{db: db}
}

func (repo instituteRepository) toModel(inst institute.Institute) *instituteModel {
	return &instituteModel{
		ID:          inst.ID,
		Name:        inst.Name,
		Address:     inst.Address,
		Website:     inst.Website,
		Country:     inst.Country,
		Email:       inst.Email,
		PhoneNumber: inst.PhoneNumber,
		TargetLine:  inst.TargetLine,
		Logo:        inst.Logo,
		AdminID:     inst.AdminID,
		CreatedAt:   inst.CreatedAt.UTC(),
		UpdatedAt:   inst.UpdatedAt.UTC(),
	}
}

func (repo instituteRepository) fromModel(m *instituteModel) institute.Institute {
	return institute.Institute{
		ID:          m.ID,
		Name:        m.Name,
		Address:     m.Address,
		Website:     m.Website,
		Country:     m.Country,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		TargetLine:  m.TargetLine,
		Logo:        m.Logo,
		AdminID:     m.AdminID,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func (repo instituteRepository) Create(ctx context.Context, inst institute.Institute) (institute.Institute, error) {
	m := repo.toModel(inst)
	if err := conn(ctx, repo.db).Create(m).Error; err != nil {
		return institute.Institute{}, trapDuplicate(err, institute.ErrNameExists, "inserting institute")
	}
	return repo.fromModel(m), nil
}

func (repo instituteRepository) Update(ctx context.Context, inst institute.Institute) (institute.Institute, error) {
	m := repo.toModel(inst)
	if err := conn(ctx, repo.db).Save(m).Error; err != nil {
		return institute.Institute{}, trapDuplicate(err, institute.ErrNameExists, "updating institute")
	}
	return repo.fromModel(m), nil
}

func (repo instituteRepository) get(ctx context.Context, query interface{}, args ...interface{}) (institute.Institute, error) {
	var m instituteModel
	if err := conn(ctx, repo.db).Where(query, args...).Take(&m).Error; err != nil {
		return institute.Institute{}, trapNotFound(err, institute.ErrNotFound, "getting institute")
	}
	return repo.fromModel(&m), nil
}

func (repo instituteRepository) GetByID(ctx context.Context, id string) (institute.Institute, error) {
	return repo.get(ctx, "id = ?", id)
}

func (repo instituteRepository) GetByAdmin(ctx context.Context, adminID string) (institute.Institute, error) {
	return repo.get(ctx, "admin_id = ?", adminID)
}

func (repo instituteRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	q := conn(ctx, repo.db).Model(&instituteModel{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	ok, err := exists(q)
	return ok, errors.Wrap(err, "checking institute name")
}

func (repo instituteRepository) QueryAll(ctx context.Context) ([]institute.Institute, error) {
	var models []instituteModel
	if err := conn(ctx, repo.db).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "querying institutes")
	}
	insts := make([]institute.Institute, 0, len(models))
	for i := range models {
		insts = append(insts, repo.fromModel(&models[i]))
	}
	return insts, nil
}
