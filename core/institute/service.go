package institute

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/user"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("Institute not found")
	ErrAlreadyCreated = core.BadRequest("Admin already created an Institute")
	ErrNameExists     = core.NewConflictError("Institute name already exists")
)

type (
	Repository interface {
		Create(ctx context.Context, inst Institute) (Institute, error)
		Update(ctx context.Context, inst Institute) (Institute, error)
		GetByID(ctx context.Context, id string) (Institute, error)
		GetByAdmin(ctx context.Context, adminID string) (Institute, error)
		// NameExists reports whether another institute (than excludeID) uses name, case-insensitively.
		NameExists(ctx context.Context, name, excludeID string) (bool, error)
		QueryAll(ctx context.Context) ([]Institute, error)
	}

	Service struct {
		repo  Repository
		users *user.Service
		tx    core.Transactor
	}
)

func NewService(repo Repository, users *user.Service, tx core.Transactor) *Service {
	return &Service{repo: repo, users: users, tx: tx}
}

// Create creates the admin's institute and attaches the admin to it.
func (svc *Service) Create(ctx context.Context, admin user.User, ni NewInstitute) (Institute, error) {
	if admin.InstituteID != "" {
		return Institute{}, ErrAlreadyCreated
	}
	if _, err := svc.repo.GetByAdmin(ctx, admin.ID); err == nil {
		return Institute{}, ErrAlreadyCreated
	} else if !core.IsNotFound(err) {
		return Institute{}, err
	}

	var inst Institute
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := svc.repo.NameExists(ctx, ni.Name, "")
		if err != nil {
			return err
		}
		if exists {
			return ErrNameExists
		}

		now := time.Now().UTC()
		inst, err = svc.repo.Create(ctx, Institute{
			ID:          uuid.NewString(),
			Name:        ni.Name,
			Address:     ni.Address,
			Website:     ni.Website,
			Country:     ni.Country,
			Email:       ni.Email,
			PhoneNumber: ni.PhoneNumber,
			TargetLine:  ni.TargetLine,
			Logo:        ni.Logo,
			AdminID:     admin.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}

		admin.InstituteID = inst.ID
		_, err = svc.users.Save(ctx, admin)
		return err
	})
	return inst, err
}

// Mine returns the institute the admin owns.
func (svc *Service) Mine(ctx context.Context, admin user.User) (Institute, error) {
	if admin.InstituteID != "" {
		return svc.repo.GetByID(ctx, admin.InstituteID)
	}
	return svc.repo.GetByAdmin(ctx, admin.ID)
}

// UpdateMine applies a partial update to the admin's institute.
func (svc *Service) UpdateMine(ctx context.Context, admin user.User, ui UpdateInstitute) (Institute, error) {
	inst, err := svc.Mine(ctx, admin)
	if err != nil {
		return Institute{}, err
	}
	if ui.Name != nil {
		exists, err := svc.repo.NameExists(ctx, *ui.Name, inst.ID)
		if err != nil {
			return Institute{}, err
		}
		if exists {
			return Institute{}, ErrNameExists
		}
	}
	ui.apply(&inst)
	inst.UpdatedAt = time.Now().UTC()
	return svc.repo.Update(ctx, inst)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Institute, error) {
	return svc.repo.GetByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Institute, error) {
	return svc.repo.QueryAll(ctx)
}
