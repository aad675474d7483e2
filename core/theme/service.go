package theme

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/user"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("Theme not found")
	ErrNoActiveTheme     = core.NewNotFoundError("No active theme found")
	ErrNameRequired      = core.BadRequest("Theme name is required")
	ErrInstituteRequired = core.BadRequest("Institute ID is required")
)

type (
	Repository interface {
		Create(ctx context.Context, th Theme) (Theme, error)
		Update(ctx context.Context, th Theme) (Theme, error)
		Delete(ctx context.Context, id string) error
		GetByID(ctx context.Context, id string) (Theme, error)
		// GetActive returns ErrNoActiveTheme when the institute has no active theme.
		GetActive(ctx context.Context, instituteID string) (Theme, error)
		// DeactivateOthers deactivates every theme of the institute except keepID.
		DeactivateOthers(ctx context.Context, instituteID, keepID string) error
		Filter(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Theme, error)
		Count(ctx context.Context, filter QueryFilter) (int64, error)
	}

	Service struct {
		repo   Repository
		tx     core.Transactor
		cache  core.Cache
		ttl    time.Duration
		logger core.Logger
	}
)

func NewService(repo Repository, tx core.Transactor, cache core.Cache, logger core.Logger, conf *core.Config) *Service {
	return &Service{repo: repo, tx: tx, cache: cache, ttl: conf.Cache.ThemeTTL, logger: logger}
}

func activeKey(instituteID string) string { return "theme:active:" + instituteID }

func (svc *Service) invalidate(ctx context.Context, instituteID string) {
	if err := svc.cache.Delete(ctx, activeKey(instituteID)); err != nil {
		svc.logger.Warn("theme cache invalidation failed", err)
	}
}

// save persists th, first deactivating the institute's other themes when th is active.
func (svc *Service) save(ctx context.Context, th Theme, create bool) (Theme, error) {
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		// at most one active theme per institute (unique index)
		if th.IsActive {
			if err := svc.repo.DeactivateOthers(ctx, th.InstituteID, th.ID); err != nil {
				return err
			}
		}
		var err error
		if create {
			th, err = svc.repo.Create(ctx, th)
		} else {
			th, err = svc.repo.Update(ctx, th)
		}
		return err
	})
	if err != nil {
		return Theme{}, err
	}
	svc.invalidate(ctx, th.InstituteID)
	return th, nil
}

// Create adds a theme to the admin's institute.
func (svc *Service) Create(ctx context.Context, admin user.User, nt NewTheme) (Theme, error) {
	if admin.InstituteID == "" {
		return Theme{}, user.ErrInstituteRequired
	}
	now := time.Now().UTC()
	th := Theme{
		ID:              uuid.NewString(),
		Name:            nt.Name,
		Description:     nt.Description,
		InstituteID:     admin.InstituteID,
		Colors:          DefaultColors(),
		FontFamily:      DefaultFontFamily,
		FontSize:        DefaultFontSize,
		Logo:            nt.Logo,
		Favicon:         nt.Favicon,
		BackgroundImage: nt.BackgroundImage,
		IsActive:        nt.IsActive,
		CreatedBy:       admin.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	th.Colors.merge(nt.Colors)
	if nt.FontFamily != "" {
		th.FontFamily = nt.FontFamily
	}
	if nt.FontSize != 0 {
		th.FontSize = nt.FontSize
	}
	return svc.save(ctx, th, true)
}

// List pages through the themes of the caller's institute, newest first unless ordered otherwise.
func (svc *Service) List(ctx context.Context, usr user.User, filter QueryFilter, page core.Pagination) ([]Theme, int64, error) {
	if filter.InstituteID == "" {
		filter.InstituteID = usr.InstituteID
	}
	if !usr.IsSuperAdmin() && filter.InstituteID != usr.InstituteID {
		return []Theme{}, 0, nil
	}
	if len(filter.Ordering) == 0 {
		filter.Ordering = []core.DBOrdering{{Field: "created_at"}}
	}

	var (
		items []Theme
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = svc.repo.Filter(gctx, filter, page)
		return
	})
	g.Go(func() (err error) {
		total, err = svc.repo.Count(gctx, filter)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Active returns the active theme of an institute, served from cache when possible.
func (svc *Service) Active(ctx context.Context, instituteID string) (Theme, error) {
	instituteID = core.CleanString(instituteID)
	if instituteID == "" {
		return Theme{}, ErrInstituteRequired
	}

	key := activeKey(instituteID)
	if b, ok, err := svc.cache.Get(ctx, key); err != nil {
		svc.logger.Warn("theme cache read failed", err)
	} else if ok {
		var th Theme
		if err := json.Unmarshal(b, &th); err == nil {
			return th, nil
		}
	}

	th, err := svc.repo.GetActive(ctx, instituteID)
	if err != nil {
		return Theme{}, err
	}
	if b, err := json.Marshal(th); err != nil {
		return Theme{}, errors.Wrap(err, "encoding theme")
	} else if err := svc.cache.Set(ctx, key, b, svc.ttl); err != nil {
		svc.logger.Warn("theme cache write failed", err)
	}
	return th, nil
}

// Get returns a theme of the caller's institute.
func (svc *Service) Get(ctx context.Context, usr user.User, id string) (Theme, error) {
	th, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Theme{}, err
	}
	if !usr.IsSuperAdmin() && th.InstituteID != usr.InstituteID {
		return Theme{}, ErrNotFound
	}
	return th, nil
}

// Update applies a partial update. Activating a theme deactivates the institute's others.
func (svc *Service) Update(ctx context.Context, admin user.User, id string, ut UpdateTheme) (Theme, error) {
	th, err := svc.Get(ctx, admin, id)
	if err != nil {
		return Theme{}, err
	}
	ut.apply(&th)
	th.UpdatedAt = time.Now().UTC()
	return svc.save(ctx, th, false)
}

// Delete removes a theme of the admin's institute.
func (svc *Service) Delete(ctx context.Context, admin user.User, id string) error {
	th, err := svc.Get(ctx, admin, id)
	if err != nil {
		return err
	}
	if err := svc.repo.Delete(ctx, th.ID); err != nil {
		return err
	}
	svc.invalidate(ctx, th.InstituteID)
	return nil
}
