package feestructure

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/classroom"
	"github.com/trezcool/studman/core/user"
)

var (
	// errors
	ErrNotFound            = core.NewNotFoundError("Not found")
	ErrInvalidCategory     = core.BadRequest("Invalid category")
	ErrClassRequired       = core.BadRequest("classId is required for class category")
	ErrStudentRequired     = core.BadRequest("studentId is required for student category")
	ErrParticularsRequired = core.BadRequest("particulars are required")
)

type (
	Repository interface {
		Create(ctx context.Context, fs FeeStructure) (FeeStructure, error)
		Update(ctx context.Context, fs FeeStructure) (FeeStructure, error)
		Delete(ctx context.Context, id string) error
		GetByID(ctx context.Context, id string) (FeeStructure, error)
		Filter(ctx context.Context, filter QueryFilter, page core.Pagination) ([]FeeStructure, error)
		Count(ctx context.Context, filter QueryFilter) (int64, error)
	}

	Service struct {
		repo    Repository
		classes *classroom.Service
		users   *user.Service
	}
)

func NewService(repo Repository, classes *classroom.Service, users *user.Service) *Service {
	return &Service{repo: repo, classes: classes, users: users}
}

// checkTarget makes sure the class or student targeted belongs to the institute.
func (svc *Service) checkTarget(ctx context.Context, instituteID string, fs FeeStructure) error {
	switch fs.Category {
	case CategoryClass:
		_, err := svc.classes.Get(ctx, instituteID, fs.ClassID)
		return err
	case CategoryStudent:
		_, err := svc.users.GetStudent(ctx, instituteID, fs.StudentID)
		return err
	}
	return nil
}

// Create publishes a fee structure for the admin's institute.
func (svc *Service) Create(ctx context.Context, admin user.User, nfs NewFeeStructure) (FeeStructure, error) {
	if admin.InstituteID == "" {
		return FeeStructure{}, user.ErrInstituteRequired
	}
	now := time.Now().UTC()
	fs := FeeStructure{
		ID:          uuid.NewString(),
		Category:    nfs.Category,
		Particulars: nfs.Particulars,
		TotalAmount: Total(nfs.Particulars),
		InstituteID: admin.InstituteID,
		CreatedBy:   admin.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch fs.Category {
	case CategoryClass:
		fs.ClassID = nfs.ClassID
	case CategoryStudent:
		fs.StudentID = nfs.StudentID
	}
	if err := svc.checkTarget(ctx, admin.InstituteID, fs); err != nil {
		return FeeStructure{}, err
	}
	return svc.repo.Create(ctx, fs)
}

// List pages through fee structures matching filter, newest first unless ordered otherwise.
// The institute defaults to the caller's.
func (svc *Service) List(ctx context.Context, usr user.User, filter QueryFilter, page core.Pagination) ([]FeeStructure, int64, error) {
	if filter.InstituteID == "" {
		filter.InstituteID = usr.InstituteID
	}
	if !usr.IsSuperAdmin() && filter.InstituteID != usr.InstituteID {
		return []FeeStructure{}, 0, nil
	}
	if len(filter.Ordering) == 0 {
		filter.Ordering = []core.DBOrdering{{Field: "created_at"}}
	}

	var (
		items []FeeStructure
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

// Get returns a fee structure of the caller's institute.
func (svc *Service) Get(ctx context.Context, usr user.User, id string) (FeeStructure, error) {
	fs, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return FeeStructure{}, err
	}
	if !usr.IsSuperAdmin() && fs.InstituteID != usr.InstituteID {
		return FeeStructure{}, ErrNotFound
	}
	return fs, nil
}

// Update applies a partial update; the total follows the particulars.
func (svc *Service) Update(ctx context.Context, admin user.User, id string, ufs UpdateFeeStructure) (FeeStructure, error) {
	fs, err := svc.Get(ctx, admin, id)
	if err != nil {
		return FeeStructure{}, err
	}
	if err := ufs.apply(&fs); err != nil {
		return FeeStructure{}, err
	}
	if err := svc.checkTarget(ctx, fs.InstituteID, fs); err != nil {
		return FeeStructure{}, err
	}
	fs.UpdatedAt = time.Now().UTC()
	return svc.repo.Update(ctx, fs)
}

// Delete removes a fee structure and returns it.
func (svc *Service) Delete(ctx context.Context, admin user.User, id string) (FeeStructure, error) {
	fs, err := svc.Get(ctx, admin, id)
	if err != nil {
		return FeeStructure{}, err
	}
	return fs, svc.repo.Delete(ctx, fs.ID)
}
