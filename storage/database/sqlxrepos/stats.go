package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/studman/core/stats"
	"github.com/trezcool/studman/core/user"
)

type statsRepository struct {
	db *sqlx.DB
}

var _ stats.Repository = (*statsRepository)(nil) // interface compliance check

func NewStatsRepository(db *sqlx.DB) *statsRepository {
	return &statsRepository{db: db}
}

func (repo statsRepository) count(ctx context.Context, dst *int64, q string, args ...interface{}) error {
	return repo.db.GetContext(ctx, dst, repo.db.Rebind(q), args...)
}

// System runs the counts concurrently.
func (repo statsRepository) System(ctx context.Context) (stats.System, error) {
	var s stats.System
	byRole := `SELECT COUNT(*) FROM users WHERE role = ?`

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return repo.count(gctx, &s.Admins.Total, byRole, user.RoleAdmin)
	})
	g.Go(func() error {
		return repo.count(gctx, &s.Admins.Approved, byRole+` AND approved = ?`, user.RoleAdmin, true)
	})
	g.Go(func() error {
		return repo.count(gctx, &s.Admins.Pending, byRole+` AND approved = ?`, user.RoleAdmin, false)
	})
	g.Go(func() error {
		return repo.count(gctx, &s.Institutes.Total, `SELECT COUNT(*) FROM institutes`)
	})
	g.Go(func() error {
		return repo.count(gctx, &s.Students.Total, byRole, user.RoleStudent)
	})
	g.Go(func() error {
		return repo.count(gctx, &s.Lecturers.Total, byRole, user.RoleLecturer)
	})
	if err := g.Wait(); err != nil {
		return stats.System{}, errors.Wrap(err, "counting system statistics")
	}
	return s, nil
}
