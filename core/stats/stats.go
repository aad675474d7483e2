// Package stats reports system-wide figures to super admins.
package stats

import "context"

type (
	AdminCounts struct {
		Total    int64 `json:"total"`
		Approved int64 `json:"approved"`
		Pending  int64 `json:"pending"`
	}

	Total struct {
		Total int64 `json:"total"`
	}

	System struct {
		Admins     AdminCounts `json:"admins"`
		Institutes Total       `json:"institutes"`
		Students   Total       `json:"students"`
		Lecturers  Total       `json:"lecturers"`
	}
)

type (
	Repository interface {
		System(ctx context.Context) (System, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) System(ctx context.Context) (System, error) {
	return svc.repo.System(ctx)
}
