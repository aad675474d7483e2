package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studman/core"
)

var (
	orderingParam = "ordering"
	pageParam     = "page"
	limitParam    = "limit"
)

// Ordering binds `?ordering=-created_at,name` against the fields allowed for a listing.
// Query names map to column names.
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context, allowed map[string]string) error {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return nil
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		column, ok := allowed[field]
		if !ok {
			return core.NewValidationError(
				errors.Errorf("unknown ordering field %q", field),
				core.FieldError{Field: orderingParam, Error: "unknown field " + field},
			)
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: column, Ascending: !descending})
	}
	return nil
}

// bindPagination reads `page` and `limit`; invalid values fall back to the defaults.
func bindPagination(ctx echo.Context) core.Pagination {
	page, _ := strconv.Atoi(ctx.QueryParam(pageParam))
	limit, _ := strconv.Atoi(ctx.QueryParam(limitParam))
	return core.NewPagination(page, limit)
}

// bindBool parses an optional boolean query param.
func bindBool(ctx echo.Context, name string) (*bool, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, core.NewValidationError(err, core.FieldError{Field: name, Error: "must be a boolean"})
	}
	return &b, nil
}
