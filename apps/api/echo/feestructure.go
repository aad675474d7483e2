package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/studman/core/feestructure"
)

// query name -> column
var feeStructureOrderings = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"totalAmount": "total_amount",
	"category":    "category",
}

type feeStructureApi struct {
	service  *feestructure.Service
	validate *validator.Validate
}

func registerFeeStructureAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := feeStructureApi{service: deps.FeeStructureSvc, validate: deps.Validate}

	fg := g.Group("/fee-structures", authed)
	fg.POST("", api.feeStructureCreate, adminOnly)
	fg.GET("", api.feeStructureQuery)
	fg.GET("/:id", api.feeStructureRetrieve)
	fg.PUT("/:id", api.feeStructureUpdate, adminOnly)
	fg.DELETE("/:id", api.feeStructureDestroy, adminOnly)
}

// Handlers

func (api *feeStructureApi) feeStructureCreate(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(feestructure.NewFeeStructure)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fs, err := api.service.Create(ctx.Request().Context(), admin, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "data": fs})
}

func (api *feeStructureApi) feeStructureQuery(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	filter := new(feestructure.QueryFilter)
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, filter); err != nil {
		return err
	}
	ord := new(Ordering)
	if err := ord.Bind(ctx, feeStructureOrderings); err != nil {
		return err
	}
	filter.Ordering = ord.Orderings
	page := bindPagination(ctx)

	items, total, err := api.service.List(ctx.Request().Context(), usr, *filter, page)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": items, "meta": page.Meta(total)})
}

func (api *feeStructureApi) feeStructureRetrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	fs, err := api.service.Get(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": fs})
}

func (api *feeStructureApi) feeStructureUpdate(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(feestructure.UpdateFeeStructure)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fs, err := api.service.Update(ctx.Request().Context(), admin, ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": fs})
}

func (api *feeStructureApi) feeStructureDestroy(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	fs, err := api.service.Delete(ctx.Request().Context(), admin, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": fs, "message": "Deleted"})
}
