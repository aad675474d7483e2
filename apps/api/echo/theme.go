package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/studman/core/theme"
)

// query name -> column
var themeOrderings = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"isActive":  "is_active",
}

type themeApi struct {
	service  *theme.Service
	validate *validator.Validate
}

func registerThemeAPI(g *echo.Group, auth *tokenAuth, deps ServerDeps) {
	api := themeApi{service: deps.ThemeSvc, validate: deps.Validate}

	tg := g.Group("/themes")

	// public endpoint
	tg.GET("/active", api.themeRetrieveActive, auth.Optional())

	// authed endpoints
	authed := auth.Required()
	tg.POST("", api.themeCreate, authed, adminOnly)
	tg.GET("", api.themeQuery, authed)
	tg.GET("/:id", api.themeRetrieve, authed)
	tg.PUT("/:id", api.themeUpdate, authed, adminOnly)
	tg.DELETE("/:id", api.themeDestroy, authed, adminOnly)
}

// Handlers

func (api *themeApi) themeCreate(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(theme.NewTheme)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	th, err := api.service.Create(ctx.Request().Context(), admin, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "data": th})
}

func (api *themeApi) themeQuery(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	isActive, err := bindBool(ctx, "isActive")
	if err != nil {
		return err
	}
	ord := new(Ordering)
	if err := ord.Bind(ctx, themeOrderings); err != nil {
		return err
	}
	filter := theme.QueryFilter{
		InstituteID: ctx.QueryParam("institute"),
		IsActive:    isActive,
		Ordering:    ord.Orderings,
	}
	page := bindPagination(ctx)

	items, total, err := api.service.List(ctx.Request().Context(), usr, filter, page)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": items, "meta": page.Meta(total)})
}

func (api *themeApi) themeRetrieveActive(ctx echo.Context) error {
	instituteID := ctx.QueryParam("institute")
	if instituteID == "" {
		if usr, err := getContextUser(ctx); err == nil {
			instituteID = usr.InstituteID
		}
	}

	th, err := api.service.Active(ctx.Request().Context(), instituteID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": th})
}

func (api *themeApi) themeRetrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	th, err := api.service.Get(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": th})
}

func (api *themeApi) themeUpdate(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(theme.UpdateTheme)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	th, err := api.service.Update(ctx.Request().Context(), admin, ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": th})
}

func (api *themeApi) themeDestroy(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err := api.service.Delete(ctx.Request().Context(), admin, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "Theme deleted successfully"})
}
