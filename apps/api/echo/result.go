package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/studman/core/result"
)

type resultApi struct {
	service  *result.Service
	validate *validator.Validate
}

func registerResultAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := resultApi{service: deps.ResultSvc, validate: deps.Validate}

	ag := g.Group("/admin")
	ag.POST("/assign-marks", api.resultAssign, authed, adminOrLecturerOnly)
	ag.GET("/results/class/:classId", api.resultQueryClass, authed, adminOrLecturerOnly)
	ag.GET("/results/subject/:subjectId", api.resultQuerySubject, authed, adminOrLecturerOnly)
	ag.GET("/results/me", api.resultQueryMine, authed, studentOnly)
}

// Handlers

func (api *resultApi) resultAssign(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(result.NewMarks)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.service.AssignMarks(ctx.Request().Context(), usr, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"statusCode": http.StatusOK,
		"message":    "Marks assigned successfully",
		"result":     res,
	})
}

func (api *resultApi) resultQueryClass(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	results, err := api.service.ForClass(ctx.Request().Context(), usr.InstituteID, ctx.Param("classId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *resultApi) resultQuerySubject(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	results, err := api.service.ForSubject(ctx.Request().Context(), usr.InstituteID, ctx.Param("subjectId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *resultApi) resultQueryMine(ctx echo.Context) error {
	student, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	results, err := api.service.ForStudent(ctx.Request().Context(), student)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, results)
}
