package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/studman/core/subject"
)

type subjectApi struct {
	service  *subject.Service
	validate *validator.Validate
}

func registerSubjectAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := subjectApi{service: deps.SubjectSvc, validate: deps.Validate}

	sg := g.Group("/subject")
	sg.POST("/create-subject", api.subjectCreate, authed, adminOnly)
	sg.PATCH("/assign-lecturer", api.subjectAssignLecturer, authed, adminOnly)
	sg.GET("", api.subjectQuery, authed, adminOnly)
	sg.GET("/lecturer", api.subjectQueryLecturer, authed, lecturerOnly)
	sg.GET("/student", api.subjectQueryStudent, authed, studentOnly)
	sg.GET("/:id", api.subjectRetrieve, authed)
}

// Handlers

func (api *subjectApi) subjectCreate(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(subject.NewSubject)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.service.Create(ctx.Request().Context(), admin, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{
		"statusCode": http.StatusCreated,
		"message":    "Subject assigned to class successfully",
		"subject":    sub,
	})
}

func (api *subjectApi) subjectAssignLecturer(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(subject.AssignLecturer)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.service.AssignLecturer(ctx.Request().Context(), admin, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"statusCode": http.StatusOK,
		"message":    "Lecturer assigned to subject successfully",
		"subject":    sub,
	})
}

func (api *subjectApi) respondDetails(ctx echo.Context, subjects []subject.Subject) error {
	details, err := api.service.WithDetails(ctx.Request().Context(), subjects...)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, details)
}

func (api *subjectApi) subjectQuery(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.service.List(ctx.Request().Context(), admin.InstituteID)
	if err != nil {
		return err
	}
	return api.respondDetails(ctx, subjects)
}

func (api *subjectApi) subjectQueryLecturer(ctx echo.Context) error {
	lecturer, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.service.ForLecturer(ctx.Request().Context(), lecturer.ID)
	if err != nil {
		return err
	}
	return api.respondDetails(ctx, subjects)
}

func (api *subjectApi) subjectQueryStudent(ctx echo.Context) error {
	student, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.service.ForStudent(ctx.Request().Context(), student)
	if err != nil {
		return err
	}
	return api.respondDetails(ctx, subjects)
}

func (api *subjectApi) subjectRetrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()

	sub, err := api.service.Get(c, usr.InstituteID, ctx.Param("id"))
	if err != nil {
		return err
	}
	details, err := api.service.WithDetails(c, sub)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, details[0])
}
