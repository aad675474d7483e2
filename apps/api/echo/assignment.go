package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/studman/core/assignment"
)

type assignmentApi struct {
	service  *assignment.Service
	validate *validator.Validate
}

func registerAssignmentAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := assignmentApi{service: deps.AssignmentSvc, validate: deps.Validate}

	// role checks of the write endpoints are done by the service
	ag := g.Group("/assignments")
	ag.POST("/create", api.assignmentCreate, authed)
	ag.GET("/subject/:subjectId", api.assignmentQuerySubject, authed)

	g.GET("/admin/assignments", api.assignmentQuery, authed, adminOnly)

	sg := g.Group("/submissions")
	sg.POST("/submit", api.submissionCreate, authed)
	sg.PATCH("/grade/:submissionId", api.submissionGrade, authed)
	sg.GET("/assignment/:assignmentId", api.submissionQuery, authed, adminOrLecturerOnly)
	sg.GET("/me", api.submissionQueryMine, authed, studentOnly)
}

// Handlers

func (api *assignmentApi) assignmentCreate(ctx echo.Context) error {
	lecturer, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !lecturer.IsLecturer() {
		return assignment.ErrOnlyLecturersCreate
	}

	data := new(assignment.NewAssignment)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	asg, err := api.service.Create(ctx.Request().Context(), lecturer, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"message": "Assignment created successfully", "assignment": asg})
}

func (api *assignmentApi) assignmentQuerySubject(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	assignments, err := api.service.ForSubject(ctx.Request().Context(), usr.InstituteID, ctx.Param("subjectId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) assignmentQuery(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	assignments, err := api.service.List(ctx.Request().Context(), admin.InstituteID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) submissionCreate(ctx echo.Context) error {
	student, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !student.IsStudent() {
		return assignment.ErrOnlyStudentsSubmit
	}

	data := new(assignment.NewSubmission)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.service.Submit(ctx.Request().Context(), student, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"message": "Assignment submitted successfully", "submission": sub})
}

func (api *assignmentApi) submissionGrade(ctx echo.Context) error {
	lecturer, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !lecturer.IsLecturer() {
		return assignment.ErrOnlyLecturersGrade
	}

	data := new(assignment.Grade)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.service.Grade(ctx.Request().Context(), lecturer, ctx.Param("submissionId"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Submission graded", "submission": sub})
}

func (api *assignmentApi) submissionQuery(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	subs, err := api.service.Submissions(ctx.Request().Context(), usr.InstituteID, ctx.Param("assignmentId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *assignmentApi) submissionQueryMine(ctx echo.Context) error {
	student, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	subs, err := api.service.MySubmissions(ctx.Request().Context(), student)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subs)
}
