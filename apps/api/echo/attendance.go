package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/studman/core/attendance"
)

type attendanceApi struct {
	service  *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := attendanceApi{service: deps.AttendanceSvc, validate: deps.Validate}

	ag := g.Group("/attendance")
	ag.POST("/mark", api.attendanceMark, authed)
	ag.GET("/get-attendance", api.attendanceQueryMine, authed, studentOnly)
	ag.GET("/subject", api.attendanceQuery, authed, adminOrLecturerOnly)
	ag.GET("/summary/me", api.attendanceSummaryMine, authed, studentOnly)
	ag.GET("/eligibility/:subjectId", api.attendanceEligibility, authed, studentOnly)
	ag.GET("/analytics/subject/:subjectId", api.attendanceSubjectAnalytics, authed, adminOrLecturerOnly)
	ag.GET("/summary/subject/:subjectId", api.attendanceSubjectAnalytics, authed, adminOrLecturerOnly)
	ag.GET("/student/:studentId/summary", api.attendanceStudentSummary, authed, adminOrLecturerOnly)
}

// Handlers

func (api *attendanceApi) attendanceMark(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !usr.IsAdmin() && !usr.IsLecturer() {
		return attendance.ErrCannotMark
	}

	data := new(attendance.NewAttendance)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.service.Mark(ctx.Request().Context(), usr, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"message": "Attendance recorded successfully", "data": att})
}

func (api *attendanceApi) attendanceQueryMine(ctx echo.Context) error {
	student, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	records, err := api.service.StudentRecords(ctx.Request().Context(), student)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) attendanceQuery(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	sessions, err := api.service.Sessions(
		ctx.Request().Context(),
		usr,
		ctx.QueryParam("subjectId"),
		ctx.QueryParam("classId"),
		ctx.QueryParam("date"),
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *attendanceApi) attendanceSummaryMine(ctx echo.Context) error {
	student, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	summaries, err := api.service.Summary(ctx.Request().Context(), student)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *attendanceApi) attendanceEligibility(ctx echo.Context) error {
	student, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	elig, err := api.service.Eligibility(ctx.Request().Context(), student, ctx.Param("subjectId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, elig)
}

func (api *attendanceApi) attendanceSubjectAnalytics(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	counts, err := api.service.SubjectAnalytics(ctx.Request().Context(), usr, ctx.Param("subjectId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *attendanceApi) attendanceStudentSummary(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	summary, err := api.service.StudentSummary(ctx.Request().Context(), usr, ctx.Param("studentId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}
