package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/studman/core/classroom"
	"github.com/trezcool/studman/core/institute"
	"github.com/trezcool/studman/core/subject"
	"github.com/trezcool/studman/core/user"
)

// StudentView is a student along with the name of their class.
type StudentView struct {
	user.User
	ClassName string `json:"className,omitempty"`
}

type adminApi struct {
	users      *user.Service
	institutes *institute.Service
	classes    *classroom.Service
	subjects   *subject.Service
	validate   *validator.Validate
}

func registerAdminAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := adminApi{
		users:      deps.UserSvc,
		institutes: deps.InstituteSvc,
		classes:    deps.ClassSvc,
		subjects:   deps.SubjectSvc,
		validate:   deps.Validate,
	}

	ag := g.Group("/admin")

	// un-authed endpoints
	ag.POST("/admin-request", api.adminRequest)

	// any authenticated user
	ag.PATCH("/reset-password", api.userResetPassword, authed)

	// institute
	ag.POST("/create-institute", api.instituteCreate, authed, adminOnly)
	ag.GET("/my-institute", api.instituteRetrieve, authed, adminOnly)
	ag.PATCH("/my-institute", api.instituteUpdate, authed, adminOnly)

	// people
	ag.POST("/create-student", api.studentCreate, authed, adminOnly)
	ag.POST("/create-lecturer", api.lecturerCreate, authed, adminOnly)
	ag.PATCH("/lecturers/:id/profile", api.lecturerUpdate, authed, adminOnly)
	ag.GET("/students", api.studentQuery, authed, adminOnly)
	ag.GET("/students/:id", api.studentRetrieve, authed, adminOnly)
	ag.GET("/students/:id/classes", api.studentClasses, authed, adminOnly)
	ag.GET("/lecturers", api.lecturerQuery, authed, adminOnly)
	ag.GET("/lecturers/:id", api.lecturerRetrieve, authed, adminOnly)
	ag.GET("/lecturers/:id/classes", api.lecturerClasses, authed, adminOnly)

	// legacy mounts
	lg := g.Group("/lecturer")
	lg.GET("/employee", api.lecturerQuery, authed, adminOnly)
	lg.GET("/:id", api.lecturerRetrieve, authed, adminOnly)
	stg := g.Group("/student")
	stg.GET("", api.studentQuery, authed, adminOnly)
	stg.GET("/:id", api.legacyStudentRetrieve, authed, adminOnly)
}

// Handlers

func (api *adminApi) adminRequest(ctx echo.Context) error {
	data := new(user.AdminRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.users.RequestAdminAccount(ctx.Request().Context(), *data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{
		"statusCode": http.StatusCreated,
		"message":    "Admin signup request submitted. Awaiting approval.",
	})
}

func (api *adminApi) userResetPassword(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(user.ResetPassword)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate, usr); err != nil {
		return err
	}

	if err := api.users.ResetPassword(ctx.Request().Context(), usr, data.NewPassword); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"statusCode": http.StatusOK, "message": "Password reset successfully"})
}

func (api *adminApi) instituteCreate(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(institute.NewInstitute)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inst, err := api.institutes.Create(ctx.Request().Context(), admin, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{
		"statusCode": http.StatusCreated,
		"message":    "Institute created successfully",
		"institute":  inst,
	})
}

func (api *adminApi) instituteRetrieve(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	inst, err := api.institutes.Mine(ctx.Request().Context(), admin)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"statusCode": http.StatusOK, "success": true, "data": inst})
}

func (api *adminApi) instituteUpdate(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(institute.UpdateInstitute)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inst, err := api.institutes.UpdateMine(ctx.Request().Context(), admin, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"statusCode": http.StatusOK,
		"message":    "Institute updated successfully",
		"institute":  inst,
	})
}

func (api *adminApi) studentCreate(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(user.NewStudent)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	student, tempPwd, err := api.classes.CreateStudent(ctx.Request().Context(), admin, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{
		"statusCode":   http.StatusCreated,
		"message":      "Student created successfully",
		"student":      student,
		"tempPassword": tempPwd,
	})
}

func (api *adminApi) lecturerCreate(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(user.NewLecturer)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lecturer, tempPwd, err := api.users.CreateLecturer(ctx.Request().Context(), admin, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{
		"statusCode":   http.StatusCreated,
		"message":      "Employee created successfully",
		"lecturer":     lecturer,
		"tempPassword": tempPwd,
	})
}

func (api *adminApi) lecturerUpdate(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(user.UpdateLecturer)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lecturer, err := api.users.UpdateLecturer(ctx.Request().Context(), admin, ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"statusCode": http.StatusOK,
		"message":    "Lecturer profile updated",
		"lecturer":   lecturer,
	})
}

// studentViews attaches class names to students.
func (api *adminApi) studentViews(c context.Context, students ...user.User) ([]StudentView, error) {
	classIDs := make([]string, 0, len(students))
	for _, st := range students {
		if st.ClassID != "" {
			classIDs = append(classIDs, st.ClassID)
		}
	}
	names, err := api.classes.Names(c, classIDs...)
	if err != nil {
		return nil, err
	}

	views := make([]StudentView, 0, len(students))
	for _, st := range students {
		views = append(views, StudentView{User: st, ClassName: names[st.ClassID]})
	}
	return views, nil
}

func (api *adminApi) studentQuery(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()

	students, err := api.users.Students(c, admin.InstituteID, "")
	if err != nil {
		return err
	}
	views, err := api.studentViews(c, students...)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *adminApi) studentRetrieve(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()

	student, err := api.users.GetStudent(c, admin.InstituteID, ctx.Param("id"))
	if err != nil {
		return err
	}
	views, err := api.studentViews(c, student)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, views[0])
}

func (api *adminApi) legacyStudentRetrieve(ctx echo.Context) error {
	if err := api.studentRetrieve(ctx); err != nil {
		if err == user.ErrStudentNotFound {
			return user.ErrNotFound
		}
		return err
	}
	return nil
}

func (api *adminApi) studentClasses(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()

	student, err := api.users.GetStudent(c, admin.InstituteID, ctx.Param("id"))
	if err != nil {
		return err
	}
	classes, err := api.classes.ForStudent(c, student)
	if err != nil {
		return err
	}
	subjects, err := api.subjects.ForStudent(c, student)
	if err != nil {
		return err
	}

	var cls *classroom.Class
	if len(classes) > 0 {
		cls = &classes[0]
	}
	return ctx.JSON(http.StatusOK, echo.Map{"class": cls, "subjects": subjects})
}

func (api *adminApi) lecturerQuery(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	lecturers, err := api.users.Lecturers(ctx.Request().Context(), admin.InstituteID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lecturers)
}

func (api *adminApi) lecturerRetrieve(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	lecturer, err := api.users.GetLecturer(ctx.Request().Context(), admin.InstituteID, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lecturer)
}

func (api *adminApi) lecturerClasses(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()

	lecturer, err := api.users.GetLecturer(c, admin.InstituteID, ctx.Param("id"))
	if err != nil {
		return err
	}
	subjects, err := api.subjects.ForLecturer(c, lecturer.ID)
	if err != nil {
		return err
	}
	details, err := api.subjects.WithDetails(c, subjects...)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, details)
}
