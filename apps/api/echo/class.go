package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/studman/core/classroom"
	"github.com/trezcool/studman/core/subject"
	"github.com/trezcool/studman/core/user"
)

type (
	subjectBrief struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		TotalMarks int    `json:"totalMarks"`
	}

	studentBrief struct {
		ID       string `json:"id"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}

	// ClassOverview is a class roster with its subjects.
	ClassOverview struct {
		classroom.Roster
		TotalSubjects int            `json:"totalSubjects"`
		Subjects      []subjectBrief `json:"subjects"`
		StudentList   []studentBrief `json:"students"`
	}
)

type classApi struct {
	classes  *classroom.Service
	subjects *subject.Service
	validate *validator.Validate
}

func registerClassAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := classApi{classes: deps.ClassSvc, subjects: deps.SubjectSvc, validate: deps.Validate}

	cg := g.Group("/class")
	cg.POST("/create-class", api.classCreate, authed, adminOnly)
	cg.POST("/add-student", api.classAddStudent, authed, adminOnly)
	cg.PATCH("/assign-lecturer", api.classAssignLecturer, authed, adminOnly)
	cg.GET("", api.classQuery, authed, adminOnly)
	cg.GET("/admin", api.classQuery, authed, adminOnly)
	cg.GET("/lecturer", api.classQueryLecturer, authed, lecturerOnly)
	cg.GET("/student", api.classQueryStudent, authed, studentOnly)
	cg.GET("/:id", api.classRetrieve, authed, adminOrLecturerOnly)

	ag := g.Group("/admin")
	ag.GET("/classes", api.classQueryRosters, authed, adminOnly)
	ag.GET("/classes/:classId", api.classRosterRetrieve, authed, adminOrLecturerOnly)
	ag.GET("/classes/:classId/students", api.classStudents, authed, adminOrLecturerOnly)
	ag.GET("/class/class-with-subjects", api.classQueryWithSubjects, authed, adminOnly)
}

// Handlers

func (api *classApi) classCreate(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(classroom.NewClass)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.classes.Create(ctx.Request().Context(), admin, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{
		"statusCode": http.StatusCreated,
		"message":    "Class created successfully",
		"class":      cls,
	})
}

func (api *classApi) classAddStudent(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(classroom.Membership)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if data.StudentID == "" {
		return classroom.ErrFieldsRequired
	}

	if err := api.classes.AddStudent(ctx.Request().Context(), admin, data.ClassID, data.StudentID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"statusCode": http.StatusOK, "message": "Student added to class"})
}

func (api *classApi) classAssignLecturer(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(classroom.Membership)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if data.LecturerID == "" {
		return classroom.ErrFieldsRequired
	}

	cls, err := api.classes.AssignLecturer(ctx.Request().Context(), admin, data.ClassID, data.LecturerID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"statusCode": http.StatusOK,
		"message":    "Lecturer assigned to class successfully",
		"class":      cls,
	})
}

func (api *classApi) respondDetails(ctx echo.Context, classes []classroom.Class) error {
	details, err := api.classes.WithLecturers(ctx.Request().Context(), classes...)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, details)
}

func (api *classApi) classQuery(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	classes, err := api.classes.List(ctx.Request().Context(), admin.InstituteID)
	if err != nil {
		return err
	}
	return api.respondDetails(ctx, classes)
}

func (api *classApi) classQueryLecturer(ctx echo.Context) error {
	lecturer, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	classes, err := api.classes.ForLecturer(ctx.Request().Context(), lecturer)
	if err != nil {
		return err
	}
	return api.respondDetails(ctx, classes)
}

func (api *classApi) classQueryStudent(ctx echo.Context) error {
	student, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	classes, err := api.classes.ForStudent(ctx.Request().Context(), student)
	if err != nil {
		return err
	}
	return api.respondDetails(ctx, classes)
}

func (api *classApi) classRetrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()

	cls, err := api.classes.Get(c, usr.InstituteID, ctx.Param("id"))
	if err != nil {
		return err
	}
	details, err := api.classes.WithLecturers(c, cls)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, details[0])
}

func (api *classApi) classQueryRosters(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	rosters, err := api.classes.Rosters(ctx.Request().Context(), admin.InstituteID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rosters)
}

func (api *classApi) classRosterRetrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	roster, err := api.classes.Roster(ctx.Request().Context(), usr.InstituteID, ctx.Param("classId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"statusCode":    http.StatusOK,
		"class":         roster.Class,
		"totalStudents": roster.TotalStudents,
		"totalMales":    roster.TotalMale,
		"totalFemales":  roster.TotalFemale,
	})
}

func (api *classApi) classStudents(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	roster, err := api.classes.Roster(ctx.Request().Context(), usr.InstituteID, ctx.Param("classId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, roster.Students)
}

func (api *classApi) classQueryWithSubjects(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()

	rosters, err := api.classes.Rosters(c, admin.InstituteID)
	if err != nil {
		return err
	}
	subjects, err := api.subjects.List(c, admin.InstituteID)
	if err != nil {
		return err
	}
	byClass := make(map[string][]subjectBrief)
	for _, sub := range subjects {
		byClass[sub.ClassID] = append(byClass[sub.ClassID], subjectBrief{ID: sub.ID, Name: sub.Name, TotalMarks: sub.TotalMarks})
	}

	overviews := make([]ClassOverview, 0, len(rosters))
	for _, roster := range rosters {
		subs := byClass[roster.ID]
		if subs == nil {
			subs = []subjectBrief{}
		}
		overviews = append(overviews, ClassOverview{
			Roster:        roster,
			TotalSubjects: len(subs),
			Subjects:      subs,
			StudentList:   studentBriefs(roster.Students),
		})
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"statusCode": http.StatusOK,
		"count":      len(overviews),
		"classes":    overviews,
	})
}

func studentBriefs(students []user.User) []studentBrief {
	briefs := make([]studentBrief, 0, len(students))
	for _, st := range students {
		briefs = append(briefs, studentBrief{ID: st.ID, FullName: st.FullName, Email: st.Email})
	}
	return briefs
}
