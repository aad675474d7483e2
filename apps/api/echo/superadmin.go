package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/studman/core/institute"
	"github.com/trezcool/studman/core/stats"
	"github.com/trezcool/studman/core/user"
)

type superAdminApi struct {
	auth       *tokenAuth
	users      *user.Service
	institutes *institute.Service
	stats      *stats.Service
	validate   *validator.Validate
}

func registerSuperAdminAPI(g *echo.Group, auth *tokenAuth, deps ServerDeps) {
	api := superAdminApi{
		auth:       auth,
		users:      deps.UserSvc,
		institutes: deps.InstituteSvc,
		stats:      deps.StatsSvc,
		validate:   deps.Validate,
	}

	sg := g.Group("/super-admin")
	sg.POST("/super-admin/login", api.superAdminLogin)

	// authed endpoints
	guards := []echo.MiddlewareFunc{auth.Required(), superAdminOnly}
	sg.PATCH("/approve-admin/:adminId", api.adminApprove, guards...)
	sg.GET("/pending-admins", api.adminQueryPending, guards...)
	sg.GET("/stats", api.systemStats, guards...)
	sg.GET("/institutes", api.instituteQuery, guards...)
	sg.GET("/institutes/:id", api.instituteRetrieve, guards...)
}

func (api *superAdminApi) superAdminLogin(ctx echo.Context) error {
	data := new(LoginRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.users.AuthenticateSuperAdmin(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}
	token, err := api.auth.GenerateToken(api.auth.UserClaims(usr))
	if err != nil {
		return err
	}

	api.auth.setCookie(ctx, token)
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Super admin login successful",
		"token":   token,
		"user":    usr.Summary(),
	})
}

func (api *superAdminApi) adminApprove(ctx echo.Context) error {
	usr, err := api.users.ApproveAdmin(ctx.Request().Context(), ctx.Param("adminId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "User approved successfully", "user": usr})
}

func (api *superAdminApi) adminQueryPending(ctx echo.Context) error {
	admins, err := api.users.PendingAdmins(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Pending admin requests",
		"total":   len(admins),
		"data":    admins,
	})
}

func (api *superAdminApi) systemStats(ctx echo.Context) error {
	s, err := api.stats.System(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "System statistics", "data": s})
}

func (api *superAdminApi) instituteQuery(ctx echo.Context) error {
	insts, err := api.institutes.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "count": len(insts), "data": insts})
}

func (api *superAdminApi) instituteRetrieve(ctx echo.Context) error {
	inst, err := api.institutes.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": inst})
}
