package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/user"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		StatusCode int       `json:"statusCode"`
		Token      string    `json:"token"`
		User       user.User `json:"user"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

type sessionApi struct {
	auth     *tokenAuth
	service  *user.Service
	validate *validator.Validate
}

func registerSessionAPI(g *echo.Group, auth *tokenAuth, svc *user.Service, validate *validator.Validate) {
	api := sessionApi{auth: auth, service: svc, validate: validate}

	sg := g.Group("/auth")
	sg.POST("/login", api.sessionLogin)
	sg.POST("/logout", api.sessionLogout)

	// authed endpoints
	sg.GET("/me", api.sessionUser, auth.Required())
	sg.POST("/token/refresh", api.sessionRefresh, auth.Required())
}

func (api *sessionApi) sessionLogin(ctx echo.Context) error {
	data := new(LoginRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.service.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}
	token, err := api.auth.GenerateToken(api.auth.UserClaims(usr))
	if err != nil {
		return err
	}

	api.auth.setCookie(ctx, token)
	return ctx.JSON(http.StatusOK, LoginResponse{StatusCode: http.StatusOK, Token: token, User: usr})
}

func (api *sessionApi) sessionLogout(ctx echo.Context) error {
	api.auth.clearCookie(ctx)
	return ctx.JSON(http.StatusOK, echo.Map{"statusCode": http.StatusOK, "message": "Logged out successfully"})
}

func (api *sessionApi) sessionUser(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"statusCode": http.StatusOK, "user": usr})
}

func (api *sessionApi) sessionRefresh(ctx echo.Context) error {
	token, err := api.auth.refresh(ctx)
	if err != nil {
		return err
	}
	api.auth.setCookie(ctx, token)
	return ctx.JSON(http.StatusOK, echo.Map{"statusCode": http.StatusOK, "token": token})
}
