package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/user"
)

const (
	tokenCookie     = "token"
	contextUserKey  = "user"
	contextClaimKey = "claims"
)

var (
	errNotAuthenticated    = core.NewAuthenticationError("Not authenticated")
	errInvalidToken        = core.NewAuthenticationError("Token is not valid")
	errUserNotFound        = core.NewAuthenticationError("User not found")
	errRefreshExpired      = core.NewAuthenticationError("Token refresh expired")
	errAccessDenied        = core.NewPermissionError("Access denied")
	errSuperAdminOnly      = core.NewPermissionError("Super admin only")
	errUsrNotFoundInCtx    = errors.New("user object not found in echo.Context")
	errClaimsNotFoundInCtx = errors.New("claims not found in echo.Context")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Role         string `json:"role"`
	Institute    string `json:"institute,omitempty"`
	IsSuperAdmin bool   `json:"is_super_admin,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`    // -> ADMIN PORTAL
	IsLecturer   bool   `json:"is_lecturer,omitempty"` // -> LECTURER PORTAL
	IsStudent    bool   `json:"is_student,omitempty"`  // -> STUDENT PORTAL
	OrigIssuedAt int64  `json:"oriat,omitempty"`
}

// tokenAuth issues and checks the API tokens.
type tokenAuth struct {
	conf  *core.Config
	key   []byte
	users *user.Service
	now   func() time.Time // mockable
}

func newTokenAuth(conf *core.Config, users *user.Service) *tokenAuth {
	return &tokenAuth{conf: conf, key: []byte(conf.SecretKey), users: users, now: time.Now}
}

// ttl is the lifetime of a token of usr.
func (ta *tokenAuth) ttl(usr user.User) time.Duration {
	if usr.IsSuperAdmin() {
		return ta.conf.Server.SuperAdminJWTExpirationDelta
	}
	return ta.conf.Server.JWTExpirationDelta
}

// UserClaims builds the claims of usr; origIat carries over the original issue time on refresh.
func (ta *tokenAuth) UserClaims(usr user.User, origIat ...int64) *Claims {
	now := ta.now()
	oriat := now.Unix()
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ta.conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ta.ttl(usr))),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role:         usr.Role,
		Institute:    usr.InstituteID,
		IsSuperAdmin: usr.IsSuperAdmin(),
		IsAdmin:      usr.IsAdmin(),
		IsLecturer:   usr.IsLecturer(),
		IsStudent:    usr.IsStudent(),
		OrigIssuedAt: oriat,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func (ta *tokenAuth) GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(ta.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (ta *tokenAuth) parse(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		tokenStr,
		claims,
		func(*jwt.Token) (interface{}, error) { return ta.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ta.now),
	)
	if err != nil {
		return nil, errInvalidToken
	}
	return claims, nil
}

// extractToken reads the bearer token, then the token cookie.
func extractToken(ctx echo.Context) string {
	if auth := ctx.Request().Header.Get(echo.HeaderAuthorization); auth != "" {
		if scheme, token, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := ctx.Cookie(tokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// authenticate loads the user behind the request token into the context.
func (ta *tokenAuth) authenticate(ctx echo.Context) error {
	tokenStr := extractToken(ctx)
	if tokenStr == "" {
		return errNotAuthenticated
	}
	claims, err := ta.parse(tokenStr)
	if err != nil {
		return err
	}

	usr, err := ta.users.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if core.IsNotFound(err) {
			return errUserNotFound
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return user.ErrAccountDeactivated
	}
	ctx.Set(contextClaimKey, *claims)
	ctx.Set(contextUserKey, usr)
	return nil
}

// Required rejects unauthenticated requests.
func (ta *tokenAuth) Required() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := ta.authenticate(ctx); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

// Optional authenticates the request when it carries a valid token, and lets it through anyway.
func (ta *tokenAuth) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			_ = ta.authenticate(ctx)
			return next(ctx)
		}
	}
}

// refresh issues a new token while the refresh window of the original one is open.
func (ta *tokenAuth) refresh(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return "", err
	}

	window := ta.conf.Server.JWTRefreshExpirationDelta + ta.ttl(usr)
	if expTime := time.Unix(claims.OrigIssuedAt, 0).Add(window); !ta.now().Before(expTime) {
		return "", errRefreshExpired
	}
	token, err := ta.GenerateToken(ta.UserClaims(usr, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}

func (ta *tokenAuth) setCookie(ctx echo.Context, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ta.conf.Server.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   !ta.conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func (ta *tokenAuth) clearCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !ta.conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if claims, ok := ctx.Get(contextClaimKey).(Claims); ok {
		return claims, nil
	}
	return Claims{}, errClaimsNotFoundInCtx
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUsrNotFoundInCtx
}
