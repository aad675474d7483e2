package echoapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/user"
)

const profilePhotoField = "profilePhoto"

var (
	errFileNotFound = core.BadRequest("File not found")
	errNotAnImage   = core.BadRequest("Only image files are allowed")
	errFileTooLarge = core.BadRequest("File size too large. Max 5MB allowed.")
)

type uploadApi struct {
	users   *user.Service
	maxSize int64
}

func registerUploadAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := uploadApi{users: deps.UserSvc, maxSize: deps.Conf.Server.MaxUploadSize}

	ug := g.Group("/upload", authed)
	ug.POST("/profile-photo", api.profilePhotoUpload)
	ug.GET("/profile-photo", api.profilePhotoRetrieve)
}

// Handlers

func (api *uploadApi) profilePhotoUpload(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	fh, err := ctx.FormFile(profilePhotoField)
	if err != nil {
		return errFileNotFound
	}
	if api.maxSize > 0 && fh.Size > api.maxSize {
		return errFileTooLarge
	}
	file, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer file.Close()

	// content type is sniffed, the client header is ignored
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return errors.Wrap(err, "reading uploaded file")
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return errNotAnImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "rewinding uploaded file")
	}

	usr, err = api.users.SetProfilePhoto(ctx.Request().Context(), usr, file, fh.Size, contentType, fh.Filename)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"message":      "Profile photo uploaded successfully",
		"profilePhoto": usr.ProfilePhoto,
		"user":         usr,
	})
}

func (api *uploadApi) profilePhotoRetrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if usr.ProfilePhoto == "" {
		return user.ErrProfilePhotoNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"profilePhoto": usr.ProfilePhoto})
}
