package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/studman/core/fee"
)

type feeApi struct {
	service  *fee.Service
	validate *validator.Validate
}

func registerFeeAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := feeApi{service: deps.FeeSvc, validate: deps.Validate}

	fg := g.Group("/admin/fees", authed, adminOnly)
	fg.POST("/create", api.feeCreate)
	fg.GET("", api.feeQuery)
	fg.POST("/assign/class", api.feeAssignClass)
	fg.POST("/assign", api.feeAssignStudent)
	fg.GET("/students", api.studentFeeQuery)
	fg.GET("/student/:studentId", api.studentFeeRetrieve)
	fg.POST("/student/:studentId/payments", api.paymentCreate)
}

// Handlers

func (api *feeApi) feeCreate(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if admin.InstituteID == "" {
		return fee.ErrNoInstitute
	}

	data := new(fee.NewParticulars)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fees, err := api.service.CreateParticulars(ctx.Request().Context(), admin, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{
		"message": "Fee particulars created successfully",
		"count":   len(fees),
		"fees":    fees,
	})
}

func (api *feeApi) feeQuery(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	fees, err := api.service.Particulars(ctx.Request().Context(), admin.InstituteID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *feeApi) feeAssignClass(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if admin.InstituteID == "" {
		return fee.ErrInstituteMembership
	}

	data := new(fee.ClassFeeAssignment)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cf, err := api.service.AssignToClass(ctx.Request().Context(), admin, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"message": "Fees assigned to class successfully", "classFee": cf})
}

func (api *feeApi) feeAssignStudent(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(fee.StudentFeeRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sf, err := api.service.GenerateStudentFee(ctx.Request().Context(), admin, data.StudentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"message": "Student fees generated successfully", "studentFee": sf})
}

func (api *feeApi) studentFeeQuery(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	fees, err := api.service.StudentFees(ctx.Request().Context(), admin.InstituteID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *feeApi) studentFeeRetrieve(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	sf, err := api.service.StudentFee(ctx.Request().Context(), admin.InstituteID, ctx.Param("studentId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sf)
}

func (api *feeApi) paymentCreate(ctx echo.Context) error {
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := new(fee.NewPayment)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sf, pmt, err := api.service.RecordPayment(ctx.Request().Context(), admin, ctx.Param("studentId"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{
		"message":    "Payment recorded successfully",
		"studentFee": sf,
		"payment":    pmt,
	})
}
