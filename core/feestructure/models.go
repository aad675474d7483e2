package feestructure

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/studman/core"
)

// Categories
const (
	CategoryAll     = "all"
	CategoryClass   = "class"
	CategoryStudent = "student"
)

var Categories = []string{CategoryAll, CategoryClass, CategoryStudent}

type Particular struct {
	Label  string          `json:"label" validate:"required,max=100"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
}

// FeeStructure is a published price list, targeting the whole institute, a class or a single student.
type FeeStructure struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	ClassID     string          `json:"classId,omitempty"`
	StudentID   string          `json:"studentId,omitempty"`
	Particulars []Particular    `json:"particulars"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	InstituteID string          `json:"instituteId"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Total sums the amounts of particulars.
func Total(particulars []Particular) decimal.Decimal {
	total := decimal.Zero
	for _, p := range particulars {
		total = total.Add(p.Amount)
	}
	return total
}

func cleanParticulars(particulars []Particular) {
	for i := range particulars {
		particulars[i].Label = core.SanitizeText(particulars[i].Label)
	}
}

func validateTarget(category, classID, studentID string, particulars []Particular) error {
	switch category {
	case CategoryAll:
	case CategoryClass:
		if classID == "" {
			return ErrClassRequired
		}
	case CategoryStudent:
		if studentID == "" {
			return ErrStudentRequired
		}
	default:
		return ErrInvalidCategory
	}
	if len(particulars) == 0 {
		return ErrParticularsRequired
	}
	return nil
}

// NewFeeStructure contains information needed to publish a FeeStructure.
type NewFeeStructure struct {
	Category    string       `json:"category"`
	ClassID     string       `json:"classId"`
	StudentID   string       `json:"studentId"`
	Particulars []Particular `json:"particulars" validate:"dive"`
}

func (nfs *NewFeeStructure) Validate(validate *validator.Validate) error {
	nfs.Category = core.CleanString(nfs.Category, true /* lower */)
	nfs.ClassID = core.CleanString(nfs.ClassID)
	nfs.StudentID = core.CleanString(nfs.StudentID)
	cleanParticulars(nfs.Particulars)
	if err := validateTarget(nfs.Category, nfs.ClassID, nfs.StudentID, nfs.Particulars); err != nil {
		return err
	}
	return validate.Struct(nfs)
}

// UpdateFeeStructure defines what may be changed on a FeeStructure. Nil fields are left untouched.
type UpdateFeeStructure struct {
	Category    *string      `json:"category"`
	ClassID     *string      `json:"classId"`
	StudentID   *string      `json:"studentId"`
	Particulars []Particular `json:"particulars" validate:"omitempty,dive"`
}

func (ufs *UpdateFeeStructure) Validate(validate *validator.Validate) error {
	if ufs.Category != nil {
		*ufs.Category = core.CleanString(*ufs.Category, true /* lower */)
	}
	for _, s := range []*string{ufs.ClassID, ufs.StudentID} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	cleanParticulars(ufs.Particulars)
	return validate.Struct(ufs)
}

func (ufs UpdateFeeStructure) apply(fs *FeeStructure) error {
	if ufs.Category != nil {
		fs.Category = *ufs.Category
	}
	if ufs.ClassID != nil {
		fs.ClassID = *ufs.ClassID
	}
	if ufs.StudentID != nil {
		fs.StudentID = *ufs.StudentID
	}
	if ufs.Particulars != nil {
		fs.Particulars = ufs.Particulars
		fs.TotalAmount = Total(fs.Particulars)
	}
	return validateTarget(fs.Category, fs.ClassID, fs.StudentID, fs.Particulars)
}

// QueryFilter applies AND operation on the set fields.
type QueryFilter struct {
	Category    string `query:"category"`
	ClassID     string `query:"classId"`
	StudentID   string `query:"studentId"`
	InstituteID string `query:"instituteId"`
	Ordering    []core.DBOrdering
}
