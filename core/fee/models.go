package fee

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/studman/core"
)

// Student fee statuses
const (
	StatusUnpaid  = "unpaid"
	StatusPartial = "partial"
	StatusPaid    = "paid"
)

// Particular is a named fee an institute charges (tuition, library, ...).
type Particular struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	InstituteID string          `json:"instituteId"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type ClassFeeItem struct {
	FeeID  string          `json:"feeId"`
	Title  string          `json:"title"`
	Amount decimal.Decimal `json:"amount"`
}

// ClassFee is the list of fees charged to every student of a class.
type ClassFee struct {
	ID          string         `json:"id"`
	ClassID     string         `json:"classId"`
	InstituteID string         `json:"instituteId"`
	Fees        []ClassFeeItem `json:"fees"`
	CreatedBy   string         `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type StudentFeeItem struct {
	FeeID  string          `json:"feeId"`
	Title  string          `json:"title"`
	Amount decimal.Decimal `json:"amount"`
	Paid   decimal.Decimal `json:"paid"`
}

func (it StudentFeeItem) Outstanding() decimal.Decimal {
	return it.Amount.Sub(it.Paid)
}

// StudentFee is the bill of one student, generated from the fees of their class.
type StudentFee struct {
	ID          string           `json:"id"`
	StudentID   string           `json:"studentId"`
	ClassID     string           `json:"classId"`
	InstituteID string           `json:"instituteId"`
	Fees        []StudentFeeItem `json:"fees"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
	Balance     decimal.Decimal  `json:"balance"`
	Status      string           `json:"status"`
	Payments    []Payment        `json:"payments,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Recompute derives the total, balance and status from the fee items.
func (sf *StudentFee) Recompute() {
	total, paid := decimal.Zero, decimal.Zero
	for _, it := range sf.Fees {
		total = total.Add(it.Amount)
		paid = paid.Add(it.Paid)
	}
	sf.TotalAmount = total
	sf.Balance = total.Sub(paid)

	switch {
	case sf.Balance.LessThanOrEqual(decimal.Zero):
		sf.Status = StatusPaid
	case paid.GreaterThan(decimal.Zero):
		sf.Status = StatusPartial
	default:
		sf.Status = StatusUnpaid
	}
}

type Payment struct {
	ID           string          `json:"id"`
	StudentFeeID string          `json:"studentFeeId"`
	FeeID        string          `json:"feeId"`
	Amount       decimal.Decimal `json:"amount"`
	Reference    string          `json:"reference,omitempty"`
	RecordedBy   string          `json:"recordedBy"`
	PaidAt       time.Time       `json:"paidAt"`
}

type NewParticular struct {
	Title  string          `json:"title" validate:"required,max=100"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
}

// NewParticulars contains the fee particulars to add to an institute.
type NewParticulars struct {
	Fees []NewParticular `json:"fees" validate:"dive"`
}

func (np *NewParticulars) Validate(validate *validator.Validate) error {
	if len(np.Fees) == 0 {
		return ErrNoFees
	}
	seen := make(map[string]bool, len(np.Fees))
	for i := range np.Fees {
		np.Fees[i].Title = core.SanitizeText(np.Fees[i].Title)
		key := strings.ToLower(np.Fees[i].Title)
		if seen[key] {
			return ErrDuplicateTitles
		}
		seen[key] = true
	}
	return validate.Struct(np)
}

type ClassFeeEntry struct {
	FeeID  string           `json:"feeId" validate:"required"`
	Amount *decimal.Decimal `json:"amount" validate:"omitempty,gte=0"`
}

// ClassFeeAssignment sets the fees charged to a class. Amounts default to the particular's amount.
type ClassFeeAssignment struct {
	ClassID string          `json:"classId" validate:"required"`
	Fees    []ClassFeeEntry `json:"fees" validate:"required,min=1,dive"`
}

func (cfa *ClassFeeAssignment) Validate(validate *validator.Validate) error {
	cfa.ClassID = core.CleanString(cfa.ClassID)
	seen := make(map[string]bool, len(cfa.Fees))
	for i := range cfa.Fees {
		cfa.Fees[i].FeeID = core.CleanString(cfa.Fees[i].FeeID)
		if seen[cfa.Fees[i].FeeID] {
			return ErrDuplicateFees
		}
		seen[cfa.Fees[i].FeeID] = true
	}
	return validate.Struct(cfa)
}

type StudentFeeRequest struct {
	StudentID string `json:"studentId" validate:"required"`
}

func (sfr *StudentFeeRequest) Validate(validate *validator.Validate) error {
	sfr.StudentID = core.CleanString(sfr.StudentID)
	return validate.Struct(sfr)
}

// NewPayment records money received against one fee of a student.
type NewPayment struct {
	FeeID     string          `json:"feeId" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Reference string          `json:"reference" validate:"max=100"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.FeeID = core.CleanString(np.FeeID)
	np.Reference = core.SanitizeText(np.Reference)
	return validate.Struct(np)
}
