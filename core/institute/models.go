package institute

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studman/core"
)

type Institute struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Website     string    `json:"website"`
	Country     string    `json:"country"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	TargetLine  string    `json:"targetLine"`
	Logo        string    `json:"logo"`
	AdminID     string    `json:"adminId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewInstitute contains information needed to create an Institute.
type NewInstitute struct {
	Name        string `json:"name" validate:"required,max=200"`
	Address     string `json:"address" validate:"max=500"`
	Website     string `json:"website" validate:"omitempty,url"`
	Country     string `json:"country" validate:"max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber" validate:"max=30"`
	TargetLine  string `json:"targetLine" validate:"max=300"`
	Logo        string `json:"logo" validate:"omitempty,url"`
}

func (ni *NewInstitute) Validate(validate *validator.Validate) error {
	ni.Name = core.SanitizeText(ni.Name)
	ni.Address = core.SanitizeText(ni.Address)
	ni.Website = core.CleanString(ni.Website)
	ni.Country = core.SanitizeText(ni.Country)
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	ni.PhoneNumber = core.CleanString(ni.PhoneNumber)
	ni.TargetLine = core.SanitizeText(ni.TargetLine)
	ni.Logo = core.CleanString(ni.Logo)
	return validate.Struct(ni)
}

// UpdateInstitute defines what information may be provided to modify an Institute.
// Nil fields are left untouched.
type UpdateInstitute struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
	Website     *string `json:"website" validate:"omitempty,url"`
	Country     *string `json:"country" validate:"omitempty,max=100"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=30"`
	TargetLine  *string `json:"targetLine" validate:"omitempty,max=300"`
	Logo        *string `json:"logo" validate:"omitempty,url"`
}

func (ui *UpdateInstitute) Validate(validate *validator.Validate) error {
	for _, s := range []*string{ui.Name, ui.Address, ui.Country, ui.TargetLine} {
		if s != nil {
			*s = core.SanitizeText(*s)
		}
	}
	for _, s := range []*string{ui.Website, ui.PhoneNumber, ui.Logo} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	if ui.Email != nil {
		*ui.Email = core.CleanString(*ui.Email, true /* lower */)
	}
	return validate.Struct(ui)
}

func (ui UpdateInstitute) apply(inst *Institute) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&inst.Name, ui.Name)
	set(&inst.Address, ui.Address)
	set(&inst.Website, ui.Website)
	set(&inst.Country, ui.Country)
	set(&inst.Email, ui.Email)
	set(&inst.PhoneNumber, ui.PhoneNumber)
	set(&inst.TargetLine, ui.TargetLine)
	set(&inst.Logo, ui.Logo)
}

