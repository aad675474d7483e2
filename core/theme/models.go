package theme

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studman/core"
)

// Defaults
const (
	DefaultPrimaryColor   = "#007bff"
	DefaultSecondaryColor = "#6c757d"
	DefaultAccentColor    = "#ffc107"
	DefaultSuccessColor   = "#28a745"
	DefaultDangerColor    = "#dc3545"
	DefaultWarningColor   = "#ffc107"
	DefaultInfoColor      = "#17a2b8"
	DefaultDarkColor      = "#343a40"
	DefaultLightColor     = "#f8f9fa"
	DefaultFontFamily     = "Segoe UI, Tahoma, Geneva, Verdana, sans-serif"
	DefaultFontSize       = 14
)

type Colors struct {
	PrimaryColor   string `json:"primaryColor" validate:"omitempty,hexcolor6"`
	SecondaryColor string `json:"secondaryColor" validate:"omitempty,hexcolor6"`
	AccentColor    string `json:"accentColor" validate:"omitempty,hexcolor6"`
	SuccessColor   string `json:"successColor" validate:"omitempty,hexcolor6"`
	DangerColor    string `json:"dangerColor" validate:"omitempty,hexcolor6"`
	WarningColor   string `json:"warningColor" validate:"omitempty,hexcolor6"`
	InfoColor      string `json:"infoColor" validate:"omitempty,hexcolor6"`
	DarkColor      string `json:"darkColor" validate:"omitempty,hexcolor6"`
	LightColor     string `json:"lightColor" validate:"omitempty,hexcolor6"`
}

func DefaultColors() Colors {
	return Colors{
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
		AccentColor:    DefaultAccentColor,
		SuccessColor:   DefaultSuccessColor,
		DangerColor:    DefaultDangerColor,
		WarningColor:   DefaultWarningColor,
		InfoColor:      DefaultInfoColor,
		DarkColor:      DefaultDarkColor,
		LightColor:     DefaultLightColor,
	}
}

// merge overrides the colors set in o.
func (c *Colors) merge(o Colors) {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	set(&c.PrimaryColor, o.PrimaryColor)
	set(&c.SecondaryColor, o.SecondaryColor)
	set(&c.AccentColor, o.AccentColor)
	set(&c.SuccessColor, o.SuccessColor)
	set(&c.DangerColor, o.DangerColor)
	set(&c.WarningColor, o.WarningColor)
	set(&c.InfoColor, o.InfoColor)
	set(&c.DarkColor, o.DarkColor)
	set(&c.LightColor, o.LightColor)
}

type Theme struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	InstituteID string `json:"instituteId"`
	Colors
	FontFamily      string    `json:"fontFamily"`
	FontSize        int       `json:"fontSize"`
	Logo            string    `json:"logo"`
	Favicon         string    `json:"favicon"`
	BackgroundImage string    `json:"backgroundImage"`
	IsActive        bool      `json:"isActive"`
	CreatedBy       string    `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewTheme contains information needed to create a Theme. Unset styles take the defaults.
type NewTheme struct {
	Name        string `json:"name"`
	Description string `json:"description" validate:"max=500"`
	Colors
	FontFamily      string `json:"fontFamily" validate:"max=200"`
	FontSize        int    `json:"fontSize" validate:"omitempty,min=10,max=20"`
	Logo            string `json:"logo" validate:"omitempty,url"`
	Favicon         string `json:"favicon" validate:"omitempty,url"`
	BackgroundImage string `json:"backgroundImage" validate:"omitempty,url"`
	IsActive        bool   `json:"isActive"`
}

func (nt *NewTheme) Validate(validate *validator.Validate) error {
	nt.Name = core.SanitizeText(nt.Name)
	if nt.Name == "" {
		return ErrNameRequired
	}
	nt.Description = core.SanitizeText(nt.Description)
	nt.FontFamily = core.SanitizeText(nt.FontFamily)
	return validate.Struct(nt)
}

// UpdateTheme defines what may be changed on a Theme. Zero fields are left untouched.
type UpdateTheme struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Colors
	FontFamily      *string `json:"fontFamily" validate:"omitempty,max=200"`
	FontSize        *int    `json:"fontSize" validate:"omitempty,min=10,max=20"`
	Logo            *string `json:"logo" validate:"omitempty,url"`
	Favicon         *string `json:"favicon" validate:"omitempty,url"`
	BackgroundImage *string `json:"backgroundImage" validate:"omitempty,url"`
	IsActive        *bool   `json:"isActive"`
}

func (ut *UpdateTheme) Validate(validate *validator.Validate) error {
	for _, s := range []*string{ut.Name, ut.Description, ut.FontFamily} {
		if s != nil {
			*s = core.SanitizeText(*s)
		}
	}
	return validate.Struct(ut)
}

func (ut UpdateTheme) apply(th *Theme) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&th.Name, ut.Name)
	set(&th.Description, ut.Description)
	set(&th.FontFamily, ut.FontFamily)
	set(&th.Logo, ut.Logo)
	set(&th.Favicon, ut.Favicon)
	set(&th.BackgroundImage, ut.BackgroundImage)
	th.Colors.merge(ut.Colors)
	if ut.FontSize != nil {
		th.FontSize = *ut.FontSize
	}
	if ut.IsActive != nil {
		th.IsActive = *ut.IsActive
	}
}

// QueryFilter applies AND operation on the set fields.
type QueryFilter struct {
	InstituteID string `query:"institute"`
	IsActive    *bool  `query:"isActive"`
	Ordering    []core.DBOrdering
}
