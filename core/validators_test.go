package core

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	InitValidators(validate, translator)
	return validate, translator
}

func TestInitValidators(t *testing.T) {
	validate, translator := newTestValidator()

	type payload struct {
		Code   string          `json:"code" validate:"required,alphanum_"`
		Color  string          `json:"color" validate:"omitempty,hexcolor6"`
		Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	}

	tests := []struct {
		name    string
		data    payload
		wantErr map[string]string
	}{
		{
			name: "valid",
			data: payload{Code: "MATH_101", Color: "#1a2B3c", Amount: decimal.RequireFromString("0.01")},
		},
		{
			name: "invalid",
			data: payload{Code: "math-101", Color: "#abc", Amount: decimal.Zero},
			wantErr: map[string]string{
				"code":   "only alphanumeric characters and underscores are allowed",
				"color":  "color must be a hex color like #1a2b3c",
				"amount": "amount must be greater than 0",
			},
		},
		{
			name:    "required",
			data:    payload{Amount: decimal.NewFromInt(1)},
			wantErr: map[string]string{"code": "this field is required"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.data)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			got := make(map[string]string, len(vErrs))
			for _, vErr := range vErrs {
				got[vErr.Field()] = vErr.Translate(translator)
			}
			assert.Equal(t, tt.wantErr, got)
		})
	}
}
