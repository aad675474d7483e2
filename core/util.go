package core

import (
	"crypto/rand"
	"html"
	"math/big"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
)

var strictPolicy = bluemonday.StrictPolicy()

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// SanitizeText strips every HTML tag from `s` and trims it.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

const randomAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomString returns a random lowercase alphanumeric string of length n.
func RandomString(n int) (string, error) {
	max := big.NewInt(int64(len(randomAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "generating random string")
		}
		buf[i] = randomAlphabet[idx.Int64()]
	}
	return string(buf), nil
}

const DateLayout = "2006-01-02"

// ParseDateTime accepts RFC 3339 timestamps and bare YYYY-MM-DD dates, returned in UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}

// Day truncates t to its UTC calendar day as YYYY-MM-DD.
func Day(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Date is a calendar day that (un)marshals as YYYY-MM-DD and also accepts RFC 3339 input.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + Day(d.Time) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
