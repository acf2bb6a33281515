package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"wingscafe/backend/internal/domain"
)

// FormValue is a value typed into a form field. Clients may send it as a JSON
// string or a JSON number; either way it is kept as text until a handler
// parses it for a specific field. Absent and null fields leave Set false.
type FormValue struct {
	Raw string
	Set bool
}

func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = FormValue{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue{Raw: s, Set: true}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", data)
	}
	*v = FormValue{Raw: n.String(), Set: true}
	return nil
}

func (v FormValue) text() string {
	return strings.TrimSpace(v.Raw)
}

func missing(field string) error {
	return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, field)
}

// parseWholeNumber accepts base-10 integers up to domain.MaxUnits. "3.5",
// "abc" and "" are rejected rather than coerced.
func parseWholeNumber(field string, v FormValue) (int, error) {
	raw := v.text()
	if raw == "" {
		return 0, missing(field)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number, got %q", domain.ErrInvalidInput, field, v.Raw)
	}
	if n > domain.MaxUnits {
		return 0, fmt.Errorf("%w: %s must be at most %d", domain.ErrInvalidInput, field, domain.MaxUnits)
	}
	return n, nil
}

// parseOptionalWholeNumber returns nil when the field was not sent.
func parseOptionalWholeNumber(field string, v FormValue) (*int, error) {
	if !v.Set {
		return nil, nil
	}
	n, err := parseWholeNumber(field, v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseMoney(field string, v FormValue) (decimal.Decimal, error) {
	raw := v.text()
	if raw == "" {
		return decimal.Decimal{}, missing(field)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s must be a decimal amount, got %q", domain.ErrInvalidInput, field, v.Raw)
	}
	return d, nil
}

func parseOptionalMoney(field string, v FormValue) (*decimal.Decimal, error) {
	if !v.Set {
		return nil, nil
	}
	d, err := parseMoney(field, v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseDate reads an ISO calendar date. A blank value yields fallback.
func parseDate(field string, v FormValue, fallback civil.Date) (civil.Date, error) {
	raw := v.text()
	if raw == "" {
		return fallback, nil
	}
	d, err := civil.ParseDate(raw)
	if err != nil || !d.IsValid() {
		return civil.Date{}, fmt.Errorf("%w: %s must be a date like 2006-01-02, got %q", domain.ErrInvalidInput, field, v.Raw)
	}
	return d, nil
}

// parseOptionalDate returns nil for absent or blank values.
func parseOptionalDate(field string, v FormValue) (*civil.Date, error) {
	if v.text() == "" {
		return nil, nil
	}
	d, err := parseDate(field, v, civil.Date{})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}
