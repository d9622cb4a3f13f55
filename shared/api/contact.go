package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// InquiryRequest is the raw contact form body. Every text field must be a JSON string.
type InquiryRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Message  string `json:"message"`
	FormType string `json:"form_type"`
	Division string `json:"division"`
	Product  string `json:"product"`

	Website     Honeypot      `json:"website"` // hidden from humans
	SubmittedAt *EpochSeconds `json:"_ts"`
}

// Honeypot is true when the hidden field holds any non-empty value of any JSON type.
// "", "0", 0, false, null, [] and {} count as empty.
type Honeypot bool

func (h *Honeypot) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*h = false
	case bool:
		*h = Honeypot(x)
	case float64:
		*h = x != 0
	case string:
		*h = x != "" && x != "0"
	case []any:
		*h = len(x) > 0
	case map[string]any:
		*h = len(x) > 0
	default:
		*h = true
	}
	return nil
}

// EpochSeconds accepts both 1700000000 and "1700000000".
// Unparseable strings decode to 0, matching how browsers serialize an unset hidden input.
type EpochSeconds int64

func (e *EpochSeconds) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
		*e = toEpoch(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*e = toEpoch(n)
	return nil
}

// toEpoch clamps to the int64 range; float conversion outside it is undefined.
func toEpoch(n float64) EpochSeconds {
	switch {
	case math.IsNaN(n):
		return 0
	case n >= math.MaxInt64:
		return math.MaxInt64
	case n <= math.MinInt64:
		return math.MinInt64
	}
	return EpochSeconds(n)
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error      string   `json:"error"`
	RetryAfter int      `json:"retry_after,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}
