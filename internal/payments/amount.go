package payments

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidPrice is returned when a total price is neither a JSON number nor a numeric string.
var ErrInvalidPrice = errors.New("invalid price")

// MinorUnits converts a price in major units to an integer amount in minor units, rounding to the
// nearest unit so that 19.99 becomes 1999.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// ParsePrice accepts a raw JSON value holding a number or a numeric string.
func ParsePrice(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%w: missing", ErrInvalidPrice)
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPrice, raw)
	}
	number, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, text)
	}
	return number, nil
}
