package record

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// FieldDuration is the logical name of the worked-duration field.
const FieldDuration = "duration"

// ParseDuration converts a raw duration value into hours.
//
// "H:MM" yields H + MM/60. Anything else is read as decimal hours, so "7:30"
// and "7.5" are the same duration. Negative, NaN and infinite values are
// rejected.
func ParseDuration(raw string) (float64, error) {
	s := strings.TrimSpace(raw)

	var hours float64
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 2 {
			return 0, &ParseError{Field: FieldDuration, Value: raw, Err: errors.New("expected H:MM")}
		}
		h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return 0, &ParseError{Field: FieldDuration, Value: raw, Err: errors.New("hours component is not an integer")}
		}
		m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, &ParseError{Field: FieldDuration, Value: raw, Err: errors.New("minutes component is not an integer")}
		}
		hours = float64(h) + float64(m)/60
	} else {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &ParseError{Field: FieldDuration, Value: raw, Err: errors.New("not a number")}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, &ParseError{Field: FieldDuration, Value: raw, Err: errors.New("not a finite number")}
		}
		hours = v
	}

	if hours < 0 {
		return 0, &ParseError{Field: FieldDuration, Value: raw, Err: errors.New("duration cannot be negative")}
	}

	return hours, nil
}
