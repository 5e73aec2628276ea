package settings

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nozzlewatch/nozzlewatch/internal/domain"
	"github.com/nozzlewatch/nozzlewatch/internal/mask"
)

// Validator parses raw user input into a typed value. Validators are pure.
type Validator[T any] func(raw string) Result[T]

// FloatRange accepts decimal numbers in [lo, hi].
func FloatRange(lo, hi float64) Validator[float64] {
	allowed := fmt.Sprintf("between %s and %s", formatFloat(lo), formatFloat(hi))

	return func(raw string) Result[float64] {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
			return Invalid[float64](raw, allowed)
		}

		return Ok(v)
	}
}

// FloatAbove accepts decimal numbers in (lo, hi].
func FloatAbove(lo, hi float64) Validator[float64] {
	allowed := fmt.Sprintf("greater than %s and at most %s", formatFloat(lo), formatFloat(hi))

	return func(raw string) Result[float64] {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(v) || v <= lo || v > hi {
			return Invalid[float64](raw, allowed)
		}

		return Ok(v)
	}
}

// IntRange accepts base-10 integers in [lo, hi].
func IntRange(lo, hi int) Validator[int] {
	allowed := fmt.Sprintf("an integer between %d and %d", lo, hi)

	return func(raw string) Result[int] {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || v < lo || v > hi {
			return Invalid[int](raw, allowed)
		}

		return Ok(v)
	}
}

func Bool() Validator[bool] {
	return func(raw string) Result[bool] {
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return Invalid[bool](raw, "true or false")
		}

		return Ok(v)
	}
}

// ActionChoice accepts either the numeric action code or its name.
func ActionChoice() Validator[domain.Action] {
	options := []domain.Action{domain.ActionNotify, domain.ActionPause, domain.ActionStop}
	names := make([]string, 0, len(options))
	for _, a := range options {
		names = append(names, a.String())
	}
	allowed := "one of " + strings.Join(names, ", ")

	return func(raw string) Result[domain.Action] {
		value := strings.ToLower(strings.TrimSpace(raw))
		for _, a := range options {
			if value == a.String() || value == strconv.Itoa(int(a)) {
				return Ok(a)
			}
		}

		return Invalid[domain.Action](raw, allowed)
	}
}

// Opaque accepts any text unchanged.
func Opaque() Validator[string] {
	return func(raw string) Result[string] {
		return Ok(raw)
	}
}

// MaskString accepts only canonical exclusion mask strings.
func MaskString() Validator[string] {
	allowed := fmt.Sprintf("a %d-character string of 0 and 1", mask.EncodedLen)

	return func(raw string) Result[string] {
		if err := mask.Validate(raw); err != nil {
			preview := raw
			if len(preview) > 16 {
				preview = preview[:16] + "..."
			}

			return Invalid[string](preview, allowed)
		}

		return Ok(raw)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
