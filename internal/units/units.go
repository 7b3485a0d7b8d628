// Package units converts canonical mg/dL glucose values into display
// units and strings. All stored values are mg/dL; conversion happens
// only at display time.
package units

import (
	"math"
	"strconv"

	"github.com/glucolog/glucolog/internal/apperrors"
)

// Unit is a glucose display unit.
type Unit string

const (
	MgPerDl  Unit = "mg/dL"
	MmolPerL Unit = "mmol/L"
)

// MmolDivisor converts mg/dL to mmol/L. The molar mass of glucose
// gives 18.0182 mg/dL per mmol/L; an older copy of this code divided
// by 18.0, which drifts by ~0.1% and is not reproduced here.
const MmolDivisor = 18.0182

// DefaultMmolDecimals is the fractional precision for mmol/L display.
const DefaultMmolDecimals = 1

// ParseUnit validates a unit string.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case MgPerDl, MmolPerL:
		return Unit(s), nil
	}
	return "", apperrors.NewValidationError("unknown glucose unit: " + s)
}

// Next returns the other unit. Applying Next twice yields the
// original unit.
func (u Unit) Next() Unit {
	if u == MgPerDl {
		return MmolPerL
	}
	return MgPerDl
}

// ToDisplay converts a canonical mg/dL value to the display unit.
// mg/dL values display as whole numbers; mmol/L values are returned
// unrounded, precision is applied by Format.
func ToDisplay(valueMgDl float64, u Unit) float64 {
	if u == MmolPerL {
		return valueMgDl / MmolDivisor
	}
	return math.Round(valueMgDl)
}

// ToMgDl normalizes a value entered in unit u back to canonical mg/dL.
func ToMgDl(value float64, u Unit) float64 {
	if u == MmolPerL {
		return value * MmolDivisor
	}
	return value
}

// Format renders a canonical mg/dL value in the display unit with the
// default precision and unit suffix, e.g. "120 mg/dL" or "6.7 mmol/L".
func Format(valueMgDl float64, u Unit) string {
	return FormatDecimals(valueMgDl, u, DefaultMmolDecimals)
}

// FormatDecimals renders with explicit fractional precision for
// mmol/L. mg/dL always formats with zero decimals.
func FormatDecimals(valueMgDl float64, u Unit, decimals int) string {
	if u == MmolPerL {
		return strconv.FormatFloat(valueMgDl/MmolDivisor, 'f', decimals, 64) + " mmol/L"
	}
	return strconv.FormatFloat(math.Round(valueMgDl), 'f', 0, 64) + " mg/dL"
}
