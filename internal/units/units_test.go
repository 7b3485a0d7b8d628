package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("mg/dL")
	require.NoError(t, err)
	assert.Equal(t, MgPerDl, u)

	u, err = ParseUnit("mmol/L")
	require.NoError(t, err)
	assert.Equal(t, MmolPerL, u)

	_, err = ParseUnit("mmol")
	assert.Error(t, err)
	_, err = ParseUnit("")
	assert.Error(t, err)
}

func TestNextIsInvolution(t *testing.T) {
	assert.Equal(t, MmolPerL, MgPerDl.Next())
	assert.Equal(t, MgPerDl, MmolPerL.Next())
	for _, u := range []Unit{MgPerDl, MmolPerL} {
		assert.Equal(t, u, u.Next().Next())
	}
}

func TestToDisplay(t *testing.T) {
	assert.Equal(t, 120.0, ToDisplay(120.4, MgPerDl))
	assert.Equal(t, 121.0, ToDisplay(120.6, MgPerDl))
	assert.InDelta(t, 6.66, ToDisplay(120, MmolPerL), 0.01)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		valueMg float64
		unit    Unit
		want    string
	}{
		{"mg whole", 120, MgPerDl, "120 mg/dL"},
		{"mg rounds", 95.4, MgPerDl, "95 mg/dL"},
		{"mmol one decimal", 120, MmolPerL, "6.7 mmol/L"},
		{"mmol low", 54, MmolPerL, "3.0 mmol/L"},
		{"zero", 0, MgPerDl, "0 mg/dL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.valueMg, tt.unit))
		})
	}

	assert.Equal(t, "6.66 mmol/L", FormatDecimals(120, MmolPerL, 2))
}

func TestRoundTripWithinRoundingTolerance(t *testing.T) {
	// For any canonical value in range, converting to mmol/L and back
	// must land within half a display step of the original.
	for v := 0.0; v <= 1000.0; v += 37.5 {
		display := ToDisplay(v, MmolPerL)
		back := ToMgDl(display, MmolPerL)
		assert.LessOrEqual(t, math.Abs(back-v), 1e-9, "value %v", v)
	}
}
