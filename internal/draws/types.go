package draws

import (
	"math"
	"strconv"
	"strings"
)

// Record is one normalized draw result.
type Record struct {
	Date        string `json:"date"` // YYYY-MM-DD, UTC
	BonusNumber int    `json:"bonusNumber"`
	Numbers     []int  `json:"numbers"`
	DrawNumber  *int   `json:"drawNumber,omitempty"`
}

// Atoi parses a whole number from a feed cell. Integral floats ("12.0") are
// accepted; NaN, infinities and fractions are not.
func Atoi(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func intPtr(i int) *int { return &i }
