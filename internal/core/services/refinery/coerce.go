package refinery

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// CoerceText converts a scalar cell value to text. nil and NaN are missing values and fail with
// INVALID_INPUT. Floats print the way spreadsheet exports of the source datasets did: integral
// values keep a ".0" suffix.
func CoerceText(v interface{}) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", apperrors.InvalidInput("missing value where text is required")
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case bool:
		if t {
			return "True", nil
		}
		return "False", nil
	case int:
		return strconv.Itoa(t), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", t), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", t), nil
	case float32:
		return formatFloat(float64(t), 32)
	case float64:
		return formatFloat(t, 64)
	case fmt.Stringer:
		return t.String(), nil
	default:
		return fmt.Sprint(t), nil
	}
}

func formatFloat(f float64, bitSize int) (string, error) {
	switch {
	case math.IsNaN(f):
		return "", apperrors.InvalidInput("missing value (NaN) where text is required")
	case math.IsInf(f, 1):
		return "inf", nil
	case math.IsInf(f, -1):
		return "-inf", nil
	}

	abs := math.Abs(f)
	if abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, bitSize), nil
	}

	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}
