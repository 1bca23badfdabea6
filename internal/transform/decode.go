package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// cellString extracts a string cell; a missing value becomes "".
func cellString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	default:
		return "", fmt.Errorf("cell has type %T, want string", v)
	}
}

// cellDecimal extracts a numeric cell as a decimal. The driver hands numbers
// back as native ints, floats or text depending on column type and scale.
func cellDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return t, nil
	case int64:
		return decimal.NewFromInt(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case []byte:
		return cellDecimal(string(t))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("cell %q is not numeric: %w", t, err)
		}
		return d, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("cell has type %T, want number", v)
	}
}

// cellFloat extracts a numeric cell as a float64; ok is false for a missing
// value.
func cellFloat(v any) (f float64, ok bool, err error) {
	switch t := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return t, true, nil
	case int64:
		return float64(t), true, nil
	case int:
		return float64(t), true, nil
	case []byte:
		return cellFloat(string(t))
	case string:
		parsed, perr := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if perr != nil {
			return 0, false, fmt.Errorf("cell %q is not numeric: %w", t, perr)
		}
		return parsed, true, nil
	default:
		return 0, false, fmt.Errorf("cell has type %T, want number", v)
	}
}
