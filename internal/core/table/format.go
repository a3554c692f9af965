package table

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mboutique/backoffice/internal/core/descriptor"
)

const shortDate = "02/01/2006"

// CellValue formats the value of col in row. A column formatter takes
// precedence over the kind defaults.
func CellValue(row descriptor.Record, col descriptor.Column) string {
	v := row[col.Key]
	if col.Format != nil {
		return col.Format(v)
	}

	switch col.Kind {
	case descriptor.ColumnDate:
		if !truthy(v) {
			return ""
		}
		return formatDate(v)
	case descriptor.ColumnBoolean:
		if truthy(v) {
			return "Oui"
		}
		return "Non"
	case descriptor.ColumnCurrency:
		if !truthy(v) {
			return "0 Ar"
		}
		return text(v) + " Ar"
	default:
		return text(v)
	}
}

// CellClass returns the per-row classifier result, or the static class.
func CellClass(row descriptor.Record, col descriptor.Column) string {
	if col.CellClassFunc != nil {
		return col.CellClassFunc(row)
	}
	return col.CellClass
}

// truthy follows the usual scripting rules: nil, false, 0, NaN and "" are
// false, everything else is true.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	case int:
		return x != 0
	case int64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// text is the plain string form of a value; nil is empty.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return float(x)
	case float32:
		return float(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)).String()
	case int64:
		return decimal.NewFromInt(x).String()
	case json.Number:
		if d, err := decimal.NewFromString(x.String()); err == nil {
			return d.String()
		}
		return x.String()
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// float prints finite numbers through decimal. NaN and the infinities have no
// decimal form and are spelled the way a browser prints them.
func float(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	}
	return decimal.NewFromFloat(x).String()
}

// formatDate renders dd/mm/yyyy in the timestamp's own zone. Numbers are
// epoch milliseconds. Unparseable strings are shown as they are.
func formatDate(v any) string {
	switch x := v.(type) {
	case time.Time:
		return x.Format(shortDate)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(shortDate)
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, x); err == nil {
				return t.Format(shortDate)
			}
		}
		return x
	case float64:
		return time.UnixMilli(int64(x)).UTC().Format(shortDate)
	case int64:
		return time.UnixMilli(x).UTC().Format(shortDate)
	default:
		return text(v)
	}
}
