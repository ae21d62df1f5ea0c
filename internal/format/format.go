package format

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/nao1215/chartbook/internal/dataset"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NoData is the placeholder rendered for absent values and non-finite
// numbers. Display output must never show "NaN" or "+Inf".
const NoData = "—"

// printer formats all numeric output. English digit grouping matches
// the documents this renderer consumes; message.Printer is safe for
// concurrent use.
var printer = message.NewPrinter(language.English)

// Number formats a number with digit grouping. A non-negative digits
// fixes the fraction length exactly; digits < 0 lets the value decide,
// up to two fractional digits.
func Number(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NoData
	}
	if digits < 0 {
		return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
	}
	return printer.Sprint(number.Decimal(v, number.Scale(digits)))
}

// Percent formats a fraction as a percentage: 0.5 renders as "50%". A
// non-negative digits fixes the fraction length; digits < 0 allows up
// to one fractional digit.
func Percent(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NoData
	}
	if digits < 0 {
		return printer.Sprint(number.Percent(v, number.MaxFractionDigits(1)))
	}
	return printer.Sprint(number.Percent(v, number.Scale(digits)))
}

// Currency formats a monetary amount as symbol-prefixed grouped
// digits: Currency(1234.5, "$", -1) renders "$1,234.50". The symbol
// defaults to "$" and digits to 2; the sign precedes the symbol.
func Currency(v float64, symbol string, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NoData
	}
	if symbol == "" {
		symbol = "$"
	}
	if digits < 0 {
		digits = 2
	}
	body := printer.Sprint(number.Decimal(math.Abs(v), number.Scale(digits)))
	if v < 0 {
		return "-" + symbol + body
	}
	return symbol + body
}

// Date formats a date value: the date alone for midnight instants,
// date and time otherwise.
func Date(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}

// Cell renders one table cell for display. Absent cells become the
// NoData placeholder; everything else follows its type's rule.
func Cell(c dataset.Cell) string {
	switch c.Kind() {
	case dataset.CellNumber:
		v, _ := c.Number()
		return Number(v, -1)
	case dataset.CellTime:
		t, _ := c.Time()
		return Date(t)
	case dataset.CellBool:
		b, _ := c.Bool()
		return strconv.FormatBool(b)
	case dataset.CellString:
		s, _ := c.Text()
		return s
	default:
		return NoData
	}
}

// Value renders an arbitrary evaluation result for display. Numbers
// and dates follow the same rules as Number and Date; nil renders as
// NoData.
func Value(v any) string {
	switch x := v.(type) {
	case nil:
		return NoData
	case float64:
		return Number(x, -1)
	case int:
		return Number(float64(x), -1)
	case int64:
		return Number(float64(x), -1)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return Date(x)
	case string:
		return x
	case dataset.Cell:
		return Cell(x)
	default:
		// Structured results (unsafe-mode scripts may return objects)
		// render as compact JSON.
		if b, err := json.Marshal(x); err == nil {
			return string(b)
		}
		return printer.Sprint(x)
	}
}
