package spreadsheet

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/prefeitura-sp/app-sicap/internal/utils"
	"github.com/xuri/excelize/v2"
)

// Cell is a single spreadsheet value. Numeric cells keep the parsed number
// so that money, codes and date serials do not go through text formatting.
type Cell struct {
	Raw     string
	Numeric bool
	Number  float64
}

// TextCell builds a text cell.
func TextCell(s string) Cell {
	return Cell{Raw: s}
}

// NumberCell builds a numeric cell.
func NumberCell(n float64) Cell {
	return Cell{Raw: strconv.FormatFloat(n, 'f', -1, 64), Numeric: true, Number: n}
}

// Empty reports whether the cell holds no value.
func (c Cell) Empty() bool {
	return !c.Numeric && strings.TrimSpace(c.Raw) == ""
}

// String returns the textual form of the cell. Integral numbers are written
// without a decimal part, so 40 reads as "40".
func (c Cell) String() string {
	if !c.Numeric {
		return c.Raw
	}
	if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
		return c.Raw
	}
	return strconv.FormatFloat(c.Number, 'f', -1, 64)
}

// Money parses the cell as a monetary amount. Blank cells are zero.
func (c Cell) Money() (float64, error) {
	if c.Numeric {
		return c.Number, nil
	}
	return utils.ParseMoney(c.Raw)
}

var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"02/01/06",
	"2/1/06",
	"2006-01-02",
	"2006-1-2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// Date interprets the cell as a date. Numbers are Excel serial dates;
// text is parsed day first.
func (c Cell) Date() (time.Time, bool) {
	if c.Numeric {
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) || c.Number <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(c.Number, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	text := strings.TrimSpace(c.Raw)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
