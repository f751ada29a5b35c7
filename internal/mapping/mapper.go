package mapping

import (
	"math"
	"strconv"
	"strings"

	"github.com/prefeitura-sp/app-sicap/internal/spreadsheet"
	"github.com/prefeitura-sp/app-sicap/internal/utils"
)

// ConstantLabel is the label holding the fixed code of a category.
const ConstantLabel = "SEMPRE"

// strategy tries to resolve a value within category. value is the normalized
// text of cell.
type strategy func(t *Table, category string, cell spreadsheet.Cell, value string) (int, bool)

var (
	defaultChain = []strategy{exactNormalized}

	chains = map[string][]strategy{
		CategoryLinhaServico: {numericPassthrough, exactNormalized},
		CategoryUnidade:      {numericPassthrough, exactNormalized, mutualSubstring, tokenSubset},
		CategoryCargo:        {exactNormalized, mutualSubstring},
	}
)

// Lookup maps a raw cell to the code of category; 0 means unmapped.
func (t *Table) Lookup(cell spreadsheet.Cell, category string) int {
	chain, ok := chains[category]
	if !ok {
		chain = defaultChain
	}

	value := utils.NormalizeText(cell.String())
	for _, s := range chain {
		if code, ok := s(t, category, cell, value); ok {
			return code
		}
	}
	return 0
}

// Constant returns the fixed code stored under ConstantLabel, or 0.
func (t *Table) Constant(category string) int {
	return t.Lookup(spreadsheet.TextCell(ConstantLabel), category)
}

// numericPassthrough accepts codes already typed into the sheet.
func numericPassthrough(_ *Table, _ string, cell spreadsheet.Cell, _ string) (int, bool) {
	if cell.Numeric {
		n := cell.Number
		if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}

	text := strings.TrimSpace(cell.Raw)
	if text == "" || strings.IndexFunc(text, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}

func exactNormalized(t *Table, category string, _ spreadsheet.Cell, value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	code, ok := t.index[category][value]
	return code, ok
}

// mutualSubstring matches when the value contains a label or a label contains the value.
func mutualSubstring(t *Table, category string, _ spreadsheet.Cell, value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	for _, e := range t.Entries(category) {
		if e.Key == "" {
			continue
		}
		if strings.Contains(value, e.Key) || strings.Contains(e.Key, value) {
			return e.Code, true
		}
	}
	return 0, false
}

// tokenSubset matches when every word of a label appears among the words of the value.
func tokenSubset(t *Table, category string, _ spreadsheet.Cell, value string) (int, bool) {
	words := utils.WordTokens(value)
	if len(words) == 0 {
		return 0, false
	}
	for _, e := range t.Entries(category) {
		keyWords := utils.WordTokens(e.Key)
		if len(keyWords) == 0 {
			continue
		}
		if isSubset(keyWords, words) {
			return e.Code, true
		}
	}
	return 0, false
}

func isSubset(sub, set map[string]struct{}) bool {
	for w := range sub {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
