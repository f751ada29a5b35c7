// Package mapping loads the categorical mapping table (labels to SICAP codes)
// and resolves raw spreadsheet values against it.
package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prefeitura-sp/app-sicap/internal/utils"
	"gopkg.in/yaml.v3"
)

// Category names used by the payroll payload.
const (
	CategoryCargo                = "CargoId"
	CategoryUnidade              = "Unidade"
	CategoryGenero               = "AutoDeclaracaoGenero"
	CategoryRacial               = "AutoDeclaracaoRacial"
	CategoryLinhaServico         = "LinhaServicoId"
	CategoryCargaHoraria         = "CargaHorariaSemanalId"
	CategoryTurno                = "TurnoTrabalho"
	CategoryTipoCoordenadoria    = "TipoCoordenadoria"
	CategoryTipoAtividade        = "TipoAtividade"
	CategoryPrestacaoConta       = "PrestacaoContaId"
	categoryLinhasDeServicoExtra = "LinhasDeServico"
)

var (
	ErrMappingNotFound = errors.New("mapping file not found")
	ErrMappingInvalid  = errors.New("mapping file is invalid")
)

// Entry is one label of a category, kept in document order.
type Entry struct {
	Label string
	Key   string
	Code  int
}

// Table is the immutable mapping table of one pipeline run.
type Table struct {
	entries map[string][]Entry
	index   map[string]map[string]int
	periods map[string]string
}

type rawEntry struct {
	label string
	value interface{}
}

type rawCategory struct {
	name    string
	entries []rawEntry
}

// Load reads the mapping document at path. JSON is the usual format; files
// ending in .yaml or .yml are read as YAML.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMappingNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrMappingInvalid, err)
	}

	var categories []rawCategory
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		categories, err = decodeYAML(data)
	default:
		categories, err = decodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMappingInvalid, err)
	}

	return build(categories)
}

// decodeJSON walks the document with a token decoder so labels keep the order
// in which they were written.
func decodeJSON(data []byte) ([]rawCategory, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}

	categories := make([]rawCategory, 0, len(top))
	for name, raw := range top {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()

		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			continue
		}

		cat := rawCategory{name: name}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			label, _ := keyTok.(string)
			var value interface{}
			if err := dec.Decode(&value); err != nil {
				return nil, err
			}
			cat.entries = append(cat.entries, rawEntry{label: label, value: value})
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

func decodeYAML(data []byte) ([]rawCategory, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("top level must be a mapping")
	}

	root := doc.Content[0]
	var categories []rawCategory
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, body := root.Content[i], root.Content[i+1]
		if body.Kind != yaml.MappingNode {
			continue
		}
		cat := rawCategory{name: name.Value}
		for j := 0; j+1 < len(body.Content); j += 2 {
			label, value := body.Content[j], body.Content[j+1]
			if value.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%s.%s: value must be a scalar", name.Value, label.Value)
			}
			var v interface{} = value.Value
			if value.Tag == "!!null" {
				v = nil
			}
			cat.entries = append(cat.entries, rawEntry{label: label.Value, value: v})
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

func build(categories []rawCategory) (*Table, error) {
	t := &Table{
		entries: make(map[string][]Entry),
		index:   make(map[string]map[string]int),
		periods: make(map[string]string),
	}

	var extraServiceLines []Entry
	for _, cat := range categories {
		if cat.name == CategoryPrestacaoConta {
			for _, e := range cat.entries {
				if e.value == nil {
					continue
				}
				t.periods[utils.NormalizeText(e.label)] = strings.TrimSpace(fmt.Sprint(e.value))
			}
			continue
		}

		entries := make([]Entry, 0, len(cat.entries))
		for _, e := range cat.entries {
			code, err := toCode(e.value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%q]: %v", ErrMappingInvalid, cat.name, e.label, err)
			}
			entries = append(entries, Entry{Label: e.label, Key: utils.NormalizeText(e.label), Code: code})
		}

		if cat.name == categoryLinhasDeServicoExtra {
			extraServiceLines = entries
			continue
		}
		t.entries[cat.name] = entries
	}

	if len(extraServiceLines) > 0 {
		t.entries[CategoryLinhaServico] = mergeEntries(t.entries[CategoryLinhaServico], extraServiceLines)
	}

	for name, entries := range t.entries {
		idx := make(map[string]int, len(entries))
		for _, e := range entries {
			idx[e.Key] = e.Code
		}
		t.index[name] = idx
	}

	return t, nil
}

// mergeEntries overlays extra on base. A label present in both keeps its base
// position and takes the extra code; new labels are appended.
func mergeEntries(base, extra []Entry) []Entry {
	merged := make([]Entry, len(base), len(base)+len(extra))
	copy(merged, base)

	pos := make(map[string]int, len(merged))
	for i, e := range merged {
		pos[e.Label] = i
	}
	for _, e := range extra {
		if i, ok := pos[e.Label]; ok {
			merged[i].Code = e.Code
			continue
		}
		pos[e.Label] = len(merged)
		merged = append(merged, e)
	}
	return merged
}

func toCode(v interface{}) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return int(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return 0, err
		}
		return floatCode(f)
	case float64:
		return floatCode(val)
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("code %q is not numeric", val)
		}
		return floatCode(f)
	default:
		return 0, fmt.Errorf("unsupported code %v", v)
	}
}

func floatCode(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("code %v is not finite", f)
	}
	return int(f), nil
}

// Entries returns the labels of a category in document order.
func (t *Table) Entries(category string) []Entry {
	return t.entries[category]
}

// AccountingPeriod returns the PrestacaoContaId registered for a month
// abbreviation such as "out".
func (t *Table) AccountingPeriod(month string) (string, bool) {
	id, ok := t.periods[utils.NormalizeText(month)]
	return id, ok
}
