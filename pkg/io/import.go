package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/bullet/pkg/bullet"
)

// Input file formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatXLSX = "xlsx"
)

// Series names used by the spreadsheet format.
const (
	SeriesValues          = "values"
	SeriesSecondaryValues = "secondary_values"
	SeriesPrimaryTarget   = "primary_target"
	SeriesSecondaryTarget = "secondary_target"
	SeriesScale           = "scale"
)

// DetectFormat returns the input format for path from its extension.
func DetectFormat(path string) (string, error) {
	if path == "-" {
		return FormatJSON, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported input file %s (want .json, .toml or .xlsx)", path)
}

// Import reads a chart input from path, choosing the reader by extension.
// A path of "-" reads JSON from stdin.
func Import(path string) (bullet.Input, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return bullet.Input{}, err
	}
	if path == "-" {
		return ReadJSON(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return bullet.Input{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	in, err := Read(f, format)
	if err != nil {
		return bullet.Input{}, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// Read decodes a chart input in the given format.
func Read(r io.Reader, format string) (bullet.Input, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	case FormatXLSX:
		return ReadXLSX(r)
	}
	return bullet.Input{}, fmt.Errorf("unsupported input format %q", format)
}

// ReadJSON decodes a JSON chart input. ReadJSON does not close r.
func ReadJSON(r io.Reader) (bullet.Input, error) {
	var in bullet.Input
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return bullet.Input{}, fmt.Errorf("decode: %w", err)
	}
	return in, nil
}

// =============================================================================
// TOML
// =============================================================================

type tomlInput struct {
	Values          []tomlItem `toml:"values"`
	SecondaryValues []tomlItem `toml:"secondary_values"`
	PrimaryTarget   *tomlItem  `toml:"primary_target"`
	SecondaryTarget *tomlItem  `toml:"secondary_target"`
	Scale           *tomlItem  `toml:"scale"`
}

type tomlItem struct {
	ID        string  `toml:"id"`
	Value     float64 `toml:"value"`
	Class     string  `toml:"class"`
	Tooltip   string  `toml:"tooltip"`
	Label     any     `toml:"label"`
	Focused   bool    `toml:"focused"`
	Unfocused bool    `toml:"unfocused"`
}

// ReadTOML decodes a TOML chart input.
func ReadTOML(r io.Reader) (bullet.Input, error) {
	var data tomlInput
	md, err := toml.NewDecoder(r).Decode(&data)
	if err != nil {
		return bullet.Input{}, fmt.Errorf("decode: %w", err)
	}
	for _, key := range md.Undecoded() {
		if !slices.Contains(key, "label") {
			return bullet.Input{}, fmt.Errorf("decode: unknown key %s", key)
		}
	}

	var in bullet.Input
	if in.Values, err = tomlItems(SeriesValues, data.Values); err != nil {
		return bullet.Input{}, err
	}
	if in.SecondaryValues, err = tomlItems(SeriesSecondaryValues, data.SecondaryValues); err != nil {
		return bullet.Input{}, err
	}
	for _, p := range []struct {
		name string
		src  *tomlItem
		dst  **bullet.Item
	}{
		{SeriesPrimaryTarget, data.PrimaryTarget, &in.PrimaryTarget},
		{SeriesSecondaryTarget, data.SecondaryTarget, &in.SecondaryTarget},
		{SeriesScale, data.Scale, &in.Scale},
	} {
		if p.src == nil {
			continue
		}
		it, err := p.src.item()
		if err != nil {
			return bullet.Input{}, fmt.Errorf("%s: %w", p.name, err)
		}
		*p.dst = &it
	}
	return in, nil
}

func tomlItems(series string, src []tomlItem) ([]bullet.Item, error) {
	if src == nil {
		return nil, nil
	}
	items := make([]bullet.Item, len(src))
	for i, t := range src {
		it, err := t.item()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", series, i, err)
		}
		items[i] = it
	}
	return items, nil
}

func (t tomlItem) item() (bullet.Item, error) {
	label, err := decodeLabel(t.Label)
	if err != nil {
		return bullet.Item{}, err
	}
	return bullet.Item{
		ID:        t.ID,
		Value:     t.Value,
		Class:     t.Class,
		Tooltip:   t.Tooltip,
		Label:     label,
		Focused:   t.Focused,
		Unfocused: t.Unfocused,
	}, nil
}

// decodeLabel maps a decoded label to the same variant JSON input yields.
func decodeLabel(v any) (bullet.Label, error) {
	switch l := v.(type) {
	case nil:
		return bullet.Label{}, nil
	case string:
		return bullet.TextLabel(l), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return bullet.Label{}, fmt.Errorf("label: %w", err)
	}
	return bullet.FragmentLabel(json.RawMessage(raw)), nil
}

// =============================================================================
// Excel
// =============================================================================

var xlsxColumns = []string{"series", "value", "id", "label", "tooltip", "class", "focused", "unfocused"}

// ReadXLSX decodes a chart input from the first sheet of an Excel workbook.
func ReadXLSX(r io.Reader) (bullet.Input, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return bullet.Input{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return bullet.Input{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return bullet.Input{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return bullet.Input{}, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range xlsxColumns[:2] {
		if _, ok := cols[required]; !ok {
			return bullet.Input{}, fmt.Errorf("sheet %s: missing %q column", sheets[0], required)
		}
	}

	var in bullet.Input
	for n, row := range rows[1:] {
		cell := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		series := strings.ToLower(cell("series"))
		if series == "" {
			continue
		}
		rowNum := n + 2

		it, err := xlsxItem(cell)
		if err != nil {
			return bullet.Input{}, fmt.Errorf("row %d: %w", rowNum, err)
		}
		switch series {
		case SeriesValues:
			in.Values = append(in.Values, it)
		case SeriesSecondaryValues:
			in.SecondaryValues = append(in.SecondaryValues, it)
		case SeriesPrimaryTarget:
			in.PrimaryTarget = &it
		case SeriesSecondaryTarget:
			in.SecondaryTarget = &it
		case SeriesScale:
			in.Scale = &it
		default:
			return bullet.Input{}, fmt.Errorf("row %d: unknown series %q", rowNum, series)
		}
	}
	return in, nil
}

func xlsxItem(cell func(string) string) (bullet.Item, error) {
	v, err := strconv.ParseFloat(cell("value"), 64)
	if err != nil {
		return bullet.Item{}, fmt.Errorf("value %q: not a number", cell("value"))
	}
	focused, err := parseBool(cell("focused"))
	if err != nil {
		return bullet.Item{}, fmt.Errorf("focused: %w", err)
	}
	unfocused, err := parseBool(cell("unfocused"))
	if err != nil {
		return bullet.Item{}, fmt.Errorf("unfocused: %w", err)
	}
	it := bullet.Item{
		ID:        cell("id"),
		Value:     v,
		Class:     cell("class"),
		Tooltip:   cell("tooltip"),
		Focused:   focused,
		Unfocused: unfocused,
	}
	if label := cell("label"); label != "" {
		it.Label = bullet.TextLabel(label)
	}
	return it, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "false", "no", "0":
		return false, nil
	case "true", "yes", "1", "x":
		return true, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
