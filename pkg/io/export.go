package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/bullet/pkg/bullet"
)

// WriteJSON encodes a chart input as indented JSON.
// The output can be re-imported with [ReadJSON].
func WriteJSON(in bullet.Input, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(in); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a chart input to a JSON file at path.
func ExportJSON(in bullet.Input, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(in, f)
}

// Export writes a chart input to path in the format its extension names.
// TOML output is not supported.
func Export(in bullet.Input, path string) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		return ExportJSON(in, path)
	case FormatXLSX:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := WriteXLSX(in, f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return fmt.Errorf("export: %s output is not supported", format)
}

// WriteXLSX encodes a chart input as a single-sheet workbook readable by
// [ReadXLSX]. Fragment labels are written as their string form.
func WriteXLSX(in bullet.Input, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	header := make([]any, len(xlsxColumns))
	for i, c := range xlsxColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	add := func(series string, it bullet.Item) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		values := []any{series, it.Value, it.ID, it.Label.String(), it.Tooltip, it.Class, boolCell(it.Focused), boolCell(it.Unfocused)}
		return f.SetSheetRow(sheet, cell, &values)
	}
	for _, it := range in.Values {
		if err := add(SeriesValues, it); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	for _, it := range in.SecondaryValues {
		if err := add(SeriesSecondaryValues, it); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	for _, p := range []struct {
		series string
		it     *bullet.Item
	}{
		{SeriesPrimaryTarget, in.PrimaryTarget},
		{SeriesSecondaryTarget, in.SecondaryTarget},
		{SeriesScale, in.Scale},
	} {
		if p.it == nil {
			continue
		}
		if err := add(p.series, *p.it); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func boolCell(b bool) string {
	if b {
		return "x"
	}
	return ""
}
