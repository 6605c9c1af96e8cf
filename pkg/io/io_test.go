package io

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/bullet/pkg/bullet"
)

const chartJSON = `{
  "values": [{"value": 270, "label": "Revenue", "id": "rev"}],
  "secondary_values": [{"value": 150}, {"value": 100, "focused": true}],
  "primary_target": {"value": 250, "tooltip": "Plan"},
  "scale": {"value": 300, "label": {"currency": "USD"}}
}`

const chartTOML = `
[[values]]
value = 270
label = "Revenue"
id = "rev"

[[secondary_values]]
value = 150

[[secondary_values]]
value = 100
focused = true

[primary_target]
value = 250
tooltip = "Plan"

[scale]
value = 300
label = { currency = "USD" }
`

func checkChart(t *testing.T, in bullet.Input) {
	t.Helper()
	if len(in.Values) != 1 || in.Values[0].Value != 270 || in.Values[0].ID != "rev" {
		t.Errorf("Values = %+v", in.Values)
	}
	if text, ok := in.Values[0].Label.Text(); !ok || text != "Revenue" {
		t.Errorf("value label = %q, %v", text, ok)
	}
	if len(in.SecondaryValues) != 2 || !in.SecondaryValues[1].Focused {
		t.Errorf("SecondaryValues = %+v", in.SecondaryValues)
	}
	if in.PrimaryTarget == nil || in.PrimaryTarget.Value != 250 || in.PrimaryTarget.Tooltip != "Plan" {
		t.Errorf("PrimaryTarget = %+v", in.PrimaryTarget)
	}
	if in.SecondaryTarget != nil {
		t.Errorf("SecondaryTarget = %+v, want nil", in.SecondaryTarget)
	}
	if in.Scale == nil || in.Scale.Value != 300 {
		t.Fatalf("Scale = %+v", in.Scale)
	}
	if in.Scale.Label.Kind() != bullet.LabelFragment {
		t.Errorf("scale label kind = %v, want fragment", in.Scale.Label.Kind())
	}
}

func TestReadJSON(t *testing.T) {
	in, err := ReadJSON(strings.NewReader(chartJSON))
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	checkChart(t, in)
	if got := in.Scale.Label.String(); got != `{"currency": "USD"}` {
		t.Errorf("fragment = %s", got)
	}
}

func TestReadJSONUnknownField(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"values": [], "bogus": 1}`))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestReadTOML(t *testing.T) {
	in, err := ReadTOML(strings.NewReader(chartTOML))
	if err != nil {
		t.Fatalf("ReadTOML() error: %v", err)
	}
	checkChart(t, in)

	var frag map[string]string
	if err := json.Unmarshal([]byte(in.Scale.Label.String()), &frag); err != nil {
		t.Fatalf("fragment is not JSON: %v", err)
	}
	if frag["currency"] != "USD" {
		t.Errorf("fragment = %v", frag)
	}
}

func TestReadTOMLErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[[values]\nvalue = 1"},
		{"unknown key", "[[values]]\nvalue = 1\ncolour = \"red\""},
		{"wrong type", "[[values]]\nvalue = \"ten\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadTOML(strings.NewReader(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// workbook builds an xlsx fixture from rows.
func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow() error: %v", err)
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error: %v", err)
	}
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	data := workbook(t, [][]any{
		{"Series", "Value", "ID", "Label", "Tooltip", "Focused"},
		{"values", 270, "rev", "Revenue"},
		{"secondary_values", 150},
		{"secondary_values", 100, "", "", "", "x"},
		{""},
		{"primary_target", 250, "", "", "Plan"},
		{"scale", 300},
	})
	in, err := ReadXLSX(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadXLSX() error: %v", err)
	}
	if len(in.Values) != 1 || in.Values[0].Value != 270 || in.Values[0].ID != "rev" {
		t.Errorf("Values = %+v", in.Values)
	}
	if text, _ := in.Values[0].Label.Text(); text != "Revenue" {
		t.Errorf("label = %q", text)
	}
	if len(in.SecondaryValues) != 2 || !in.SecondaryValues[1].Focused || in.SecondaryValues[0].Focused {
		t.Errorf("SecondaryValues = %+v", in.SecondaryValues)
	}
	if in.PrimaryTarget == nil || in.PrimaryTarget.Tooltip != "Plan" {
		t.Errorf("PrimaryTarget = %+v", in.PrimaryTarget)
	}
	if in.Scale == nil || in.Scale.Value != 300 || !in.Scale.Label.Empty() {
		t.Errorf("Scale = %+v", in.Scale)
	}
}

func TestReadXLSXErrors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]any
		want string
	}{
		{"missing value column", [][]any{{"series"}, {"values"}}, `missing "value" column`},
		{"bad number", [][]any{{"series", "value"}, {"values", "ten"}}, "row 2"},
		{"unknown series", [][]any{{"series", "value"}, {"values", 1}, {"bars", 2}}, `unknown series "bars"`},
		{"bad bool", [][]any{{"series", "value", "focused"}, {"values", 1, "maybe"}}, "invalid boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadXLSX(bytes.NewReader(workbook(t, tt.rows)))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	in, err := ReadJSON(strings.NewReader(chartJSON))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteXLSX(in, &buf); err != nil {
		t.Fatalf("WriteXLSX() error: %v", err)
	}
	back, err := ReadXLSX(&buf)
	if err != nil {
		t.Fatalf("ReadXLSX() error: %v", err)
	}
	if len(back.Values) != 1 || len(back.SecondaryValues) != 2 || back.PrimaryTarget == nil || back.Scale == nil {
		t.Fatalf("round trip = %+v", back)
	}
	if back.SecondaryValues[1].Value != 100 || !back.SecondaryValues[1].Focused {
		t.Errorf("secondary = %+v", back.SecondaryValues[1])
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	in, err := ReadJSON(strings.NewReader(chartJSON))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteJSON(in, &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	checkChart(t, back)
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{
		"chart.json": []byte(chartJSON),
		"chart.toml": []byte(chartTOML),
		"CHART.XLSX": workbook(t, [][]any{{"series", "value"}, {"values", 1}, {"primary_target", 2}}),
	}
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		t.Run(name, func(t *testing.T) {
			in, err := Import(path)
			if err != nil {
				t.Fatalf("Import() error: %v", err)
			}
			if len(in.Values) != 1 || in.PrimaryTarget == nil {
				t.Errorf("Import() = %+v", in)
			}
		})
	}

	if _, err := Import(filepath.Join(dir, "chart.csv")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := Import(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"-", FormatJSON},
		{"a/b.json", FormatJSON},
		{"chart.Toml", FormatTOML},
		{"book.xlsx", FormatXLSX},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
		}
	}
}

func TestExport(t *testing.T) {
	in, err := ReadJSON(strings.NewReader(chartJSON))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	for _, name := range []string{"out.json", "out.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Export(in, path); err != nil {
				t.Fatalf("Export() error: %v", err)
			}
			back, err := Import(path)
			if err != nil {
				t.Fatalf("Import() error: %v", err)
			}
			if len(back.Values) != 1 || back.Values[0].Value != 270 || back.PrimaryTarget == nil {
				t.Errorf("exported chart = %+v", back)
			}
		})
	}

	if err := Export(in, filepath.Join(dir, "out.toml")); err == nil {
		t.Error("expected error for TOML output")
	}
	if err := Export(in, filepath.Join(dir, "out.csv")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
