// Package io reads and writes bullet chart inputs.
//
// # Overview
//
// A chart input is a [bullet.Input]: up to three values, up to three
// secondary values, a primary target and optional secondary target and
// scale. Three file formats are supported:
//
//   - JSON (.json): the native encoding of [bullet.Input]
//   - TOML (.toml): the same fields, friendlier to hand-edit
//   - Excel (.xlsx): one row per item, for charts maintained in a spreadsheet
//
// [Import] picks the reader by file extension; "-" reads JSON from stdin.
//
// # JSON Format
//
//	{
//	  "values": [{"value": 270, "label": "Revenue"}],
//	  "secondary_values": [{"value": 150}, {"value": 100}],
//	  "primary_target": {"value": 250, "tooltip": "Plan"},
//	  "scale": {"value": 300, "label": "$300"}
//	}
//
// Item fields: value (required), id, label, tooltip, class, focused,
// unfocused. A string label is plain text. Any other JSON value is kept as
// an opaque fragment for renderers that understand it.
//
// # TOML Format
//
//	[[values]]
//	value = 270
//	label = "Revenue"
//
//	[[secondary_values]]
//	value = 150
//
//	[primary_target]
//	value = 250
//
// A label given as a table becomes a fragment holding its JSON encoding,
// exactly as the equivalent JSON file would.
//
// # Excel Format
//
// The first sheet holds a header row followed by one row per item:
//
//	series            | value | id | label   | tooltip | class | focused | unfocused
//	values            | 270   |    | Revenue |         |       |         |
//	secondary_values  | 150   |    |         |         |       |         |
//	primary_target    | 250   |    |         | Plan    |       |         |
//
// Columns are matched by header name, case-insensitively, and only series
// and value are required. Boolean cells accept true/false, yes/no, 1/0
// and x.
package io
