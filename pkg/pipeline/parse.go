package pipeline

import (
	"bytes"
	stderrors "errors"
	"io/fs"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/errors"
	bulletio "github.com/matzehuels/bullet/pkg/io"
)

// Load reads a chart input from a file. The format follows the extension
// (.json, .toml or .xlsx); "-" reads JSON from stdin.
func Load(path string) (bullet.Input, error) {
	if _, err := bulletio.DetectFormat(path); err != nil {
		return bullet.Input{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", err.Error())
	}
	in, err := bulletio.Import(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return bullet.Input{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "file not found: %s", path)
		}
		return bullet.Input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", err.Error())
	}
	return in, nil
}

// Parse decodes chart input bytes in the given input format
// ("json", "toml" or "xlsx").
func Parse(data []byte, format string) (bullet.Input, error) {
	switch format {
	case bulletio.FormatJSON, bulletio.FormatTOML, bulletio.FormatXLSX:
	default:
		return bullet.Input{}, errors.New(errors.ErrCodeInvalidFormat,
			"unsupported input format: %q (must be one of: json, toml, xlsx)", format)
	}
	in, err := bulletio.Read(bytes.NewReader(data), format)
	if err != nil {
		return bullet.Input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s input: %s", format, err.Error())
	}
	return in, nil
}
