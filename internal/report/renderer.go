package report

import (
	"errors"
	"fmt"
	"io"
)

// Renderer output format names accepted by RendererFor.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ErrUnknownFormat indicates an unsupported report format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Renderer writes a report in one output format.
type Renderer interface {
	Render(w io.Writer, rep *Report) error
}

// RendererFor returns the renderer for a format name.
func RendererFor(format string, noColor bool) (Renderer, error) {
	switch format {
	case FormatTable:
		return TableRenderer{NoColor: noColor}, nil
	case FormatJSON:
		return JSONRenderer{}, nil
	case FormatYAML:
		return YAMLRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
