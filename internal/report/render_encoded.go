package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// JSONRenderer writes the report as indented JSON.
type JSONRenderer struct{}

func (JSONRenderer) Render(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report json: %w", err)
	}

	return nil
}

// YAMLRenderer writes the report as a YAML document.
type YAMLRenderer struct{}

func (YAMLRenderer) Render(w io.Writer, rep *Report) error {
	enc := yaml.NewEncoder(w)

	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report yaml: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush report yaml: %w", err)
	}

	return nil
}
