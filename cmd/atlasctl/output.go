package main

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

type printer func(v any) error

// newPrinter returns a printer writing v to w in the given format. Values are marshalled to JSON
// first so YAML uses the same field names.
func newPrinter(w io.Writer, format string) printer {
	return func(v any) error {
		if format == outputJSON {
			encoder := json.NewEncoder(w)
			encoder.SetIndent("", "  ")
			return encoder.Encode(v)
		}

		b, err := json.Marshal(v)
		if err != nil {
			return err
		}

		var generic any
		err = yaml.Unmarshal(b, &generic)
		if err != nil {
			return err
		}

		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(generic)
	}
}
