// Package strictyaml provides a strict YAML unmarshaller based on `go-yaml/yaml`
package strictyaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument is returned when the input holds no YAML document at all.
var ErrEmptyDocument = errors.New("empty YAML document")

// Unmarshal decodes exactly one YAML document from b into yamlObj. Keys in
// the document which do not correspond to fields of yamlObj are errors, as
// is any trailing second document.
func Unmarshal(b []byte, yamlObj any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(b))
	decoder.KnownFields(true)

	err := decoder.Decode(yamlObj)
	if errors.Is(err, io.EOF) {
		return ErrEmptyDocument
	}
	if err != nil {
		return err
	}

	var extra yaml.Node
	err = decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("line %d: unexpected additional YAML document", extra.Line)
}
