package request

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	cerrors "archcost/internal/errors"
)

// DecodeYAML parses a YAML (or JSON) request. Unknown top-level keys are errors.
func DecodeYAML(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, cerrors.Wrap(cerrors.TypeInput, "malformed YAML request", err)
	}
	return &doc, nil
}
