package astio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"kestrel/internal/ast"
)

// Document is one serialized source file.
type Document struct {
	// Path names the source file the spans refer to. When empty, the name
	// of the file the document was read from is used.
	Path string `yaml:"path,omitempty" msgpack:"path,omitempty"`
	// Source is the original text, used only to print diagnostics.
	Source string      `yaml:"source,omitempty" msgpack:"source,omitempty"`
	Units  []*ast.Unit `yaml:"units" msgpack:"units"`
}

// DecodeYAML parses a single YAML document. Unknown keys are errors so a
// misspelled field does not silently vanish from the tree.
func DecodeYAML(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("expected a single YAML document")
	}
	if len(doc.Units) == 0 {
		return nil, errors.New("document has no units")
	}
	for i, u := range doc.Units {
		if u == nil || u.Name == "" {
			return nil, fmt.Errorf("unit #%d has no name", i)
		}
	}
	return &doc, nil
}

// EncodeYAML writes doc in the form DecodeYAML reads.
func EncodeYAML(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
