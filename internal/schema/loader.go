package schema

import (
	"fmt"
	"io"
	"os"

	"github.com/funvibe/opforge/internal/config"
	"gopkg.in/yaml.v3"
)

// document is the top-level shape of a declarations file.
type document struct {
	Declarations []Declaration `yaml:"declarations"`
}

// Load reads a declarations file from disk.
func Load(path string) ([]Declaration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema source: %w", err)
	}
	defer f.Close()

	decls, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return decls, nil
}

// Read decodes declarations from a reader. Only structural decoding
// happens here; semantic checks belong to the dispatch builder.
func Read(r io.Reader) ([]Declaration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode schema source: %w", err)
	}

	for i := range doc.Declarations {
		d := &doc.Declarations[i]
		if d.Name == "" {
			return nil, fmt.Errorf("declaration %d has no name", i)
		}
		if d.APIName == "" {
			d.APIName = d.Name
		}
	}
	return doc.Declarations, nil
}

// ReceiverBuiltins returns the hand-maintained receiver methods that
// never appear in the generated schema source but must still be
// dispatchable: shape accessors implemented directly on the tensor.
func ReceiverBuiltins() []Declaration {
	names := []string{"sizes", "strides", "dim"}
	decls := make([]Declaration, 0, len(names))
	for _, name := range names {
		decls = append(decls, Declaration{
			Name:     name,
			APIName:  name,
			MethodOf: []string{config.TensorReceiver},
			Args:     []Argument{{Name: "self", Type: TypeTensor}},
		})
	}
	return decls
}
