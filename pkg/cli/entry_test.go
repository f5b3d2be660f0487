package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/funvibe/opforge/internal/config"
	"github.com/funvibe/opforge/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
declarations:
  - name: add
    method_of: [namespace, Tensor]
    arguments:
      - {name: self, type: Tensor}
      - {name: other, type: Tensor}
      - {name: alpha, type: Scalar}
  - name: relu_
    method_of: [Tensor]
    arguments:
      - {name: self, type: Tensor}
`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "declarations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0o644))
	return path
}

func TestRunWritesArtifact(t *testing.T) {
	outDir := t.TempDir()
	var out bytes.Buffer

	err := Run(Options{SchemaPath: writeSchema(t), OutDir: outDir}, &out)
	require.NoError(t, err)

	m, err := manifest.Load(filepath.Join(outDir, config.ManifestFileName))
	require.NoError(t, err)

	// The schema's add plus the hand-maintained receiver builtins.
	assert.Equal(t, []string{"add", "dim", "sizes", "strides"}, m.Names)
	assert.Contains(t, out.String(), "operators")

	names, err := os.ReadFile(filepath.Join(outDir, config.InternedNamesFileName))
	require.NoError(t, err)
	assert.Contains(t, string(names), "sizes\n")
}

func TestRunDiagReportsRejections(t *testing.T) {
	var out bytes.Buffer
	err := Run(Options{SchemaPath: writeSchema(t), Diag: true}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "rejected relu_: mutating api name")
}

func TestRunRequiresSchema(t *testing.T) {
	err := Run(Options{}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestRunMissingSchemaFile(t *testing.T) {
	err := Run(Options{SchemaPath: filepath.Join(t.TempDir(), "missing.yaml")}, &bytes.Buffer{})
	require.Error(t, err)
}
