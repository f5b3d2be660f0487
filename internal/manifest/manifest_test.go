package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/opforge/internal/config"
	"github.com/funvibe/opforge/internal/dispatch"
	"github.com/funvibe/opforge/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *dispatch.Table {
	t.Helper()
	b := dispatch.NewBuilder(dispatch.DefaultAmbiguityRules())
	b.Add(
		schema.Declaration{
			Name: "add", APIName: "add", MethodOf: []string{"namespace"},
			Args: []schema.Argument{
				{Name: "self", Type: schema.TypeTensor},
				{Name: "other", Type: schema.TypeTensor},
				{Name: "alpha", Type: schema.TypeScalar},
			},
		},
		schema.Declaration{
			Name: "cat", APIName: "cat", MethodOf: []string{"namespace"},
			Args: []schema.Argument{
				{Name: "tensors", Type: schema.TypeTensorList},
				{Name: "dim", Type: schema.TypeInt},
			},
		},
	)
	table, _, err := b.Build()
	require.NoError(t, err)
	return table
}

func TestWriteAndLoad(t *testing.T) {
	table := sampleTable(t)
	m := FromTable(table, "run-1")

	dir := t.TempDir()
	require.NoError(t, m.Write(dir))

	loaded, err := Load(filepath.Join(dir, config.ManifestFileName))
	require.NoError(t, err)
	assert.Equal(t, m.Fingerprint, loaded.Fingerprint)
	assert.Equal(t, m.Names, loaded.Names)
	assert.Equal(t, m.Ops, loaded.Ops)

	names, err := os.ReadFile(filepath.Join(dir, config.InternedNamesFileName))
	require.NoError(t, err)
	assert.Equal(t, "add\ncat\n", string(names))
}

func TestFingerprintStableAcrossRebuilds(t *testing.T) {
	first := FromTable(sampleTable(t), "run-1")
	second := FromTable(sampleTable(t), "run-2")

	assert.NotEqual(t, first.BuildID, second.BuildID)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.Ops, second.Ops)
}

func TestOpSummaryShape(t *testing.T) {
	m := FromTable(sampleTable(t), "run-1")
	byKey := map[string]OpSummary{}
	for _, op := range m.Ops {
		byKey[op.Descriptor] = op
	}

	cat := byKey["cat-*"]
	assert.True(t, cat.Variadic)
	assert.Equal(t, 1, cat.StaticInputs)
	assert.Equal(t, []string{"tensors:TensorList@*", "dim:Int@0"}, cat.Positional)

	attr := byKey["add-2-alpha"]
	assert.Equal(t, []string{"alpha:Scalar"}, attr.Attributes)
	assert.Equal(t, "namespace", attr.Shape)
}

func TestLoadRejectsTampering(t *testing.T) {
	m := FromTable(sampleTable(t), "run-1")
	dir := t.TempDir()
	require.NoError(t, m.Write(dir))

	path := filepath.Join(dir, config.ManifestFileName)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tampered := strings.Replace(string(data), `"add-2-alpha"`, `"add-2-beta"`, 1)
	require.NoError(t, os.WriteFile(path, []byte(tampered), 0o644))

	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fingerprint")
}

func TestLoadRejectsVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ManifestFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}
