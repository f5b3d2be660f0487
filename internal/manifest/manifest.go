// Package manifest writes and reads the offline build artifact: a
// versioned, deterministic description of the dispatch table suitable
// for diffing between schema revisions, plus the interned-name list
// consumed by the interpreter's symbol subsystem.
package manifest

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/funvibe/opforge/internal/config"
	"github.com/funvibe/opforge/internal/dispatch"
	"golang.org/x/crypto/blake2b"
)

// FormatVersion is bumped whenever the document shape changes.
const FormatVersion = 1

// OpSummary is the stable description of one compiled overload.
type OpSummary struct {
	Descriptor   string   `json:"descriptor"`
	Name         string   `json:"name"`
	Shape        string   `json:"shape"`
	StaticInputs int      `json:"static_inputs"`
	Variadic     bool     `json:"variadic,omitempty"`
	Positional   []string `json:"positional,omitempty"`
	Attributes   []string `json:"attributes,omitempty"`
}

// Manifest is the artifact document. Everything except BuildID is a
// pure function of the declaration set and ambiguity rules, so two
// builds of the same inputs produce identical fingerprints.
type Manifest struct {
	Version     int         `json:"version"`
	BuildID     string      `json:"build_id"`
	Fingerprint string      `json:"fingerprint"`
	Names       []string    `json:"interned_names"`
	Ops         []OpSummary `json:"operators"`
}

// FromTable summarizes a built table. Operators are emitted in sorted
// descriptor order.
func FromTable(t *dispatch.Table, buildID string) *Manifest {
	m := &Manifest{
		Version: FormatVersion,
		BuildID: buildID,
		Names:   t.InternedNames(),
	}
	for _, key := range t.Descriptors() {
		plan, _ := t.Lookup(key)
		m.Ops = append(m.Ops, summarize(plan))
	}
	m.Fingerprint = m.fingerprint()
	return m
}

func summarize(p *dispatch.CallPlan) OpSummary {
	s := OpSummary{
		Descriptor:   p.Descriptor,
		Name:         p.Name,
		Shape:        p.Shape.String(),
		StaticInputs: p.StaticInputs,
		Variadic:     p.Variadic,
	}
	for _, step := range p.Args {
		if step.Role == dispatch.RoleAttribute {
			s.Attributes = append(s.Attributes, step.Name+":"+step.Type.String())
			continue
		}
		slot := strconv.Itoa(step.Index)
		if step.Index < 0 {
			slot = config.VariadicMarker
		}
		s.Positional = append(s.Positional, step.Name+":"+step.Type.String()+"@"+slot)
	}
	return s
}

// fingerprint hashes the canonical encoding of the operator set and
// name list. BuildID is deliberately excluded.
func (m *Manifest) fingerprint() string {
	var buf bytes.Buffer
	buf.WriteString("v" + strconv.Itoa(m.Version) + "\n")
	for _, n := range m.Names {
		buf.WriteString("n " + n + "\n")
	}
	for _, op := range m.Ops {
		buf.WriteString("op " + op.Descriptor)
		buf.WriteString(" " + op.Shape)
		buf.WriteString(" " + strconv.Itoa(op.StaticInputs))
		if op.Variadic {
			buf.WriteString(" variadic")
		}
		buf.WriteString(" [" + strings.Join(op.Positional, ","))
		buf.WriteString("] [" + strings.Join(op.Attributes, ",") + "]\n")
	}
	sum := blake2b.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// Write stores the manifest document and the interned-name list in dir.
func (m *Manifest) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(dir, config.ManifestFileName), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	names := strings.Join(m.Names, "\n")
	if len(m.Names) > 0 {
		names += "\n"
	}
	if err := os.WriteFile(filepath.Join(dir, config.InternedNamesFileName), []byte(names), 0o644); err != nil {
		return fmt.Errorf("write interned names: %w", err)
	}
	return nil
}

// Load reads a manifest back and verifies both the format version and
// the fingerprint, so a corrupted or hand-edited artifact is refused.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if m.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported manifest version %d (want %d)", m.Version, FormatVersion)
	}
	if got := m.fingerprint(); got != m.Fingerprint {
		return nil, fmt.Errorf("manifest fingerprint mismatch: stored %s, computed %s", m.Fingerprint, got)
	}
	return &m, nil
}
