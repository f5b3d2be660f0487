package dispatch

import (
	"sort"
	"sync"

	"github.com/funvibe/opforge/internal/schema"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Default fan-out for the candidate-compilation phase
const defaultParallelism = 4

// candidate is one compiled variant awaiting the commit phase.
type candidate struct {
	key        string
	plan       *CallPlan
	decl       *schema.Declaration
	suppressed bool
}

// declResult is everything phase one produced for one declaration.
type declResult struct {
	rejected   bool
	reason     string
	candidates []candidate
	err        error
}

// Report is the non-fatal outcome of a build: what was filtered, what
// the ambiguity table suppressed, and which otherwise-eligible
// declarations ended up with no surviving variant.
type Report struct {
	BuildID    string
	Rejected   []Rejection
	Suppressed []string
	Omitted    []string
}

// Builder accumulates declarations and compiles them into a dispatch
// table. It is an explicit object rather than package state so that
// construction stays testable and side-effect-free until Build.
//
// Not safe for concurrent use; Build itself fans out internally.
type Builder struct {
	rules       AmbiguityRules
	decls       []schema.Declaration
	log         *zap.SugaredLogger
	parallelism int
}

// NewBuilder creates a builder using the given ambiguity rule table.
// Pass DefaultAmbiguityRules() for the bundled one.
func NewBuilder(rules AmbiguityRules) *Builder {
	return &Builder{
		rules:       rules,
		log:         zap.NewNop().Sugar(),
		parallelism: defaultParallelism,
	}
}

// SetLogger directs build-phase logging.
func (b *Builder) SetLogger(log *zap.SugaredLogger) {
	if log != nil {
		b.log = log
	}
}

// SetParallelism bounds the candidate-compilation fan-out.
func (b *Builder) SetParallelism(n int) {
	if n > 0 {
		b.parallelism = n
	}
}

// Add ingests declarations. Ingestion only records them; all checks
// happen in Build.
func (b *Builder) Add(decls ...schema.Declaration) {
	b.decls = append(b.decls, decls...)
}

// Build compiles the declaration set into an immutable table.
//
// Phase one filters, expands and plan-compiles each declaration
// independently (in parallel, results kept in declaration order so the
// outcome is deterministic). The commit phase then runs serially over
// the complete candidate set: ambiguity suppression, duplicate-key
// detection and publication. Any SchemaError or ConflictError aborts
// the build and nothing is published.
func (b *Builder) Build() (*Table, *Report, error) {
	report := &Report{BuildID: uuid.NewString()}

	results := make([]declResult, len(b.decls))

	var wg sync.WaitGroup
	sem := make(chan struct{}, b.parallelism)
	for i := range b.decls {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = b.compileDecl(&b.decls[i])
		}(i)
	}
	wg.Wait()

	// Commit phase: serialized over the complete candidate set.
	ops := make(map[string]*CallPlan)
	owner := make(map[string]string)
	nameSet := make(map[string]struct{})

	for i := range results {
		res := &results[i]
		if res.err != nil {
			return nil, nil, res.err
		}
		if res.rejected {
			report.Rejected = append(report.Rejected, Rejection{Decl: b.decls[i].Name, Reason: res.reason})
			continue
		}

		nameSet[b.decls[i].Name] = struct{}{}

		accepted := 0
		for _, c := range res.candidates {
			if c.suppressed {
				report.Suppressed = append(report.Suppressed, c.key)
				b.log.Debugw("variant suppressed by ambiguity rule", "descriptor", c.key, "decl", c.decl.Name)
				continue
			}
			if prev, dup := owner[c.key]; dup {
				return nil, nil, &ConflictError{Key: c.key, First: prev, Second: c.decl.Name}
			}
			ops[c.key] = c.plan
			owner[c.key] = c.decl.Name
			accepted++
		}

		// An eligible declaration whose variants were all suppressed
		// is omitted from the table but kept visible in the report.
		if accepted == 0 {
			report.Omitted = append(report.Omitted, b.decls[i].Name)
		}
	}

	names := make([]string, 0, len(nameSet))
	for n := range nameSet {
		names = append(names, n)
	}
	sort.Strings(names)

	b.log.Infow("dispatch table built",
		"declarations", len(b.decls),
		"operators", len(ops),
		"rejected", len(report.Rejected),
		"suppressed", len(report.Suppressed),
	)

	return &Table{ops: ops, names: names}, report, nil
}

// compileDecl runs the per-declaration pipeline: eligibility, variant
// expansion, descriptor computation, ambiguity marking, plan compile.
func (b *Builder) compileDecl(d *schema.Declaration) declResult {
	ok, reason := eligible(d)
	if !ok {
		return declResult{rejected: true, reason: reason}
	}

	var out []candidate
	for _, v := range expandVariants(d) {
		v := v
		key := v.descriptor()
		if b.rules.suppresses(key, &v) {
			out = append(out, candidate{key: key, decl: d, suppressed: true})
			continue
		}
		plan, err := compilePlan(&v)
		if err != nil {
			return declResult{err: err}
		}
		out = append(out, candidate{key: key, plan: plan, decl: d})
	}
	return declResult{candidates: out}
}
