// Package pipeline drives the synthesis stages for invoke units: bind,
// resolve, analyze, synthesize. Each stage consumes the complete output of
// its predecessor; a unit fails whole on the first error and produces no
// partial schedule. Independent units share no mutable state, so they are
// compiled concurrently.
package pipeline

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/psykal-lang/psykal/internal/compiler/analysis"
	"github.com/psykal-lang/psykal/internal/compiler/ast"
	"github.com/psykal-lang/psykal/internal/compiler/binder"
	"github.com/psykal-lang/psykal/internal/compiler/errors"
	"github.com/psykal-lang/psykal/internal/compiler/metadata"
	"github.com/psykal-lang/psykal/internal/compiler/psygen"
	"github.com/psykal-lang/psykal/internal/compiler/symbols"
	"github.com/psykal-lang/psykal/internal/mesh"
)

// Pipeline owns the shared read-only inputs of a compilation run: the kernel
// registry and the mesh topology. It is safe for concurrent use.
type Pipeline struct {
	registry *metadata.Registry
	topology mesh.Topology
	logger   *zap.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger attaches a logger; the default is a no-op logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a pipeline over the given registry and topology
func New(registry *metadata.Registry, topology mesh.Topology, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: registry,
		topology: topology,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Compile runs the full pipeline for one invoke unit and returns its
// synthesized schedule. The symbol table lives only for the duration of this
// call and is discarded with it.
func (p *Pipeline) Compile(quantities []*metadata.Quantity, unit *ast.InvokeUnit) (*psygen.Schedule, *errors.GeneratorError) {
	runID := uuid.NewString()
	log := p.logger.With(zap.String("run_id", runID), zap.String("unit", unit.Name))

	log.Debug("binding invoke", zap.Int("calls", len(unit.Calls)))
	bound, err := binder.New(p.registry, quantities).Bind(unit)
	if err != nil {
		log.Debug("binding failed", zap.String("code", string(err.Code)))
		return nil, err
	}

	log.Debug("resolving symbols")
	table, err := symbols.Resolve(bound)
	if err != nil {
		log.Debug("symbol resolution failed", zap.String("code", string(err.Code)))
		return nil, err
	}

	log.Debug("analyzing accesses")
	report, err := analysis.New(p.topology).Analyze(bound)
	if err != nil {
		log.Debug("access analysis failed", zap.String("code", string(err.Code)))
		return nil, err
	}

	log.Debug("synthesizing driver",
		zap.Int("constraints", len(report.Constraints)),
		zap.Int("halos", len(report.Halos)),
		zap.Int("reductions", len(report.Reductions)))
	sched, err := psygen.New().Synthesize(bound, table, report)
	if err != nil {
		return nil, err
	}

	log.Debug("invoke synthesized", zap.Int("instructions", len(sched.Instructions)))
	return sched, nil
}

// Result is the outcome of compiling one invoke unit
type Result struct {
	Unit     string
	Schedule *psygen.Schedule
	Err      *errors.GeneratorError
}

// CompileAll compiles every unit of an algorithm. Units are independent, so
// each runs in its own goroutine; errors stay isolated to their unit.
// Results are returned in unit declaration order.
func (p *Pipeline) CompileAll(alg *Algorithm) []Result {
	results := make([]Result, len(alg.Program.Invokes))

	var wg sync.WaitGroup
	for i, unit := range alg.Program.Invokes {
		wg.Add(1)
		go func(i int, unit *ast.InvokeUnit) {
			defer wg.Done()
			sched, err := p.Compile(alg.Quantities, unit)
			results[i] = Result{Unit: unit.Name, Schedule: sched, Err: err}
		}(i, unit)
	}
	wg.Wait()

	return results
}
