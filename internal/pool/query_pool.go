// Package pool recycles per-query scratch state: a region coverer and a
// label bitset used to report each matching label once.
package pool

import (
	"log/slog"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/geocell/coverer"
)

const (
	// DefaultMaxLabels is the initial bitset capacity.
	DefaultMaxLabels = 1 << 16

	// shrinkFactor bounds how far a returned bitset may grow before it is
	// replaced with a fresh one.
	shrinkFactor = 16
)

// QueryContext holds reusable state for a single query.
type QueryContext struct {
	Coverer *coverer.RegionCoverer
	Seen    *bitset.BitSet
}

// Reset clears the context for reuse.
func (qc *QueryContext) Reset() { qc.Seen.ClearAll() }

// MarkSeen records label and reports whether it was already seen.
func (qc *QueryContext) MarkSeen(label int32) bool {
	i := uint(label)
	if qc.Seen.Test(i) {
		return true
	}
	qc.Seen.Set(i)
	return false
}

// Pool is a sync.Pool of QueryContexts whose coverers share one
// configuration.
type Pool struct {
	opts coverer.Options
	pool sync.Pool
}

// New creates a pool handing out coverers configured with opts.
func New(opts coverer.Options, logger *slog.Logger) *Pool {
	p := &Pool{opts: opts}
	p.pool.New = func() any {
		return &QueryContext{
			Coverer: coverer.New(coverer.WithOptions(opts), coverer.WithLogger(logger)),
			Seen:    bitset.New(DefaultMaxLabels),
		}
	}
	return p
}

// Options returns the coverer configuration of pooled contexts.
func (p *Pool) Options() coverer.Options { return p.opts }

// Get retrieves a cleared QueryContext.
func (p *Pool) Get() *QueryContext {
	qc := p.pool.Get().(*QueryContext)
	qc.Reset()
	return qc
}

// Put returns qc to the pool.
func (p *Pool) Put(qc *QueryContext) {
	if qc.Seen.Len() > DefaultMaxLabels*shrinkFactor {
		qc.Seen = bitset.New(DefaultMaxLabels)
	}
	p.pool.Put(qc)
}
