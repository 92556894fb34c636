package geocell

import (
	"github.com/hupe1980/geocell/coverer"
)

// Builder is an immutable fluent builder for RegionIndex.
// Each method returns a new builder with the updated configuration.
//
// Example:
//
//	idx, err := geocell.NewBuilder().
//	    MaxCells(16).
//	    Levels(4, 18).
//	    QueryMaxCells(8).
//	    Compression(geocell.CompressionZstd).
//	    Build()
type Builder struct {
	index       coverer.Options
	query       *coverer.Options
	concurrency int
	compression Compression
	logger      *Logger
	metrics     MetricsCollector
}

// NewBuilder returns a builder starting from the default coverer options.
func NewBuilder() Builder {
	return Builder{
		index:       coverer.DefaultOptions(),
		compression: CompressionLZ4,
	}
}

// MaxCells sets the soft cell budget per indexed region.
// Default: 8.
func (b Builder) MaxCells(n int) Builder {
	b.index.MaxCells = n
	return b
}

// Levels restricts indexed coverings to cells between minLevel and maxLevel.
func (b Builder) Levels(minLevel, maxLevel int) Builder {
	b.index.MinLevel = minLevel
	b.index.MaxLevel = maxLevel
	return b
}

// FixedLevel makes every indexed cell use exactly level.
func (b Builder) FixedLevel(level int) Builder {
	return b.Levels(level, level)
}

// LevelMod restricts indexed levels to MinLevel plus multiples of mod.
func (b Builder) LevelMod(mod int) Builder {
	b.index.LevelMod = mod
	return b
}

// QueryMaxCells sets the cell budget for query coverings. Other query
// options follow the index options.
func (b Builder) QueryMaxCells(n int) Builder {
	q := b.queryOptions()
	q.MaxCells = n
	b.query = &q
	return b
}

// QueryOptions replaces the query coverer options.
func (b Builder) QueryOptions(o coverer.Options) Builder {
	b.query = &o
	return b
}

// Concurrency sets the number of Build workers.
func (b Builder) Concurrency(n int) Builder {
	b.concurrency = n
	return b
}

// Compression sets the snapshot codec.
func (b Builder) Compression(c Compression) Builder {
	b.compression = c
	return b
}

// Logger sets the logger.
func (b Builder) Logger(l *Logger) Builder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector.
func (b Builder) Metrics(mc MetricsCollector) Builder {
	b.metrics = mc
	return b
}

func (b Builder) queryOptions() coverer.Options {
	if b.query != nil {
		return *b.query
	}
	return b.index
}

func (b Builder) options() []Option {
	return []Option{
		WithCovererOptions(b.index),
		WithQueryCovererOptions(b.queryOptions()),
		WithConcurrency(b.concurrency),
		WithCompression(b.compression),
		WithLogger(b.logger),
		WithMetricsCollector(b.metrics),
	}
}

// Build creates the RegionIndex.
func (b Builder) Build() (*RegionIndex, error) {
	return New(b.options()...)
}

// MustBuild is like Build but panics on invalid options.
func (b Builder) MustBuild() *RegionIndex {
	x, err := b.Build()
	if err != nil {
		panic(err)
	}
	return x
}
