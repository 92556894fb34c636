package geocell

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/coverer"
	"github.com/hupe1980/geocell/internal/compress"
	"github.com/hupe1980/geocell/internal/fs"
)

// Compression selects the snapshot block codec.
type Compression = compress.Type

// Snapshot compression codecs.
const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZstd = compress.Zstd
)

type options struct {
	indexCoverer     coverer.Options
	queryCoverer     coverer.Options
	queryCovererSet  bool
	concurrency      int
	compression      Compression
	metricsCollector MetricsCollector
	logger           *Logger
	fs               fs.FileSystem
}

// Option configures a RegionIndex.
type Option func(*options)

// WithCovererOptions sets the options used to cover regions added with Add.
// Queries use the same options unless WithQueryCovererOptions is given.
//
// Example:
//
//	idx, _ := geocell.New(geocell.WithCovererOptions(coverer.Options{
//	    MaxCells: 16, MinLevel: 4, MaxLevel: 16, LevelMod: 1,
//	}))
func WithCovererOptions(o coverer.Options) Option {
	return func(opts *options) {
		opts.indexCoverer = o
	}
}

// WithQueryCovererOptions sets the options used to cover query regions.
// Coarser query coverings are cheaper to compute but may report labels
// whose regions only touch the query's covering.
func WithQueryCovererOptions(o coverer.Options) Option {
	return func(opts *options) {
		opts.queryCoverer = o
		opts.queryCovererSet = true
	}
}

// WithConcurrency sets the number of goroutines covering regions during
// Build. Values below 1 select runtime.GOMAXPROCS(0).
func WithConcurrency(n int) Option {
	return func(opts *options) {
		opts.concurrency = n
	}
}

// WithCompression sets the codec used by WriteTo and Save.
// Default: CompressionLZ4.
func WithCompression(c Compression) Option {
	return func(opts *options) {
		opts.compression = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &geocell.BasicMetricsCollector{}
//	idx, _ := geocell.New(geocell.WithMetricsCollector(metrics))
//	// ... use idx ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(opts *options) {
		opts.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := geocell.NewJSONLogger(slog.LevelInfo)
//	idx, _ := geocell.New(geocell.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(opts *options) {
		opts.logger = NewTextLogger(level)
	}
}

// withFileSystem replaces the filesystem used by Save. Tests use it to
// inject faults.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(opts *options) {
		opts.fs = fsys
	}
}

func applyOptions(optFns []Option) (options, error) {
	opts := options{
		indexCoverer: coverer.DefaultOptions(),
		compression:  CompressionLZ4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if !opts.queryCovererSet {
		opts.queryCoverer = opts.indexCoverer
	}
	if opts.concurrency < 1 {
		opts.concurrency = runtime.GOMAXPROCS(0)
	}
	if opts.metricsCollector == nil {
		opts.metricsCollector = NoopMetricsCollector{}
	}
	if opts.logger == nil {
		opts.logger = NoopLogger()
	}
	if opts.fs == nil {
		opts.fs = fs.Default
	}

	for _, o := range []coverer.Options{opts.indexCoverer, opts.queryCoverer} {
		if err := validateCovererOptions(o); err != nil {
			return options{}, err
		}
	}
	if !opts.compression.Valid() {
		return options{}, fmt.Errorf("%w: %v", ErrInvalidOptions, opts.compression)
	}
	return opts, nil
}

func validateCovererOptions(o coverer.Options) error {
	if o.MaxCells < 1 {
		return fmt.Errorf("%w: max cells %d", ErrInvalidOptions, o.MaxCells)
	}
	if o.LevelMod < 1 || o.LevelMod > 3 {
		return fmt.Errorf("%w: level mod %d", ErrInvalidOptions, o.LevelMod)
	}
	if o.MinLevel < 0 || o.MaxLevel > cellid.MaxLevel {
		return fmt.Errorf("%w: levels [%d, %d]", ErrInvalidOptions, o.MinLevel, o.MaxLevel)
	}
	if o.MinLevel > o.MaxLevel {
		return &ErrInvalidLevels{MinLevel: o.MinLevel, MaxLevel: o.MaxLevel}
	}
	return nil
}
