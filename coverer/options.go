package coverer

import (
	"log/slog"

	"github.com/hupe1980/geocell/cellid"
)

// DefaultMaxCells is the default soft limit on the number of cells returned.
const DefaultMaxCells = 8

// Options controls the size and shape of coverings.
//
// MaxCells is a soft limit: a covering may exceed it when MinLevel is too
// high or when the region intersects many faces. With MaxCells < 4 the
// covering may be much larger than the region.
type Options struct {
	MaxCells int // soft limit on the number of cells, default 8
	MinLevel int // no cell coarser than this level, default 0
	MaxLevel int // no cell finer than this level, default 30
	LevelMod int // only levels MinLevel + k*LevelMod are used; 1, 2 or 3
}

// DefaultOptions returns the default covering options.
func DefaultOptions() Options {
	return Options{
		MaxCells: DefaultMaxCells,
		MinLevel: 0,
		MaxLevel: cellid.MaxLevel,
		LevelMod: 1,
	}
}

// TrueMaxLevel returns MaxLevel rounded down so that it is reachable from
// MinLevel in steps of LevelMod.
func (o Options) TrueMaxLevel() int {
	if o.LevelMod == 1 {
		return o.MaxLevel
	}
	return o.MaxLevel - (o.MaxLevel-o.MinLevel)%o.LevelMod
}

// Option configures a RegionCoverer.
type Option func(*config)

type config struct {
	opts   Options
	logger *slog.Logger
}

// WithMaxCells sets the soft cell budget.
func WithMaxCells(n int) Option {
	return func(c *config) {
		c.opts.MaxCells = n
	}
}

// WithMinLevel sets the coarsest level used. Values are clamped to
// [0, MaxLevel].
func WithMinLevel(level int) Option {
	return func(c *config) {
		c.opts.MinLevel = clampLevel(level)
	}
}

// WithMaxLevel sets the finest level used. Values are clamped to
// [0, MaxLevel].
func WithMaxLevel(level int) Option {
	return func(c *config) {
		c.opts.MaxLevel = clampLevel(level)
	}
}

// WithFixedLevel makes every covering cell use exactly the given level.
func WithFixedLevel(level int) Option {
	return func(c *config) {
		c.opts.MinLevel = clampLevel(level)
		c.opts.MaxLevel = clampLevel(level)
	}
}

// WithLevelMod sets the branching step; values are clamped to [1, 3] so the
// branching factor is 4, 16 or 64.
func WithLevelMod(mod int) Option {
	return func(c *config) {
		c.opts.LevelMod = max(1, min(3, mod))
	}
}

// WithOptions replaces all size options at once, clamping them.
func WithOptions(o Options) Option {
	return func(c *config) {
		WithMaxCells(o.MaxCells)(c)
		WithMinLevel(o.MinLevel)(c)
		WithMaxLevel(o.MaxLevel)(c)
		WithLevelMod(o.LevelMod)(c)
	}
}

// WithLogger sets a logger receiving one debug record per search.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func clampLevel(level int) int {
	return max(0, min(cellid.MaxLevel, level))
}
