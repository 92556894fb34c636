package geocell

import (
	"errors"
	"fmt"

	"github.com/hupe1980/geocell/cellindex"
	"github.com/hupe1980/geocell/internal/compress"
)

var (
	// ErrNotBuilt is returned when querying or saving an index before Build.
	ErrNotBuilt = errors.New("geocell: index not built")
	// ErrAlreadyBuilt is returned when adding to or rebuilding a built index.
	ErrAlreadyBuilt = errors.New("geocell: index already built")
	// ErrInvalidLabel is returned for negative labels.
	ErrInvalidLabel = errors.New("geocell: invalid label")
	// ErrInvalidRegion is returned for a nil region.
	ErrInvalidRegion = errors.New("geocell: invalid region")
	// ErrInvalidCellUnion is returned for a cell union that is not valid.
	ErrInvalidCellUnion = errors.New("geocell: invalid cell union")
	// ErrInvalidOptions is returned by New for inconsistent options.
	ErrInvalidOptions = errors.New("geocell: invalid options")
	// ErrCorrupt is returned when a snapshot cannot be decoded.
	ErrCorrupt = errors.New("geocell: corrupt snapshot")
)

// ErrInvalidLevels indicates a covering configuration whose minimum level
// exceeds its maximum level.
//
// It matches ErrInvalidOptions with errors.Is.
type ErrInvalidLevels struct {
	MinLevel int
	MaxLevel int
}

func (e *ErrInvalidLevels) Error() string {
	return fmt.Sprintf("geocell: min level %d exceeds max level %d", e.MinLevel, e.MaxLevel)
}

func (e *ErrInvalidLevels) Unwrap() error { return ErrInvalidOptions }

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, cellindex.ErrCorruptIndex) ||
		errors.Is(err, cellindex.ErrInvalidMagic) ||
		errors.Is(err, cellindex.ErrUnsupportedVersion) ||
		errors.Is(err, compress.ErrCorrupt) {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return err
}
