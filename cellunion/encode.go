package cellunion

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/geocell/cellid"
)

// encodingVersion is the only version written and accepted.
const encodingVersion byte = 1

// DefaultMaxDecodeCells bounds the number of cells Decode accepts.
const DefaultMaxDecodeCells = 1_000_000

var (
	// ErrUnsupportedVersion is returned for an unknown version byte.
	ErrUnsupportedVersion = errors.New("cellunion: unsupported encoding version")
	// ErrTooManyCells is returned when the encoded count exceeds the limit.
	ErrTooManyCells = errors.New("cellunion: too many cells")
	// ErrTruncated is returned when the input ends early.
	ErrTruncated = errors.New("cellunion: truncated input")
)

// DecodeOptions controls Decode.
type DecodeOptions struct {
	// MaxCells caps the declared cell count. Zero selects
	// DefaultMaxDecodeCells.
	MaxCells int
}

// EncodedLen returns the number of bytes Encode writes.
func (cu CellUnion) EncodedLen() int { return 1 + 8 + len(cu)*cellid.EncodedSize }

// AppendBinary appends the encoding of cu to dst: a version byte, the cell
// count as a little-endian uint64, then every id as a little-endian uint64.
func (cu CellUnion) AppendBinary(dst []byte) []byte {
	dst = append(dst, encodingVersion)
	dst = binary.LittleEndian.AppendUint64(dst, uint64(len(cu)))
	for _, id := range cu {
		dst = id.AppendBinary(dst)
	}
	return dst
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (cu CellUnion) MarshalBinary() ([]byte, error) {
	return cu.AppendBinary(make([]byte, 0, cu.EncodedLen())), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler with default
// DecodeOptions.
func (cu *CellUnion) UnmarshalBinary(data []byte) error {
	out, n, err := decodeBytes(data, DecodeOptions{})
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("cellunion: %d trailing bytes", len(data)-n)
	}
	*cu = out
	return nil
}

// Encode writes cu to w in the format of AppendBinary.
func (cu CellUnion) Encode(w io.Writer) error {
	_, err := w.Write(cu.AppendBinary(make([]byte, 0, cu.EncodedLen())))
	return err
}

// Decode reads a union written by Encode. It reads exactly the encoded bytes
// from r. The ids are returned verbatim; use IsValid before trusting them.
func Decode(r io.Reader, opts DecodeOptions) (CellUnion, error) {
	var hdr [9]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, truncated(err)
	}
	n, err := checkHeader(hdr[:], opts.maxCells())
	if err != nil {
		return nil, err
	}
	cu := make(CellUnion, 0, n)
	for range n {
		id, err := cellid.Decode(r)
		if err != nil {
			return nil, truncated(err)
		}
		cu = append(cu, id)
	}
	return cu, nil
}

// DecodeBytes decodes a union from the start of data and returns the number
// of bytes consumed.
func DecodeBytes(data []byte, opts DecodeOptions) (CellUnion, int, error) {
	return decodeBytes(data, opts)
}

func decodeBytes(data []byte, opts DecodeOptions) (CellUnion, int, error) {
	if len(data) < 9 {
		return nil, 0, ErrTruncated
	}
	n, err := checkHeader(data[:9], opts.maxCells())
	if err != nil {
		return nil, 0, err
	}
	end := 9 + n*cellid.EncodedSize
	if len(data) < end {
		return nil, 0, ErrTruncated
	}
	cu := make(CellUnion, n)
	for i := range cu {
		cu[i] = cellid.CellID(binary.LittleEndian.Uint64(data[9+i*8:]))
	}
	return cu, end, nil
}

func checkHeader(hdr []byte, maxCells int) (int, error) {
	if hdr[0] != encodingVersion {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr[0])
	}
	n := binary.LittleEndian.Uint64(hdr[1:9])
	if n > uint64(maxCells) {
		return 0, fmt.Errorf("%w: %d > %d", ErrTooManyCells, n, maxCells)
	}
	return int(n), nil
}

func (o DecodeOptions) maxCells() int {
	if o.MaxCells <= 0 {
		return DefaultMaxDecodeCells
	}
	return o.MaxCells
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, cellid.ErrTruncated) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return err
}
