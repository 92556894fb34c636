package cellindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/internal/compress"
	"github.com/hupe1980/geocell/internal/conv"
	"github.com/hupe1980/geocell/internal/hash"
)

const (
	// SnapshotMagic identifies index snapshots (ASCII: "GCX1").
	SnapshotMagic = 0x47435831

	// SnapshotVersion is the current snapshot format version.
	SnapshotVersion uint32 = 1

	// headerSize is the size of the snapshot header in bytes.
	headerSize = 32

	cellNodeSize  = 16 // id uint64, label int32, parent int32
	rangeNodeSize = 12 // start uint64, contents int32

	// maxSnapshotNodes bounds the node counts accepted from a header.
	maxSnapshotNodes = 1 << 31
)

// Compression selects the codec of a snapshot body.
type Compression = compress.Type

// Snapshot codecs.
const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZstd = compress.Zstd
)

var (
	// ErrInvalidMagic is returned when the input is not an index snapshot.
	ErrInvalidMagic = errors.New("cellindex: invalid magic number")
	// ErrUnsupportedVersion is returned for a newer snapshot format.
	ErrUnsupportedVersion = errors.New("cellindex: unsupported snapshot version")
	// ErrCorruptIndex is returned when a snapshot fails validation.
	ErrCorruptIndex = errors.New("cellindex: corrupt snapshot")
)

// DecodeError reports where reading a snapshot failed.
type DecodeError struct {
	Offset int64 // bytes of the snapshot consumed before the failure
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cellindex: decode at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// fileHeader is the fixed header preceding the compressed body.
//
// All multi-byte fields are little-endian.
type fileHeader struct {
	Magic       uint32
	Version     uint32
	Compression Compression
	NumCells    uint64
	NumRanges   uint64
	Checksum    uint32 // CRC32C of the bytes before it
}

func (h *fileHeader) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	buf[8] = byte(h.Compression)
	binary.LittleEndian.PutUint64(buf[12:20], h.NumCells)
	binary.LittleEndian.PutUint64(buf[20:28], h.NumRanges)
	h.Checksum = hash.CRC32C(buf[:28])
	binary.LittleEndian.PutUint32(buf[28:32], h.Checksum)
	n, err := w.Write(buf)
	return int64(n), err
}

func (h *fileHeader) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, headerSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return int64(n), err
	}
	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	h.Version = binary.LittleEndian.Uint32(buf[4:8])
	h.Compression = Compression(buf[8])
	h.NumCells = binary.LittleEndian.Uint64(buf[12:20])
	h.NumRanges = binary.LittleEndian.Uint64(buf[20:28])
	h.Checksum = binary.LittleEndian.Uint32(buf[28:32])

	if h.Magic != SnapshotMagic {
		return int64(n), ErrInvalidMagic
	}
	if h.Checksum != hash.CRC32C(buf[:28]) {
		return int64(n), fmt.Errorf("%w: header checksum mismatch", ErrCorruptIndex)
	}
	if h.Version > SnapshotVersion {
		return int64(n), fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if !h.Compression.Valid() {
		return int64(n), fmt.Errorf("%w: %w", ErrCorruptIndex, compress.ErrUnknownType)
	}
	if h.NumCells >= maxSnapshotNodes || h.NumRanges >= maxSnapshotNodes || h.NumRanges < 2 {
		return int64(n), fmt.Errorf("%w: node counts %d/%d", ErrCorruptIndex, h.NumCells, h.NumRanges)
	}
	return int64(n), nil
}

// WriteTo writes an LZ4 compressed snapshot of a built index. It implements
// io.WriterTo.
func (x *CellIndex) WriteTo(w io.Writer) (int64, error) {
	return x.WriteSnapshot(w, CompressionLZ4)
}

// WriteSnapshot writes a snapshot of a built index using codec c: a header,
// then the framed body holding the cell tree, the range nodes and a CRC32C
// of both.
func (x *CellIndex) WriteSnapshot(w io.Writer, c Compression) (int64, error) {
	x.mustBeBuilt()
	numCells, err := conv.IntToUint64(len(x.cellTree))
	if err != nil {
		return 0, err
	}
	numRanges, err := conv.IntToUint64(len(x.rangeNodes))
	if err != nil {
		return 0, err
	}
	hdr := fileHeader{
		Magic:       SnapshotMagic,
		Version:     SnapshotVersion,
		Compression: c,
		NumCells:    numCells,
		NumRanges:   numRanges,
	}
	if !c.Valid() {
		return 0, fmt.Errorf("cellindex: %w: %d", compress.ErrUnknownType, c)
	}
	written, err := hdr.WriteTo(w)
	if err != nil {
		return written, err
	}

	cw, err := compress.NewWriter(w, c, 0)
	if err != nil {
		return written, err
	}
	crc := hash.NewCRC32C()
	body := io.MultiWriter(cw, crc)

	buf := make([]byte, 0, 4096)
	flush := func() error {
		_, err := body.Write(buf)
		buf = buf[:0]
		return err
	}
	for _, n := range x.cellTree {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(n.id))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(n.label))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(n.parent))
		if len(buf) > cap(buf)-cellNodeSize {
			if err := flush(); err != nil {
				return written + cw.BytesWritten(), err
			}
		}
	}
	for _, n := range x.rangeNodes {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(n.start))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(n.contents))
		if len(buf) > cap(buf)-rangeNodeSize {
			if err := flush(); err != nil {
				return written + cw.BytesWritten(), err
			}
		}
	}
	if err := flush(); err != nil {
		return written + cw.BytesWritten(), err
	}
	if _, err := cw.Write(binary.LittleEndian.AppendUint32(nil, crc.Sum32())); err != nil {
		return written + cw.BytesWritten(), err
	}
	err = cw.Close()
	return written + cw.BytesWritten(), err
}

// countingReader tracks the bytes consumed for DecodeError offsets.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// ReadSnapshot reads a snapshot written by WriteSnapshot and returns the
// built index. It reads exactly the snapshot's bytes from r.
func ReadSnapshot(r io.Reader) (*CellIndex, error) {
	x := New()
	if _, err := x.ReadFrom(r); err != nil {
		return nil, err
	}
	return x, nil
}

// ReadFrom replaces the contents of x with a snapshot read from r. It
// implements io.ReaderFrom. Errors are *DecodeError values wrapping
// ErrInvalidMagic, ErrUnsupportedVersion, ErrCorruptIndex or the
// underlying read error.
func (x *CellIndex) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	fail := func(err error) (int64, error) {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return cr.n, &DecodeError{Offset: cr.n, Err: err}
	}

	var hdr fileHeader
	if _, err := hdr.ReadFrom(cr); err != nil {
		return fail(err)
	}
	zr, err := compress.NewReader(cr, hdr.Compression)
	if err != nil {
		return fail(err)
	}
	crc := hash.NewCRC32C()
	body := io.TeeReader(zr, crc)

	numCells, err := conv.Uint64ToInt(hdr.NumCells)
	if err != nil {
		return fail(err)
	}
	numRanges, err := conv.Uint64ToInt(hdr.NumRanges)
	if err != nil {
		return fail(err)
	}
	// Grow incrementally so a forged count cannot force a huge allocation.
	const chunk = 1 << 16
	cells := make([]cellNode, 0, min(numCells, chunk))
	var rec [cellNodeSize]byte
	for i := range numCells {
		if _, err := io.ReadFull(body, rec[:]); err != nil {
			return fail(err)
		}
		n := cellNode{
			id:     cellid.CellID(binary.LittleEndian.Uint64(rec[0:8])),
			label:  int32(binary.LittleEndian.Uint32(rec[8:12])),
			parent: int32(binary.LittleEndian.Uint32(rec[12:16])),
		}
		if !n.id.IsValid() || n.label < 0 || n.parent < -1 || int(n.parent) >= i {
			return fail(fmt.Errorf("%w: cell node %d", ErrCorruptIndex, i))
		}
		cells = append(cells, n)
	}

	ranges := make([]rangeNode, 0, min(numRanges, chunk))
	for i := range numRanges {
		if _, err := io.ReadFull(body, rec[:rangeNodeSize]); err != nil {
			return fail(err)
		}
		n := rangeNode{
			start:    cellid.CellID(binary.LittleEndian.Uint64(rec[0:8])),
			contents: int32(binary.LittleEndian.Uint32(rec[8:12])),
		}
		if n.contents < -1 || int(n.contents) >= numCells ||
			(i > 0 && n.start <= ranges[i-1].start) {
			return fail(fmt.Errorf("%w: range node %d", ErrCorruptIndex, i))
		}
		ranges = append(ranges, n)
	}
	if ranges[0].start != cellid.Begin(cellid.MaxLevel) || ranges[len(ranges)-1].start != cellid.End(cellid.MaxLevel) {
		return fail(fmt.Errorf("%w: range nodes do not span the leaf cells", ErrCorruptIndex))
	}

	want := crc.Sum32()
	if _, err := io.ReadFull(zr, rec[:4]); err != nil {
		return fail(err)
	}
	if got := binary.LittleEndian.Uint32(rec[:4]); got != want {
		return fail(fmt.Errorf("%w: body checksum mismatch", ErrCorruptIndex))
	}
	// Consume the end marker; anything else in the body is corruption.
	if n, err := zr.Read(rec[:1]); n != 0 || !errors.Is(err, io.EOF) {
		if err != nil && !errors.Is(err, io.EOF) {
			return fail(err)
		}
		return fail(fmt.Errorf("%w: trailing body bytes", ErrCorruptIndex))
	}

	x.cellTree = cells
	x.rangeNodes = ranges
	x.built = true
	return cr.n, nil
}
