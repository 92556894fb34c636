package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Writer buffers writes and emits them as framed blocks. Close must be
// called to flush the last block and write the end marker; it does not
// close the underlying writer.
type Writer struct {
	w         io.Writer
	typ       Type
	blockSize int
	buf       []byte
	scratch   []byte
	written   int64
	closed    bool
}

// NewWriter returns a Writer using codec t. A non-positive blockSize selects
// DefaultBlockSize.
func NewWriter(w io.Writer, t Type, blockSize int) (*Writer, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	blockSize = min(blockSize, MaxBlockSize)
	return &Writer{
		w:         w,
		typ:       t,
		blockSize: blockSize,
		buf:       make([]byte, 0, blockSize),
	}, nil
}

// Write buffers p, flushing full blocks.
func (c *Writer) Write(p []byte) (int, error) {
	if c.closed {
		return 0, errors.New("compress: write after close")
	}
	total := 0
	for len(p) > 0 {
		if len(c.buf) == c.blockSize {
			if err := c.flushBlock(); err != nil {
				return total, err
			}
		}
		n := min(len(p), c.blockSize-len(c.buf))
		c.buf = append(c.buf, p[:n]...)
		total += n
		p = p[n:]
	}
	return total, nil
}

func (c *Writer) flushBlock() error {
	if len(c.buf) == 0 {
		return nil
	}
	block, err := AppendBlock(c.scratch[:0], c.buf, c.typ)
	if err != nil {
		return err
	}
	c.scratch = block
	n, err := c.w.Write(block)
	c.written += int64(n)
	if err != nil {
		return err
	}
	c.buf = c.buf[:0]
	return nil
}

// Close flushes buffered data and writes the end marker.
func (c *Writer) Close() error {
	if c.closed {
		return nil
	}
	if err := c.flushBlock(); err != nil {
		return err
	}
	c.closed = true
	var end [HeaderSize]byte
	n, err := c.w.Write(end[:])
	c.written += int64(n)
	return err
}

// BytesWritten returns the framed bytes written to the underlying writer.
func (c *Writer) BytesWritten() int64 { return c.written }

// Reader decodes a stream produced by Writer. It returns io.EOF after the
// end marker and never reads past it.
type Reader struct {
	r    io.Reader
	typ  Type
	cur  []byte
	read int64
	done bool
}

// NewReader returns a Reader for a stream written with codec t.
func NewReader(r io.Reader, t Type) (*Reader, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	return &Reader{r: r, typ: t}, nil
}

// Read implements io.Reader.
func (c *Reader) Read(p []byte) (int, error) {
	for len(c.cur) == 0 {
		if c.done {
			return 0, io.EOF
		}
		if err := c.nextBlock(); err != nil {
			return 0, err
		}
	}
	n := copy(p, c.cur)
	c.cur = c.cur[n:]
	return n, nil
}

// BytesRead returns the framed bytes consumed from the underlying reader.
func (c *Reader) BytesRead() int64 { return c.read }

func (c *Reader) nextBlock() error {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(c.r, hdr[:]); err != nil {
		return unexpected(err)
	}
	c.read += HeaderSize
	uncompressedSize := binary.LittleEndian.Uint32(hdr[0:])
	compressedSize := binary.LittleEndian.Uint32(hdr[4:])
	if uncompressedSize == 0 {
		if compressedSize != 0 {
			return fmt.Errorf("%w: empty block with payload", ErrCorrupt)
		}
		c.done = true
		return nil
	}
	if uncompressedSize > MaxBlockSize || compressedSize > MaxBlockSize {
		return fmt.Errorf("%w: block size %d exceeds %d", ErrCorrupt, max(uncompressedSize, compressedSize), MaxBlockSize)
	}

	size := uncompressedSize
	if compressedSize != 0 {
		size = compressedSize
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(c.r, payload); err != nil {
		return unexpected(err)
	}
	c.read += int64(size)

	data, err := decodePayload(payload, uncompressedSize, compressedSize != 0, c.typ)
	if err != nil {
		return err
	}
	c.cur = data
	return nil
}

// unexpected maps a clean EOF inside the framing to io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
