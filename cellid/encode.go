package cellid

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// EncodedSize is the size of a binary encoded CellID.
const EncodedSize = 8

// ErrTruncated is returned when fewer than EncodedSize bytes are available.
var ErrTruncated = errors.New("cellid: truncated input")

// Encode writes ci as 8 little-endian bytes.
func (ci CellID) Encode(w io.Writer) error {
	var buf [EncodedSize]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(ci))
	_, err := w.Write(buf[:])
	return err
}

// AppendBinary appends the 8-byte encoding of ci to dst.
func (ci CellID) AppendBinary(dst []byte) []byte {
	return binary.LittleEndian.AppendUint64(dst, uint64(ci))
}

// Decode reads an id written by Encode. The decoded value is not validated;
// callers holding untrusted data should check IsValid.
func Decode(r io.Reader) (CellID, error) {
	var buf [EncodedSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return None(), fmt.Errorf("%w: %w", ErrTruncated, err)
		}
		return None(), err
	}
	return CellID(binary.LittleEndian.Uint64(buf[:])), nil
}
