package cellid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidToken is returned when a token is not a valid hex cell token.
	ErrInvalidToken = errors.New("cellid: invalid token")
	// ErrInvalidDebugString is returned for malformed "face/children" strings.
	ErrInvalidDebugString = errors.New("cellid: invalid debug string")
)

// noneToken is the token of the invalid id None().
const noneToken = "X"

// ToToken returns the hex token of ci with trailing zeros removed. Tokens of
// valid cells compare lexicographically in the same order as the ids.
func (ci CellID) ToToken() string {
	if ci == 0 {
		return noneToken
	}
	s := strings.TrimRight(fmt.Sprintf("%016x", uint64(ci)), "0")
	return s
}

// FromToken returns the cell id for token, or None() when token is
// malformed.
func FromToken(token string) CellID {
	ci, err := ParseToken(token)
	if err != nil {
		return None()
	}
	return ci
}

// ParseToken is like FromToken but reports malformed tokens as errors.
func ParseToken(token string) (CellID, error) {
	if token == noneToken {
		return None(), nil
	}
	if len(token) == 0 || len(token) > 16 {
		return None(), fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	n, err := strconv.ParseUint(token, 16, 64)
	if err != nil {
		return None(), fmt.Errorf("%w: %q: %w", ErrInvalidToken, token, err)
	}
	return CellID(n << (4 * uint(16-len(token)))), nil
}

// String returns the "face/children" debug form, e.g. "3/02" for child 2 of
// child 0 of face 3. Invalid ids render as "Invalid: <hex>".
func (ci CellID) String() string {
	if !ci.IsValid() {
		return "Invalid: " + strconv.FormatUint(uint64(ci), 16)
	}
	var b strings.Builder
	b.Grow(2 + MaxLevel)
	b.WriteByte("012345"[ci.Face()])
	b.WriteByte('/')
	for level := 1; level <= ci.Level(); level++ {
		b.WriteByte("0123"[ci.ChildPosition(level)])
	}
	return b.String()
}

// FromString parses the debug form produced by String.
func FromString(s string) (CellID, error) {
	level := len(s) - 2
	if level < 0 || level > MaxLevel {
		return None(), fmt.Errorf("%w: %q", ErrInvalidDebugString, s)
	}
	face := int(s[0] - '0')
	if face < 0 || face >= NumFaces || s[1] != '/' {
		return None(), fmt.Errorf("%w: %q", ErrInvalidDebugString, s)
	}
	id := FromFace(face)
	for i := 2; i < len(s); i++ {
		k := int(s[i] - '0')
		if k < 0 || k > 3 {
			return None(), fmt.Errorf("%w: %q", ErrInvalidDebugString, s)
		}
		id = id.Child(k)
	}
	return id, nil
}

// MustFromString is like FromString but panics on malformed input. It is
// meant for tests and constant tables.
func MustFromString(s string) CellID {
	id, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return id
}
