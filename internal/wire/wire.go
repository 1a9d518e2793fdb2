// Package wire implements the fixed binary layout of GOB archives:
// byte-exact reads, little-endian u32 fields, and the 128-byte
// zero-padded path slot of a file-table entry.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"unicode/utf8"
)

// Layout constants. All integers on the wire are little-endian u32.
const (
	// Signature is the 4-byte magic at offset 0, trailing space included.
	Signature = "GOB "

	// Version is the only supported format version (decimal 20).
	Version uint32 = 0x14

	// HeaderSize is the byte length of signature, version, and body offset.
	HeaderSize = 12

	// BodyOffset is the body offset this codec writes. Readers honor
	// whatever offset the header declares; the writer always emits 12.
	BodyOffset uint32 = 12

	// PathSize is the fixed width of a table entry's path slot.
	PathSize = 128

	// EntrySize is the byte length of one file-table entry:
	// payload offset (4), payload size (4), path slot (128).
	EntrySize = 4 + 4 + PathSize

	// TableOffset is where the file table starts when the body offset
	// is 12: header (12) plus file count (4).
	TableOffset = HeaderSize + 4
)

// Sentinel errors for path slot encoding and decoding.
var (
	// ErrInvalidEncoding is returned when a path slot holds bytes that
	// are not valid UTF-8.
	ErrInvalidEncoding = errors.New("gob: path is not valid utf-8")

	// ErrPathTooLong is returned when a path's encoded length exceeds
	// the fixed slot width.
	ErrPathTooLong = errors.New("gob: path exceeds 128 bytes")
)

var zeroPad [PathSize]byte

// ReadExact fills buf from r or fails. A short read surfaces as
// io.ErrUnexpectedEOF, never as a partial success.
func ReadExact(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// ReadUint32 reads a little-endian u32 from r.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if err := ReadExact(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// Uint32 decodes the first 4 bytes of b as a little-endian u32.
func Uint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// AppendUint32 appends v to b in little-endian order.
func AppendUint32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

// CheckPath validates a path for the fixed slot. A path that is not
// valid UTF-8 fails with ErrInvalidEncoding; one whose encoded length
// does not fit the slot fails with ErrPathTooLong. The limit applies
// to encoded bytes, not runes.
func CheckPath(path string) error {
	if !utf8.ValidString(path) {
		return ErrInvalidEncoding
	}
	if len(path) > PathSize {
		return ErrPathTooLong
	}
	return nil
}

// AppendPath appends path to b as a PathSize-byte zero-padded slot.
func AppendPath(b []byte, path string) ([]byte, error) {
	if err := CheckPath(path); err != nil {
		return nil, err
	}
	b = append(b, path...)
	return append(b, zeroPad[:PathSize-len(path)]...), nil
}

// DecodePath decodes a fixed path slot. The whole slot must be valid
// UTF-8, padding included; the logical path then runs to the first null
// byte, or fills the slot when no null is present.
func DecodePath(slot []byte) (string, error) {
	if !utf8.Valid(slot) {
		return "", ErrInvalidEncoding
	}
	if i := bytes.IndexByte(slot, 0); i >= 0 {
		slot = slot[:i]
	}
	return string(slot), nil
}
