package gob

import (
	"errors"

	"github.com/CubesAndCubes/gob/internal/wire"
)

// Sentinel errors shared with the wire layer.
var (
	// ErrInvalidEncoding is returned when a path slot holds bytes that
	// are not valid UTF-8.
	ErrInvalidEncoding = wire.ErrInvalidEncoding

	// ErrPathTooLong is returned when a path's encoded length exceeds
	// the 128-byte slot of a file-table entry.
	ErrPathTooLong = wire.ErrPathTooLong
)

// Sentinel errors for archive operations.
var (
	// ErrBadSignature is returned when a stream does not begin with "GOB ".
	ErrBadSignature = errors.New("gob: bad signature")

	// ErrBadVersion is returned when the header version is not 0x14.
	ErrBadVersion = errors.New("gob: unsupported version")

	// ErrUnsupportedEntry is returned when a directory entry is neither
	// a regular file nor a directory.
	ErrUnsupportedEntry = errors.New("gob: unsupported directory entry")

	// ErrInvalidInput is returned when a supplied path is missing or is
	// not the kind of filesystem object the operation requires.
	ErrInvalidInput = errors.New("gob: invalid input path")

	// ErrArchiveTooLarge is returned when serialized offsets would
	// exceed the format's unsigned 32-bit fields.
	ErrArchiveTooLarge = errors.New("gob: archive too large")

	// ErrTooManyFiles is returned when an import exceeds the configured
	// file limit.
	ErrTooManyFiles = errors.New("gob: too many files")
)
