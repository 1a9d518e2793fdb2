package gob

import (
	"fmt"

	"github.com/opencontainers/go-digest"

	"github.com/CubesAndCubes/gob/internal/wire"
)

// FileRecord is the archive's canonical unit: a relative path and the
// payload bytes stored under it.
//
// Records are created by NewFileRecord, Parse, or ImportDir. Path
// validity is enforced at construction; Bytes re-checks it through the
// same rule, so hand-assembled records surface the same error.
type FileRecord struct {
	// Path is the file's path relative to the archive root. Parsed
	// archives carry the path exactly as stored; imported trees use
	// forward-slash separators.
	Path string

	// Data is the payload.
	Data []byte
}

// NewFileRecord builds a record, enforcing that the path is valid
// UTF-8 and that its encoded length fits the 128-byte slot. Only such
// paths survive a serialize and re-parse.
func NewFileRecord(path string, data []byte) (*FileRecord, error) {
	if err := wire.CheckPath(path); err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return &FileRecord{Path: path, Data: data}, nil
}

// Size returns the payload length in bytes.
func (r *FileRecord) Size() int {
	return len(r.Data)
}

// Digest returns the SHA-256 digest of the payload. The digest is not
// part of the archive format; it is computed on demand.
func (r *FileRecord) Digest() digest.Digest {
	return digest.FromBytes(r.Data)
}
