package gob

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/CubesAndCubes/gob/internal/sizing"
	"github.com/CubesAndCubes/gob/internal/wire"
)

// fileDefinition is one decoded file-table entry. Definitions are
// consumed while payloads are extracted and never leave the parser.
type fileDefinition struct {
	offset uint32
	size   uint32
	path   string
}

// Parse reads a GOB archive from r.
//
// The header is validated first, the whole file table is decoded next,
// and payloads are read last, so a malformed table entry aborts the
// parse before any payload is touched. Payload offsets are absolute and
// the reader honors whatever body offset the header declares, slack
// bytes included. Records come back in table order.
func Parse(r io.ReadSeeker) (*Archive, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek header: %w", err)
	}

	var sig [4]byte
	if err := wire.ReadExact(r, sig[:]); err != nil {
		return nil, fmt.Errorf("read signature: %w", err)
	}
	if string(sig[:]) != wire.Signature {
		return nil, ErrBadSignature
	}

	version, err := wire.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version != wire.Version {
		return nil, fmt.Errorf("0x%x: %w", version, ErrBadVersion)
	}

	bodyOffset, err := wire.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read body offset: %w", err)
	}
	if _, err := r.Seek(int64(bodyOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek body: %w", err)
	}

	count, err := wire.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read file count: %w", err)
	}

	defs, err := parseTable(r, count)
	if err != nil {
		return nil, err
	}

	a := &Archive{records: make([]*FileRecord, 0, len(defs))}
	for _, def := range defs {
		rec, err := readPayload(r, def)
		if err != nil {
			return nil, err
		}
		a.Append(rec)
	}
	return a, nil
}

// parseTable decodes count file-table entries from the current position.
func parseTable(r io.Reader, count uint32) ([]fileDefinition, error) {
	// Cap the preallocation: count is not trusted until the entries
	// actually decode.
	defs := make([]fileDefinition, 0, min(count, 1024))
	var entry [wire.EntrySize]byte
	for i := uint32(0); i < count; i++ {
		if err := wire.ReadExact(r, entry[:]); err != nil {
			return nil, fmt.Errorf("read table entry %d: %w", i, err)
		}
		path, err := wire.DecodePath(entry[8:])
		if err != nil {
			return nil, fmt.Errorf("table entry %d: %w", i, err)
		}
		defs = append(defs, fileDefinition{
			offset: wire.Uint32(entry[0:4]),
			size:   wire.Uint32(entry[4:8]),
			path:   path,
		})
	}
	return defs, nil
}

// readPayload seeks to a definition's payload and builds its record.
func readPayload(r io.ReadSeeker, def fileDefinition) (*FileRecord, error) {
	if _, err := r.Seek(int64(def.offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek payload %q: %w", def.path, err)
	}
	n, err := sizing.ToInt(uint64(def.size), ErrArchiveTooLarge)
	if err != nil {
		return nil, fmt.Errorf("payload %q: %w", def.path, err)
	}
	data := make([]byte, n)
	if err := wire.ReadExact(r, data); err != nil {
		return nil, fmt.Errorf("read payload %q: %w", def.path, err)
	}
	return NewFileRecord(def.path, data)
}

// ParseBytes parses an archive held in memory.
func ParseBytes(data []byte) (*Archive, error) {
	return Parse(bytes.NewReader(data))
}

// OpenFile parses the archive file at path. A path that does not name
// an existing regular file fails with ErrInvalidInput.
func OpenFile(path string) (*Archive, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidInput)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}
