package gob

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/CubesAndCubes/gob/internal/sizing"
	"github.com/CubesAndCubes/gob/internal/wire"
)

// Bytes serializes the archive into the GOB byte layout.
//
// The table comes first with a running payload offset starting at the
// end of the table, then payloads follow in record order. Paths are
// re-checked against the 128-byte slot; an oversized path aborts the
// whole serialization with ErrPathTooLong. Offsets, sizes, and the file
// count must fit the format's unsigned 32-bit fields, or Bytes fails
// with ErrArchiveTooLarge.
func (a *Archive) Bytes() ([]byte, error) {
	total := a.SerializedSize()
	if total > math.MaxUint32 {
		return nil, fmt.Errorf("%d bytes: %w", total, ErrArchiveTooLarge)
	}
	bufSize, err := sizing.ToInt(total, ErrArchiveTooLarge)
	if err != nil {
		return nil, err
	}
	count, err := sizing.ToUint32(uint64(len(a.records)), ErrArchiveTooLarge)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, bufSize)
	buf = append(buf, wire.Signature...)
	buf = wire.AppendUint32(buf, wire.Version)
	buf = wire.AppendUint32(buf, wire.BodyOffset)
	buf = wire.AppendUint32(buf, count)

	running := uint64(wire.TableOffset) + uint64(wire.EntrySize)*uint64(count)
	for _, rec := range a.records {
		buf = wire.AppendUint32(buf, uint32(running))       //nolint:gosec // bounded by the total check above
		buf = wire.AppendUint32(buf, uint32(len(rec.Data))) //nolint:gosec // bounded by the total check above
		buf, err = wire.AppendPath(buf, rec.Path)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", rec.Path, err)
		}
		running += uint64(len(rec.Data))
	}

	for _, rec := range a.records {
		buf = append(buf, rec.Data...)
	}
	return buf, nil
}

// WriteTo serializes the archive to w, implementing io.WriterTo.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	data, err := a.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Save writes the serialized archive to path.
//
// The write is atomic (temp file + rename) so a failure never leaves a
// partial archive at path. Parent directories are created as needed.
func (a *Archive) Save(path string) error {
	data, err := a.Bytes()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write archive file: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file then renames to target,
// ensuring atomic replacement of the target file.
func writeFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".gob-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
