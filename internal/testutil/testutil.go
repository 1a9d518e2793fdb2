// Package testutil provides helpers for assembling GOB archive bytes
// and directory trees in tests.
package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Entry is a path/payload pair for BuildArchive.
type Entry struct {
	Path string
	Data []byte
}

// BuildArchive assembles a well-formed archive independently of the
// production writer, so codec tests do not trust the code under test.
func BuildArchive(entries ...Entry) []byte {
	buf := Header("GOB ", 0x14, 12)
	buf = append(buf, U32(uint32(len(entries)))...)

	offset := uint32(16 + 136*len(entries))
	for _, e := range entries {
		buf = append(buf, U32(offset)...)
		buf = append(buf, U32(uint32(len(e.Data)))...)
		buf = append(buf, PathSlot(e.Path)...)
		offset += uint32(len(e.Data))
	}
	for _, e := range entries {
		buf = append(buf, e.Data...)
	}
	return buf
}

// Header assembles the 12-byte archive header with arbitrary field
// values. The signature is written raw, so malformed magic fits too.
func Header(signature string, version, bodyOffset uint32) []byte {
	buf := make([]byte, 0, 12)
	buf = append(buf, signature...)
	buf = append(buf, U32(version)...)
	return append(buf, U32(bodyOffset)...)
}

// U32 encodes v as little-endian bytes.
func U32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

// PathSlot encodes path into a 128-byte zero-padded slot without any
// length check, so tests can craft oversized or malformed fields.
func PathSlot(path string) []byte {
	return PathSlotBytes([]byte(path))
}

// PathSlotBytes is PathSlot for raw bytes, padding or truncating to the
// slot width.
func PathSlotBytes(b []byte) []byte {
	slot := make([]byte, 128)
	copy(slot, b)
	return slot
}

// WriteTree creates files under dir. Keys are slash-separated paths
// relative to dir; parent directories are created as needed.
func WriteTree(tb testing.TB, dir string, files map[string]string) {
	tb.Helper()
	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			tb.Fatalf("create dir for %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
			tb.Fatalf("write %s: %v", path, err)
		}
	}
}
