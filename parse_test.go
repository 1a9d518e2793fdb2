package gob

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CubesAndCubes/gob/internal/testutil"
)

func TestParseEmptyArchive(t *testing.T) {
	t.Parallel()

	data := testutil.BuildArchive()
	require.Len(t, data, 16)

	a, err := ParseBytes(data)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Len())
}

func TestParseRecords(t *testing.T) {
	t.Parallel()

	data := testutil.BuildArchive(
		testutil.Entry{Path: "a/b.txt", Data: []byte("hello")},
		testutil.Entry{Path: "c.txt", Data: []byte("world")},
	)

	a, err := ParseBytes(data)
	require.NoError(t, err)
	require.Equal(t, 2, a.Len())

	assert.Equal(t, "a/b.txt", a.Record(0).Path)
	assert.Equal(t, []byte("hello"), a.Record(0).Data)
	assert.Equal(t, "c.txt", a.Record(1).Path)
	assert.Equal(t, []byte("world"), a.Record(1).Data)
}

func TestParseHeaderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "empty input",
			data:    nil,
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "short signature",
			data:    []byte("GO"),
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "bad signature",
			data:    append(testutil.Header("BLOB", 0x14, 12), testutil.U32(0)...),
			wantErr: ErrBadSignature,
		},
		{
			name:    "signature without trailing space",
			data:    append(testutil.Header("GOB\x00", 0x14, 12), testutil.U32(0)...),
			wantErr: ErrBadSignature,
		},
		{
			name:    "unsupported version",
			data:    append(testutil.Header("GOB ", 0x13, 12), testutil.U32(0)...),
			wantErr: ErrBadVersion,
		},
		{
			name:    "missing version",
			data:    []byte("GOB "),
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "missing file count",
			data:    testutil.Header("GOB ", 0x14, 12),
			wantErr: io.ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseBytes(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseBodyOffset(t *testing.T) {
	t.Parallel()

	t.Run("slack between header and body", func(t *testing.T) {
		t.Parallel()
		// Body offset 20 leaves 8 slack bytes after the header. The
		// table then starts at 24 and the payload at 160, absolute.
		buf := testutil.Header("GOB ", 0x14, 20)
		buf = append(buf, bytes.Repeat([]byte{0xAA}, 8)...)
		buf = append(buf, testutil.U32(1)...)
		buf = append(buf, testutil.U32(160)...)
		buf = append(buf, testutil.U32(5)...)
		buf = append(buf, testutil.PathSlot("a.txt")...)
		buf = append(buf, "hello"...)

		a, err := ParseBytes(buf)
		require.NoError(t, err)
		require.Equal(t, 1, a.Len())
		assert.Equal(t, "a.txt", a.Record(0).Path)
		assert.Equal(t, []byte("hello"), a.Record(0).Data)
	})

	t.Run("body offset beyond the stream", func(t *testing.T) {
		t.Parallel()
		data := testutil.Header("GOB ", 0x14, 1000)
		data = append(data, testutil.U32(0)...)

		_, err := ParseBytes(data)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestParsePathDecoding(t *testing.T) {
	t.Parallel()

	// entryArchive builds a one-entry archive around a raw path slot.
	entryArchive := func(slot []byte) []byte {
		buf := testutil.Header("GOB ", 0x14, 12)
		buf = append(buf, testutil.U32(1)...)
		buf = append(buf, testutil.U32(152)...)
		buf = append(buf, testutil.U32(0)...)
		return append(buf, slot...)
	}

	t.Run("bytes after the null are ignored", func(t *testing.T) {
		t.Parallel()
		data := entryArchive(testutil.PathSlotBytes([]byte("a.txt\x00leftover")))

		a, err := ParseBytes(data)
		require.NoError(t, err)
		assert.Equal(t, "a.txt", a.Record(0).Path)
	})

	t.Run("full slot with no null", func(t *testing.T) {
		t.Parallel()
		path := strings.Repeat("p", 128)
		data := entryArchive(testutil.PathSlot(path))

		a, err := ParseBytes(data)
		require.NoError(t, err)
		assert.Equal(t, path, a.Record(0).Path)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		t.Parallel()
		data := entryArchive(testutil.PathSlotBytes([]byte{0xFF, 0xFE}))

		_, err := ParseBytes(data)
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("invalid utf-8 after the null", func(t *testing.T) {
		t.Parallel()
		// The whole slot is validated before the null trim, so garbage
		// in the padding poisons the entry.
		data := entryArchive(testutil.PathSlotBytes([]byte("a.txt\x00\xFF")))

		_, err := ParseBytes(data)
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})
}

func TestParseTableBeforePayloads(t *testing.T) {
	t.Parallel()

	// The first entry points far past the end of the stream; the second
	// carries an invalid path. The path error wins because the whole
	// table is decoded before any payload is read.
	buf := testutil.Header("GOB ", 0x14, 12)
	buf = append(buf, testutil.U32(2)...)
	buf = append(buf, testutil.U32(5000)...)
	buf = append(buf, testutil.U32(100)...)
	buf = append(buf, testutil.PathSlot("a.txt")...)
	buf = append(buf, testutil.U32(288)...)
	buf = append(buf, testutil.U32(0)...)
	buf = append(buf, testutil.PathSlotBytes([]byte{0xFF})...)

	_, err := ParseBytes(buf)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestParsePayloadOffsets(t *testing.T) {
	t.Parallel()

	t.Run("offsets honored out of table order", func(t *testing.T) {
		t.Parallel()
		// Two entries whose payloads are stored in the reverse of table
		// order. The payload region holds "world" then "hello".
		buf := testutil.Header("GOB ", 0x14, 12)
		buf = append(buf, testutil.U32(2)...)
		buf = append(buf, testutil.U32(293)...)
		buf = append(buf, testutil.U32(5)...)
		buf = append(buf, testutil.PathSlot("a.txt")...)
		buf = append(buf, testutil.U32(288)...)
		buf = append(buf, testutil.U32(5)...)
		buf = append(buf, testutil.PathSlot("b.txt")...)
		buf = append(buf, "worldhello"...)

		a, err := ParseBytes(buf)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), a.Record(0).Data)
		assert.Equal(t, []byte("world"), a.Record(1).Data)
	})

	t.Run("entries may share payload bytes", func(t *testing.T) {
		t.Parallel()
		buf := testutil.Header("GOB ", 0x14, 12)
		buf = append(buf, testutil.U32(2)...)
		for _, path := range []string{"a.txt", "b.txt"} {
			buf = append(buf, testutil.U32(288)...)
			buf = append(buf, testutil.U32(5)...)
			buf = append(buf, testutil.PathSlot(path)...)
		}
		buf = append(buf, "hello"...)

		a, err := ParseBytes(buf)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), a.Record(0).Data)
		assert.Equal(t, []byte("hello"), a.Record(1).Data)
	})

	t.Run("zero-size payload", func(t *testing.T) {
		t.Parallel()
		data := testutil.BuildArchive(testutil.Entry{Path: "empty.txt"})

		a, err := ParseBytes(data)
		require.NoError(t, err)
		assert.Empty(t, a.Record(0).Data)
	})
}

func TestParseTruncated(t *testing.T) {
	t.Parallel()

	full := testutil.BuildArchive(testutil.Entry{Path: "a.txt", Data: []byte("hello")})

	tests := []struct {
		name string
		data []byte
	}{
		{name: "inside the table", data: full[:16+60]},
		{name: "inside a payload", data: full[:len(full)-1]},
		{
			name: "count larger than the stream",
			data: append(testutil.Header("GOB ", 0x14, 12), testutil.U32(0xFFFFFFFF)...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseBytes(tt.data)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}
}

func TestParseDuplicatePaths(t *testing.T) {
	t.Parallel()

	data := testutil.BuildArchive(
		testutil.Entry{Path: "dup.txt", Data: []byte("first")},
		testutil.Entry{Path: "dup.txt", Data: []byte("second")},
	)

	a, err := ParseBytes(data)
	require.NoError(t, err)
	require.Equal(t, 2, a.Len())
	assert.Equal(t, []byte("first"), a.Record(0).Data)
	assert.Equal(t, []byte("second"), a.Record(1).Data)
}

func TestParseRewindsReader(t *testing.T) {
	t.Parallel()

	data := testutil.BuildArchive(testutil.Entry{Path: "a.txt", Data: []byte("hi")})
	r := bytes.NewReader(data)

	var scratch [7]byte
	_, err := r.Read(scratch[:])
	require.NoError(t, err)

	a, err := Parse(r)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Len())
}

func TestOpenFile(t *testing.T) {
	t.Parallel()

	t.Run("regular file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "assets.gob")
		data := testutil.BuildArchive(testutil.Entry{Path: "a.txt", Data: []byte("hello")})
		require.NoError(t, os.WriteFile(path, data, 0o600))

		a, err := OpenFile(path)
		require.NoError(t, err)
		require.Equal(t, 1, a.Len())
		assert.Equal(t, "a.txt", a.Record(0).Path)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		_, err := OpenFile(t.TempDir())
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := OpenFile(filepath.Join(t.TempDir(), "missing.gob"))
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.ErrorIs(t, err, fs.ErrNotExist, "the stat error stays in the chain")
	})
}
