package gob

import (
	"bytes"
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"
)

// Interface compliance.
var (
	_ fs.FS         = (*Archive)(nil)
	_ fs.StatFS     = (*Archive)(nil)
	_ fs.ReadFileFS = (*Archive)(nil)
	_ fs.ReadDirFS  = (*Archive)(nil)
	_ File          = (*openFile)(nil)
)

// File is the fs.File an Archive opens for a record. Payloads are held
// in memory, so files also support seeking and random access.
type File interface {
	fs.File
	io.ReaderAt
	io.Seeker
}

// Open implements fs.FS.
//
// Files read the record's payload; directories are synthesized from
// path prefixes since the format stores no directory entries. When
// duplicate paths exist, the first record in table order wins. Records
// whose paths are not valid fs names are not visible through the fs
// API.
func (a *Archive) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if rec, ok := a.Lookup(name); ok {
		return &openFile{Reader: bytes.NewReader(rec.Data), rec: rec}, nil
	}
	if a.isDir(name) {
		return &openDir{a: a, name: name}, nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Stat implements fs.StatFS without opening the record.
func (a *Archive) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	if rec, ok := a.Lookup(name); ok {
		return newFileInfo(rec, baseName(name)), nil
	}
	if a.isDir(name) {
		return newDirInfo(baseName(name)), nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadFile implements fs.ReadFileFS. The returned bytes are a copy; the
// archive keeps exclusive ownership of its payloads.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	rec, ok := a.Lookup(name)
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	return bytes.Clone(rec.Data), nil
}

// ReadDir implements fs.ReadDirFS.
//
// Entries are sorted by name. Directory entries are synthesized from
// file paths; the archive does not store directories explicitly.
func (a *Archive) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	entries := a.dirEntries(dirPrefix(name))
	if len(entries) == 0 && name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	return entries, nil
}

// dirEntries collects the immediate children under prefix, sorted by
// name. Records are unsorted, so names are deduplicated with a set and
// the first record in table order claims a contested name.
func (a *Archive) dirEntries(prefix string) []fs.DirEntry {
	seen := make(map[string]bool)
	var entries []fs.DirEntry
	for _, rec := range a.records {
		if !fs.ValidPath(rec.Path) || !strings.HasPrefix(rec.Path, prefix) {
			continue
		}
		childName, isSubDir := childOf(rec.Path, prefix)
		if seen[childName] {
			continue
		}
		seen[childName] = true
		if isSubDir {
			entries = append(entries, newDirEntry(newDirInfo(childName)))
		} else {
			entries = append(entries, newDirEntry(newFileInfo(rec, childName)))
		}
	}
	slices.SortFunc(entries, func(x, y fs.DirEntry) int {
		return strings.Compare(x.Name(), y.Name())
	})
	return entries
}

// isDir reports whether name has records beneath it. The root is a
// directory even in an empty archive.
func (a *Archive) isDir(name string) bool {
	if name == "." {
		return true
	}
	prefix := name + "/"
	for _, rec := range a.records {
		if fs.ValidPath(rec.Path) && strings.HasPrefix(rec.Path, prefix) {
			return true
		}
	}
	return false
}

// openFile adapts a record to fs.File. The embedded reader provides
// io.ReaderAt and io.Seeker over the payload.
type openFile struct {
	*bytes.Reader
	rec *FileRecord
}

func (f *openFile) Stat() (fs.FileInfo, error) {
	return newFileInfo(f.rec, baseName(f.rec.Path)), nil
}

func (f *openFile) Close() error { return nil }

// openDir implements fs.ReadDirFile for synthesized directories.
type openDir struct {
	a       *Archive
	name    string
	entries []fs.DirEntry
	listed  bool
	offset  int
}

func (d *openDir) Read(_ []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *openDir) Stat() (fs.FileInfo, error) {
	return newDirInfo(baseName(d.name)), nil
}

func (d *openDir) Close() error { return nil }

func (d *openDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.listed {
		d.entries = d.a.dirEntries(dirPrefix(d.name))
		d.listed = true
	}
	remaining := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		return remaining, nil
	}
	if len(remaining) == 0 {
		return nil, io.EOF
	}
	if n > len(remaining) {
		n = len(remaining)
	}
	d.offset += n
	return remaining[:n], nil
}

// fileInfo implements fs.FileInfo for archive records. The format
// stores no file metadata, so mode and time are synthesized.
type fileInfo struct {
	name string
	size int64
}

func newFileInfo(rec *FileRecord, name string) *fileInfo {
	return &fileInfo{name: name, size: int64(len(rec.Data))}
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() fs.FileMode  { return 0o444 }
func (fi *fileInfo) ModTime() time.Time { return time.Time{} }
func (fi *fileInfo) IsDir() bool        { return false }
func (fi *fileInfo) Sys() any           { return nil }

// dirInfo implements fs.FileInfo for synthesized directories.
type dirInfo struct {
	name string
}

func newDirInfo(name string) *dirInfo { return &dirInfo{name: name} }

func (di *dirInfo) Name() string       { return di.name }
func (di *dirInfo) Size() int64        { return 0 }
func (di *dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o755 }
func (di *dirInfo) ModTime() time.Time { return time.Time{} }
func (di *dirInfo) IsDir() bool        { return true }
func (di *dirInfo) Sys() any           { return nil }

// dirEntry implements fs.DirEntry by wrapping fs.FileInfo.
type dirEntry struct {
	info fs.FileInfo
}

func newDirEntry(info fs.FileInfo) *dirEntry { return &dirEntry{info: info} }

func (de *dirEntry) Name() string               { return de.info.Name() }
func (de *dirEntry) IsDir() bool                { return de.info.IsDir() }
func (de *dirEntry) Type() fs.FileMode          { return de.info.Mode().Type() }
func (de *dirEntry) Info() (fs.FileInfo, error) { return de.info, nil }

// baseName returns the last element of a slash-separated path, or "."
// for the root.
func baseName(path string) string {
	if path == "" || path == "." {
		return "."
	}
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// dirPrefix converts a directory name to the prefix its children share.
// The root matches everything.
func dirPrefix(name string) string {
	if name == "." {
		return ""
	}
	return name + "/"
}

// childOf extracts the immediate child name from a path under prefix,
// reporting whether more components follow it.
func childOf(path, prefix string) (name string, isSubDir bool) {
	rel := strings.TrimPrefix(path, prefix)
	if i := strings.Index(rel, "/"); i >= 0 {
		return rel[:i], true
	}
	return rel, false
}
