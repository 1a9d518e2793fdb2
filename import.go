package gob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// ImportDir builds an archive from the contents of root, which must
// name an existing directory; anything else fails with ErrInvalidInput.
//
// The walk is depth-first: a subdirectory's files land before the files
// that follow it in the parent listing. Paths are recorded relative to
// root with forward slashes; a relative path longer than 128 bytes fails
// with ErrPathTooLong, and a file name that is not valid UTF-8 fails
// with ErrInvalidEncoding. Entries that are neither regular files nor
// directories fail the import with ErrUnsupportedEntry; nothing is
// skipped silently, and no partial archive is returned.
//
// Enumeration order within a directory follows os.ReadDir. The context
// cancels long imports between entries.
func ImportDir(ctx context.Context, root string, opts ...ImportOption) (*Archive, error) {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	imp := &importer{cfg: cfg}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrInvalidInput)
	}

	imp.log().Info("importing directory", "root", root)

	files, err := imp.collect(ctx, root)
	if err != nil {
		return nil, err
	}

	var recs []*FileRecord
	if imp.cfg.workers > 1 {
		recs, err = imp.readParallel(ctx, files)
	} else {
		recs, err = imp.readSerial(ctx, files)
	}
	if err != nil {
		return nil, err
	}

	a := &Archive{records: recs}
	imp.log().Info("directory imported", "root", root, "file_count", a.Len(), "data_size", a.TotalDataSize())
	return a, nil
}

// importer holds state for one ImportDir call.
type importer struct {
	cfg importConfig
}

// log returns the logger, falling back to a discard logger if nil.
func (imp *importer) log() *slog.Logger {
	if imp.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return imp.cfg.logger
}

// pendingFile is an enumerated regular file whose contents have not
// been read yet.
type pendingFile struct {
	rel string // slash-separated path relative to the import root
	fs  string // filesystem path
}

// walkFrame tracks one directory's remaining entries during traversal.
type walkFrame struct {
	dir     string
	rel     string
	next    int
	entries []os.DirEntry
}

// collect enumerates the tree under root depth-first without reading
// file contents. The explicit frame stack walks in the same order as a
// recursive descent while keeping deep trees off the call stack.
func (imp *importer) collect(ctx context.Context, root string) ([]pendingFile, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", root, err)
	}
	stack := []walkFrame{{dir: root, entries: entries}}
	var files []pendingFile

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		top := &stack[len(stack)-1]
		if top.next == len(top.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		entry := top.entries[top.next]
		top.next++

		fsPath := filepath.Join(top.dir, entry.Name())
		relPath := entry.Name()
		if top.rel != "" {
			relPath = top.rel + "/" + entry.Name()
		}

		switch {
		case entry.IsDir():
			children, err := os.ReadDir(fsPath)
			if err != nil {
				return nil, fmt.Errorf("read dir %s: %w", fsPath, err)
			}
			stack = append(stack, walkFrame{dir: fsPath, rel: relPath, entries: children})
		case entry.Type().IsRegular():
			if imp.cfg.maxFiles > 0 && len(files) >= imp.cfg.maxFiles {
				return nil, fmt.Errorf("limit %d: %w", imp.cfg.maxFiles, ErrTooManyFiles)
			}
			files = append(files, pendingFile{rel: relPath, fs: fsPath})
		default:
			return nil, fmt.Errorf("%s: %w", fsPath, ErrUnsupportedEntry)
		}
	}
	return files, nil
}

// readFile loads one pending file into a record.
func (imp *importer) readFile(pf pendingFile) (*FileRecord, error) {
	data, err := os.ReadFile(pf.fs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pf.fs, err)
	}
	return NewFileRecord(pf.rel, data)
}

// readSerial loads pending files one at a time in enumeration order.
func (imp *importer) readSerial(ctx context.Context, files []pendingFile) ([]*FileRecord, error) {
	recs := make([]*FileRecord, 0, len(files))
	for _, pf := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := imp.readFile(pf)
		if err != nil {
			return nil, err
		}
		imp.log().Debug("imported file", "path", pf.rel, "size", rec.Size())
		recs = append(recs, rec)
	}
	return recs, nil
}

// readParallel loads pending files with a bounded worker pool. Results
// land in indexed slots, preserving enumeration order.
func (imp *importer) readParallel(ctx context.Context, files []pendingFile) ([]*FileRecord, error) {
	recs := make([]*FileRecord, len(files))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(imp.cfg.workers)
	for i, pf := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := imp.readFile(pf)
			if err != nil {
				return err
			}
			imp.log().Debug("imported file", "path", pf.rel, "size", rec.Size())
			recs[i] = rec
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return recs, nil
}
