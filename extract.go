package gob

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Extract writes every record to destDir, the inverse of ImportDir.
//
// Every record path must be a valid slash-separated relative path;
// absolute paths, "..", and the empty path fail with fs.ErrInvalid
// before anything is written, and all writes go through an os.Root so
// no file can land outside destDir. Files are written atomically (temp
// file + rename) with parent directories created as needed; the archive
// stores no file metadata, so extracted files are created with mode
// 0o600. An existing file fails with fs.ErrExist unless
// ExtractWithOverwrite is set. A duplicated path is written once; the
// first record wins, matching Lookup and the archive's fs.FS view.
//
// A failing record cancels the remaining writes; files extracted before
// the failure are left in place.
func (a *Archive) Extract(ctx context.Context, destDir string, opts ...ExtractOption) error {
	cfg := extractConfig{workers: defaultExtractWorkers}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Duplicates are dropped here so no two workers ever race for the
	// same target file.
	seen := make(map[string]struct{}, len(a.records))
	work := make([]*FileRecord, 0, len(a.records))
	for _, rec := range a.records {
		if !fs.ValidPath(rec.Path) || rec.Path == "." {
			return &fs.PathError{Op: "extract", Path: rec.Path, Err: fs.ErrInvalid}
		}
		if _, dup := seen[rec.Path]; dup {
			continue
		}
		seen[rec.Path] = struct{}{}
		work = append(work, rec)
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return fmt.Errorf("create destination %s: %w", destDir, err)
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return fmt.Errorf("open destination root %s: %w", destDir, err)
	}
	defer root.Close()

	cfg.log().Info("extracting archive", "dest", destDir, "file_count", a.Len())

	workers := cfg.workers
	if workers < 1 {
		workers = 1
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, rec := range work {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := extractRecord(root, rec, cfg.overwrite); err != nil {
				return err
			}
			cfg.log().Debug("extracted file", "path", rec.Path, "size", rec.Size())
			return nil
		})
	}
	return eg.Wait()
}

// extractRecord writes one record under root, using a temp file in the
// record's directory and an atomic rename.
func extractRecord(root *os.Root, rec *FileRecord, overwrite bool) error {
	rel := filepath.FromSlash(rec.Path)
	if !overwrite {
		if _, err := root.Stat(rel); err == nil {
			return &fs.PathError{Op: "extract", Path: rec.Path, Err: fs.ErrExist}
		}
	}

	dir := filepath.Dir(rel)
	if dir != "." {
		if err := root.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	tmp, tmpRel, err := createTempFile(root, dir, ".gob-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()         //nolint:errcheck // best-effort cleanup
			_ = root.Remove(tmpRel) //nolint:errcheck // best-effort cleanup
		}
	}()

	if _, err := tmp.Write(rec.Data); err != nil {
		return fmt.Errorf("write %s: %w", rec.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", rec.Path, err)
	}
	if overwrite {
		// Rename cannot replace a directory, and on some platforms it
		// cannot replace an existing file either.
		if info, err := root.Stat(rel); err == nil {
			if info.IsDir() {
				return &fs.PathError{Op: "extract", Path: rec.Path, Err: errors.New("is a directory")}
			}
			_ = root.Remove(rel) //nolint:errcheck // rename reports the failure if removal mattered
		}
	}
	if err := root.Rename(tmpRel, rel); err != nil {
		return fmt.Errorf("rename to %s: %w", rec.Path, err)
	}
	committed = true
	return nil
}

// createTempFile opens an exclusive temp file under root in dir.
func createTempFile(root *os.Root, dir, prefix string) (*os.File, string, error) {
	const attempts = 10
	for range attempts {
		suffix, err := randomSuffix()
		if err != nil {
			return nil, "", err
		}
		relPath := filepath.Join(dir, prefix+suffix)
		f, err := root.OpenFile(relPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			return f, relPath, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", errors.New("create temp file: exhausted retries")
}

func randomSuffix() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
