package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func (f FileFingerprint) modTime() string {
	return f.ModTime.UTC().Format(time.RFC3339Nano)
}

// LoadedFile returns the fingerprint recorded when the study was loaded.
// ok is false when the study was never loaded from a file on disk.
func (s *Store) LoadedFile(ctx context.Context, studyID string) (fp FileFingerprint, ok bool, err error) {
	var modTime string
	err = s.db.QueryRowContext(ctx,
		`SELECT path, size, mod_time FROM loaded_files WHERE study_id=?`, studyID,
	).Scan(&fp.Path, &fp.Size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return FileFingerprint{}, false, nil
	}
	if err != nil {
		return FileFingerprint{}, false, fmt.Errorf("query loaded file: %w", err)
	}
	fp.ModTime, err = time.Parse(time.RFC3339Nano, modTime)
	if err != nil {
		return FileFingerprint{}, false, fmt.Errorf("parse mod_time %q: %w", modTime, err)
	}
	return fp, true, nil
}

// Matches reports whether two fingerprints describe the same file contents.
func (f FileFingerprint) Matches(other FileFingerprint) bool {
	return f.Size == other.Size && f.ModTime.Equal(other.ModTime)
}

// String describes the fingerprint for log messages.
func (f FileFingerprint) String() string {
	return f.Path + " (" + strconv.FormatInt(f.Size, 10) + " bytes, " + f.modTime() + ")"
}
