package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"studio-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

const BackendLocal = "local"

// LocalStore writes uploads under a base directory on the application host
// and serves them via a static route.
type LocalStore struct {
	baseDir   string
	publicURL string
}

func NewLocalStore(baseDir, publicURL string) *LocalStore {
	return &LocalStore{
		baseDir:   baseDir,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

func (s *LocalStore) Save(ctx context.Context, r io.Reader, size int64, bookingID uuid.UUID, filename, mimeType string) (SavedFile, error) {
	rel := objectName(bookingID, filename)
	dst := filepath.Join(s.baseDir, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return SavedFile{}, errs.Wrap(err, "failed to create upload directory")
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return SavedFile{}, errs.Wrap(err, "failed to create upload file")
	}

	// Copy one byte past the cap so an understated size still gets caught.
	written, err := io.Copy(f, io.LimitReader(r, MaxFileSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > MaxFileSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(dst)
		return SavedFile{}, errs.Wrap(err, "failed to write upload file")
	}

	return SavedFile{
		Filename:     filename,
		RelativePath: rel,
		URL:          s.publicURL + "/" + rel,
		Backend:      BackendLocal,
	}, nil
}
