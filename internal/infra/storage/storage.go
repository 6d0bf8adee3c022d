package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxFileSize caps payment-proof uploads at 5 MiB.
const MaxFileSize = 5 << 20

const proofPrefix = "payment_proofs"

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

var allowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// SavedFile is what gets persisted alongside the payment row. URL is what
// clients see; RelativePath is backend-internal.
type SavedFile struct {
	Filename     string
	RelativePath string
	URL          string
	Backend      string
}

// Store is one storage backend. Implementations must be safe for concurrent
// use.
type Store interface {
	Save(ctx context.Context, r io.Reader, size int64, bookingID uuid.UUID, filename, mimeType string) (SavedFile, error)
}

// ValidateFile applies the upload policy before any byte is written: image
// MIME allow-list and the size cap. Violations surface as upload failures,
// distinct from field validation errors.
func ValidateFile(filename, mimeType string, size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}
	if _, ok := allowedMIMETypes[strings.ToLower(mimeType)]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
	return nil
}

// objectName builds a collision-free stored name. The booking ID prefix keeps
// proofs groupable; the original extension is preserved for content serving.
func objectName(bookingID uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s_%s%s", proofPrefix, bookingID, uuid.NewString(), ext)
}
