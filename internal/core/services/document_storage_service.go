package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/read424/walrex-contable-sub001/internal/apperrors"
	"github.com/read424/walrex-contable-sub001/internal/core/domain"
	portssvc "github.com/read424/walrex-contable-sub001/internal/core/ports/services"
	"github.com/read424/walrex-contable-sub001/internal/dto"
	"github.com/read424/walrex-contable-sub001/internal/middleware"
)

// documentStorageService decodes base64 document uploads and writes them under
// a configured directory. Only metadata is handed back for persistence.
type documentStorageService struct {
	baseDir string
}

// NewDocumentStorageService creates a filesystem-backed document store rooted at baseDir.
func NewDocumentStorageService(baseDir string) portssvc.DocumentStorageSvcFacade {
	return &documentStorageService{baseDir: baseDir}
}

var _ portssvc.DocumentStorageSvcFacade = (*documentStorageService)(nil)

// StoreDocument decodes the upload and writes it to disk under a UUID-based
// filename so concurrent uploads of the same original name never collide.
func (s *documentStorageService) StoreDocument(ctx context.Context, upload dto.DocumentUploadRequest) (domain.JournalEntryDocument, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	content, err := base64.StdEncoding.DecodeString(upload.Content)
	if err != nil {
		// Malformed content is a client error, not a storage failure.
		return domain.JournalEntryDocument{}, apperrors.NewInvalidJournalEntryError("documents",
			fmt.Sprintf("document %q is not valid base64", upload.Filename))
	}

	storedFilename := uuid.NewString()
	if ext := fileExtension(upload.Filename); ext != "" {
		storedFilename = storedFilename + "." + ext
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return domain.JournalEntryDocument{}, fmt.Errorf("failed to create document storage directory: %w", err)
	}

	filePath := filepath.Join(s.baseDir, storedFilename)
	if err := os.WriteFile(filePath, content, 0o644); err != nil {
		return domain.JournalEntryDocument{}, fmt.Errorf("failed to write document %q: %w", upload.Filename, err)
	}

	logger.Debug("Document stored",
		slog.String("original_filename", upload.Filename),
		slog.String("stored_filename", storedFilename),
		slog.Int("size_bytes", len(content)),
	)

	return domain.JournalEntryDocument{
		OriginalFilename: upload.Filename,
		StoredFilename:   storedFilename,
		FilePath:         filePath,
		MimeType:         upload.MimeType,
		FileSizeBytes:    int64(len(content)),
		UploadedAt:       time.Now().UTC(),
	}, nil
}

// RemoveDocument deletes a previously stored file. A file that is already gone
// is not an error, so cleanup after a failed persistence attempt is idempotent.
func (s *documentStorageService) RemoveDocument(ctx context.Context, doc domain.JournalEntryDocument) error {
	if err := os.Remove(doc.FilePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove document %q: %w", doc.StoredFilename, err)
	}
	middleware.GetLoggerFromCtx(ctx).Debug("Document removed", slog.String("stored_filename", doc.StoredFilename))
	return nil
}

func fileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return filename[idx+1:]
}
