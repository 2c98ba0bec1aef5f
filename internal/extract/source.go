// Package extract reads the page tables produced by the external table extractor.
package extract

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/entity"
)

// Source loads one document worth of page fragments.
type Source interface {
	Load(ctx context.Context, path string) (entity.Document, error)
}

// documentNamespace seeds content-derived document IDs.
var documentNamespace = uuid.MustParse("6f1f3c1e-3b57-4a43-9d8c-2f0a3f1d7b21")

type documentJSON struct {
	DocumentID string             `json:"document_id"`
	Source     string             `json:"source"`
	Pages      []entity.PageTable `json:"pages"`
}

// Decode validates and decodes extractor JSON. Documents without a document_id get an
// ID derived from their content, so re-reading the same bytes yields the same ID.
func Decode(data []byte, source string) (entity.Document, error) {
	if err := ValidateDocument(data); err != nil {
		return entity.Document{}, common.NewAppError(common.CodeInvalidDocument, source, fmt.Errorf("%w: %v", common.ErrValidation, err))
	}

	sum := sha256.Sum256(data)
	doc := entity.Document{Source: source, ContentHash: sum[:]}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Pages); err != nil {
			return entity.Document{}, common.NewAppError(common.CodeInvalidDocument, source, fmt.Errorf("%w: %v", common.ErrValidation, err))
		}
	} else {
		var dj documentJSON
		if err := json.Unmarshal(trimmed, &dj); err != nil {
			return entity.Document{}, common.NewAppError(common.CodeInvalidDocument, source, fmt.Errorf("%w: %v", common.ErrValidation, err))
		}
		v := common.NewValidator().Field("document_id", dj.DocumentID, common.UUID)
		if v.HasErrors() {
			return entity.Document{}, common.NewAppError(common.CodeInvalidDocument, v.ErrorMessage(), common.ErrValidation)
		}
		if dj.DocumentID != "" {
			doc.ID = uuid.MustParse(dj.DocumentID)
		}
		if dj.Source != "" {
			doc.Source = dj.Source
		}
		doc.Pages = dj.Pages
	}

	if doc.ID == uuid.Nil {
		doc.ID = uuid.NewSHA1(documentNamespace, doc.ContentHash)
	}
	if doc.Pages == nil {
		doc.Pages = []entity.PageTable{}
	}
	return doc, nil
}

// FileSource reads extractor JSON files from disk.
type FileSource struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewFileSource creates a FileSource; maxBytes <= 0 means unlimited.
func NewFileSource(maxBytes int64, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{maxBytes: maxBytes, logger: logger}
}

// Load reads and decodes path.
func (s *FileSource) Load(ctx context.Context, path string) (entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return entity.Document{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return entity.Document{}, fmt.Errorf("abs path: %w", err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return entity.Document{}, common.NewAppError(common.CodeNotFound, abs, fmt.Errorf("%w: %v", common.ErrNotFound, err))
	}
	if s.maxBytes > 0 && fi.Size() > s.maxBytes {
		return entity.Document{}, common.NewAppError(common.CodeInvalidDocument,
			fmt.Sprintf("%s is %d bytes, limit %d", abs, fi.Size(), s.maxBytes), common.ErrInvalidInput)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return entity.Document{}, common.NewAppError(common.CodeInternal, "read "+abs, fmt.Errorf("%w: %v", common.ErrInternal, err))
	}
	doc, err := Decode(data, abs)
	if err != nil {
		s.logger.Warn("extract.document.invalid", "path", abs, "error", err)
		return entity.Document{}, err
	}
	s.logger.Debug("extract.document.loaded", "path", abs, "document_id", doc.ID, "pages", len(doc.Pages))
	return doc, nil
}
