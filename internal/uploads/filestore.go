package uploads

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Document categories used by the asset lifecycle.
const (
	CategoryImage        = "image"
	CategoryDeliveryNote = "delivery_note"
	CategoryReceipt      = "receipt"
	CategoryInvoice      = "invoice"
	CategoryDisposal     = "disposal"
)

// Document is a file received alongside an asset operation.
type Document struct {
	Category string
	Filename string
	Content  []byte
}

// FileStore is the narrow upload collaborator contract. Saves are
// independent side effects outside the database transaction; Remove exists
// so a failed transaction can compensate for files already written.
type FileStore interface {
	Save(category, filename string, content []byte, allowedExts []string) (string, error)
	Remove(paths ...string)
}

var DocumentExts = []string{".pdf", ".png", ".jpg", ".jpeg", ".doc", ".docx"}

type DiskStore struct {
	root string
	log  *zap.Logger
}

var _ FileStore = (*DiskStore)(nil)

func NewDiskStore(root string, log *zap.Logger) *DiskStore {
	return &DiskStore{root: root, log: log}
}

// Save writes the content under root/category with a generated name and
// returns the path relative to root.
func (s *DiskStore) Save(category, filename string, content []byte, allowedExts []string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !extAllowed(ext, allowedExts) {
		return "", fmt.Errorf("file extension %q is not allowed for %s", ext, category)
	}

	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write uploaded file: %w", err)
	}

	return filepath.Join(category, name), nil
}

// Remove deletes previously saved files. Failures are logged, not returned;
// the caller is already on an error path when this runs.
func (s *DiskStore) Remove(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, p)); err != nil {
			s.log.Warn("failed to remove uploaded file", zap.String("path", p), zap.Error(err))
		}
	}
}

func extAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
