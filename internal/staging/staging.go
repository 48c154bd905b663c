package staging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"factura/internal/port"
)

type tempStager struct {
	dir string
}

// NewTempStager creates a Stager that writes staged documents into dir.
// If dir is empty the OS temp directory is used. The directory is created
// if it does not exist.
func NewTempStager(dir string) (port.Stager, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "factura-staging")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating staging dir: %w", err)
	}
	return &tempStager{dir: dir}, nil
}

func (s *tempStager) Stage(data []byte, filename string) (*port.StagedDoc, error) {
	id := uuid.New().String()
	name := id + filepath.Ext(filename)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing staged file: %w", err)
	}

	return &port.StagedDoc{
		ID:       id,
		Path:     path,
		Filename: filename,
		Size:     int64(len(data)),
	}, nil
}

func (s *tempStager) Release(doc *port.StagedDoc) {
	if doc == nil || doc.Path == "" {
		return
	}
	if err := os.Remove(doc.Path); err != nil && !os.IsNotExist(err) {
		log.Printf("tempStager.Release: failed to remove %s: %v", doc.Path, err)
	}
}
