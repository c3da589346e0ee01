// Package storage archives uploaded statement files so a confirmed import
// can be traced back to the bytes it came from.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("file not found")
	ErrUnsupportedBackend = errors.New("unsupported storage backend")
)

// FileInfo contains metadata about a stored statement file.
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	StatementID uuid.UUID `json:"statement_id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Checksum    string    `json:"checksum"` // hex SHA-256 of the content
	Path        string    `json:"path"`     // relative to the user's directory
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the operations on archived statement files.
type Storage interface {
	// Save stores the content of an uploaded statement.
	Save(ctx context.Context, userID, statementID uuid.UUID, filename, contentType string, r io.Reader) (*FileInfo, error)

	// Open returns the content and metadata of a stored file.
	Open(ctx context.Context, userID, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes a stored file and its metadata.
	Delete(ctx context.Context, userID, fileID uuid.UUID) error

	// List returns the user's files, oldest first.
	List(ctx context.Context, userID uuid.UUID) ([]*FileInfo, error)

	// Info returns metadata without opening the content.
	Info(ctx context.Context, userID, fileID uuid.UUID) (*FileInfo, error)
}

// StorageType identifies the storage backend.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
)

// Config holds storage configuration.
type Config struct {
	Type      StorageType
	LocalPath string
}

// New creates a Storage for the configured backend.
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	default:
		return nil, errors.Join(ErrUnsupportedBackend, errors.New(string(cfg.Type)))
	}
}
