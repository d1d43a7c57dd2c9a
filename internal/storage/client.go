package storage

import (
	"bytes"
	"context"
	"io"
	"time"
)

// FileInfo contains metadata about a stored artifact
type FileInfo struct {
	Name       string
	Path       string
	Size       int64
	ModifiedAt time.Time
}

// Client defines the interface for artifact storage operations
type Client interface {
	// Upload writes content to a storage path, creating parents as needed
	Upload(ctx context.Context, path string, content io.Reader) error

	// Download retrieves the contents of a stored file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a stored file
	Delete(ctx context.Context, path string) error

	// Exists checks if a file exists
	Exists(ctx context.Context, path string) (bool, error)

	// GetMetadata retrieves file info without downloading content
	GetMetadata(ctx context.Context, path string) (*FileInfo, error)

	// PublicURL returns the path a client can fetch the file from
	PublicURL(path string) string
}

// UploadBytes is a helper for callers that hold the artifact in memory
func UploadBytes(ctx context.Context, client Client, path string, content []byte) error {
	return client.Upload(ctx, path, bytes.NewReader(content))
}
