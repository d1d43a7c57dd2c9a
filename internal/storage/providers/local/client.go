// Package local implements artifact storage on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkorchagin/docforge/internal/storage"
)

// Client stores artifacts under a root directory and serves them under a
// public URL prefix (typically /downloads).
type Client struct {
	root      string
	urlPrefix string
}

func NewClient(root, urlPrefix string) (*Client, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Client{
		root:      root,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

// Root returns the directory artifacts are stored under.
func (c *Client) Root() string {
	return c.root
}

func (c *Client) Upload(ctx context.Context, path string, content io.Reader) error {
	full, err := c.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (c *Client) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (c *Client) Delete(ctx context.Context, path string) error {
	full, err := c.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	full, err := c.resolve(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) GetMetadata(ctx context.Context, path string) (*storage.FileInfo, error) {
	full, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	return &storage.FileInfo{
		Name:       info.Name(),
		Path:       path,
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
	}, nil
}

func (c *Client) PublicURL(path string) string {
	return c.urlPrefix + "/" + strings.TrimPrefix(path, "/")
}

// resolve joins the storage path onto the root and rejects paths that would
// escape it.
func (c *Client) resolve(path string) (string, error) {
	if path == "" || strings.Contains(path, "..") {
		return "", fmt.Errorf("invalid storage path: %q", path)
	}
	return filepath.Join(c.root, filepath.Clean("/"+path)), nil
}
