package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore turns an uploaded file into a durable URL. Only the URL is
// kept on records.
type BlobStore interface {
	Put(ctx context.Context, ownerID uuid.UUID, filename string, r io.Reader) (string, error)
}

// DiskBlobStore writes files under Root and serves them from BaseURL + "/files/".
type DiskBlobStore struct {
	Root    string
	BaseURL string
}

func NewDiskBlobStore(root, baseURL string) (*DiskBlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &DiskBlobStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// FilesPathPrefix is the route the blobs are served from.
const FilesPathPrefix = "/files/"

func (s *DiskBlobStore) Put(ctx context.Context, ownerID uuid.UUID, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := sanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("empty filename")
	}
	rel := path.Join(ownerID.String(), uuid.NewString()+"-"+name)

	dir := filepath.Join(s.Root, ownerID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create owner dir: %w", err)
	}
	f, err := os.Create(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}
	return s.BaseURL + FilesPathPrefix + (&url.URL{Path: rel}).EscapedPath(), nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
