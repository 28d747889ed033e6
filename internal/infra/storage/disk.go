// Package storage holds the media.Store drivers for lot images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Disk writes objects under Root and serves them from BaseURL, which the
// HTTP server maps onto Root.
type Disk struct {
	Root    string
	BaseURL string
}

func NewDisk(root, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", root, err)
	}
	return &Disk{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *Disk) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(d.Root, filepath.FromSlash(clean)), nil
}

func (d *Disk) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	p, err := d.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create dir for %s: %w", key, err)
	}

	// Write then rename so a reader never sees half a file.
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("move %s into place: %w", key, err)
	}
	return d.BaseURL + "/" + strings.TrimPrefix(path.Clean("/"+key), "/"), nil
}

func (d *Disk) Delete(_ context.Context, key string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
