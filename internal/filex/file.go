// Package filex describes the app-private directory layout and the small file
// helpers the attachment and backup layers share.
package filex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	ImagesDirName         = "images"
	AttachmentsDirName    = "attachments"
	ImportedImagesDirName = "imported_images"
	BackupsDirName        = "backups"
)

// EnsureDir creates root/name (and parents) when missing and returns its path.
func EnsureDir(root, name string) (string, error) {
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// Layout is the app-private storage tree rooted at the data directory.
type Layout struct {
	Root string
}

func NewLayout(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

func (l Layout) ImagesDir() string         { return filepath.Join(l.Root, ImagesDirName) }
func (l Layout) AttachmentsDir() string    { return filepath.Join(l.Root, AttachmentsDirName) }
func (l Layout) ImportedImagesDir() string { return filepath.Join(l.Root, ImportedImagesDirName) }
func (l Layout) BackupsDir() string        { return filepath.Join(l.Root, BackupsDirName) }

// Ensure creates every directory of the layout.
func (l Layout) Ensure() error {
	for _, name := range []string{ImagesDirName, AttachmentsDirName, ImportedImagesDirName, BackupsDirName} {
		if _, err := EnsureDir(l.Root, name); err != nil {
			return err
		}
	}
	return nil
}

// IsWithin reports whether path lies inside dir (dir itself excluded).
func IsWithin(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	st, err := os.Stat(path)
	if err != nil {
		return false
	}
	return st.Mode().IsRegular()
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeName maps a display filename to a safe single path component.
func SanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeName.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, ".")
	if base == "" {
		return "file"
	}
	if len(base) > 96 {
		base = base[len(base)-96:]
	}
	return base
}

// WriteFile writes data to path through a temp file and rename, so a crash
// never leaves a half-written attachment under its final name.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// IsNotExist unwraps fs errors down to fs.ErrNotExist.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
