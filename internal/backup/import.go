package backup

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/chronochat/internal/attachments"
	"github.com/dmitrijs2005/chronochat/internal/common"
	"github.com/dmitrijs2005/chronochat/internal/filex"
	"github.com/dmitrijs2005/chronochat/internal/models"
)

// Replacer is the part of the note store a restore needs.
type Replacer interface {
	ReplaceAll(ctx context.Context, notes []models.Note) error
	Notes() []models.Note
}

func (s *Service) restoredName(item ImageItem) string {
	mime := item.Type
	if mime == "" {
		mime = attachments.ImageMIME(item.URI)
	}
	return "restored_" + strconv.FormatInt(s.now().UnixMilli(), 10) + "_" +
		strings.ReplaceAll(s.newID(), "-", "") + attachments.ImageExt(mime)
}

// rehydrate writes an embedded image to the imported-images directory and
// returns its path. Legacy items and items without payload keep their uri.
func (s *Service) rehydrate(ctx context.Context, dir string, item ImageItem) (string, bool) {
	if item.Legacy || item.Base64 == "" {
		return item.URI, item.URI != ""
	}
	data, err := base64.StdEncoding.DecodeString(item.Base64)
	if err != nil {
		s.log.Warn(ctx, "backup image payload is not valid base64", "uri", item.URI, "err", err)
		return item.URI, item.URI != ""
	}
	path := filepath.Join(dir, s.restoredName(item))
	if err := filex.WriteFile(path, data); err != nil {
		s.log.Warn(ctx, "restoring image failed", "uri", item.URI, "err", err)
		return item.URI, item.URI != ""
	}
	return path, true
}

// Import decodes data and rehydrates embedded images. The note store is not
// touched.
func (s *Service) Import(ctx context.Context, data []byte) ([]models.Note, error) {
	notes, _, err := s.importNotes(ctx, data)
	return notes, err
}

// importNotes is Import that also reports the files it wrote.
func (s *Service) importNotes(ctx context.Context, data []byte) ([]models.Note, []string, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}

	dir, err := filex.EnsureDir(s.layout.Root, filex.ImportedImagesDirName)
	if err != nil {
		return nil, nil, err
	}

	var written []string
	notes := make([]models.Note, 0, len(doc.Notes))
	for _, en := range doc.Notes {
		if err := ctx.Err(); err != nil {
			s.removeFiles(ctx, written)
			return nil, nil, err
		}
		n := models.Note{
			ID:        en.ID,
			Content:   en.Content,
			Timestamp: en.Timestamp,
			Tags:      en.Tags,
			Files:     en.Files,
		}
		if n.Tags == nil {
			n.Tags = []string{}
		}
		for _, item := range en.Images {
			uri, ok := s.rehydrate(ctx, dir, item)
			if !ok {
				continue
			}
			if uri != item.URI {
				written = append(written, uri)
			}
			n.Images = append(n.Images, uri)
		}
		notes = append(notes, n)
	}
	s.log.Info(ctx, "backup decoded", "version", doc.Version, "notes", len(notes))
	return notes, written, nil
}

func (s *Service) removeFiles(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !filex.IsNotExist(err) {
			s.log.Warn(ctx, "removing restored image failed", "path", p, "err", err)
		}
	}
}

// pruneRestored removes rehydrated images the store no longer references,
// typically because they were re-embedded during migration.
func (s *Service) pruneRestored(ctx context.Context, written []string, kept []models.Note) {
	inUse := make(map[string]struct{})
	for _, n := range kept {
		for _, uri := range n.Images {
			inUse[uri] = struct{}{}
		}
	}
	var orphans []string
	for _, p := range written {
		if _, ok := inUse[p]; !ok {
			orphans = append(orphans, p)
		}
	}
	s.removeFiles(ctx, orphans)
}

// Restore imports the backup at path and replaces the journal with it. A
// missing path is a cancellation.
func (s *Service) Restore(ctx context.Context, path string, store Replacer) ([]models.Note, error) {
	if path == "" {
		return nil, common.ErrCancelled
	}
	data, err := s.readFile(path)
	if err != nil {
		if filex.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s not found", common.ErrCancelled, path)
		}
		return nil, fmt.Errorf("read backup: %w", err)
	}

	notes, written, err := s.importNotes(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := store.ReplaceAll(ctx, notes); err != nil {
		s.removeFiles(ctx, written)
		return nil, fmt.Errorf("restore: %w", err)
	}
	restored := store.Notes()
	s.pruneRestored(ctx, written, restored)
	return restored, nil
}

// IsCancelled reports a restore the user abandoned.
func IsCancelled(err error) bool {
	return errors.Is(err, common.ErrCancelled)
}
