package backup

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/attachments"
	"github.com/dmitrijs2005/chronochat/internal/filex"
	"github.com/dmitrijs2005/chronochat/internal/logging"
	"github.com/dmitrijs2005/chronochat/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultFanOut = 8

// Service builds and restores backups. Notes are rehydrated into the
// imported-images directory of layout.
type Service struct {
	layout filex.Layout
	log    logging.Logger

	readFile func(string) ([]byte, error)
	now      func() time.Time
	newID    func() string
	fanOut   int
}

func NewService(layout filex.Layout, log logging.Logger) *Service {
	return &Service{
		layout:   layout,
		log:      log,
		readFile: os.ReadFile,
		now:      time.Now,
		newID:    uuid.NewString,
		fanOut:   defaultFanOut,
	}
}

// FileName is chronochat_backup_YYYY-MM-DD.json for t.
func FileName(t time.Time) string {
	return "chronochat_backup_" + t.Format(time.DateOnly) + ".json"
}

// embedImage reads one image reference. ok is false when it cannot be read;
// such images are left out of the backup.
func (s *Service) embedImage(ctx context.Context, uri string) (ImageItem, bool) {
	if attachments.IsEmbedded(uri) {
		mime, data, err := attachments.DecodeDataURI(uri)
		if err != nil {
			s.log.Warn(ctx, "skipping malformed embedded image", "err", err)
			return ImageItem{}, false
		}
		return ImageItem{Base64: base64.StdEncoding.EncodeToString(data), Type: mime}, true
	}
	path, ok := attachments.LocalPath(uri)
	if !ok || attachments.IsRemote(uri) {
		s.log.Warn(ctx, "skipping image that is not a local file", "uri", uri)
		return ImageItem{}, false
	}
	data, err := s.readFile(path)
	if err != nil {
		s.log.Warn(ctx, "skipping unreadable image", "uri", uri, "err", err)
		return ImageItem{}, false
	}
	return ImageItem{URI: uri, Base64: base64.StdEncoding.EncodeToString(data)}, true
}

// embedFile fills in the payload of an attachment that only has a path.
func (s *Service) embedFile(ctx context.Context, f models.FileAttachment) models.FileAttachment {
	if f.Data != "" {
		return f
	}
	path, ok := attachments.LocalPath(f.URI)
	if !ok {
		return f
	}
	data, err := s.readFile(path)
	if err != nil {
		s.log.Warn(ctx, "attachment not embedded in backup", "name", f.Name, "err", err)
		return f
	}
	f.Data = base64.StdEncoding.EncodeToString(data)
	return f
}

func (s *Service) exportNote(ctx context.Context, n models.Note) ExportedNote {
	out := ExportedNote{
		ID:        n.ID,
		Content:   n.Content,
		Timestamp: n.Timestamp,
		Tags:      n.Tags,
		Images:    []ImageItem{},
	}
	for _, uri := range n.Images {
		if item, ok := s.embedImage(ctx, uri); ok {
			out.Images = append(out.Images, item)
		}
	}
	for _, f := range n.Files {
		out.Files = append(out.Files, s.embedFile(ctx, f))
	}
	return out
}

// Export builds a version 2 document. Notes are encoded concurrently.
func (s *Service) Export(ctx context.Context, notes []models.Note) (*Document, error) {
	doc := &Document{
		Version:   Version,
		Timestamp: s.now().UnixMilli(),
		Notes:     make([]ExportedNote, len(notes)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanOut)
	for i, n := range notes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc.Notes[i] = s.exportNote(gctx, n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return doc, nil
}

// WriteExport exports notes and hands the file to target. It returns the
// location reported by the target.
func (s *Service) WriteExport(ctx context.Context, notes []models.Note, target Target) (string, error) {
	doc, err := s.Export(ctx, notes)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	loc, err := target.Put(ctx, FileName(s.now()), data)
	if err != nil {
		return "", err
	}
	s.log.Info(ctx, "backup written", "location", loc, "notes", len(notes))
	return loc, nil
}
