package attachments

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/chronochat/internal/filex"
	"github.com/dmitrijs2005/chronochat/internal/models"
	"golang.org/x/sync/errgroup"
)

// IsPersisted reports that the attachment already lives in the attachments
// directory and the file is present.
func (p *Persister) IsPersisted(f models.FileAttachment) bool {
	path, ok := LocalPath(f.URI)
	if !ok {
		return false
	}
	return filex.IsWithin(p.layout.AttachmentsDir(), path) && filex.Exists(path)
}

func decodePayload(data string) ([]byte, error) {
	if IsEmbedded(data) {
		_, b, err := DecodeDataURI(data)
		return b, err
	}
	return base64.StdEncoding.DecodeString(data)
}

// attachmentName is <noteId>_<index>_<random>_<sanitizedName>.
func (p *Persister) attachmentName(f models.FileAttachment, noteID string, index int) string {
	random := strings.ReplaceAll(p.newID(), "-", "")
	if len(random) > 12 {
		random = random[:12]
	}
	return filex.SanitizeName(noteID) + "_" + strconv.Itoa(index) + "_" + random + "_" + filex.SanitizeName(f.Name)
}

// PersistAttachment writes the inline payload of f into the attachments
// directory and points URI at the new file. Once written the payload is
// dropped; the file on disk is the only copy. An attachment already in place
// keeps its URI and loses any leftover payload.
func (p *Persister) PersistAttachment(ctx context.Context, f models.FileAttachment, noteID string, index int) (models.FileAttachment, models.PersistResult) {
	if p.IsPersisted(f) {
		f.Data = ""
		return f, models.UnchangedBecause(f.URI, "")
	}
	if f.Data == "" {
		return f, models.UnchangedBecause(f.URI, "no inline data")
	}
	if err := ctx.Err(); err != nil {
		return f, models.UnchangedBecause(f.URI, err.Error())
	}

	data, err := decodePayload(f.Data)
	if err != nil {
		p.log.Warn(ctx, "attachment payload is not valid base64, keeping original", "name", f.Name, "err", err)
		return f, models.UnchangedBecause(f.URI, fmt.Sprintf("decode payload: %v", err))
	}

	dir, err := filex.EnsureDir(p.layout.Root, filex.AttachmentsDirName)
	if err != nil {
		p.log.Warn(ctx, "attachments directory unavailable", "err", err)
		return f, models.UnchangedBecause(f.URI, err.Error())
	}
	path := filepath.Join(dir, p.attachmentName(f, noteID, index))
	if err := filex.WriteFile(path, data); err != nil {
		p.log.Warn(ctx, "attachment write failed, keeping original", "name", f.Name, "err", err)
		return f, models.UnchangedBecause(f.URI, err.Error())
	}

	f.URI = path
	f.Data = ""
	return f, models.PersistedAs(path)
}

// PersistAttachments runs PersistAttachment concurrently; index is the
// position in files.
func (p *Persister) PersistAttachments(ctx context.Context, files []models.FileAttachment, noteID string) ([]models.FileAttachment, []models.PersistResult) {
	out := make([]models.FileAttachment, len(files))
	results := make([]models.PersistResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.fanOut)
	for i, f := range files {
		g.Go(func() error {
			out[i], results[i] = p.PersistAttachment(gctx, f, noteID, i)
			return nil
		})
	}
	_ = g.Wait()
	return out, results
}
