package attachments

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/chronochat/internal/models"
)

func anyChanged(results []models.PersistResult) bool {
	for _, r := range results {
		if r.Changed() {
			return true
		}
	}
	return false
}

// MigrateImages embeds every local image reference. changed is false when the
// returned notes equal the input, which makes a second pass a no-op.
func (p *Persister) MigrateImages(ctx context.Context, notes []models.Note) ([]models.Note, bool) {
	out := make([]models.Note, len(notes))
	changed := false
	for i, n := range notes {
		n = n.Clone()
		if len(n.Images) > 0 {
			images, results := p.PersistImages(ctx, n.Images)
			if anyChanged(results) {
				n.Images = images
				changed = true
			}
		}
		out[i] = n
	}
	if changed {
		p.log.Debug(ctx, "images migrated", "notes", len(notes))
	}
	return out, changed
}

// MigrateFiles writes inline attachment payloads into the attachments
// directory and strips payloads from attachments already in place.
// Everything else keeps its reference.
func (p *Persister) MigrateFiles(ctx context.Context, notes []models.Note) ([]models.Note, bool) {
	out := make([]models.Note, len(notes))
	changed := false
	for i, n := range notes {
		n = n.Clone()
		if len(n.Files) > 0 {
			files, _ := p.PersistAttachments(ctx, n.Files, n.ID)
			if !slices.Equal(files, n.Files) {
				n.Files = files
				changed = true
			}
		}
		out[i] = n
	}
	if changed {
		p.log.Debug(ctx, "attachments migrated", "notes", len(notes))
	}
	return out, changed
}
