package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chronochat/internal/backup"
)

func (a *App) Export(ctx context.Context) error {
	loc, err := a.backups.WriteExport(ctx, a.notes.Notes(), a.target)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Backup saved to %s\n", loc)
	return nil
}

// Import restores a backup, replacing every note. Without a path the user is
// asked for one; an empty answer cancels.
func (a *App) Import(ctx context.Context, path string) error {
	if path == "" {
		p, err := getSimpleText(a.reader, "Path to backup file (empty to cancel)", a.out)
		if err != nil {
			return err
		}
		path = p
	}
	if path != "" && !confirm(a.reader, "Replace all notes with the backup?", a.out) {
		path = ""
	}

	restored, err := a.backups.Restore(ctx, path, a.notes)
	if backup.IsCancelled(err) {
		fmt.Fprintln(a.out, "Restore cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Restored %d note(s).\n", len(restored))
	return nil
}
