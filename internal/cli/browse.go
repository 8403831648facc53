package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/common"
	"github.com/dmitrijs2005/chronochat/internal/models"
	"github.com/dmitrijs2005/chronochat/internal/notes"
)

func (a *App) formatNote(n models.Note) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s  %s", n.ID, n.Timestamp.In(a.loc).Format("15:04"), n.Content)
	if a.notes.ShowTags() && len(n.Tags) > 0 {
		b.WriteString("  #" + strings.Join(n.Tags, " #"))
	}
	if len(n.Images) > 0 {
		fmt.Fprintf(&b, "  (%d image(s))", len(n.Images))
	}
	for _, f := range n.Files {
		fmt.Fprintf(&b, "  <%s>", f.Name)
	}
	return b.String()
}

func (a *App) printTimeline(ns []models.Note) {
	if len(ns) == 0 {
		fmt.Fprintln(a.out, "No notes.")
		return
	}
	for _, g := range notes.GroupByDay(ns, a.now(), a.loc) {
		fmt.Fprintf(a.out, "--- %s ---\n", g.Label)
		for _, n := range g.Notes {
			fmt.Fprintln(a.out, a.formatNote(n))
		}
	}
}

func (a *App) List(ctx context.Context) error {
	a.printTimeline(a.notes.Notes())
	return nil
}

func (a *App) Tag(ctx context.Context, tag string) error {
	a.printTimeline(a.notes.ByTag(tag))
	return nil
}

func (a *App) Tags(ctx context.Context) error {
	tags := a.notes.AllTags()
	if len(tags) == 0 {
		fmt.Fprintln(a.out, "No tags.")
		return nil
	}
	fmt.Fprintln(a.out, "#"+strings.Join(tags, " #"))
	return nil
}

func (a *App) Date(ctx context.Context, day string) error {
	d, err := time.ParseInLocation(time.DateOnly, day, a.loc)
	if err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", common.ErrValidation)
	}
	a.printTimeline(a.notes.ByDate(d, a.loc))
	return nil
}

func (a *App) Dates(ctx context.Context) error {
	dates := a.notes.AvailableDates(a.loc)
	if len(dates) == 0 {
		fmt.Fprintln(a.out, "No notes.")
		return nil
	}
	for _, d := range dates {
		fmt.Fprintf(a.out, "%s  %d message(s)\n", d.Format(time.DateOnly), len(a.notes.ByDate(d, a.loc)))
	}
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	found, err := a.notes.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(a.out, "No note with id %s.\n", id)
		return nil
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func (a *App) ToggleShowTags(ctx context.Context) error {
	show, err := a.notes.ToggleShowTags(ctx)
	if err != nil {
		return err
	}
	if show {
		fmt.Fprintln(a.out, "Tags are shown.")
	} else {
		fmt.Fprintln(a.out, "Tags are hidden.")
	}
	return nil
}
