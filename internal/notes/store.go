// Package notes keeps the journal in memory, backed by the notes entry of the
// key/value store, and routes every image and file through the attachment
// layer.
package notes

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/attachments"
	"github.com/dmitrijs2005/chronochat/internal/common"
	"github.com/dmitrijs2005/chronochat/internal/logging"
	"github.com/dmitrijs2005/chronochat/internal/models"
	"github.com/dmitrijs2005/chronochat/internal/storage/kv"
)

type Store struct {
	repo      kv.Repository
	persister *attachments.Persister
	log       logging.Logger
	now       func() time.Time

	mu       sync.Mutex
	notes    []models.Note
	lastID   int64
	showTags bool
}

func NewStore(repo kv.Repository, persister *attachments.Persister, log logging.Logger) *Store {
	return &Store{
		repo:      repo,
		persister: persister,
		log:       log,
		now:       time.Now,
		notes:     []models.Note{},
		showTags:  true,
	}
}

// Load reads the persisted notes and settings, migrates attachments and
// writes the notes back once if the migration changed anything.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var loaded []models.Note
	if _, err := kv.GetJSON(ctx, s.repo, kv.KeyNotes, &loaded); err != nil {
		s.log.Error(ctx, "stored notes unreadable", "err", err)
		return fmt.Errorf("load notes: %w", err)
	}
	if loaded == nil {
		loaded = []models.Note{}
	}

	loaded, changed := s.migrate(ctx, loaded)
	if changed {
		if err := s.save(ctx, loaded); err != nil {
			return err
		}
		s.log.Info(ctx, "notes upgraded to current attachment format", "count", len(loaded))
	}
	s.setNotes(loaded)

	show, err := kv.GetBool(ctx, s.repo, kv.KeyShowTags, true)
	if err != nil {
		s.log.Warn(ctx, "show-tags setting unreadable, using default", "err", err)
		show = true
	}
	s.showTags = show
	return nil
}

func (s *Store) migrate(ctx context.Context, notes []models.Note) ([]models.Note, bool) {
	notes, imagesChanged := s.persister.MigrateImages(ctx, notes)
	notes, filesChanged := s.persister.MigrateFiles(ctx, notes)
	return notes, imagesChanged || filesChanged
}

func (s *Store) save(ctx context.Context, notes []models.Note) error {
	if err := kv.SetJSON(ctx, s.repo, kv.KeyNotes, notes); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	return nil
}

func (s *Store) setNotes(notes []models.Note) {
	s.notes = notes
	s.lastID = 0
	for _, n := range notes {
		if id, err := strconv.ParseInt(n.ID, 10, 64); err == nil && id > s.lastID {
			s.lastID = id
		}
	}
}

// nextID is the current time in epoch milliseconds, bumped past the last
// issued id when the clock has not advanced.
func (s *Store) nextID(now time.Time) string {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

// Add creates a note. Images and files are persisted first; attachment
// failures leave the original references and never abort the note.
func (s *Store) Add(ctx context.Context, content string, tags, images []string, files []models.FileAttachment) (models.Note, error) {
	tags = NormalizeTags(tags)
	if content == "" && len(tags) == 0 && len(images) == 0 && len(files) == 0 {
		return models.Note{}, fmt.Errorf("%w: empty note", common.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := models.Note{
		ID:        s.nextID(now),
		Content:   content,
		Timestamp: now,
		Tags:      tags,
	}
	if len(images) > 0 {
		n.Images, _ = s.persister.PersistImages(ctx, images)
	}
	if len(files) > 0 {
		n.Files, _ = s.persister.PersistAttachments(ctx, files, n.ID)
	}

	updated := append(slices.Clone(s.notes), n)
	if err := s.save(ctx, updated); err != nil {
		return models.Note{}, err
	}
	s.notes = updated
	return n.Clone(), nil
}

// Delete removes the note with id. found is false when no note matched.
func (s *Store) Delete(ctx context.Context, id string) (found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := slices.DeleteFunc(slices.Clone(s.notes), func(n models.Note) bool { return n.ID == id })
	if len(updated) == len(s.notes) {
		return false, nil
	}
	if err := s.save(ctx, updated); err != nil {
		return false, err
	}
	s.notes = updated
	return true, nil
}

// ReplaceAll swaps the whole collection, migrating attachments and saving
// exactly once.
func (s *Store) ReplaceAll(ctx context.Context, notes []models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	migrated, _ := s.migrate(ctx, notes)
	for i := range migrated {
		migrated[i].Tags = NormalizeTags(migrated[i].Tags)
	}
	if err := s.save(ctx, migrated); err != nil {
		return err
	}
	s.setNotes(migrated)
	return nil
}

// Notes returns a copy of the collection in insertion order.
func (s *Store) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.notes)
}

func cloneAll(notes []models.Note) []models.Note {
	out := make([]models.Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}

func (s *Store) filter(keep func(models.Note) bool) []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Note{}
	for _, n := range s.notes {
		if keep(n) {
			out = append(out, n.Clone())
		}
	}
	return out
}

// ByTag returns notes carrying tag. The tag is matched case-insensitively
// and may be given with its '#'.
func (s *Store) ByTag(tag string) []models.Note {
	norm := NormalizeTags([]string{tag})
	if len(norm) == 0 {
		return []models.Note{}
	}
	return s.filter(func(n models.Note) bool { return slices.Contains(n.Tags, norm[0]) })
}

// AllTags returns every tag in use, sorted.
func (s *Store) AllTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := map[string]struct{}{}
	for _, n := range s.notes {
		for _, t := range n.Tags {
			set[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

func (s *Store) ShowTags() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showTags
}

func (s *Store) SetShowTags(ctx context.Context, show bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setShowTags(ctx, show)
}

func (s *Store) setShowTags(ctx context.Context, show bool) error {
	if err := kv.SetBool(ctx, s.repo, kv.KeyShowTags, show); err != nil {
		return fmt.Errorf("save show-tags: %w", err)
	}
	s.showTags = show
	return nil
}

// ToggleShowTags flips the setting and returns the new value.
func (s *Store) ToggleShowTags(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.setShowTags(ctx, !s.showTags); err != nil {
		return s.showTags, err
	}
	return s.showTags, nil
}
