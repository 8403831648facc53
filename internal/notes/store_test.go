package notes

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/attachments"
	"github.com/dmitrijs2005/chronochat/internal/common"
	"github.com/dmitrijs2005/chronochat/internal/filex"
	"github.com/dmitrijs2005/chronochat/internal/logging"
	"github.com/dmitrijs2005/chronochat/internal/models"
	"github.com/dmitrijs2005/chronochat/internal/storage/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo counts writes of the notes key.
type countingRepo struct {
	*kv.MemoryRepository
	mu      sync.Mutex
	saves   int
	failSet bool
}

func (r *countingRepo) Set(ctx context.Context, key string, value []byte) error {
	if r.failSet {
		return errors.New("disk full")
	}
	if key == kv.KeyNotes {
		r.mu.Lock()
		r.saves++
		r.mu.Unlock()
	}
	return r.MemoryRepository.Set(ctx, key, value)
}

func newTestStore(t *testing.T) (*Store, *countingRepo, string) {
	t.Helper()
	root := t.TempDir()
	repo := &countingRepo{MemoryRepository: kv.NewMemoryRepository()}
	s := NewStore(repo, attachments.NewPersister(filex.NewLayout(root), logging.Nop()), logging.Nop())
	return s, repo, root
}

func TestAdd_PlainNote(t *testing.T) {
	s, _, _ := newTestStore(t)
	before := time.Now()

	n, err := s.Add(context.Background(), "hello", nil, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "hello", n.Content)
	assert.Equal(t, []string{}, n.Tags)
	assert.WithinDuration(t, before, n.Timestamp, 5*time.Second)
	assert.Len(t, s.Notes(), 1)
}

func TestAdd_Empty(t *testing.T) {
	s, _, _ := newTestStore(t)
	_, err := s.Add(context.Background(), "", nil, nil, nil)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAdd_IDsStrictlyIncrease(t *testing.T) {
	s, _, _ := newTestStore(t)
	fixed := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time { return fixed }

	a, err := s.Add(context.Background(), "a", nil, nil, nil)
	require.NoError(t, err)
	b, err := s.Add(context.Background(), "b", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", a.ID)
	assert.Equal(t, "1700000000001", b.ID)
}

func TestAdd_PersistsImageAndFile(t *testing.T) {
	s, _, root := newTestStore(t)
	picker := filepath.Join(root, "picker.png")
	require.NoError(t, os.WriteFile(picker, []byte("img"), 0o600))

	files := []models.FileAttachment{{URI: "/picker/a.txt", Name: "a.txt", Type: "text/plain", Data: base64.StdEncoding.EncodeToString([]byte("a"))}}
	n, err := s.Add(context.Background(), "pic", []string{"#Trip"}, []string{picker}, files)
	require.NoError(t, err)

	require.Len(t, n.Images, 1)
	assert.True(t, strings.HasPrefix(n.Images[0], "data:image/png;base64,"))
	assert.NotEqual(t, picker, n.Images[0])
	assert.Equal(t, []string{"trip"}, n.Tags)

	require.Len(t, n.Files, 1)
	assert.True(t, filex.IsWithin(filepath.Join(root, filex.AttachmentsDirName), n.Files[0].URI))
	assert.True(t, strings.HasPrefix(filepath.Base(n.Files[0].URI), n.ID+"_0_"))
	assert.Empty(t, n.Files[0].Data, "payload lives on disk only")
}

func TestAdd_SaveFailureKeepsState(t *testing.T) {
	s, repo, _ := newTestStore(t)
	repo.failSet = true
	_, err := s.Add(context.Background(), "x", nil, nil, nil)
	require.Error(t, err)
	assert.Empty(t, s.Notes())
}

func TestLoad_MigratesAndSavesOnce(t *testing.T) {
	ctx := context.Background()
	s, repo, root := newTestStore(t)
	legacy := filepath.Join(root, filex.ImagesDirName, "old.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(legacy), 0o700))
	require.NoError(t, os.WriteFile(legacy, []byte("old"), 0o600))

	raw := `[{"id":"1","content":"old","timestamp":"2023-01-02T03:04:05.000Z","tags":["x"],"images":["` + filepath.ToSlash(legacy) + `"]}]`
	require.NoError(t, repo.MemoryRepository.Set(ctx, kv.KeyNotes, []byte(raw)))

	require.NoError(t, s.Load(ctx))
	assert.Equal(t, 1, repo.saves)
	got := s.Notes()
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0].Images[0], "data:image/jpeg;base64,"))
	assert.Equal(t, time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC), got[0].Timestamp.UTC())

	// Second load finds nothing to migrate.
	s2 := NewStore(repo, s.persister, logging.Nop())
	require.NoError(t, s2.Load(ctx))
	assert.Equal(t, 1, repo.saves)
}

func TestLoad_EmptyAndCorrupt(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newTestStore(t)
	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.Notes())
	assert.True(t, s.ShowTags())

	require.NoError(t, repo.MemoryRepository.Set(ctx, kv.KeyNotes, []byte("{oops")))
	require.Error(t, s.Load(ctx))
}

func TestLoad_BadTimestampNamesNote(t *testing.T) {
	ctx := context.Background()
	repo := kv.NewMemoryRepository()
	var buf bytes.Buffer
	s := NewStore(repo, attachments.NewPersister(filex.NewLayout(t.TempDir()), logging.Nop()), logging.New(&buf, "debug"))

	blob := `[{"id":"1","content":"ok","timestamp":1000,"tags":[]},{"id":"42","content":"bad","timestamp":"someday","tags":[]}]`
	require.NoError(t, repo.Set(ctx, kv.KeyNotes, []byte(blob)))

	err := s.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `note "42"`)
	assert.Contains(t, buf.String(), "stored notes unreadable")
	assert.Contains(t, buf.String(), `note \"42\"`)
	assert.Empty(t, s.Notes(), "load fails closed")
}

func TestLoad_ContinuesIDsAfterLoadedNotes(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newTestStore(t)
	require.NoError(t, repo.MemoryRepository.Set(ctx, kv.KeyNotes, []byte(`[{"id":"5000","content":"a","timestamp":0,"tags":[]}]`)))
	require.NoError(t, s.Load(ctx))

	s.now = func() time.Time { return time.UnixMilli(10) }
	n, err := s.Add(ctx, "b", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "5001", n.ID)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	a, _ := s.Add(ctx, "a", nil, nil, nil)
	_, _ = s.Add(ctx, "b", nil, nil, nil)

	found, err := s.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, s.Notes(), 1)
	assert.Equal(t, "b", s.Notes()[0].Content)

	found, err = s.Delete(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReplaceAll_SavesOnce(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newTestStore(t)
	payload := base64.StdEncoding.EncodeToString([]byte("f"))

	err := s.ReplaceAll(ctx, []models.Note{
		{ID: "1", Content: "a", Tags: []string{"A"}, Files: []models.FileAttachment{{URI: "/gone/f.txt", Name: "f.txt", Data: payload}}},
		{ID: "2", Content: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.saves)

	got := s.Notes()
	require.Len(t, got, 2)
	assert.Equal(t, []string{"a"}, got[0].Tags)
	assert.True(t, filex.Exists(got[0].Files[0].URI))
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 23, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return day1 }
	_, _ = s.Add(ctx, "one", []string{"work"}, nil, nil)
	s.now = func() time.Time { return day2 }
	_, _ = s.Add(ctx, "two", []string{"home", "work"}, nil, nil)

	assert.Len(t, s.ByTag("work"), 2)
	assert.Len(t, s.ByTag("#HOME"), 1)
	assert.Empty(t, s.ByTag("none"))
	assert.Empty(t, s.ByTag("#"))
	assert.Equal(t, []string{"home", "work"}, s.AllTags())

	got := s.ByDate(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), time.UTC)
	require.Len(t, got, 1)
	assert.Equal(t, "two", got[0].Content)

	dates := s.AvailableDates(time.UTC)
	assert.Equal(t, []time.Time{Day(day1, time.UTC), Day(day2, time.UTC)}, dates)
}

func TestGroupByDay(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	ns := []models.Note{
		{ID: "1", Timestamp: now.Add(-48 * time.Hour)},
		{ID: "2", Timestamp: now.Add(-1 * time.Hour)},
		{ID: "3", Timestamp: now.Add(-24 * time.Hour)},
		{ID: "4", Timestamp: now.Add(-2 * time.Hour)},
	}
	groups := GroupByDay(ns, now, time.UTC)
	require.Len(t, groups, 3)
	assert.Equal(t, "Today", groups[0].Label)
	assert.Equal(t, "2", groups[0].Notes[0].ID)
	assert.Equal(t, "4", groups[0].Notes[1].ID)
	assert.Equal(t, "Yesterday", groups[1].Label)
	assert.Equal(t, "Mar 8, 2024", groups[2].Label)
}

func TestShowTags(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newTestStore(t)
	assert.True(t, s.ShowTags())

	v, err := s.ToggleShowTags(ctx)
	require.NoError(t, err)
	assert.False(t, v)

	raw, err := repo.Get(ctx, kv.KeyShowTags)
	require.NoError(t, err)
	assert.Equal(t, "false", string(raw))

	s2 := NewStore(repo, s.persister, logging.Nop())
	require.NoError(t, s2.Load(ctx))
	assert.False(t, s2.ShowTags())

	repo.failSet = true
	v, err = s2.ToggleShowTags(ctx)
	require.Error(t, err)
	assert.False(t, v)
}

func TestConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Add(ctx, "n", nil, nil, nil)
		}()
	}
	wg.Wait()

	got := s.Notes()
	require.Len(t, got, 20)
	ids := map[string]bool{}
	for _, n := range got {
		ids[n.ID] = true
	}
	assert.Len(t, ids, 20)
}
