package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/common"
	"github.com/dmitrijs2005/chronochat/internal/config"
	"github.com/dmitrijs2005/chronochat/internal/device"
	"github.com/dmitrijs2005/chronochat/internal/logging"
	"github.com/dmitrijs2005/chronochat/internal/storage/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProbe struct{}

func (stubProbe) Snapshot(context.Context) (device.Snapshot, error) {
	return device.Snapshot{
		Platform:      "linux",
		OSVersion:     "go",
		DeviceName:    "desk",
		Model:         "amd64",
		ApplicationID: "io.chronochat.app",
		DeviceID:      "machine-1",
		IsDevice:      true,
	}, nil
}

func pipedInput(t *testing.T) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.DataDir = t.TempDir()
	c.StoreType = config.StoreMemory
	return c
}

// newTestApp builds an App over repo with scripted input.
func newTestApp(t *testing.T, c *config.Config, repo kv.Repository, input string) (*App, *bytes.Buffer) {
	t.Helper()
	pipedInput(t)
	s, err := buildServices(context.Background(), c, repo, stubProbe{}, logging.Nop())
	require.NoError(t, err)
	var out bytes.Buffer
	a := newApp(s, strings.NewReader(input), &out)
	a.loc = time.UTC
	return a, &out
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func TestRun_FirstRunSetupThenAddAndList(t *testing.T) {
	silence(t)
	c := testConfig(t)
	repo := kv.NewMemoryRepository()

	a, out := newTestApp(t, c, repo, lines(
		"1234", "1234", // setup
		"add", "Buy milk #groceries #todo", "",
		"list",
		"exit",
	))
	require.NoError(t, a.Run(context.Background()))

	got := a.notes.Notes()
	require.Len(t, got, 1)
	assert.Equal(t, "Buy milk", got[0].Content)
	assert.Equal(t, []string{"groceries", "todo"}, got[0].Tags)
	assert.Contains(t, out.String(), "Passcode set.")
	assert.Contains(t, out.String(), "--- Today ---")
	assert.Contains(t, out.String(), "Buy milk  #groceries #todo")

	// Second start asks for the passcode.
	b, out := newTestApp(t, c, repo, lines("0000", "1234", "exit"))
	require.NoError(t, b.Run(context.Background()))
	assert.Contains(t, out.String(), "Wrong passcode, 4 attempts left.")
	assert.Contains(t, out.String(), "Unlocked.")
	assert.Len(t, b.notes.Notes(), 1)
}

func TestRun_SkipSetup(t *testing.T) {
	silence(t)
	a, out := newTestApp(t, testConfig(t), kv.NewMemoryRepository(), lines("", "exit"))
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "not protected")
}

func TestRun_SetupRetriesOnInvalidAndMismatch(t *testing.T) {
	silence(t)
	a, out := newTestApp(t, testConfig(t), kv.NewMemoryRepository(), lines(
		"12", "12", // too short
		"1234", "4321", // mismatch
		"5678", "5678",
		"exit",
	))
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "validation error")
	assert.Contains(t, out.String(), "Passcodes do not match.")
	ok, err := a.passcode.Verify(context.Background(), "5678")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRun_LockedOut(t *testing.T) {
	silence(t)
	c := testConfig(t)
	repo := kv.NewMemoryRepository()

	a, _ := newTestApp(t, c, repo, lines("1234", "1234", "exit"))
	require.NoError(t, a.Run(context.Background()))

	b, out := newTestApp(t, c, repo, lines("1", "2", "3", "4", "5", "1234"))
	err := b.Run(context.Background())
	assert.ErrorIs(t, err, common.ErrLocked)
	assert.Contains(t, out.String(), "Too many failed attempts")
}

func TestCommands_BrowseDeleteShowTags(t *testing.T) {
	silence(t)
	ctx := context.Background()
	a, out := newTestApp(t, testConfig(t), kv.NewMemoryRepository(), "")
	a.now = func() time.Time { return time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC) }

	n1, err := a.notes.Add(ctx, "one", []string{"work"}, nil, nil)
	require.NoError(t, err)
	_, err = a.notes.Add(ctx, "two", []string{"home"}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, a.Tags(ctx))
	assert.Contains(t, out.String(), "#home #work")

	out.Reset()
	require.NoError(t, a.Tag(ctx, "#work"))
	assert.Contains(t, out.String(), "one")
	assert.NotContains(t, out.String(), "two")

	out.Reset()
	require.NoError(t, a.ToggleShowTags(ctx))
	require.NoError(t, a.List(ctx))
	assert.Contains(t, out.String(), "Tags are hidden.")
	assert.NotContains(t, out.String(), "#work")

	assert.ErrorIs(t, a.Date(ctx, "yesterday"), common.ErrValidation)

	out.Reset()
	require.NoError(t, a.Dates(ctx))
	assert.Contains(t, out.String(), "2 message(s)")

	out.Reset()
	require.NoError(t, a.Delete(ctx, n1.ID))
	require.NoError(t, a.Delete(ctx, "missing"))
	assert.Contains(t, out.String(), "Deleted.")
	assert.Contains(t, out.String(), "No note with id missing.")
	assert.Len(t, a.notes.Notes(), 1)
}

func TestCommands_AddWithAttachments(t *testing.T) {
	silence(t)
	dir := t.TempDir()
	img := filepath.Join(dir, "p.png")
	doc := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o600))
	require.NoError(t, os.WriteFile(doc, []byte("text"), 0o600))

	a, out := newTestApp(t, testConfig(t), kv.NewMemoryRepository(), lines(
		"trip #Holiday", "+image "+img, "+file "+doc, "+file /does/not/exist", "",
	))
	require.NoError(t, a.Add(context.Background()))
	assert.Contains(t, out.String(), "Skipping /does/not/exist")

	got := a.notes.Notes()
	require.Len(t, got, 1)
	assert.Equal(t, []string{"holiday"}, got[0].Tags)
	require.Len(t, got[0].Images, 1)
	assert.True(t, strings.HasPrefix(got[0].Images[0], "data:image/png;base64,"))
	require.Len(t, got[0].Files, 1)
	assert.Equal(t, "doc.txt", got[0].Files[0].Name)
	assert.True(t, strings.HasPrefix(got[0].Files[0].Type, "text/plain"))
}

func TestCommands_AddEmpty(t *testing.T) {
	silence(t)
	a, out := newTestApp(t, testConfig(t), kv.NewMemoryRepository(), lines(""))
	require.NoError(t, a.Add(context.Background()))
	assert.Contains(t, out.String(), "Nothing to save.")
}

func TestCommands_ExportImport(t *testing.T) {
	silence(t)
	ctx := context.Background()
	c := testConfig(t)
	a, out := newTestApp(t, c, kv.NewMemoryRepository(), "")
	_, err := a.notes.Add(ctx, "keep me", []string{"x"}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, a.Export(ctx))
	assert.Contains(t, out.String(), "Backup saved to "+c.ResolvedBackupDir())

	entries, err := os.ReadDir(c.ResolvedBackupDir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	path := filepath.Join(c.ResolvedBackupDir(), entries[0].Name())

	b, out := newTestApp(t, testConfig(t), kv.NewMemoryRepository(), lines("y", "", "n"))
	require.NoError(t, b.Import(ctx, path))
	assert.Contains(t, out.String(), "Restored 1 note(s).")
	require.Len(t, b.notes.Notes(), 1)
	assert.Equal(t, "keep me", b.notes.Notes()[0].Content)

	out.Reset()
	require.NoError(t, b.Import(ctx, ""))
	assert.Contains(t, out.String(), "Restore cancelled.")

	out.Reset()
	require.NoError(t, b.Import(ctx, path))
	assert.Contains(t, out.String(), "Restore cancelled.")
}

func TestCommands_PasscodeLifecycle(t *testing.T) {
	silence(t)
	ctx := context.Background()
	a, out := newTestApp(t, testConfig(t), kv.NewMemoryRepository(), lines(
		"1234", "1234", // passcode set
		"1234", "9999", "9999", // change
		"9999", // lock -> unlock
		"y",    // reset
	))

	require.NoError(t, a.Passcode(ctx, "set"))
	require.NoError(t, a.Passcode(ctx, "set"))
	assert.Contains(t, out.String(), "already set")

	require.NoError(t, a.Passcode(ctx, "change"))
	assert.Contains(t, out.String(), "Passcode changed.")

	require.NoError(t, a.Lock(ctx))
	assert.Contains(t, out.String(), "Unlocked.")

	require.NoError(t, a.Security(ctx))
	assert.Contains(t, out.String(), "Passcode set:       true")
	assert.Contains(t, out.String(), "Device consistent:  true")

	require.NoError(t, a.Passcode(ctx, "reset"))
	assert.Contains(t, out.String(), "Passcode removed.")
	has, err := a.passcode.Has(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, a.Passcode(ctx, "bogus"))
	assert.Contains(t, out.String(), "Usage: passcode set|change|reset")
	require.NoError(t, a.Lock(ctx))
	assert.Contains(t, out.String(), "No passcode set")
}
