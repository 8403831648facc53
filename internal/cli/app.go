package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/attachments"
	"github.com/dmitrijs2005/chronochat/internal/backup"
	"github.com/dmitrijs2005/chronochat/internal/config"
	"github.com/dmitrijs2005/chronochat/internal/device"
	"github.com/dmitrijs2005/chronochat/internal/filex"
	"github.com/dmitrijs2005/chronochat/internal/logging"
	"github.com/dmitrijs2005/chronochat/internal/notes"
	"github.com/dmitrijs2005/chronochat/internal/passcode"
	"github.com/dmitrijs2005/chronochat/internal/storage/kv"
)

var _ execIface = (*App)(nil)

type App struct {
	notes    *notes.Store
	passcode *passcode.Store
	gate     *passcode.Gate
	backups  *backup.Service
	target   backup.Target
	repo     kv.Repository
	log      logging.Logger

	reader *bufio.Reader
	out    io.Writer
	loc    *time.Location
	now    func() time.Time
}

// Services are the collaborators of an App.
type Services struct {
	Notes    *notes.Store
	Passcode *passcode.Store
	Gate     *passcode.Gate
	Backups  *backup.Service
	Target   backup.Target
	Repo     kv.Repository
	Log      logging.Logger
}

func newApp(s Services, in io.Reader, out io.Writer) *App {
	return &App{
		notes:    s.Notes,
		passcode: s.Passcode,
		gate:     s.Gate,
		backups:  s.Backups,
		target:   s.Target,
		repo:     s.Repo,
		log:      s.Log,
		reader:   bufio.NewReader(in),
		out:      out,
		loc:      time.Local,
		now:      time.Now,
	}
}

// NewApp opens the store selected by c and builds every service on top of
// it. The runtime classification is resolved here, once.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	layout := filex.NewLayout(c.DataDir)
	if err := layout.Ensure(); err != nil {
		return nil, err
	}

	repo, err := kv.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.StoreType, err)
	}
	s, err := buildServices(ctx, c, repo, device.NewHostProbe(c.ApplicationID), log)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	return newApp(s, os.Stdin, os.Stdout), nil
}

func buildServices(ctx context.Context, c *config.Config, repo kv.Repository, probe device.Probe, log logging.Logger) (Services, error) {
	env, err := device.Detect(ctx, probe, c.DevMode, c.ForceSimulator)
	if err != nil {
		return Services{}, err
	}
	log.Debug(ctx, "runtime classified", "simulator", env.IsSimulator, "reasons", env.Reasons)

	salts := device.NewSaltManager(repo, env, log.With("component", "salt"))
	validator := device.NewValidator(repo, env, log.With("component", "device"))
	ps, err := passcode.NewStore(repo, salts, validator, passcode.Options{
		Scheme:    c.HashScheme,
		MinLength: c.MinPasscodeLength,
		MaxLength: c.MaxPasscodeLength,
	}, log.With("component", "passcode"))
	if err != nil {
		return Services{}, err
	}
	gate := passcode.NewGate(ps, repo, passcode.GateOptions{
		MaxAttempts: c.LockoutAttempts,
		Window:      c.LockoutWindow,
	}, log.With("component", "gate"))

	layout := filex.NewLayout(c.DataDir)
	ns := notes.NewStore(repo, attachments.NewPersister(layout, log.With("component", "attachments")), log.With("component", "notes"))

	target, err := backup.NewTarget(ctx, c)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Notes:    ns,
		Passcode: ps,
		Gate:     gate,
		Backups:  backup.NewService(layout, log.With("component", "backup")),
		Target:   target,
		Repo:     repo,
		Log:      log,
	}, nil
}

// Run unlocks the journal, loads the notes and serves commands until exit.
func (a *App) Run(ctx context.Context) error {
	defer a.repo.Close()

	fmt.Fprintln(a.out, "Welcome to ChronoChat (type 'help' for commands)")
	if err := a.Unlock(ctx); err != nil {
		return err
	}
	if err := a.notes.Load(ctx); err != nil {
		a.log.Error(ctx, "loading notes failed", "err", err)
		return err
	}

	runREPL(ctx, a, a.reader)
	return nil
}
