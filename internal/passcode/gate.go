package passcode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/common"
	"github.com/dmitrijs2005/chronochat/internal/logging"
	"github.com/dmitrijs2005/chronochat/internal/storage/kv"
)

type State int

const (
	StateNoPasscode State = iota
	StateUnverified
	StateVerified
	StateLocked
)

func (s State) String() string {
	switch s {
	case StateNoPasscode:
		return "no-passcode"
	case StateUnverified:
		return "unverified"
	case StateVerified:
		return "verified"
	case StateLocked:
		return "locked"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result of one passcode attempt. LockedUntil is set when this attempt
// exhausted the allowance.
type Result struct {
	Verified    bool
	Remaining   int
	LockedUntil time.Time
}

type lockRecord struct {
	LockUntil int64 `json:"lockUntil"`
	Attempts  int   `json:"attempts"`
}

type GateOptions struct {
	MaxAttempts int
	Window      time.Duration
}

// Gate is the lock screen. Failed attempts and the lockout deadline are
// persisted so restarting the app does not reset them; the deadline is
// checked against the clock on every call.
type Gate struct {
	store       *Store
	repo        kv.Repository
	maxAttempts int
	window      time.Duration
	log         logging.Logger
	now         func() time.Time

	mu       sync.Mutex
	verified bool
}

func NewGate(store *Store, repo kv.Repository, opts GateOptions, log logging.Logger) *Gate {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Window <= 0 {
		opts.Window = 5 * time.Minute
	}
	return &Gate{
		store:       store,
		repo:        repo,
		maxAttempts: opts.MaxAttempts,
		window:      opts.Window,
		log:         log,
		now:         time.Now,
	}
}

// lockState loads the lockout record, clearing it once the deadline passed.
func (g *Gate) lockState(ctx context.Context) (lockRecord, error) {
	var rec lockRecord
	if _, err := kv.GetJSON(ctx, g.repo, kv.KeyLockout, &rec); err != nil {
		return lockRecord{}, fmt.Errorf("load lockout: %w", err)
	}
	if rec.LockUntil != 0 && g.now().UnixMilli() >= rec.LockUntil {
		if err := g.repo.Delete(ctx, kv.KeyLockout); err != nil {
			return lockRecord{}, fmt.Errorf("clear lockout: %w", err)
		}
		return lockRecord{}, nil
	}
	return rec, nil
}

func (g *Gate) Status(ctx context.Context) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status(ctx)
}

func (g *Gate) status(ctx context.Context) (State, error) {
	has, err := g.store.Has(ctx)
	if err != nil {
		return StateUnverified, err
	}
	if !has {
		return StateNoPasscode, nil
	}
	rec, err := g.lockState(ctx)
	if err != nil {
		return StateUnverified, err
	}
	if rec.LockUntil != 0 {
		return StateLocked, nil
	}
	if g.verified {
		return StateVerified, nil
	}
	return StateUnverified, nil
}

// LockedUntil returns the active lockout deadline, or the zero time.
func (g *Gate) LockedUntil(ctx context.Context) (time.Time, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, err := g.lockState(ctx)
	if err != nil || rec.LockUntil == 0 {
		return time.Time{}, err
	}
	return time.UnixMilli(rec.LockUntil), nil
}

// Setup stores the first passcode and unlocks the gate.
func (g *Gate) Setup(ctx context.Context, passcode string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Store(ctx, passcode); err != nil {
		return err
	}
	g.verified = true
	return nil
}

// Attempt checks a candidate. Attempts while locked are rejected with
// common.ErrLocked without being counted.
func (g *Gate) Attempt(ctx context.Context, candidate string) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempt(ctx, candidate)
}

func (g *Gate) attempt(ctx context.Context, candidate string) (Result, error) {
	rec, err := g.lockState(ctx)
	if err != nil {
		return Result{}, err
	}
	if rec.LockUntil != 0 {
		return Result{LockedUntil: time.UnixMilli(rec.LockUntil)}, common.ErrLocked
	}

	ok, err := g.store.Verify(ctx, candidate)
	if err != nil {
		return Result{}, err
	}
	if ok {
		if err := g.repo.Delete(ctx, kv.KeyLockout); err != nil {
			return Result{}, fmt.Errorf("clear lockout: %w", err)
		}
		g.verified = true
		return Result{Verified: true, Remaining: g.maxAttempts}, nil
	}

	rec.Attempts++
	res := Result{Remaining: g.maxAttempts - rec.Attempts}
	if rec.Attempts >= g.maxAttempts {
		until := g.now().Add(g.window)
		rec.LockUntil = until.UnixMilli()
		res.Remaining = 0
		res.LockedUntil = time.UnixMilli(rec.LockUntil)
		g.log.Warn(ctx, "passcode entry locked", "until", res.LockedUntil)
	}
	if err := kv.SetJSON(ctx, g.repo, kv.KeyLockout, rec); err != nil {
		return Result{}, fmt.Errorf("save lockout: %w", err)
	}
	g.verified = false
	return res, nil
}

// Change replaces the passcode after the current one is verified. A wrong
// current passcode counts as a failed attempt.
func (g *Gate) Change(ctx context.Context, current, next string) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.validate(next); err != nil {
		return Result{}, err
	}
	res, err := g.attempt(ctx, current)
	if err != nil || !res.Verified {
		return res, err
	}
	if err := g.store.Store(ctx, next); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Lock returns a verified gate to the unverified state.
func (g *Gate) Lock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verified = false
}

// Reset removes the passcode and the lockout record. Notes are untouched.
func (g *Gate) Reset(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Remove(ctx); err != nil {
		return err
	}
	if err := g.repo.Delete(ctx, kv.KeyLockout); err != nil {
		return fmt.Errorf("clear lockout: %w", err)
	}
	g.verified = false
	return nil
}
