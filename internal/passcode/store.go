// Package passcode stores, verifies and removes the app passcode and drives
// the lock screen.
package passcode

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/common"
	"github.com/dmitrijs2005/chronochat/internal/cryptox"
	"github.com/dmitrijs2005/chronochat/internal/device"
	"github.com/dmitrijs2005/chronochat/internal/logging"
	"github.com/dmitrijs2005/chronochat/internal/storage/kv"
)

// Record is the persisted credential. Scheme is empty on records written
// before hash schemes were tracked.
type Record struct {
	HashedPasscode string `json:"hashedPasscode"`
	CreatedAt      int64  `json:"createdAt"`
	Scheme         string `json:"scheme,omitempty"`
}

type Options struct {
	Scheme    string
	MinLength int
	MaxLength int
}

func (o Options) withDefaults() Options {
	if o.MinLength <= 0 {
		o.MinLength = 4
	}
	if o.MaxLength < o.MinLength {
		o.MaxLength = 6
	}
	return o
}

type Store struct {
	repo      kv.Repository
	salts     *device.SaltManager
	validator *device.Validator
	hasher    cryptox.Hasher
	opts      Options
	random    cryptox.RandomSource
	log       logging.Logger
	now       func() time.Time
}

func NewStore(repo kv.Repository, salts *device.SaltManager, validator *device.Validator, opts Options, log logging.Logger) (*Store, error) {
	opts = opts.withDefaults()
	hasher, err := cryptox.HasherFor(opts.Scheme)
	if err != nil {
		return nil, err
	}
	return &Store{
		repo:      repo,
		salts:     salts,
		validator: validator,
		hasher:    hasher,
		opts:      opts,
		random:    cryptox.DefaultRandom(),
		log:       log,
		now:       time.Now,
	}, nil
}

func (s *Store) validate(passcode string) error {
	if len(passcode) < s.opts.MinLength || len(passcode) > s.opts.MaxLength {
		return fmt.Errorf("%w: passcode must be %d to %d digits", common.ErrValidation, s.opts.MinLength, s.opts.MaxLength)
	}
	for _, r := range passcode {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: passcode must contain digits only", common.ErrValidation)
		}
	}
	return nil
}

// Store hashes passcode with the device salt and persists it, replacing any
// previous passcode.
func (s *Store) Store(ctx context.Context, passcode string) error {
	if err := s.validate(passcode); err != nil {
		return err
	}

	ok, err := s.validator.IsConsistent(ctx)
	if err != nil {
		return fmt.Errorf("check device consistency: %w", err)
	}
	if !ok {
		s.log.Error(ctx, "refusing to store passcode on inconsistent device")
		return common.ErrSecurityViolation
	}

	salt, err := s.salts.GetOrCreateSalt(ctx)
	if err != nil {
		return err
	}
	simulator, err := s.salts.SimulatorMode(ctx)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(passcode, salt, simulator)
	if err != nil {
		return fmt.Errorf("hash passcode: %w", err)
	}

	rec := Record{HashedPasscode: hash, CreatedAt: s.now().UnixMilli(), Scheme: s.hasher.Scheme()}
	if err := kv.SetJSON(ctx, s.repo, kv.KeyPasscode, rec); err != nil {
		return fmt.Errorf("save passcode: %w", err)
	}
	s.log.Info(ctx, "passcode stored", "scheme", rec.Scheme)
	return nil
}

// Has reports whether a passcode record exists.
func (s *Store) Has(ctx context.Context) (bool, error) {
	raw, err := s.repo.Get(ctx, kv.KeyPasscode)
	if err != nil {
		return false, err
	}
	return raw != nil, nil
}

func (s *Store) record(ctx context.Context) (*Record, error) {
	var rec Record
	found, err := kv.GetJSON(ctx, s.repo, kv.KeyPasscode, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

// Verify fails closed: an inconsistent device, a missing record, a missing
// salt or a hashing failure all yield false. The error is set only when the
// answer could not be determined.
func (s *Store) Verify(ctx context.Context, candidate string) (bool, error) {
	ok, err := s.validator.IsConsistent(ctx)
	if err != nil {
		return false, fmt.Errorf("check device consistency: %w", err)
	}
	if !ok {
		s.log.Warn(ctx, "passcode verification refused on inconsistent device")
		return false, nil
	}

	rec, err := s.record(ctx)
	if err != nil {
		return false, fmt.Errorf("load passcode: %w", err)
	}
	if rec == nil {
		return false, nil
	}

	salt, found, err := s.salts.Salt(ctx)
	if err != nil {
		return false, err
	}
	if !found {
		s.log.Warn(ctx, "passcode record present but device salt missing")
		return false, nil
	}

	hasher, err := cryptox.HasherFor(rec.Scheme)
	if err != nil {
		s.log.Warn(ctx, "passcode record uses unknown scheme", "scheme", rec.Scheme)
		return false, nil
	}
	simulator, err := s.salts.SimulatorMode(ctx)
	if err != nil {
		return false, err
	}
	hash, err := hasher.Hash(candidate, salt, simulator)
	if err != nil {
		s.log.Warn(ctx, "passcode hashing failed", "err", err)
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(hash), []byte(rec.HashedPasscode)) == 1, nil
}

// Remove deletes the passcode record. Salt and fingerprint are kept.
func (s *Store) Remove(ctx context.Context) error {
	if err := s.repo.Delete(ctx, kv.KeyPasscode); err != nil {
		return fmt.Errorf("remove passcode: %w", err)
	}
	s.log.Info(ctx, "passcode removed")
	return nil
}

// GeneratePasscode suggests a random numeric passcode of the maximum length.
func (s *Store) GeneratePasscode(ctx context.Context) string {
	p, weak := s.random.Digits(s.opts.MaxLength)
	if weak {
		s.log.Warn(ctx, "secure random source unavailable, suggested passcode is predictable")
	}
	return p
}
