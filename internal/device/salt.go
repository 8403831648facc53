package device

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/cryptox"
	"github.com/dmitrijs2005/chronochat/internal/logging"
	"github.com/dmitrijs2005/chronochat/internal/storage/kv"
	"github.com/google/uuid"
)

const saltRandomBytes = 32

// SaltManager owns the per-installation salt. The salt is generated once and
// then returned unchanged; losing it makes the stored passcode hash
// unverifiable.
type SaltManager struct {
	repo   kv.Repository
	env    Environment
	random cryptox.RandomSource
	log    logging.Logger

	now   func() time.Time
	newID func() string

	mu sync.Mutex
}

func NewSaltManager(repo kv.Repository, env Environment, log logging.Logger) *SaltManager {
	return &SaltManager{
		repo:   repo,
		env:    env,
		random: cryptox.DefaultRandom(),
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (m *SaltManager) Environment() Environment {
	return m.env
}

// GetOrCreateSalt returns the stored salt, generating and persisting it (with
// the fingerprint and the simulator flag, in one write) on first use.
func (m *SaltManager) GetOrCreateSalt(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	salt, found, err := kv.GetString(ctx, m.repo, kv.KeyDeviceSalt)
	if err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	if found && salt != "" {
		m.checkDrift(ctx)
		return salt, nil
	}

	if fp, err := LoadFingerprint(ctx, m.repo); err == nil && fp != nil {
		m.log.Warn(ctx, "salt missing while a fingerprint exists; stored passcode can no longer be verified",
			"installation_id", fp.InstallationID)
	}
	return m.createSalt(ctx)
}

// Salt returns the stored salt without creating one.
func (m *SaltManager) Salt(ctx context.Context) (string, bool, error) {
	salt, found, err := kv.GetString(ctx, m.repo, kv.KeyDeviceSalt)
	if err != nil {
		return "", false, fmt.Errorf("read salt: %w", err)
	}
	return salt, found && salt != "", nil
}

// SimulatorMode returns the simulator flag recorded when the salt was
// created, falling back to the current classification when none is stored.
// Passcode hashing uses this flag so a reclassified device still verifies.
func (m *SaltManager) SimulatorMode(ctx context.Context) (bool, error) {
	stored, err := kv.GetBool(ctx, m.repo, kv.KeySimulatorMode, m.env.IsSimulator)
	if err != nil {
		return false, fmt.Errorf("read simulator mode: %w", err)
	}
	return stored, nil
}

// SaltExists reports whether a salt has been persisted.
func (m *SaltManager) SaltExists(ctx context.Context) (bool, error) {
	_, found, err := m.Salt(ctx)
	return found, err
}

func (m *SaltManager) createSalt(ctx context.Context) (string, error) {
	now := m.now()
	installationID := m.newID()

	random, weak := m.random.Hex(saltRandomBytes)
	if weak {
		m.log.Warn(ctx, "secure random source unavailable, salt uses time-based fallback")
	}

	s := m.env.Snapshot
	parts := []string{
		installationID,
		s.ApplicationID,
		strconv.Itoa(s.DeviceYearClass),
		s.Platform + "-" + s.OSVersion,
	}
	if !m.env.IsSimulator && s.IsDevice && s.DeviceID != "" {
		parts = append(parts, s.DeviceID)
	}
	parts = append(parts, random, strconv.FormatInt(now.UnixMilli(), 10))

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	salt := hex.EncodeToString(sum[:])

	fp, err := json.Marshal(CurrentFingerprint(m.env, installationID, now))
	if err != nil {
		return "", fmt.Errorf("encode fingerprint: %w", err)
	}
	simulator := []byte("false")
	if m.env.IsSimulator {
		simulator = []byte("true")
	}

	err = m.repo.SetMany(ctx, map[string][]byte{
		kv.KeyDeviceSalt:        []byte(salt),
		kv.KeyDeviceFingerprint: fp,
		kv.KeySimulatorMode:     simulator,
	})
	if err != nil {
		return "", fmt.Errorf("persist salt: %w", err)
	}

	m.log.Info(ctx, "device salt created", "simulator", m.env.IsSimulator, "reasons", m.env.Reasons)
	return salt, nil
}

// checkDrift warns when the classification stored with the salt differs
// from the current one. The salt itself is never regenerated.
func (m *SaltManager) checkDrift(ctx context.Context) {
	stored, found, err := kv.GetString(ctx, m.repo, kv.KeySimulatorMode)
	if err != nil || !found {
		return
	}
	if (stored == "true") != m.env.IsSimulator {
		m.log.Warn(ctx, "runtime classification changed since salt creation",
			"stored_simulator", stored, "simulator", m.env.IsSimulator)
	}
}

// Fingerprint returns the fingerprint stored with the salt, or nil.
func (m *SaltManager) Fingerprint(ctx context.Context) (*Fingerprint, error) {
	return LoadFingerprint(ctx, m.repo)
}
