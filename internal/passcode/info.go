package passcode

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/timex"
)

type SecurityInfo struct {
	HasPasscode      bool
	DeviceConsistent bool
	SaltExists       bool
	IsSimulator      bool
	Platform         string
	CreatedAt        time.Time
}

type EnvironmentInfo struct {
	IsSimulator bool
	IsDevice    bool
	DevBuild    bool
	Platform    string
	OSVersion   string
	DeviceName  string
	Model       string
	Reasons     []string
}

// SecurityInfo summarises the credential state for diagnostics. Lookup
// failures are reported as false rather than errors.
func (s *Store) SecurityInfo(ctx context.Context) SecurityInfo {
	env := s.salts.Environment()
	info := SecurityInfo{IsSimulator: env.IsSimulator, Platform: env.Snapshot.Platform}

	if rec, err := s.record(ctx); err == nil && rec != nil {
		info.HasPasscode = true
		info.CreatedAt = timex.UnixMilli(rec.CreatedAt)
	}
	if ok, err := s.validator.IsConsistent(ctx); err == nil {
		info.DeviceConsistent = ok
	}
	if ok, err := s.salts.SaltExists(ctx); err == nil {
		info.SaltExists = ok
	}
	return info
}

func (s *Store) EnvironmentInfo() EnvironmentInfo {
	env := s.salts.Environment()
	return EnvironmentInfo{
		IsSimulator: env.IsSimulator,
		IsDevice:    env.Snapshot.IsDevice,
		DevBuild:    env.DevBuild,
		Platform:    env.Snapshot.Platform,
		OSVersion:   env.Snapshot.OSVersion,
		DeviceName:  env.Snapshot.DeviceName,
		Model:       env.Snapshot.Model,
		Reasons:     append([]string(nil), env.Reasons...),
	}
}
