package device

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/storage/kv"
)

// Fingerprint is captured once, next to the salt. It is only compared, never
// used as key material.
type Fingerprint struct {
	IsSimulator     bool   `json:"isSimulator"`
	Platform        string `json:"platform"`
	ApplicationID   string `json:"applicationId,omitempty"`
	AndroidID       string `json:"androidId,omitempty"`
	DeviceName      string `json:"deviceName,omitempty"`
	DeviceYearClass int    `json:"deviceYearClass,omitempty"`
	InstallationID  string `json:"installationId,omitempty"`
	CreatedAt       int64  `json:"createdAt"`
}

// CurrentFingerprint describes env as it is now. The OS device id is only
// recorded for physical devices.
func CurrentFingerprint(env Environment, installationID string, now time.Time) Fingerprint {
	fp := Fingerprint{
		IsSimulator:     env.IsSimulator,
		Platform:        env.Snapshot.Platform,
		ApplicationID:   env.Snapshot.ApplicationID,
		DeviceName:      env.Snapshot.DeviceName,
		DeviceYearClass: env.Snapshot.DeviceYearClass,
		InstallationID:  installationID,
		CreatedAt:       now.UnixMilli(),
	}
	if !env.IsSimulator && env.Snapshot.IsDevice {
		fp.AndroidID = env.Snapshot.DeviceID
	}
	return fp
}

// LoadFingerprint returns the stored snapshot, or nil on first run.
func LoadFingerprint(ctx context.Context, repo kv.Repository) (*Fingerprint, error) {
	var fp Fingerprint
	found, err := kv.GetJSON(ctx, repo, kv.KeyDeviceFingerprint, &fp)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &fp, nil
}
