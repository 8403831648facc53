// Package device resolves the runtime classification (simulator or physical
// device) once at start-up and owns the per-installation salt and the device
// fingerprint used for drift detection.
package device

import (
	"context"
	"os"
	"runtime"

	"github.com/denisbrodbeck/machineid"
)

// Snapshot is what a Probe can observe about the host right now.
type Snapshot struct {
	Platform        string
	OSVersion       string
	DeviceName      string
	Model           string
	ApplicationID   string
	DeviceID        string
	DeviceYearClass int
	IsDevice        bool
}

// Probe reads identifiers from the host.
type Probe interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// HostProbe observes the machine the process runs on. DeviceID is the OS
// machine id, hashed with the application id so it is not exposed raw; a host
// without a readable machine id is not treated as a physical device.
type HostProbe struct {
	ApplicationID string

	machineID func(appID string) (string, error)
	hostname  func() (string, error)
}

func NewHostProbe(applicationID string) *HostProbe {
	return &HostProbe{
		ApplicationID: applicationID,
		machineID:     machineid.ProtectedID,
		hostname:      os.Hostname,
	}
}

func (p *HostProbe) Snapshot(ctx context.Context) (Snapshot, error) {
	s := Snapshot{
		Platform:      runtime.GOOS,
		OSVersion:     runtime.Version(),
		Model:         runtime.GOARCH,
		ApplicationID: p.ApplicationID,
	}

	if name, err := p.hostname(); err == nil {
		s.DeviceName = name
	}
	if id, err := p.machineID(p.ApplicationID); err == nil && id != "" {
		s.DeviceID = id
		s.IsDevice = true
	}
	return s, nil
}
