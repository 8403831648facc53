package device

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProbe struct {
	snap Snapshot
	err  error
}

func (p fakeProbe) Snapshot(context.Context) (Snapshot, error) { return p.snap, p.err }

func physical() Snapshot {
	return Snapshot{
		Platform:      "android",
		OSVersion:     "14",
		DeviceName:    "Pixel 8",
		Model:         "Pixel 8",
		ApplicationID: "io.chronochat.app",
		DeviceID:      "abc123",
		IsDevice:      true,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		snap     Snapshot
		dev      bool
		force    bool
		wantSim  bool
		nReasons int
	}{
		{"physical device", physical(), false, false, false, 0},
		{"development build", physical(), true, false, true, 1},
		{"forced", physical(), false, true, true, 1},
		{"emulator model", func() Snapshot { s := physical(); s.Model = "sdk_gphone64_x86_64"; return s }(), false, false, true, 1},
		{"simulator name", func() Snapshot { s := physical(); s.DeviceName = "iPhone 15 Simulator"; return s }(), false, false, true, 1},
		{"not a device", func() Snapshot { s := physical(); s.IsDevice = false; return s }(), false, false, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.snap, tt.dev, tt.force)
			assert.Equal(t, tt.wantSim, c.IsSimulator)
			assert.Len(t, c.Reasons, tt.nReasons)
		})
	}
}

func TestDetect(t *testing.T) {
	env, err := Detect(context.Background(), fakeProbe{snap: physical()}, false, false)
	require.NoError(t, err)
	assert.False(t, env.IsSimulator)
	assert.Equal(t, "abc123", env.Snapshot.DeviceID)

	_, err = Detect(context.Background(), fakeProbe{err: errors.New("boom")}, false, false)
	require.Error(t, err)
}

func TestHostProbe(t *testing.T) {
	p := NewHostProbe("io.chronochat.app")
	p.machineID = func(appID string) (string, error) { return "id-" + appID, nil }
	p.hostname = func() (string, error) { return "desk", nil }

	s, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, s.IsDevice)
	assert.Equal(t, "id-io.chronochat.app", s.DeviceID)
	assert.Equal(t, "desk", s.DeviceName)

	p.machineID = func(string) (string, error) { return "", errors.New("no machine id") }
	s, err = p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, s.IsDevice)
	assert.Empty(t, s.DeviceID)
}
