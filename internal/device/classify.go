package device

import (
	"context"
	"fmt"
	"strings"
)

var emulatorModels = []string{
	"sdk_gphone",
	"google_sdk",
	"android sdk built for",
	"emulator",
	"generic_x86",
	"iphone simulator",
}

var emulatorNameHints = []string{"simulator", "emulator"}

// Classification is the RuntimeClassification capability: resolved once and
// passed by value to the salt, hashing and validation code.
type Classification struct {
	IsSimulator bool
	Reasons     []string
}

// Classify applies the simulator heuristics. Every matching rule is recorded
// in Reasons so the decision can be logged.
func Classify(s Snapshot, devBuild, force bool) Classification {
	var c Classification
	add := func(reason string) {
		c.IsSimulator = true
		c.Reasons = append(c.Reasons, reason)
	}

	if force {
		add("forced by configuration")
	}
	if devBuild {
		add("development build")
	}
	name := strings.ToLower(s.DeviceName)
	for _, hint := range emulatorNameHints {
		if strings.Contains(name, hint) {
			add(fmt.Sprintf("device name contains %q", hint))
		}
	}
	model := strings.ToLower(s.Model)
	for _, m := range emulatorModels {
		if strings.Contains(model, m) {
			add(fmt.Sprintf("emulator model %q", m))
		}
	}
	if !s.IsDevice {
		add("not a physical device")
	}
	return c
}

// Environment bundles the observed snapshot with its classification.
type Environment struct {
	Snapshot Snapshot
	Classification
	DevBuild bool
}

// Detect probes the host once and classifies it.
func Detect(ctx context.Context, probe Probe, devBuild, force bool) (Environment, error) {
	s, err := probe.Snapshot(ctx)
	if err != nil {
		return Environment{}, fmt.Errorf("probe device: %w", err)
	}
	return Environment{
		Snapshot:       s,
		Classification: Classify(s, devBuild, force),
		DevBuild:       devBuild,
	}, nil
}
