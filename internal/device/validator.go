package device

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/logging"
	"github.com/dmitrijs2005/chronochat/internal/storage/kv"
)

// Mismatch is one field that differs between the stored fingerprint and the
// current environment.
type Mismatch struct {
	Field     string
	Stored    string
	Current   string
	Tolerated bool
}

// Report is the outcome of a consistency check.
type Report struct {
	Consistent bool
	FirstRun   bool
	Mismatches []Mismatch
}

// Validator compares the stored fingerprint with the current environment.
type Validator struct {
	repo kv.Repository
	env  Environment
	log  logging.Logger
}

func NewValidator(repo kv.Repository, env Environment, log logging.Logger) *Validator {
	return &Validator{repo: repo, env: env, log: log}
}

// IsConsistent reports whether credentials stored on this installation may be
// used. A missing fingerprint (first run) is consistent.
func (v *Validator) IsConsistent(ctx context.Context) (bool, error) {
	r, err := v.Check(ctx)
	if err != nil {
		return false, err
	}
	return r.Consistent, nil
}

func (v *Validator) Check(ctx context.Context) (Report, error) {
	stored, err := LoadFingerprint(ctx, v.repo)
	if err != nil {
		return Report{}, err
	}
	if stored == nil {
		return Report{Consistent: true, FirstRun: true}, nil
	}

	current := CurrentFingerprint(v.env, stored.InstallationID, time.Now())
	report := Report{Consistent: true}
	flag := func(field, s, c string) {
		m := Mismatch{Field: field, Stored: s, Current: c, Tolerated: v.env.DevBuild}
		report.Mismatches = append(report.Mismatches, m)
		if m.Tolerated {
			v.log.Warn(ctx, "device fingerprint drift tolerated in development build",
				"field", field, "stored", s, "current", c)
			return
		}
		v.log.Warn(ctx, "device fingerprint mismatch", "field", field)
		report.Consistent = false
	}

	if stored.ApplicationID != "" && stored.ApplicationID != current.ApplicationID {
		flag("applicationId", stored.ApplicationID, current.ApplicationID)
	}
	if !stored.IsSimulator && !current.IsSimulator &&
		stored.AndroidID != "" && current.AndroidID != "" && stored.AndroidID != current.AndroidID {
		flag("androidId", stored.AndroidID, current.AndroidID)
	}
	if stored.IsSimulator != current.IsSimulator {
		flag("isSimulator", boolString(stored.IsSimulator), boolString(current.IsSimulator))
	}
	return report, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
