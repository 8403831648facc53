package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/common"
	"github.com/dmitrijs2005/chronochat/internal/passcode"
)

// getSimpleText and getPasscode are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPasscode   = GetPasscode
)

// Unlock drives the lock screen until the journal is open. A locked gate is
// reported and returned as common.ErrLocked.
func (a *App) Unlock(ctx context.Context) error {
	for {
		st, err := a.gate.Status(ctx)
		if err != nil {
			return err
		}

		switch st {
		case passcode.StateVerified:
			return nil

		case passcode.StateNoPasscode:
			return a.setupPasscode(ctx)

		case passcode.StateLocked:
			until, err := a.gate.LockedUntil(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Too many failed attempts. Try again after %s.\n", until.In(a.loc).Format(time.TimeOnly))
			return common.ErrLocked

		case passcode.StateUnverified:
			p, err := getPasscode(a.reader, "Enter passcode", a.out)
			if err != nil {
				return err
			}
			res, err := a.gate.Attempt(ctx, string(p))
			common.WipeByteArray(p)
			if errors.Is(err, common.ErrLocked) {
				continue
			}
			if err != nil {
				return err
			}
			if res.Verified {
				fmt.Fprintln(a.out, "Unlocked.")
				return nil
			}
			if res.LockedUntil.IsZero() {
				fmt.Fprintf(a.out, "Wrong passcode, %d attempts left.\n", res.Remaining)
			}
		}
	}
}

// readNewPasscode asks for a passcode twice. Empty input returns "".
func (a *App) readNewPasscode(prompt string) (string, error) {
	for {
		p, err := getPasscode(a.reader, prompt, a.out)
		if err != nil {
			return "", err
		}
		if len(p) == 0 {
			return "", nil
		}
		again, err := getPasscode(a.reader, "Repeat passcode", a.out)
		if err != nil {
			common.WipeByteArray(p)
			return "", err
		}
		match := string(p) == string(again)
		s := string(p)
		common.WipeByteArray(p)
		common.WipeByteArray(again)
		if match {
			return s, nil
		}
		fmt.Fprintln(a.out, "Passcodes do not match.")
	}
}

func (a *App) setupPasscode(ctx context.Context) error {
	fmt.Fprintf(a.out, "No passcode set. Suggested passcode: %s\n", a.passcode.GeneratePasscode(ctx))
	for {
		p, err := a.readNewPasscode("Choose a passcode (digits only, empty to skip)")
		if err != nil {
			return err
		}
		if p == "" {
			fmt.Fprintln(a.out, "The journal is not protected by a passcode.")
			return nil
		}
		err = a.gate.Setup(ctx, p)
		if errors.Is(err, common.ErrValidation) {
			fmt.Fprintln(a.out, err)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Passcode set.")
		return nil
	}
}

func (a *App) changePasscode(ctx context.Context) error {
	current, err := getPasscode(a.reader, "Current passcode", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := a.readNewPasscode("New passcode")
	if err != nil || next == "" {
		return err
	}

	res, err := a.gate.Change(ctx, string(current), next)
	switch {
	case errors.Is(err, common.ErrLocked):
		fmt.Fprintln(a.out, "Passcode entry is locked.")
		return errQuit
	case err != nil:
		return err
	case res.Verified:
		fmt.Fprintln(a.out, "Passcode changed.")
	case !res.LockedUntil.IsZero():
		fmt.Fprintln(a.out, "Too many failed attempts.")
		return errQuit
	default:
		fmt.Fprintf(a.out, "Wrong passcode, %d attempts left.\n", res.Remaining)
	}
	return nil
}

// Passcode handles "passcode set|change|reset".
func (a *App) Passcode(ctx context.Context, sub string) error {
	has, err := a.passcode.Has(ctx)
	if err != nil {
		return err
	}

	switch sub {
	case "set":
		if has {
			fmt.Fprintln(a.out, "A passcode is already set; use 'passcode change'.")
			return nil
		}
		return a.setupPasscode(ctx)
	case "change":
		if !has {
			fmt.Fprintln(a.out, "No passcode set; use 'passcode set'.")
			return nil
		}
		return a.changePasscode(ctx)
	case "reset":
		if !has {
			fmt.Fprintln(a.out, "No passcode set.")
			return nil
		}
		if !confirm(a.reader, "Remove the passcode? Notes are kept.", a.out) {
			return nil
		}
		if err := a.gate.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Passcode removed.")
		return nil
	default:
		fmt.Fprintln(a.out, "Usage: passcode set|change|reset")
		return nil
	}
}

// Lock closes the journal and shows the lock screen again.
func (a *App) Lock(ctx context.Context) error {
	has, err := a.passcode.Has(ctx)
	if err != nil {
		return err
	}
	if !has {
		fmt.Fprintln(a.out, "No passcode set; use 'passcode set' first.")
		return nil
	}
	a.gate.Lock()
	if err := a.Unlock(ctx); err != nil {
		return fmt.Errorf("%w: %v", errQuit, err)
	}
	return nil
}

// Security prints the credential and runtime diagnostics.
func (a *App) Security(ctx context.Context) error {
	info := a.passcode.SecurityInfo(ctx)
	env := a.passcode.EnvironmentInfo()

	created := "-"
	if !info.CreatedAt.IsZero() {
		created = info.CreatedAt.In(a.loc).Format(time.DateTime)
	}
	fmt.Fprintf(a.out, "Passcode set:       %t (created %s)\n", info.HasPasscode, created)
	fmt.Fprintf(a.out, "Device consistent:  %t\n", info.DeviceConsistent)
	fmt.Fprintf(a.out, "Salt present:       %t\n", info.SaltExists)
	fmt.Fprintf(a.out, "Platform:           %s %s (%s)\n", env.Platform, env.OSVersion, env.Model)
	fmt.Fprintf(a.out, "Simulator:          %t\n", env.IsSimulator)
	for _, r := range env.Reasons {
		fmt.Fprintf(a.out, "  - %s\n", r)
	}
	return nil
}
