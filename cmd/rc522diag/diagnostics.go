// go-mfrc522
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mfrc522.
//
// go-mfrc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mfrc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mfrc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.


package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
)

// Check is the outcome of one diagnostic step
type Check struct {
	Name    string
	Detail  string
	Passed  bool
	Skipped bool
}

// roundTripPatterns are written to the scratch register and read back
var roundTripPatterns = []byte{0x00, 0xFF, 0x55, 0xAA, 0x01, 0x80}

// Diagnostics runs hardware checks against one device
type Diagnostics struct {
	sleep        func(time.Duration)
	attempts     int
	retryDelay   time.Duration
	pollInterval time.Duration
	scanTimeout  time.Duration
}

// NewDiagnostics creates a diagnostics runner from the CLI configuration
func NewDiagnostics(cfg *Config) *Diagnostics {
	return &Diagnostics{
		sleep:        time.Sleep,
		attempts:     cfg.Attempts,
		retryDelay:   500 * time.Millisecond,
		pollInterval: 100 * time.Millisecond,
		scanTimeout:  cfg.ScanTimeout,
	}
}

// Run executes every check in wiring order. Later checks are skipped once
// the chip fails to answer.
func (d *Diagnostics) Run(ctx context.Context, device *mfrc522.Device) []Check {
	checks := []Check{d.CheckResetPin(device)}

	version := d.CheckVersion(device)
	checks = append(checks, version)
	if !version.Passed {
		return append(checks,
			Check{Name: "register round-trip", Skipped: true, Detail: "chip not answering"},
			Check{Name: "card scan", Skipped: true, Detail: "chip not answering"},
		)
	}

	checks = append(checks, d.CheckRoundTrip(device))
	return append(checks, d.CheckScan(ctx, device))
}

// CheckResetPin pulses the reset line when one is configured
func (*Diagnostics) CheckResetPin(device *mfrc522.Device) Check {
	c := Check{Name: "reset pin"}
	if _, err := device.ResetPin(); errors.Is(err, mfrc522.ErrNoResetPin) {
		c.Skipped = true
		c.Detail = "no reset pin configured"
		return c
	}
	if err := device.HardwareReset(); err != nil {
		c.Detail = err.Error()
		return c
	}
	c.Passed = true
	c.Detail = "pulsed low then high"
	return c
}

// versionHint explains a VersionReg value in wiring terms
func versionHint(version byte) string {
	switch version {
	case 0x00:
		return "MISO not connected or no power"
	case 0xFF:
		return "MISO floating, check the connection"
	default:
		name, known := detection.ChipName(version)
		if known {
			return name
		}
		return name + ", likely a clone"
	}
}

// CheckVersion reads VersionReg up to the configured number of attempts.
// Any answer other than 0x00 or 0xFF passes, the same rule Init applies.
func (d *Diagnostics) CheckVersion(device *mfrc522.Device) Check {
	c := Check{Name: "version register"}

	attempts := d.attempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if i > 0 {
			d.sleep(d.retryDelay)
		}
		version, err := device.Version()
		if err != nil {
			c.Detail = err.Error()
			continue
		}
		c.Detail = fmt.Sprintf("0x%02X (%s)", version, versionHint(version))
		if detection.Responding(version) {
			c.Passed = true
			return c
		}
	}
	return c
}

// CheckRoundTrip writes test patterns to TReloadRegL, reads them back and
// restores the original value
func (*Diagnostics) CheckRoundTrip(device *mfrc522.Device) Check {
	c := Check{Name: "register round-trip"}

	orig, err := device.ReadRegister(mfrc522.TReloadRegL)
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	defer func() { _ = device.WriteRegister(mfrc522.TReloadRegL, orig) }()

	for _, want := range roundTripPatterns {
		if err := device.WriteRegister(mfrc522.TReloadRegL, want); err != nil {
			c.Detail = err.Error()
			return c
		}
		got, err := device.ReadRegister(mfrc522.TReloadRegL)
		if err != nil {
			c.Detail = err.Error()
			return c
		}
		if got != want {
			c.Detail = fmt.Sprintf("wrote 0x%02X, read 0x%02X", want, got)
			return c
		}
	}
	c.Passed = true
	c.Detail = fmt.Sprintf("%d patterns", len(roundTripPatterns))
	return c
}

// CheckScan initialises the chip and waits for a card
func (d *Diagnostics) CheckScan(ctx context.Context, device *mfrc522.Device) Check {
	c := Check{Name: "card scan"}

	if err := device.InitContext(ctx); err != nil {
		c.Detail = fmt.Sprintf("init failed: %v", err)
		return c
	}

	ctx, cancel := context.WithTimeout(ctx, d.scanTimeout)
	defer cancel()

	for {
		card, err := device.ScanCardMode(mfrc522.RequestAll)
		if err != nil {
			c.Detail = err.Error()
			return c
		}
		if card != nil {
			_ = device.Halt()
			c.Passed = true
			c.Detail = card.String()
			return c
		}

		select {
		case <-ctx.Done():
			c.Skipped = true
			c.Detail = fmt.Sprintf("no card presented within %s", d.scanTimeout)
			return c
		case <-time.After(d.pollInterval):
		}
	}
}

// Passed reports whether no check failed
func Passed(checks []Check) bool {
	for _, c := range checks {
		if !c.Passed && !c.Skipped {
			return false
		}
	}
	return true
}
