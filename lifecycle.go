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

package mfrc522

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// LifecycleState is the chip state as last driven by this Device
type LifecycleState int

const (
	StateUnpowered LifecycleState = iota
	StateReset
	StateConfigured
	StateAntennaOn
	StateAntennaOff
)

func (s LifecycleState) String() string {
	switch s {
	case StateUnpowered:
		return "unpowered"
	case StateReset:
		return "reset"
	case StateConfigured:
		return "configured"
	case StateAntennaOn:
		return "antenna-on"
	case StateAntennaOff:
		return "antenna-off"
	default:
		return fmt.Sprintf("LifecycleState(%d)", int(s))
	}
}

// Known VersionReg values
const (
	VersionMFRC522V1 = 0x91
	VersionMFRC522V2 = 0x92
	// versionNoMISO is read when MISO is wired but the chip is unpowered
	versionNoMISO = 0x00
	// versionFloating is read when MISO is floating
	versionFloating = 0xFF
)

// State returns the lifecycle state last driven by this Device
func (d *Device) State() LifecycleState {
	return d.state
}

// Init initializes the MFRC522 device
func (d *Device) Init() error {
	return d.InitContext(context.Background())
}

// InitContext runs the full initialization sequence: hardware reset, version
// check, soft reset, timer and modulation configuration, antenna on.
// A version of 0x00 or 0xFF means nothing is answering on the bus; InitContext
// then returns a *VersionError without writing any register. The context is
// checked between steps; a step that has started always runs to completion.
func (d *Device) InitContext(ctx context.Context) error {
	steps := []struct {
		run  func() error
		name string
	}{
		{name: "hardware reset", run: d.HardwareReset},
		{name: "version check", run: d.checkVersion},
		{name: "soft reset", run: d.SoftReset},
		{name: "configure", run: d.Configure},
		{name: "antenna on", run: d.AntennaOn},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("init cancelled before %s: %w", step.name, err)
		}
		if err := step.run(); err != nil {
			return fmt.Errorf("%s failed: %w", step.name, err)
		}
	}

	debugln("MFRC522 initialized")
	return nil
}

func (d *Device) checkVersion() error {
	version, err := d.Version()
	if err != nil {
		return err
	}

	switch version {
	case versionNoMISO, versionFloating:
		return &VersionError{Version: version}
	case VersionMFRC522V1, VersionMFRC522V2:
		debugf("MFRC522 version 0x%02X", version)
	default:
		debugf("unrecognized chip version 0x%02X, continuing", version)
	}
	return nil
}

// Version returns the raw VersionReg value. 0x91 and 0x92 are MFRC522
// firmware 1.0 and 2.0; interpreting other values is left to the caller.
func (d *Device) Version() (byte, error) {
	return d.ReadRegister(VersionReg)
}

// ResetPin returns the configured reset line, or ErrNoResetPin
func (d *Device) ResetPin() (OutputPin, error) {
	if d.resetPin == nil {
		return nil, ErrNoResetPin
	}
	return d.resetPin, nil
}

// HardwareReset pulses the reset line low and waits for the chip's
// oscillator to settle. Without a reset pin only the settle wait happens.
func (d *Device) HardwareReset() error {
	if d.resetPin == nil {
		debugln("no reset pin configured, skipping reset pulse")
		d.sleep(d.config.ResetSettle)
		d.state = StateReset
		return nil
	}

	if err := d.resetPin.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to drive reset low: %w", err)
	}
	d.sleep(d.config.ResetHold)

	if err := d.resetPin.Out(gpio.High); err != nil {
		return fmt.Errorf("failed to release reset: %w", err)
	}
	d.sleep(d.config.ResetSettle)

	d.state = StateReset
	return nil
}

// SoftReset issues the SoftReset command and waits for it to finish
func (d *Device) SoftReset() error {
	if err := d.WriteRegister(CommandReg, byte(CommandSoftReset)); err != nil {
		return err
	}
	d.sleep(d.config.SoftResetSettle)
	d.state = StateReset
	return nil
}

// Configure programs the internal timer and 100% ASK modulation needed for
// ISO14443-A framing
func (d *Device) Configure() error {
	writes := []struct {
		reg   Register
		value byte
	}{
		{TModeReg, tModeAuto},
		{TPrescalerReg, tPrescaler},
		{TReloadRegH, tReloadHigh},
		{TReloadRegL, tReloadLow},
		{TxASKReg, txASKForce100},
		{ModeReg, modeCRCPreset},
	}

	for _, w := range writes {
		if err := d.WriteRegister(w.reg, w.value); err != nil {
			return err
		}
	}

	d.state = StateConfigured
	return nil
}

// AntennaOn enables the TX1/TX2 drivers, keeping the other TxControlReg
// bits, and sets the receiver gain
func (d *Device) AntennaOn() error {
	value, err := d.ReadRegister(TxControlReg)
	if err != nil {
		return err
	}
	if value&txControlAnt != txControlAnt {
		if err := d.WriteRegister(TxControlReg, value|txControlAnt); err != nil {
			return err
		}
	}

	if err := d.WriteRegister(RFCfgReg, d.config.AntennaGain<<4); err != nil {
		return err
	}

	d.state = StateAntennaOn
	return nil
}

// AntennaOff disables the TX1/TX2 drivers
func (d *Device) AntennaOff() error {
	if err := d.ClearBits(TxControlReg, txControlAnt); err != nil {
		return err
	}
	d.state = StateAntennaOff
	return nil
}
