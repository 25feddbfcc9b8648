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
	"fmt"
	"time"
)

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithPollBudget sets how many times the transceive engine reads ComIrqReg
// before giving up on a command. The default of 2000 was tuned for a 4 MHz
// SPI clock; a faster or slower bus changes how long that takes.
func WithPollBudget(reads int) Option {
	return func(d *Device) error {
		if reads < 1 {
			return fmt.Errorf("%w: poll budget must be at least 1, got %d", ErrInvalidParameter, reads)
		}
		d.config.PollBudget = reads
		return nil
	}
}

// WithResetPin sets the GPIO wired to the chip's NRSTPD input
func WithResetPin(pin OutputPin) Option {
	return func(d *Device) error {
		d.resetPin = pin
		return nil
	}
}

// WithAntennaGain sets the receiver gain written to RFCfgReg by AntennaOn.
// Valid values are 0 (18 dB) through 7 (48 dB).
func WithAntennaGain(gain byte) Option {
	return func(d *Device) error {
		if gain > maxAntennaGain {
			return fmt.Errorf("%w: antenna gain must be 0-7, got %d", ErrInvalidParameter, gain)
		}
		d.config.AntennaGain = gain
		return nil
	}
}

// WithResetTiming overrides the reset pulse width and the settle delays
// after hardware and soft reset. Values below the chip minimums are rejected.
func WithResetTiming(hold, settle, softSettle time.Duration) Option {
	return func(d *Device) error {
		if hold < minResetHold || settle < minResetSettle || softSettle < minResetSettle {
			return fmt.Errorf("%w: reset timing below chip minimum", ErrInvalidParameter)
		}
		d.config.ResetHold = hold
		d.config.ResetSettle = settle
		d.config.SoftResetSettle = softSettle
		return nil
	}
}

// WithRetryConfig retries register accesses that fail with a retryable
// transport error. The transport is wrapped in a TransportWithRetry, or the
// existing wrapper is reconfigured.
func WithRetryConfig(config *RetryConfig) Option {
	return func(d *Device) error {
		if config == nil {
			config = DefaultRetryConfig()
		}
		if err := config.Validate(); err != nil {
			return err
		}
		if tr, ok := d.transport.(*TransportWithRetry); ok {
			tr.SetRetryConfig(config)
			return nil
		}
		d.transport = NewTransportWithRetry(d.transport, config)
		return nil
	}
}
