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


package polling

import (
	"errors"
	"fmt"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
)

// ErrInvalidConfig is returned by Config.Validate
var ErrInvalidConfig = errors.New("invalid polling configuration")

// Config controls the scan loop of a Monitor
type Config struct {
	// PollInterval is the pause between two scan cycles
	PollInterval time.Duration
	// CardRemovalTimeout is how long a card may go unseen before it is
	// reported as removed
	CardRemovalTimeout time.Duration
	// RequestMode is REQA or WUPA. WUPA also wakes halted cards, which
	// HaltAfterRead relies on to keep seeing a card that stays in the field.
	RequestMode mfrc522.RequestMode
	// HaltAfterRead sends HLTA after every successful scan
	HaltAfterRead bool
}

// DefaultConfig polls every 100 ms and reports removal after 300 ms
func DefaultConfig() *Config {
	return &Config{
		PollInterval:       100 * time.Millisecond,
		CardRemovalTimeout: 300 * time.Millisecond,
		RequestMode:        mfrc522.RequestAll,
		HaltAfterRead:      true,
	}
}

// Validate checks the configuration for values the loop cannot run with
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	}
	if c.CardRemovalTimeout < c.PollInterval {
		return fmt.Errorf("%w: removal timeout %s is shorter than poll interval %s",
			ErrInvalidConfig, c.CardRemovalTimeout, c.PollInterval)
	}
	if c.RequestMode != mfrc522.RequestIdle && c.RequestMode != mfrc522.RequestAll {
		return fmt.Errorf("%w: request mode %s", ErrInvalidConfig, c.RequestMode)
	}
	if c.HaltAfterRead && c.RequestMode == mfrc522.RequestIdle {
		return fmt.Errorf("%w: halted cards do not answer REQA", ErrInvalidConfig)
	}
	return nil
}
