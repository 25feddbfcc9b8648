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
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior for register operations
type RetryConfig struct {
	// MaxAttempts includes the first try
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	// Jitter is the fraction of each backoff randomised, 0 to 1
	Jitter float64
	// RetryTimeout bounds all attempts together; zero means no bound
	RetryTimeout time.Duration
}

// DefaultRetryConfig retries three times with a short backoff, enough to
// ride out a glitch on a long I2C or UART cable
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        20 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryTimeout:      100 * time.Millisecond,
	}
}

// Validate checks the configuration
func (c *RetryConfig) Validate() error {
	switch {
	case c.MaxAttempts < 1:
		return fmt.Errorf("%w: max attempts must be at least 1", ErrInvalidParameter)
	case c.InitialBackoff < 0 || c.MaxBackoff < c.InitialBackoff:
		return fmt.Errorf("%w: backoff range %s..%s", ErrInvalidParameter, c.InitialBackoff, c.MaxBackoff)
	case c.BackoffMultiplier < 1:
		return fmt.Errorf("%w: backoff multiplier below 1", ErrInvalidParameter)
	case c.Jitter < 0 || c.Jitter > 1:
		return fmt.Errorf("%w: jitter must be between 0 and 1", ErrInvalidParameter)
	}
	return nil
}

// backoff returns the wait before retry number attempt (1-based)
func (c *RetryConfig) backoff(attempt int) time.Duration {
	d := float64(c.InitialBackoff)
	for i := 1; i < attempt; i++ {
		d *= c.BackoffMultiplier
	}
	if d > float64(c.MaxBackoff) {
		d = float64(c.MaxBackoff)
	}
	if c.Jitter > 0 {
		d += d * c.Jitter * (rand.Float64()*2 - 1) //nolint:gosec // timing jitter only
	}
	return time.Duration(d)
}

// RetryWithConfig runs fn until it succeeds, returns an error that is not
// retryable, or the attempts or timeout run out
func RetryWithConfig(ctx context.Context, config *RetryConfig, fn func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if config.RetryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.RetryTimeout)
		defer cancel()
	}

	var err error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == config.MaxAttempts {
			break
		}

		debugf("attempt %d/%d failed: %v", attempt, config.MaxAttempts, err)
		timer := time.NewTimer(config.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
	return fmt.Errorf("after %d attempts: %w", config.MaxAttempts, err)
}

// TransportWithRetry wraps a Transport with retry capabilities. Register
// accesses have no side effects beyond the write itself, so a failed frame
// is simply sent again. FIFODataReg is never retried: each read pops a byte
// and each write pushes one, and a frame that reached the chip before the
// bus reported an error would be repeated.
type TransportWithRetry struct {
	transport Transport
	config    *RetryConfig
}

// NewTransportWithRetry creates a new transport wrapper with retry logic
func NewTransportWithRetry(transport Transport, config *RetryConfig) *TransportWithRetry {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &TransportWithRetry{
		transport: transport,
		config:    config,
	}
}

// WriteRegister writes with retry logic
func (t *TransportWithRetry) WriteRegister(reg Register, value byte) error {
	if reg == FIFODataReg {
		return t.transport.WriteRegister(reg, value)
	}
	return RetryWithConfig(context.Background(), t.config, func() error {
		return t.transport.WriteRegister(reg, value)
	})
}

// ReadRegister reads with retry logic
func (t *TransportWithRetry) ReadRegister(reg Register) (byte, error) {
	if reg == FIFODataReg {
		return t.transport.ReadRegister(reg)
	}
	var value byte
	err := RetryWithConfig(context.Background(), t.config, func() error {
		var err error
		value, err = t.transport.ReadRegister(reg)
		return err
	})
	return value, err
}

// Close closes the transport connection
func (t *TransportWithRetry) Close() error {
	if err := t.transport.Close(); err != nil {
		return fmt.Errorf("failed to close underlying transport: %w", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *TransportWithRetry) IsConnected() bool {
	return t.transport.IsConnected()
}

// Type returns the transport type
func (t *TransportWithRetry) Type() TransportType {
	return t.transport.Type()
}

// Unwrap returns the wrapped transport
func (t *TransportWithRetry) Unwrap() Transport {
	return t.transport
}

// SetRetryConfig updates the retry configuration
func (t *TransportWithRetry) SetRetryConfig(config *RetryConfig) {
	t.config = config
}
