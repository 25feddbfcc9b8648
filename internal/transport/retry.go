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


// Package transport provides helpers shared by the bus transports
package transport

import (
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
)

// RetryOperation is one attempt of a bus exchange.
// It returns the result, whether the attempt should be repeated, and an
// error that ends the retry loop at once.
type RetryOperation[T any] func() (T, bool, error)

// RetryConfig configures WithRetry
type RetryConfig struct {
	// OnRetry runs before every repeated attempt, e.g. to drain the line
	OnRetry func() error
	// Port names the bus in the exhaustion error
	Port        string
	Description string
	MaxRetries  int
	RetryDelay  time.Duration
}

// WithRetry runs operation until it stops asking for a retry or MaxRetries
// repeats have been made
func WithRetry[T any](config RetryConfig, operation RetryOperation[T]) (T, error) {
	var zero T

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result, shouldRetry, err := operation()
		if err != nil {
			return zero, err
		}
		if !shouldRetry {
			return result, nil
		}
		if attempt >= config.MaxRetries {
			break
		}

		if config.OnRetry != nil {
			if err := config.OnRetry(); err != nil {
				return zero, err
			}
		}
		if config.RetryDelay > 0 {
			time.Sleep(config.RetryDelay)
		}
	}

	return zero, mfrc522.NewTransportError(description(config.Description), config.Port,
		mfrc522.ErrCommunicationFailed, mfrc522.ErrorTypeTransient)
}

// TimeoutRetry repeats operation until it succeeds or timeout elapses
func TimeoutRetry[T any](timeout time.Duration, port string, operation RetryOperation[T]) (T, error) {
	var zero T
	deadline := time.Now().Add(timeout)

	for {
		result, shouldRetry, err := operation()
		if err != nil {
			return zero, err
		}
		if !shouldRetry {
			return result, nil
		}
		if !time.Now().Before(deadline) {
			return zero, mfrc522.NewTimeoutError("timeoutRetry", port)
		}
		time.Sleep(time.Millisecond)
	}
}

func description(d string) string {
	if d == "" {
		return "retry"
	}
	return d
}
