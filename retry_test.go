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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyTransport fails the first failures accesses with err
type flakyTransport struct {
	*MockTransport
	err      error
	failures int
	calls    int
}

func (f *flakyTransport) fail() error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyTransport) ReadRegister(reg Register) (byte, error) {
	if err := f.fail(); err != nil {
		return 0, err
	}
	return f.MockTransport.ReadRegister(reg)
}

func (f *flakyTransport) WriteRegister(reg Register, value byte) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.MockTransport.WriteRegister(reg, value)
}

func fastRetryConfig(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Microsecond,
		MaxBackoff:        10 * time.Microsecond,
		BackoffMultiplier: 2.0,
	}
}

func TestTransportWithRetry_NewTransportWithRetry(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	wrapper := NewTransportWithRetry(mock, nil)
	assert.Equal(t, DefaultRetryConfig(), wrapper.config)
	assert.Same(t, mock, wrapper.Unwrap())
	assert.Equal(t, TransportMock, wrapper.Type())
	assert.True(t, wrapper.IsConnected())

	custom := fastRetryConfig(5)
	wrapper.SetRetryConfig(custom)
	assert.Same(t, custom, wrapper.config)
}

func TestTransportWithRetry_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err       error
		name      string
		failures  int
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{name: "First_Try", failures: 0, attempts: 3, wantCalls: 1},
		{name: "Recovers", err: ErrTransportRead, failures: 2, attempts: 3, wantCalls: 3},
		{name: "Exhausted", err: ErrTransportRead, failures: 5, attempts: 3, wantCalls: 3, wantErr: true},
		{name: "Permanent", err: ErrTransportClosed, failures: 5, attempts: 3, wantCalls: 1, wantErr: true},
		{
			name:      "Timeout_Error",
			err:       NewTimeoutError("ReadRegister", "test"),
			failures:  1,
			attempts:  2,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flaky := &flakyTransport{MockTransport: NewMockTransport(), err: tt.err, failures: tt.failures}
			wrapper := NewTransportWithRetry(flaky, fastRetryConfig(tt.attempts))

			version, err := wrapper.ReadRegister(VersionReg)
			assert.Equal(t, tt.wantCalls, flaky.calls)
			if tt.wantErr {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, byte(VersionMFRC522V2), version)
		})
	}
}

func TestTransportWithRetry_WriteRetried(t *testing.T) {
	t.Parallel()

	flaky := &flakyTransport{MockTransport: NewMockTransport(), err: ErrTransportWrite, failures: 1}
	wrapper := NewTransportWithRetry(flaky, fastRetryConfig(2))

	require.NoError(t, wrapper.WriteRegister(TModeReg, 0x80))
	assert.Equal(t, []RegisterWrite{{Reg: TModeReg, Value: 0x80}}, flaky.Writes())
}

func TestTransportWithRetry_FIFONotRetried(t *testing.T) {
	t.Parallel()

	t.Run("Read", func(t *testing.T) {
		t.Parallel()

		flaky := &flakyTransport{MockTransport: NewMockTransport(), err: ErrTransportRead, failures: 1}
		wrapper := NewTransportWithRetry(flaky, fastRetryConfig(3))

		_, err := wrapper.ReadRegister(FIFODataReg)
		require.ErrorIs(t, err, ErrTransportRead)
		assert.Equal(t, 1, flaky.calls)
	})

	t.Run("Write", func(t *testing.T) {
		t.Parallel()

		flaky := &flakyTransport{MockTransport: NewMockTransport(), err: ErrTransportWrite, failures: 1}
		wrapper := NewTransportWithRetry(flaky, fastRetryConfig(3))

		err := wrapper.WriteRegister(FIFODataReg, 0x26)
		require.ErrorIs(t, err, ErrTransportWrite)
		assert.Equal(t, 1, flaky.calls)
		assert.Empty(t, flaky.Writes())
	})
}

// lateErrorTransport applies the first FIFODataReg write and then reports a
// transient error for it, like a chip-select release failing after the frame
// was clocked out
type lateErrorTransport struct {
	*MockTransport
	failed bool
}

func (l *lateErrorTransport) WriteRegister(reg Register, value byte) error {
	if err := l.MockTransport.WriteRegister(reg, value); err != nil {
		return err
	}
	if reg == FIFODataReg && !l.failed {
		l.failed = true
		return NewTransportError("WriteRegister", "test", ErrTransportWrite, ErrorTypeTransient)
	}
	return nil
}

func TestWithRetryConfig_FIFOWriteNotDuplicated(t *testing.T) {
	t.Parallel()

	late := &lateErrorTransport{MockTransport: NewMockTransport()}
	late.QueueResponse([]byte{0x04, 0x00})
	device := newTestDevice(t, late, WithRetryConfig(fastRetryConfig(3)))

	_, ok, err := device.RequestCard(RequestIdle)
	require.ErrorIs(t, err, ErrTransportWrite)
	assert.False(t, ok)

	var fifoWrites int
	for _, w := range late.Writes() {
		if w.Reg == FIFODataReg {
			fifoWrites++
		}
	}
	assert.Equal(t, 1, fifoWrites, "the request byte must reach the FIFO once")
	assert.Empty(t, late.Frames(), "no frame is sent after a failed FIFO load")

	// the next exchange flushes the stale byte before loading the FIFO
	atqa, ok, err := device.RequestCard(RequestIdle)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ATQA{0x04, 0x00}, atqa)
	assert.Equal(t, [][]byte{{0x26}}, late.Frames())
}

func TestTransportWithRetry_Close(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	wrapper := NewTransportWithRetry(mock, nil)
	require.NoError(t, wrapper.Close())
	assert.False(t, wrapper.IsConnected())
}

func TestRetryWithConfig_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastRetryConfig(5)
	cfg.InitialBackoff = time.Second
	cfg.MaxBackoff = time.Second

	calls := 0
	err := RetryWithConfig(ctx, cfg, func() error {
		calls++
		return ErrTransportTimeout
	})
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, ErrTransportTimeout)
	assert.Equal(t, 1, calls)
}

func TestRetryWithConfig_NonRetryableReturnedAsIs(t *testing.T) {
	t.Parallel()

	want := errors.New("wiring fault")
	err := RetryWithConfig(context.Background(), fastRetryConfig(3), func() error { return want })
	assert.Equal(t, want, err)
}

func TestRetryConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		modify  func(*RetryConfig)
		name    string
		wantErr bool
	}{
		{name: "Default", modify: func(*RetryConfig) {}},
		{name: "Zero_Attempts", modify: func(c *RetryConfig) { c.MaxAttempts = 0 }, wantErr: true},
		{name: "Inverted_Backoff", modify: func(c *RetryConfig) { c.MaxBackoff = 0 }, wantErr: true},
		{name: "Shrinking_Multiplier", modify: func(c *RetryConfig) { c.BackoffMultiplier = 0.5 }, wantErr: true},
		{name: "Jitter_Too_Large", modify: func(c *RetryConfig) { c.Jitter = 1.5 }, wantErr: true},
	}

	for _, tt := range tests {
		cfg := DefaultRetryConfig()
		tt.modify(cfg)
		err := cfg.Validate()
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidParameter, tt.name)
		} else {
			require.NoError(t, err, tt.name)
		}
	}
}

func TestRetryConfig_Backoff(t *testing.T) {
	t.Parallel()

	cfg := &RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
	assert.Equal(t, time.Millisecond, cfg.backoff(1))
	assert.Equal(t, 2*time.Millisecond, cfg.backoff(2))
	assert.Equal(t, 4*time.Millisecond, cfg.backoff(3))
	assert.Equal(t, 5*time.Millisecond, cfg.backoff(4), "capped at MaxBackoff")

	cfg.Jitter = 0.5
	for i := 0; i < 50; i++ {
		d := cfg.backoff(2)
		assert.GreaterOrEqual(t, d, time.Millisecond)
		assert.LessOrEqual(t, d, 3*time.Millisecond)
	}
}

func TestWithRetryConfig(t *testing.T) {
	t.Parallel()

	flaky := &flakyTransport{MockTransport: NewMockTransport(), err: ErrTransportRead, failures: 1}
	device := newTestDevice(t, flaky, WithRetryConfig(fastRetryConfig(2)))

	_, ok := device.Transport().(*TransportWithRetry)
	require.True(t, ok)

	require.NoError(t, device.Init())
	assert.Equal(t, StateAntennaOn, device.State())

	_, err := New(NewMockTransport(), WithRetryConfig(&RetryConfig{}))
	require.ErrorIs(t, err, ErrInvalidParameter)
}
