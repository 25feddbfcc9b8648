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


package detection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetector struct {
	err       error
	transport string
	devices   []DeviceInfo
	calls     int
}

func (f *fakeDetector) Transport() string { return f.transport }

func (f *fakeDetector) Detect(context.Context, *Options) ([]DeviceInfo, error) {
	f.calls++
	return f.devices, f.err
}

// The registry is global, so every test registers detectors under its own
// transport names and filters on them.

func TestDetectAll_OrdersByConfidence(t *testing.T) {
	t.Parallel()

	RegisterDetector(&fakeDetector{transport: "test-order-a", devices: []DeviceInfo{
		{Transport: "test-order-a", Path: "/dev/a0", Confidence: Low},
	}})
	RegisterDetector(&fakeDetector{transport: "test-order-b", devices: []DeviceInfo{
		{Transport: "test-order-b", Path: "/dev/b0", Confidence: High},
		{Transport: "test-order-b", Path: "/dev/b1", Confidence: Medium},
	}})

	opts := DefaultOptions()
	opts.Transports = []string{"test-order-a", "test-order-b"}
	devices, err := DetectAll(&opts)
	require.NoError(t, err)

	paths := make([]string, 0, len(devices))
	for _, d := range devices {
		paths = append(paths, d.Path)
	}
	assert.Equal(t, []string{"/dev/b0", "/dev/b1", "/dev/a0"}, paths)
}

func TestDetectAll_TransportFilterAndIgnore(t *testing.T) {
	t.Parallel()

	skipped := &fakeDetector{transport: "test-filter-skipped"}
	RegisterDetector(skipped)
	RegisterDetector(&fakeDetector{transport: "test-filter-used", devices: []DeviceInfo{
		{Transport: "test-filter-used", Path: "/dev/i2c-1:0x28"},
		{Transport: "test-filter-used", Path: "/dev/i2c-2:0x28"},
	}})

	opts := DefaultOptions()
	opts.Transports = []string{"test-filter-used"}
	opts.IgnorePaths = []string{"/dev/i2c-1"}
	devices, err := DetectAll(&opts)
	require.NoError(t, err)

	require.Len(t, devices, 1)
	assert.Equal(t, "/dev/i2c-2:0x28", devices[0].Path)
	assert.Zero(t, skipped.calls)
}

func TestDetectAll_NothingFound(t *testing.T) {
	t.Parallel()

	busErr := errors.New("permission denied")
	RegisterDetector(&fakeDetector{transport: "test-empty-none", err: ErrNoDevicesFound})
	RegisterDetector(&fakeDetector{transport: "test-empty-err", err: busErr})

	opts := DefaultOptions()
	opts.Transports = []string{"test-empty-none"}
	_, err := DetectAll(&opts)
	require.ErrorIs(t, err, ErrNoDevicesFound)

	opts.Transports = []string{"test-empty-none", "test-empty-err"}
	_, err = DetectAll(&opts)
	require.ErrorIs(t, err, ErrNoDevicesFound)
	require.ErrorIs(t, err, busErr)

	opts.Transports = []string{"none"}
	_, err = DetectAll(&opts)
	require.ErrorIs(t, err, ErrNoDevicesFound)
}

func TestDetectAllContext_Cancelled(t *testing.T) {
	t.Parallel()

	RegisterDetector(&fakeDetector{transport: "test-cancel", devices: []DeviceInfo{{Path: "/dev/x"}}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultOptions()
	opts.Transports = []string{"test-cancel"}
	_, err := DetectAllContext(ctx, &opts)
	require.ErrorIs(t, err, ErrDetectionTimeout)
}

func TestDeviceInfo_String(t *testing.T) {
	t.Parallel()

	d := DeviceInfo{Transport: "spi", Path: "/dev/spidev0.0", Name: "MFRC522 v2.0", Confidence: High}
	assert.Equal(t, "spi:/dev/spidev0.0 (MFRC522 v2.0, high confidence)", d.String())
	assert.Equal(t, "safe", Safe.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.Equal(t, Safe, opts.Mode)
	assert.Positive(t, opts.Timeout)
	assert.Empty(t, opts.Transports)
}
