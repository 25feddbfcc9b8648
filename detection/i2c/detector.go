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


// Package i2c detects MFRC522 readers on Linux I2C buses. Importing it
// registers the detector.
package i2c

import (
	"context"
	"fmt"
	"sort"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
)

const (
	// DefaultAddress is the chip address with all address pins low
	DefaultAddress = 0x28
	// lastAddress is the highest address selectable through the ADR pins
	lastAddress = 0x2F
)

// detector implements the Detector interface for I2C devices
type detector struct {
	buses func() ([]string, error)
	probe func(ctx context.Context, bus string, addr uint16) (byte, error)
}

// New creates a new I2C detector
func New() detection.Detector {
	return &detector{buses: listBuses, probe: probeVersion}
}

// init registers the detector on package import
func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return string(mfrc522.TransportI2C)
}

// addresses returns the chip addresses worth trying in mode
func addresses(mode detection.Mode) []uint16 {
	if mode != detection.Full {
		return []uint16{DefaultAddress}
	}
	out := make([]uint16, 0, lastAddress-DefaultAddress+1)
	for a := uint16(DefaultAddress); a <= lastAddress; a++ {
		out = append(out, a)
	}
	return out
}

// Detect searches for MFRC522 devices on I2C buses
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	buses, err := d.buses()
	if err != nil {
		return nil, err
	}
	sort.Strings(buses)

	var devices []detection.DeviceInfo
	for _, bus := range buses {
		if detection.IsPathIgnored(bus, opts.IgnorePaths) {
			continue
		}
		for _, addr := range addresses(opts.Mode) {
			if err := ctx.Err(); err != nil {
				return devices, fmt.Errorf("%w: %w", detection.ErrDetectionTimeout, err)
			}
			if dev, ok := d.detectAddress(ctx, bus, addr, opts); ok {
				devices = append(devices, dev)
			}
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// detectAddress builds the DeviceInfo for one bus address
func (d *detector) detectAddress(
	ctx context.Context, bus string, addr uint16, opts *detection.Options,
) (detection.DeviceInfo, bool) {
	path := fmt.Sprintf("%s:0x%02X", bus, addr)
	if detection.IsPathIgnored(path, opts.IgnorePaths) {
		return detection.DeviceInfo{}, false
	}

	dev := detection.DeviceInfo{
		Transport:  d.Transport(),
		Path:       path,
		Name:       fmt.Sprintf("I2C device at %s address 0x%02X", bus, addr),
		Confidence: detection.Low,
		Metadata: map[string]string{
			"bus":     bus,
			"address": fmt.Sprintf("0x%02X", addr),
		},
	}

	if opts.Mode == detection.Passive {
		return dev, true
	}

	version, err := d.probe(ctx, bus, addr)
	if err != nil {
		mfrc522.Debugf("i2c probe %s: %v", path, err)
		return detection.DeviceInfo{}, false
	}
	if !detection.ApplyVersion(&dev, version) {
		return detection.DeviceInfo{}, false
	}
	return dev, true
}
