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


// Package spi detects MFRC522 readers on Linux spidev buses. Importing it
// registers the detector.
package spi

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	spitransport "github.com/ZaparooProject/go-mfrc522/transport/spi"
)

// DefaultDevice is the spidev node most boards wire the reader to
const DefaultDevice = "/dev/spidev0.0"

const devicePattern = "/dev/spidev*"

// detector implements the Detector interface for SPI devices
type detector struct {
	glob  func(pattern string) ([]string, error)
	probe func(path string) (byte, error)
}

// New creates a new SPI detector
func New() detection.Detector {
	return &detector{glob: filepath.Glob, probe: readVersion}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return string(mfrc522.TransportSPI)
}

// Detect lists spidev nodes and, unless passive, reads VersionReg through
// each of them
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	paths, err := d.glob(devicePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for SPI devices: %w", err)
	}
	sort.Strings(paths)

	var devices []detection.DeviceInfo
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return devices, fmt.Errorf("%w: %w", detection.ErrDetectionTimeout, err)
		}
		if detection.IsPathIgnored(path, opts.IgnorePaths) {
			continue
		}

		dev := detection.DeviceInfo{
			Transport:  d.Transport(),
			Path:       path,
			Name:       "SPI device " + filepath.Base(path),
			Confidence: detection.Low,
			Metadata:   map[string]string{"bus": filepath.Base(path)},
		}
		if path == DefaultDevice {
			dev.Confidence = detection.Medium
		}

		if opts.Mode == detection.Passive {
			devices = append(devices, dev)
			continue
		}

		version, err := d.probe(path)
		if err != nil {
			mfrc522.Debugf("spi probe %s: %v", path, err)
			continue
		}
		if detection.ApplyVersion(&dev, version) {
			devices = append(devices, dev)
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func readVersion(path string) (byte, error) {
	t, err := spitransport.New(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = t.Close() }()
	return t.ReadRegister(mfrc522.VersionReg)
}
