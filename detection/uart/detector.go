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


// Package uart detects MFRC522 readers behind serial ports. Importing it
// registers the detector.
package uart

import (
	"context"
	"fmt"
	"sort"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	uarttransport "github.com/ZaparooProject/go-mfrc522/transport/uart"
	"go.bug.st/serial/enumerator"
)

// probeTimeout bounds each byte read while probing a port
const probeTimeout = 50 * time.Millisecond

// detector implements the Detector interface for serial ports
type detector struct {
	list  func() ([]*enumerator.PortDetails, error)
	probe func(path string) (byte, error)
}

// New creates a new UART detector
func New() detection.Detector {
	return &detector{list: enumerator.GetDetailedPortsList, probe: readVersion}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return string(mfrc522.TransportUART)
}

// Detect lists serial ports. Safe mode probes USB adapters only; Full mode
// also probes on-board UARTs.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := d.list()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })

	var devices []detection.DeviceInfo
	for _, port := range ports {
		if err := ctx.Err(); err != nil {
			return devices, fmt.Errorf("%w: %w", detection.ErrDetectionTimeout, err)
		}
		if dev, ok := d.detectPort(port, opts); ok {
			devices = append(devices, dev)
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func (d *detector) detectPort(port *enumerator.PortDetails, opts *detection.Options) (detection.DeviceInfo, bool) {
	if detection.IsPathIgnored(port.Name, opts.IgnorePaths) {
		return detection.DeviceInfo{}, false
	}

	vidpid := detection.VIDPID(port.VID, port.PID)
	if detection.IsBlocked(vidpid, opts.Blocklist) {
		mfrc522.Debugf("uart: skipping blocklisted %s (%s)", port.Name, vidpid)
		return detection.DeviceInfo{}, false
	}

	dev := detection.DeviceInfo{
		Transport:  d.Transport(),
		Path:       port.Name,
		Name:       "serial port " + port.Name,
		Confidence: detection.Low,
		Metadata:   map[string]string{},
	}
	if port.IsUSB {
		dev.Metadata["vidpid"] = vidpid
		if port.SerialNumber != "" {
			dev.Metadata["serial"] = port.SerialNumber
		}
		if port.Product != "" {
			dev.Metadata["product"] = port.Product
			dev.Name = port.Product + " on " + port.Name
		}
	}

	switch {
	case opts.Mode == detection.Passive:
		return dev, port.IsUSB
	case opts.Mode == detection.Safe && !port.IsUSB:
		return detection.DeviceInfo{}, false
	}

	version, err := d.probe(port.Name)
	if err != nil {
		mfrc522.Debugf("uart probe %s: %v", port.Name, err)
		return detection.DeviceInfo{}, false
	}
	if !detection.ApplyVersion(&dev, version) {
		return detection.DeviceInfo{}, false
	}
	return dev, true
}

func readVersion(path string) (byte, error) {
	t, err := uarttransport.New(path, uarttransport.WithTimeout(probeTimeout))
	if err != nil {
		return 0, err
	}
	defer func() { _ = t.Close() }()
	return t.ReadRegister(mfrc522.VersionReg)
}
