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


package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/ZaparooProject/go-mfrc522/transport/i2c"
	"github.com/ZaparooProject/go-mfrc522/transport/spi"
	"github.com/ZaparooProject/go-mfrc522/transport/uart"
)

// Discovery handles reader discovery and transport creation
type Discovery struct {
	config *Config
	output *Output
}

// NewDiscovery creates a new discovery handler
func NewDiscovery(config *Config, output *Output) *Discovery {
	return &Discovery{config: config, output: output}
}

// Readers returns the reader named on the command line, or every detected
// reader when none was named
func (d *Discovery) Readers(ctx context.Context) ([]detection.DeviceInfo, error) {
	if d.config.DevicePath != "" {
		return []detection.DeviceInfo{{
			Transport:  transportForPath(d.config.DevicePath),
			Path:       d.config.DevicePath,
			Name:       "user supplied",
			Confidence: detection.High,
		}}, nil
	}

	d.output.Verbose("Discovering readers...")
	opts := detection.DefaultOptions()
	opts.Mode = d.config.DetectMode
	opts.Timeout = d.config.DetectTimeout

	ctx, cancel := context.WithTimeout(ctx, d.config.DetectTimeout)
	defer cancel()

	readers, err := detection.DetectAllContext(ctx, &opts)
	if err != nil {
		return nil, fmt.Errorf("reader discovery failed: %w", err)
	}
	d.output.Verbose("Found %d reader(s)", len(readers))
	return readers, nil
}

// transportForPath guesses the bus from a device path
func transportForPath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, "i2c"):
		return string(mfrc522.TransportI2C)
	case strings.Contains(lower, "spi"):
		return string(mfrc522.TransportSPI)
	default:
		return string(mfrc522.TransportUART)
	}
}

// CreateTransport creates the appropriate transport for a device
func (d *Discovery) CreateTransport(reader detection.DeviceInfo) (mfrc522.Transport, error) {
	switch reader.Transport {
	case string(mfrc522.TransportUART):
		transport, err := uart.New(reader.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport: %w", err)
		}
		return transport, nil
	case string(mfrc522.TransportI2C):
		bus, addr, err := i2c.ParsePath(reader.Path)
		if err != nil {
			return nil, err
		}
		transport, err := i2c.New(bus, i2c.WithAddress(addr))
		if err != nil {
			return nil, fmt.Errorf("failed to create I2C transport: %w", err)
		}
		return transport, nil
	case string(mfrc522.TransportSPI):
		transport, err := spi.New(reader.Path, spi.WithSpeed(d.config.SPISpeed))
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", reader.Transport)
	}
}

// HandleDiscoveryError explains an empty detection result
func (d *Discovery) HandleDiscoveryError(err error) {
	if errors.Is(err, detection.ErrNoDevicesFound) {
		d.output.Error("no MFRC522 found; pass -device to test a specific bus")
		return
	}
	d.output.Error("%v", err)
}
