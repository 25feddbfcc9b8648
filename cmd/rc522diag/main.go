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
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	// Import detection packages to register detectors
	_ "github.com/ZaparooProject/go-mfrc522/detection/i2c"
	_ "github.com/ZaparooProject/go-mfrc522/detection/spi"
	_ "github.com/ZaparooProject/go-mfrc522/detection/uart"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Config holds application configuration
type Config struct {
	DevicePath    string
	ResetPin      string
	DetectMode    detection.Mode
	DetectTimeout time.Duration
	ScanTimeout   time.Duration
	SPISpeed      physic.Frequency
	Attempts      int
	Verbose       bool
}

func main() {
	if run() != 0 {
		os.Exit(1)
	}
}

func parseFlags() (*Config, error) {
	cfg := &Config{}
	var full bool
	var speedHz int64

	flag.StringVar(&cfg.DevicePath, "device", "", "Device path; empty runs detection")
	flag.StringVar(&cfg.ResetPin, "reset-pin", "", "GPIO name of the RST line (e.g. GPIO25)")
	flag.DurationVar(&cfg.DetectTimeout, "detect-timeout", 5*time.Second, "Reader detection timeout")
	flag.DurationVar(&cfg.ScanTimeout, "scan-timeout", 10*time.Second, "How long to wait for a card")
	flag.IntVar(&cfg.Attempts, "attempts", 3, "Version register read attempts")
	flag.Int64Var(&speedHz, "spi-speed", 4_000_000, "SPI clock in Hz")
	flag.BoolVar(&full, "full", false, "Probe non-default addresses and on-board UARTs")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose output")
	flag.Parse()

	cfg.SPISpeed = physic.Frequency(speedHz) * physic.Hertz
	cfg.DetectMode = detection.Safe
	if full {
		cfg.DetectMode = detection.Full
	}
	if cfg.Attempts < 1 {
		return nil, fmt.Errorf("attempts must be at least 1, got %d", cfg.Attempts)
	}
	return cfg, nil
}

func run() int {
	output := NewOutput(os.Stdout, false)

	cfg, err := parseFlags()
	if err != nil {
		output.Error("%v", err)
		return 1
	}
	output = NewOutput(os.Stdout, cfg.Verbose)
	mfrc522.SetDebugEnabled(cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := host.Init(); err != nil {
		output.Error("failed to initialize periph host: %v", err)
		return 1
	}

	var deviceOpts []mfrc522.Option
	if cfg.ResetPin != "" {
		pin := gpioreg.ByName(cfg.ResetPin)
		if pin == nil {
			output.Error("unknown GPIO %q", cfg.ResetPin)
			return 1
		}
		deviceOpts = append(deviceOpts, mfrc522.WithResetPin(pin))
	}

	discovery := NewDiscovery(cfg, output)
	readers, err := discovery.Readers(ctx)
	if err != nil {
		discovery.HandleDiscoveryError(err)
		return 1
	}

	diagnostics := NewDiagnostics(cfg)
	failed := false
	for _, reader := range readers {
		output.ReaderHeader(reader)
		if !diagnoseReader(ctx, discovery, diagnostics, output, reader, deviceOpts) {
			failed = true
		}
	}

	if failed {
		return 1
	}
	output.Info("all checks passed")
	return 0
}

func diagnoseReader(
	ctx context.Context,
	discovery *Discovery,
	diagnostics *Diagnostics,
	output *Output,
	reader detection.DeviceInfo,
	deviceOpts []mfrc522.Option,
) bool {
	transport, err := discovery.CreateTransport(reader)
	if err != nil {
		output.Error("%v", err)
		return false
	}

	device, err := mfrc522.New(transport, deviceOpts...)
	if err != nil {
		_ = transport.Close()
		output.Error("%v", err)
		return false
	}
	defer func() { _ = device.Close() }()

	checks := diagnostics.Run(ctx, device)
	for _, c := range checks {
		output.Check(c)
	}
	return Passed(checks)
}
