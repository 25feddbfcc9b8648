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
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	// Import all detectors to register them
	_ "github.com/ZaparooProject/go-mfrc522/detection/i2c"
	_ "github.com/ZaparooProject/go-mfrc522/detection/spi"
	_ "github.com/ZaparooProject/go-mfrc522/detection/uart"
	"github.com/ZaparooProject/go-mfrc522/polling"
	"github.com/ZaparooProject/go-mfrc522/transport/i2c"
	"github.com/ZaparooProject/go-mfrc522/transport/spi"
	"github.com/ZaparooProject/go-mfrc522/transport/uart"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

type config struct {
	devicePath   *string
	resetPin     *string
	timeout      *time.Duration
	pollInterval *time.Duration
	retries      *int
	debug        *bool
	once         *bool
}

func parseFlags() *config {
	cfg := &config{
		devicePath: flag.String("device", "",
			"Device path (e.g. /dev/spidev0.0, /dev/i2c-1:0x28 or /dev/ttyUSB0). Leave empty for auto-detection."),
		resetPin:     flag.String("reset-pin", "", "GPIO name of the RST line (e.g. GPIO25)"),
		timeout:      flag.Duration("timeout", 0, "Stop after this long (0 runs until interrupted)"),
		pollInterval: flag.Duration("poll-interval", 100*time.Millisecond, "Polling interval for card detection"),
		retries:      flag.Int("retries", 0, "Retry failed register accesses this many times (0 disables)"),
		debug:        flag.Bool("debug", false, "Enable debug output"),
		once:         flag.Bool("once", false, "Exit after the first card"),
	}
	flag.Parse()

	if *cfg.debug {
		mfrc522.SetDebugEnabled(true)
	}
	return cfg
}

// newTransport creates a new transport from a device path.
func newTransport(path string) (mfrc522.Transport, error) {
	pathLower := strings.ToLower(path)

	switch {
	case path == "":
		return nil, errors.New("empty device path")
	case strings.Contains(pathLower, "i2c"):
		bus, addr, err := i2c.ParsePath(path)
		if err != nil {
			return nil, err
		}
		transport, err := i2c.New(bus, i2c.WithAddress(addr))
		if err != nil {
			return nil, fmt.Errorf("failed to create I2C transport: %w", err)
		}
		return transport, nil
	case strings.Contains(pathLower, "spi"):
		transport, err := spi.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return transport, nil
	default:
		transport, err := uart.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport: %w", err)
		}
		return transport, nil
	}
}

// newTransportFromDevice creates a new transport from a detected device.
func newTransportFromDevice(device detection.DeviceInfo) (mfrc522.Transport, error) {
	switch device.Transport {
	case string(mfrc522.TransportSPI), string(mfrc522.TransportI2C), string(mfrc522.TransportUART):
		_, _ = fmt.Printf("Using %s\n", device)
		return newTransport(device.Path)
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", device.Transport)
	}
}

func buildConnectOptions(cfg *config) ([]mfrc522.ConnectOption, error) {
	var connectOpts []mfrc522.ConnectOption

	if *cfg.devicePath == "" {
		connectOpts = append(connectOpts,
			mfrc522.WithAutoDetection(),
			mfrc522.WithTransportFromDeviceFactory(newTransportFromDevice))
		_, _ = fmt.Println("Auto-detecting MFRC522 devices...")
	} else {
		connectOpts = append(connectOpts, mfrc522.WithTransportFactory(newTransport))
		_, _ = fmt.Printf("Opening device: %s\n", *cfg.devicePath)
	}

	if *cfg.resetPin != "" {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize periph host: %w", err)
		}
		pin := gpioreg.ByName(*cfg.resetPin)
		if pin == nil {
			return nil, fmt.Errorf("unknown GPIO %q", *cfg.resetPin)
		}
		connectOpts = append(connectOpts, mfrc522.WithDeviceOptions(mfrc522.WithResetPin(pin)))
	}

	if *cfg.retries > 0 {
		retry := mfrc522.DefaultRetryConfig()
		retry.MaxAttempts = *cfg.retries + 1
		connectOpts = append(connectOpts, mfrc522.WithDeviceOptions(mfrc522.WithRetryConfig(retry)))
	}
	return connectOpts, nil
}

func run(ctx context.Context, cfg *config) error {
	connectOpts, err := buildConnectOptions(cfg)
	if err != nil {
		return err
	}

	device, err := mfrc522.ConnectDevice(*cfg.devicePath, connectOpts...)
	if err != nil {
		return fmt.Errorf("failed to connect to MFRC522 device: %w", err)
	}

	if version, err := device.Version(); err == nil {
		name, _ := detection.ChipName(version)
		_, _ = fmt.Printf("Chip: %s\n", name)
	}

	monitorConfig := polling.DefaultConfig()
	monitorConfig.PollInterval = *cfg.pollInterval
	if monitorConfig.CardRemovalTimeout < 3*monitorConfig.PollInterval {
		monitorConfig.CardRemovalTimeout = 3 * monitorConfig.PollInterval
	}
	monitor := polling.NewMonitor(device, monitorConfig)
	defer func() { _ = monitor.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	monitor.OnCardDetected = func(card *mfrc522.Card) error {
		printCard(card)
		if *cfg.once {
			cancel()
		}
		return nil
	}
	monitor.OnCardChanged = func(card *mfrc522.Card) error {
		_, _ = fmt.Println("Card changed")
		printCard(card)
		return nil
	}
	monitor.OnCardRemoved = func() {
		_, _ = fmt.Println("Card removed - ready for next card...")
	}

	_, _ = fmt.Printf("Waiting for cards (poll interval: %s)...\n", monitorConfig.PollInterval)
	err = monitor.Start(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func printCard(card *mfrc522.Card) {
	_, _ = fmt.Printf("Card detected: %s\n", card)
	_, _ = fmt.Printf("  UID:  %s\n", strings.ToUpper(card.UID.String()))
	_, _ = fmt.Printf("  ATQA: %s\n", card.ATQA)
	_, _ = fmt.Printf("  SAK:  0x%02X\n", card.SAK)
}

func execute() error {
	cfg := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *cfg.timeout)
		defer cancel()
	}

	return run(ctx, cfg)
}

func main() {
	if err := execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
