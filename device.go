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
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-mfrc522/detection"
)

// DefaultPollBudget is the number of ComIrqReg reads a transceive waits for
// the chip before treating the command as timed out.
const DefaultPollBudget = 2000

const (
	minResetHold   = 10 * time.Millisecond
	minResetSettle = 50 * time.Millisecond
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// PollBudget caps the ComIrqReg polling loop of a transceive
	PollBudget int
	// ResetHold is how long the reset line is held low
	ResetHold time.Duration
	// ResetSettle is the wait after releasing the reset line
	ResetSettle time.Duration
	// SoftResetSettle is the wait after the SoftReset command
	SoftResetSettle time.Duration
	// AntennaGain is the RxGain value (0-7) written by AntennaOn
	AntennaGain byte
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		PollBudget:      DefaultPollBudget,
		ResetHold:       minResetHold,
		ResetSettle:     minResetSettle,
		SoftResetSettle: minResetSettle,
		AntennaGain:     DefaultAntennaGain,
	}
}

// Device represents one MFRC522 reader session. It owns the transport and
// the reset line for its whole lifetime.
//
// Thread Safety: Device is NOT thread-safe and holds no locks. SetBits and
// ClearBits span two bus transactions and a transceive spans many, so a
// caller sharing a Device between goroutines must hold a mutex around each
// full logical operation (see polling.Monitor.WithDevice).
type Device struct {
	transport Transport
	resetPin  OutputPin
	config    *DeviceConfig
	sleep     func(time.Duration)
	state     LifecycleState
}

// New creates a new MFRC522 device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidParameter)
	}

	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
		sleep:     time.Sleep,
		state:     StateUnpowered,
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// Config returns a copy of the device configuration
func (d *Device) Config() DeviceConfig {
	return *d.config
}

// Close closes the device connection
func (d *Device) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	d.state = StateUnpowered
	return nil
}

// WriteRegister writes value to reg
func (d *Device) WriteRegister(reg Register, value byte) error {
	if !reg.Valid() {
		return fmt.Errorf("%w: 0x%02X", ErrInvalidRegister, uint8(reg))
	}
	if err := d.transport.WriteRegister(reg, value); err != nil {
		return fmt.Errorf("write %s: %w", reg, err)
	}
	return nil
}

// ReadRegister reads the value of reg
func (d *Device) ReadRegister(reg Register) (byte, error) {
	if !reg.Valid() {
		return 0, fmt.Errorf("%w: 0x%02X", ErrInvalidRegister, uint8(reg))
	}
	value, err := d.transport.ReadRegister(reg)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", reg, err)
	}
	return value, nil
}

// SetBits sets the bits of mask in reg with a read-modify-write. The read
// and the write are separate bus transactions.
func (d *Device) SetBits(reg Register, mask byte) error {
	value, err := d.ReadRegister(reg)
	if err != nil {
		return err
	}
	return d.WriteRegister(reg, value|mask)
}

// ClearBits clears the bits of mask in reg with a read-modify-write. The
// read and the write are separate bus transactions.
func (d *Device) ClearBits(reg Register, mask byte) error {
	value, err := d.ReadRegister(reg)
	if err != nil {
		return err
	}
	return d.WriteRegister(reg, value&^mask)
}

// TransportFactory is a function type for creating transports
type TransportFactory func(path string) (Transport, error)

// TransportFromDeviceFactory is a function type for creating transports from detected devices
type TransportFromDeviceFactory func(device detection.DeviceInfo) (Transport, error)

// ConnectOption represents a functional option for ConnectDevice
type ConnectOption func(*connectConfig) error

// connectConfig holds configuration options for device connection
type connectConfig struct {
	transportFactory       TransportFactory
	transportDeviceFactory TransportFromDeviceFactory
	detectOptions          *detection.Options
	deviceOptions          []Option
	autoDetect             bool
}

// WithAutoDetection enables automatic device detection instead of using a specific path
func WithAutoDetection() ConnectOption {
	return func(c *connectConfig) error {
		c.autoDetect = true
		return nil
	}
}

// WithDetectionOptions sets the options used for auto-detection
func WithDetectionOptions(opts *detection.Options) ConnectOption {
	return func(c *connectConfig) error {
		c.detectOptions = opts
		return nil
	}
}

// WithDeviceOptions adds device-level options
func WithDeviceOptions(opts ...Option) ConnectOption {
	return func(c *connectConfig) error {
		c.deviceOptions = append(c.deviceOptions, opts...)
		return nil
	}
}

// WithTransportFactory sets the transport factory function
func WithTransportFactory(factory TransportFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportFactory = factory
		return nil
	}
}

// WithTransportFromDeviceFactory sets the transport from device factory function
func WithTransportFromDeviceFactory(factory TransportFromDeviceFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportDeviceFactory = factory
		return nil
	}
}

func applyConnectOptions(opts []ConnectOption) (*connectConfig, error) {
	config := &connectConfig{}
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("failed to apply connect option: %w", err)
		}
	}
	return config, nil
}

// ConnectDevice creates and initializes an MFRC522 device from a path or
// auto-detection. The transport is closed again if initialization fails.
//
// Example usage:
//
//	// Connect to a specific SPI device
//	device, err := mfrc522.ConnectDevice("/dev/spidev0.0",
//		mfrc522.WithTransportFactory(newTransport))
//
//	// Auto-detect
//	device, err := mfrc522.ConnectDevice("", mfrc522.WithAutoDetection(),
//		mfrc522.WithTransportFromDeviceFactory(newTransportFromDevice))
func ConnectDevice(path string, opts ...ConnectOption) (*Device, error) {
	config, err := applyConnectOptions(opts)
	if err != nil {
		return nil, err
	}

	transport, err := createTransport(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	device, err := New(transport, config.deviceOptions...)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	if err := device.Init(); err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to initialize device: %w", err)
	}

	return device, nil
}

func createTransport(path string, config *connectConfig) (Transport, error) {
	if config.autoDetect || path == "" {
		return createAutoDetectedTransport(config.detectOptions, config.transportDeviceFactory)
	}
	return createManualTransport(path, config.transportFactory)
}

// createManualTransport handles creation of transport for a specific path
func createManualTransport(path string, factory TransportFactory) (Transport, error) {
	if factory == nil {
		return nil, errors.New("transport factory not provided")
	}

	transport, err := factory(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport for path %s: %w", path, err)
	}

	return transport, nil
}

// createAutoDetectedTransport uses the first detected device
func createAutoDetectedTransport(opts *detection.Options, factory TransportFromDeviceFactory) (Transport, error) {
	if factory == nil {
		return nil, errors.New("transport device factory not provided")
	}
	if opts == nil {
		defaults := detection.DefaultOptions()
		opts = &defaults
	}

	devices, err := detection.DetectAll(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to detect devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: no MFRC522 devices found", ErrDeviceNotFound)
	}

	debugf("auto-detected %s", devices[0].String())
	return factory(devices[0])
}
