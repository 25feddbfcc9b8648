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


// Package i2c provides the I2C transport for the MFRC522
package i2c

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/internal/frame"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Max clock frequency (400 kHz fast mode).
const maxClockFreq = 400 * physic.KiloHertz

type config struct {
	addr uint16
}

// Option configures an I2C transport
type Option func(*config) error

// WithAddress overrides the default 0x28 bus address, for boards with the
// address pins strapped differently
func WithAddress(addr uint16) Option {
	return func(c *config) error {
		if addr > 0x7F {
			return fmt.Errorf("%w: I2C address 0x%X is not 7-bit", mfrc522.ErrInvalidParameter, addr)
		}
		c.addr = addr
		return nil
	}
}

// ParsePath splits a detection path such as "/dev/i2c-1:0x2B" into bus name
// and address. A path without an address suffix uses the default address.
func ParsePath(path string) (bus string, addr uint16, err error) {
	i := strings.LastIndex(path, ":")
	if i < 0 {
		return path, frame.I2CAddress, nil
	}
	v, err := strconv.ParseUint(path[i+1:], 0, 7)
	if err != nil || i == 0 {
		return "", 0, fmt.Errorf("%w: I2C path %q", mfrc522.ErrInvalidParameter, path)
	}
	return path[:i], uint16(v), nil
}

// Transport implements mfrc522.Transport for I2C communication
type Transport struct {
	dev     *i2c.Dev
	closer  io.Closer
	busName string
	mu      sync.Mutex
	closed  bool
}

// New opens the I2C bus by name (e.g. "/dev/i2c-1" or "1")
func New(busName string, opts ...Option) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, mfrc522.NewTransportError("open", busName, err, mfrc522.ErrorTypePermanent)
	}

	// Ignore error, continue with default speed
	_ = bus.SetSpeed(maxClockFreq)

	t, err := NewWithBus(bus, opts...)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	t.busName = busName
	return t, nil
}

// NewWithBus uses an already opened bus. If bus implements io.Closer it is
// closed together with the transport.
func NewWithBus(bus i2c.Bus, opts ...Option) (*Transport, error) {
	cfg := config{addr: frame.I2CAddress}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	t := &Transport{
		dev:     &i2c.Dev{Addr: cfg.addr, Bus: bus},
		busName: bus.String(),
	}
	if closer, ok := bus.(io.Closer); ok {
		t.closer = closer
	}
	return t, nil
}

// WriteRegister implements mfrc522.Transport
func (t *Transport) WriteRegister(reg mfrc522.Register, value byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return mfrc522.ErrTransportClosed
	}
	if err := t.dev.Tx(frame.I2CWrite(byte(reg), value), nil); err != nil {
		return mfrc522.NewTransportError("WriteRegister", t.busName,
			fmt.Errorf("%w: %w", mfrc522.ErrTransportWrite, err), mfrc522.ErrorTypeTransient)
	}
	return nil
}

// ReadRegister implements mfrc522.Transport. The register pointer is written
// and the value read back in one combined transaction.
func (t *Transport) ReadRegister(reg mfrc522.Register) (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, mfrc522.ErrTransportClosed
	}
	value := make([]byte, 1)
	if err := t.dev.Tx(frame.I2CRead(byte(reg)), value); err != nil {
		return 0, mfrc522.NewTransportError("ReadRegister", t.busName,
			fmt.Errorf("%w: %w", mfrc522.ErrTransportRead, err), mfrc522.ErrorTypeTransient)
	}
	return value[0], nil
}

// Close closes the transport connection
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed
}

// Type returns the transport type
func (*Transport) Type() mfrc522.TransportType {
	return mfrc522.TransportI2C
}

// Address returns the 7-bit bus address in use
func (t *Transport) Address() uint16 {
	return t.dev.Addr
}

// Ensure Transport implements mfrc522.Transport
var _ mfrc522.Transport = (*Transport)(nil)
