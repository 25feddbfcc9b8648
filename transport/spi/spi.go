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


// Package spi provides the SPI transport for the MFRC522
package spi

import (
	"fmt"
	"io"
	"sync"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/internal/frame"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// DefaultSpeed is the bus clock used unless WithSpeed says otherwise
	DefaultSpeed = 4 * physic.MegaHertz
	// MaxSpeed is the fastest SPI clock the chip supports
	MaxSpeed = 10 * physic.MegaHertz

	wordBits = 8
)

type config struct {
	cs    gpio.PinOut
	speed physic.Frequency
}

// Option configures an SPI transport
type Option func(*config) error

// WithSpeed sets the SPI clock. It must be above zero and at most MaxSpeed.
func WithSpeed(f physic.Frequency) Option {
	return func(c *config) error {
		if f <= 0 || f > MaxSpeed {
			return fmt.Errorf("%w: SPI speed %s out of range", mfrc522.ErrInvalidParameter, f)
		}
		c.speed = f
		return nil
	}
}

// WithChipSelect drives pin as chip select around every register access,
// for wiring where the port's own CS line is not connected to the chip
func WithChipSelect(pin gpio.PinOut) Option {
	return func(c *config) error {
		c.cs = pin
		return nil
	}
}

// Transport implements mfrc522.Transport over an SPI connection
type Transport struct {
	conn   conn.Conn
	closer io.Closer
	cs     gpio.PinOut
	name   string
	mu     sync.Mutex
	closed bool
}

// New opens the SPI port by name (e.g. "/dev/spidev0.0" or "SPI0.0") and
// connects at 4 MHz in mode 0
func New(portName string, opts ...Option) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, mfrc522.NewTransportError("open", portName, err, mfrc522.ErrorTypePermanent)
	}

	t, err := NewWithPort(port, opts...)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	t.name = portName
	return t, nil
}

// NewWithPort connects to an already opened SPI port. If port implements
// io.Closer it is closed together with the transport.
func NewWithPort(port spi.Port, opts ...Option) (*Transport, error) {
	cfg := config{speed: DefaultSpeed}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	c, err := port.Connect(cfg.speed, spi.Mode0, wordBits)
	if err != nil {
		return nil, mfrc522.NewTransportError("connect", port.String(), err, mfrc522.ErrorTypePermanent)
	}

	if cfg.cs != nil {
		if err := cfg.cs.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("failed to release chip select: %w", err)
		}
	}

	t := &Transport{
		conn: c,
		cs:   cfg.cs,
		name: port.String(),
	}
	if closer, ok := port.(io.Closer); ok {
		t.closer = closer
	}
	return t, nil
}

// WriteRegister implements mfrc522.Transport
func (t *Transport) WriteRegister(reg mfrc522.Register, value byte) error {
	if err := t.tx(frame.SPIWrite(byte(reg), value), nil); err != nil {
		return mfrc522.NewTransportError("WriteRegister", t.name,
			fmt.Errorf("%w: %w", mfrc522.ErrTransportWrite, err), mfrc522.ErrorTypeTransient)
	}
	return nil
}

// ReadRegister implements mfrc522.Transport
func (t *Transport) ReadRegister(reg mfrc522.Register) (byte, error) {
	rx := make([]byte, 2)
	if err := t.tx(frame.SPIRead(byte(reg)), rx); err != nil {
		return 0, mfrc522.NewTransportError("ReadRegister", t.name,
			fmt.Errorf("%w: %w", mfrc522.ErrTransportRead, err), mfrc522.ErrorTypeTransient)
	}
	value, _ := frame.SPIReadValue(rx)
	return value, nil
}

// tx runs one full-duplex exchange inside a chip select window
func (t *Transport) tx(w, r []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return mfrc522.ErrTransportClosed
	}

	if t.cs != nil {
		if err := t.cs.Out(gpio.Low); err != nil {
			return fmt.Errorf("chip select: %w", err)
		}
	}
	err := t.conn.Tx(w, r)
	if t.cs != nil {
		if csErr := t.cs.Out(gpio.High); csErr != nil && err == nil {
			err = fmt.Errorf("chip select: %w", csErr)
		}
	}
	return err
}

// Close releases the SPI port
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

// IsConnected returns true until Close is called
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed
}

// Type returns the transport type
func (*Transport) Type() mfrc522.TransportType {
	return mfrc522.TransportSPI
}

// String returns the port name
func (t *Transport) String() string {
	return t.name
}

var _ mfrc522.Transport = (*Transport)(nil)
