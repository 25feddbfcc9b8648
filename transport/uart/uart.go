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


// Package uart provides the UART transport for the MFRC522
package uart

import (
	"fmt"
	"io"
	"sync"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/internal/frame"
	"github.com/ZaparooProject/go-mfrc522/internal/transport"
	"go.bug.st/serial"
)

const (
	// DefaultTimeout bounds the wait for each byte from the chip
	DefaultTimeout = 100 * time.Millisecond

	// echo mismatches are retried this many times before giving up
	maxEchoRetries = 2
)

// port is the part of serial.Port the transport uses
type port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

type config struct {
	baudRate int
	timeout  time.Duration
}

// Option configures a UART transport
type Option func(*config) error

// WithBaudRate sets the line speed. The chip starts at 9600 baud after reset.
func WithBaudRate(baud int) Option {
	return func(c *config) error {
		if baud <= 0 {
			return fmt.Errorf("%w: baud rate %d", mfrc522.ErrInvalidParameter, baud)
		}
		c.baudRate = baud
		return nil
	}
}

// WithTimeout sets how long to wait for each byte from the chip
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: timeout %s", mfrc522.ErrInvalidParameter, timeout)
		}
		c.timeout = timeout
		return nil
	}
}

// Transport implements mfrc522.Transport over a serial line
type Transport struct {
	port     port
	portName string
	timeout  time.Duration
	mu       sync.Mutex
	closed   bool
}

// New opens portName at 9600 8N1
func New(portName string, opts ...Option) (*Transport, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	p, err := serial.Open(portName, &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: frame.UARTDataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, mfrc522.NewTransportError("open", portName, err, mfrc522.ErrorTypePermanent)
	}

	t, err := newWithPort(p, portName, cfg)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return t, nil
}

func buildConfig(opts []Option) (config, error) {
	cfg := config{baudRate: frame.UARTBaudRate, timeout: DefaultTimeout}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}
	return cfg, nil
}

func newWithPort(p port, portName string, cfg config) (*Transport, error) {
	if err := p.SetReadTimeout(cfg.timeout); err != nil {
		return nil, mfrc522.NewTransportError("setReadTimeout", portName, err, mfrc522.ErrorTypePermanent)
	}
	return &Transport{
		port:     p,
		portName: portName,
		timeout:  cfg.timeout,
	}, nil
}

// WriteRegister sends the address, waits for the chip to echo it and then
// sends the value. A wrong echo is retried after draining the input.
func (t *Transport) WriteRegister(reg mfrc522.Register, value byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return mfrc522.ErrTransportClosed
	}

	addr := frame.UARTWrite(byte(reg))
	_, err := transport.WithRetry(transport.RetryConfig{
		MaxRetries:  maxEchoRetries,
		Description: "WriteRegister",
		Port:        t.portName,
		OnRetry:     t.port.ResetInputBuffer,
	}, func() (struct{}, bool, error) {
		if err := t.writeByte(addr); err != nil {
			return struct{}{}, false, err
		}
		echo, err := t.readByte()
		if err != nil {
			return struct{}{}, false, err
		}
		if echo != addr {
			mfrc522.Debugf("uart %s: echo 0x%02X for address 0x%02X", t.portName, echo, addr)
			return struct{}{}, true, nil
		}
		return struct{}{}, false, nil
	})
	if err != nil {
		return err
	}

	return t.writeByte(value)
}

// ReadRegister implements mfrc522.Transport
func (t *Transport) ReadRegister(reg mfrc522.Register) (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, mfrc522.ErrTransportClosed
	}
	if err := t.writeByte(frame.UARTRead(byte(reg))); err != nil {
		return 0, err
	}
	return t.readByte()
}

func (t *Transport) writeByte(b byte) error {
	n, err := t.port.Write([]byte{b})
	if err != nil {
		return mfrc522.NewTransportError("write", t.portName,
			fmt.Errorf("%w: %w", mfrc522.ErrTransportWrite, err), mfrc522.ErrorTypeTransient)
	}
	if n != 1 {
		return mfrc522.NewTransportError("write", t.portName, mfrc522.ErrTransportWrite, mfrc522.ErrorTypeTransient)
	}
	return nil
}

// readByte waits for one byte. The serial port returns 0 bytes without an
// error when its read timeout expires.
func (t *Transport) readByte() (byte, error) {
	buf := make([]byte, 1)
	n, err := t.port.Read(buf)
	if err != nil {
		return 0, mfrc522.NewTransportError("read", t.portName,
			fmt.Errorf("%w: %w", mfrc522.ErrTransportRead, err), mfrc522.ErrorTypeTransient)
	}
	if n == 0 {
		return 0, mfrc522.NewTimeoutError("read", t.portName)
	}
	return buf[0], nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil && !t.closed
}

// Type returns the transport type
func (*Transport) Type() mfrc522.TransportType {
	return mfrc522.TransportUART
}

// Ensure Transport implements mfrc522.Transport
var _ mfrc522.Transport = (*Transport)(nil)
