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
	"periph.io/x/conn/v3/gpio"
)

// Transport moves single register values between the host and the chip.
// SPI, I2C and UART backends each implement their own address framing.
// Every call must complete one whole frame before returning so frames
// from different calls never interleave on the bus.
type Transport interface {
	// WriteRegister writes value to reg
	WriteRegister(reg Register, value byte) error

	// ReadRegister reads the current value of reg
	ReadRegister(reg Register) (byte, error)

	// Close releases the bus
	Close() error

	// IsConnected returns true if the bus is open
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportSPI represents SPI bus transport.
	TransportSPI TransportType = "spi"
	// TransportI2C represents I2C bus transport.
	TransportI2C TransportType = "i2c"
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// OutputPin is the part of gpio.PinOut the driver needs to pulse the
// chip's active-low NRSTPD line. Any periph gpio.PinOut satisfies it.
type OutputPin interface {
	Out(l gpio.Level) error
}
