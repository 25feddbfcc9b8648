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


// Package frame encodes MFRC522 register accesses for each host interface
package frame

// AddressMask keeps the 6 address bits of a register
const AddressMask = 0x3F

// readFlag marks a read access on SPI and UART
const readFlag = 0x80

// I2C
const (
	// I2CAddress is the 7-bit bus address with all address pins low
	I2CAddress = 0x28
)

// UART line settings after reset
const (
	UARTBaudRate = 9600
	UARTDataBits = 8
)

// SPIWrite returns the two bytes clocked out to write value to reg.
// The address sits in bits 6..1 and bit 7 is cleared.
func SPIWrite(reg, value byte) []byte {
	return []byte{(reg & AddressMask) << 1, value}
}

// SPIRead returns the two bytes clocked out to read reg. The register value
// comes back in the second byte clocked in.
func SPIRead(reg byte) []byte {
	return []byte{readFlag | (reg&AddressMask)<<1, 0x00}
}

// SPIReadValue extracts the register value from the bytes clocked in during
// an SPIRead exchange
func SPIReadValue(rx []byte) (byte, bool) {
	if len(rx) != 2 {
		return 0, false
	}
	return rx[1], true
}

// I2CWrite returns the bytes written to set reg to value
func I2CWrite(reg, value byte) []byte {
	return []byte{reg & AddressMask, value}
}

// I2CRead returns the register pointer written before reading one byte
func I2CRead(reg byte) []byte {
	return []byte{reg & AddressMask}
}

// UARTRead returns the byte sent to request the value of reg
func UARTRead(reg byte) byte {
	return readFlag | reg&AddressMask
}

// UARTWrite returns the address byte that starts a write to reg. The chip
// echoes it before the value byte is sent.
func UARTWrite(reg byte) byte {
	return reg & AddressMask
}
