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


package frame

import (
	"bytes"
	"testing"
)

func TestSPIWrite(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		want  []byte
		reg   byte
		value byte
	}{
		{name: "CommandReg soft reset", reg: 0x01, value: 0x0F, want: []byte{0x02, 0x0F}},
		{name: "TModeReg", reg: 0x2A, value: 0x80, want: []byte{0x54, 0x80}},
		{name: "highest address", reg: 0x3F, value: 0xFF, want: []byte{0x7E, 0xFF}},
		{name: "address masked", reg: 0xC1, value: 0x01, want: []byte{0x02, 0x01}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SPIWrite(tt.reg, tt.value)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("SPIWrite(0x%02X, 0x%02X) = % X, want % X", tt.reg, tt.value, got, tt.want)
			}
			if got[0]&0x81 != 0 {
				t.Errorf("write address byte 0x%02X must have bits 7 and 0 clear", got[0])
			}
		})
	}
}

func TestSPIRead(t *testing.T) {
	t.Parallel()
	tests := []struct {
		want []byte
		reg  byte
	}{
		{reg: 0x37, want: []byte{0xEE, 0x00}},
		{reg: 0x04, want: []byte{0x88, 0x00}},
		{reg: 0x09, want: []byte{0x92, 0x00}},
		{reg: 0x0A, want: []byte{0x94, 0x00}},
	}

	for _, tt := range tests {
		got := SPIRead(tt.reg)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("SPIRead(0x%02X) = % X, want % X", tt.reg, got, tt.want)
		}
	}
}

func TestSPIReadValue(t *testing.T) {
	t.Parallel()
	if v, ok := SPIReadValue([]byte{0x00, 0x92}); !ok || v != 0x92 {
		t.Errorf("SPIReadValue = 0x%02X, %v", v, ok)
	}
	if _, ok := SPIReadValue([]byte{0x92}); ok {
		t.Error("short exchange accepted")
	}
}

func TestI2C(t *testing.T) {
	t.Parallel()
	if got := I2CWrite(0x01, 0x0F); !bytes.Equal(got, []byte{0x01, 0x0F}) {
		t.Errorf("I2CWrite = % X", got)
	}
	if got := I2CRead(0x37); !bytes.Equal(got, []byte{0x37}) {
		t.Errorf("I2CRead = % X", got)
	}
}

func TestUART(t *testing.T) {
	t.Parallel()
	if got := UARTRead(0x37); got != 0xB7 {
		t.Errorf("UARTRead = 0x%02X, want 0xB7", got)
	}
	if got := UARTWrite(0x01); got != 0x01 {
		t.Errorf("UARTWrite = 0x%02X, want 0x01", got)
	}
}
