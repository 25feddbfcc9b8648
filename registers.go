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

import "fmt"

// Register is a 6-bit MFRC522 register address. Only the addresses declared
// below are valid; Device rejects anything else before touching the bus.
type Register uint8

// Documented registers used by the driver (MFRC522 datasheet, section 9).
const (
	CommandReg    Register = 0x01
	ComIEnReg     Register = 0x02
	ComIrqReg     Register = 0x04
	ErrorReg      Register = 0x06
	Status2Reg    Register = 0x08
	FIFODataReg   Register = 0x09
	FIFOLevelReg  Register = 0x0A
	ControlReg    Register = 0x0C
	BitFramingReg Register = 0x0D
	ModeReg       Register = 0x11
	TxControlReg  Register = 0x14
	TxASKReg      Register = 0x15
	RFCfgReg      Register = 0x26
	TModeReg      Register = 0x2A
	TPrescalerReg Register = 0x2B
	TReloadRegH   Register = 0x2C
	TReloadRegL   Register = 0x2D
	VersionReg    Register = 0x37
)

var registerNames = map[Register]string{
	CommandReg:    "CommandReg",
	ComIEnReg:     "ComIEnReg",
	ComIrqReg:     "ComIrqReg",
	ErrorReg:      "ErrorReg",
	Status2Reg:    "Status2Reg",
	FIFODataReg:   "FIFODataReg",
	FIFOLevelReg:  "FIFOLevelReg",
	ControlReg:    "ControlReg",
	BitFramingReg: "BitFramingReg",
	ModeReg:       "ModeReg",
	TxControlReg:  "TxControlReg",
	TxASKReg:      "TxASKReg",
	RFCfgReg:      "RFCfgReg",
	TModeReg:      "TModeReg",
	TPrescalerReg: "TPrescalerReg",
	TReloadRegH:   "TReloadRegH",
	TReloadRegL:   "TReloadRegL",
	VersionReg:    "VersionReg",
}

// Registers returns every valid register address in ascending order.
func Registers() []Register {
	return []Register{
		CommandReg, ComIEnReg, ComIrqReg, ErrorReg, Status2Reg,
		FIFODataReg, FIFOLevelReg, ControlReg, BitFramingReg, ModeReg,
		TxControlReg, TxASKReg, RFCfgReg, TModeReg, TPrescalerReg,
		TReloadRegH, TReloadRegL, VersionReg,
	}
}

// Valid reports whether r is a documented register address.
func (r Register) Valid() bool {
	_, ok := registerNames[r]
	return ok
}

func (r Register) String() string {
	if name, ok := registerNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Register(0x%02X)", uint8(r))
}

// ChipError holds the raw ErrorReg value reported after a command.
type ChipError byte

// ErrorReg bits
const (
	ChipErrorProtocol  ChipError = 0x01
	ChipErrorParity    ChipError = 0x02
	ChipErrorCRC       ChipError = 0x04
	ChipErrorCollision ChipError = 0x08
	ChipErrorOverflow  ChipError = 0x10
	ChipErrorTemp      ChipError = 0x40
	ChipErrorWrite     ChipError = 0x80
)

// fatalChipErrors are the ErrorReg bits that fail a transceive.
const fatalChipErrors = ChipErrorProtocol | ChipErrorParity | ChipErrorCollision | ChipErrorOverflow

// Has reports whether all bits of flag are set.
func (e ChipError) Has(flag ChipError) bool {
	return e&flag == flag
}

// Fatal reports whether e contains a bit that invalidates a response.
func (e ChipError) Fatal() bool {
	return e&fatalChipErrors != 0
}

func (e ChipError) String() string {
	if e == 0 {
		return "none"
	}
	names := []struct {
		name string
		flag ChipError
	}{
		{"protocol", ChipErrorProtocol},
		{"parity", ChipErrorParity},
		{"crc", ChipErrorCRC},
		{"collision", ChipErrorCollision},
		{"overflow", ChipErrorOverflow},
		{"temperature", ChipErrorTemp},
		{"write", ChipErrorWrite},
	}
	out := ""
	for _, n := range names {
		if e.Has(n.flag) {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	if out == "" {
		return fmt.Sprintf("ChipError(0x%02X)", byte(e))
	}
	return out
}
