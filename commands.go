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

// Command is an MFRC522 command opcode written to CommandReg.
type Command uint8

// Supported PCD commands
const (
	CommandIdle       Command = 0x00
	CommandTransceive Command = 0x0C
	CommandSoftReset  Command = 0x0F
)

// Valid reports whether c is one of the commands this driver issues.
func (c Command) Valid() bool {
	switch c {
	case CommandIdle, CommandTransceive, CommandSoftReset:
		return true
	default:
		return false
	}
}

func (c Command) String() string {
	switch c {
	case CommandIdle:
		return "Idle"
	case CommandTransceive:
		return "Transceive"
	case CommandSoftReset:
		return "SoftReset"
	default:
		return fmt.Sprintf("Command(0x%02X)", uint8(c))
	}
}

// RequestMode selects which cards answer a presence request.
type RequestMode uint8

const (
	// RequestIdle (REQA) only wakes cards in the IDLE state.
	RequestIdle RequestMode = 0x26
	// RequestAll (WUPA) wakes cards in the IDLE and HALT states.
	RequestAll RequestMode = 0x52
)

func (m RequestMode) String() string {
	switch m {
	case RequestIdle:
		return "REQA"
	case RequestAll:
		return "WUPA"
	default:
		return fmt.Sprintf("RequestMode(0x%02X)", uint8(m))
	}
}

// PICC command bytes (ISO14443-3 type A)
const (
	piccAnticollCL1 = 0x93
	piccHalt        = 0x50

	// NVB values for cascade level 1
	nvbAnticoll = 0x20 // no known UID bits
	nvbSelect   = 0x70 // full UID + BCC follows
)

// Register bit masks
const (
	irqEnableMask   = 0x77 // ComIEnReg: all sources except HiAlert
	irqInvert       = 0x80 // ComIEnReg IRqInv
	irqSet1         = 0x80 // ComIrqReg Set1
	irqTimer        = 0x01 // ComIrqReg TimerIRq
	irqWaitMask     = 0x30 // ComIrqReg RxIRq | IdleIRq
	fifoFlushBuffer = 0x80 // FIFOLevelReg FlushBuffer
	fifoLevelMask   = 0x7F
	startSend       = 0x80 // BitFramingReg StartSend
	rxLastBitsMask  = 0x07 // ControlReg RxLastBits
	txControlAnt    = 0x03 // TxControlReg Tx1RFEn | Tx2RFEn

	// framing for the 7-bit short frame used by REQA/WUPA
	shortFrameBits = 0x07
)

// Configuration values written by Configure.
const (
	tModeAuto     = 0x80 // TAuto: timer starts at end of transmission
	tPrescaler    = 0xA9
	tReloadHigh   = 0x03
	tReloadLow    = 0xE8
	txASKForce100 = 0x40 // Force100ASK
	modeCRCPreset = 0x3D // CRC preset 0x6363

	// DefaultAntennaGain is the maximum receiver gain (48 dB).
	DefaultAntennaGain = 0x07
	maxAntennaGain     = 0x07
)

// fifoSize is the depth of the chip's FIFO buffer in bytes.
const fifoSize = 64
