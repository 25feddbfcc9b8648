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


// Package testing holds ISO14443-A card fixtures and response builders for
// scripting a virtual MFRC522 in tests.
package testing

// Card kinds understood by the builders
const (
	CardMIFARE1K   = "MIFARE1K"
	CardMIFARE4K   = "MIFARE4K"
	CardUltralight = "ULTRALIGHT"
)

// BuildATQAResponse returns the 2-byte answer a card kind gives to REQA/WUPA
func BuildATQAResponse(cardType string) []byte {
	switch cardType {
	case CardMIFARE4K:
		return []byte{0x02, 0x00}
	case CardUltralight:
		return []byte{0x44, 0x00}
	default:
		return []byte{0x04, 0x00}
	}
}

// BuildAnticollisionResponse returns UID followed by its BCC
func BuildAnticollisionResponse(uid [4]byte) []byte {
	return []byte{uid[0], uid[1], uid[2], uid[3], BCC(uid)}
}

// BuildCorruptAnticollisionResponse returns UID followed by a wrong BCC
func BuildCorruptAnticollisionResponse(uid [4]byte) []byte {
	return []byte{uid[0], uid[1], uid[2], uid[3], BCC(uid) ^ 0xFF}
}

// BuildSAKResponse returns the one-byte answer a card kind gives to SELECT
func BuildSAKResponse(cardType string) []byte {
	switch cardType {
	case CardMIFARE4K:
		return []byte{0x18}
	case CardUltralight:
		return []byte{0x00}
	default:
		return []byte{0x08}
	}
}

// BuildScanResponses returns the three responses of a successful
// REQA, anticollision and SELECT sequence, in order
func BuildScanResponses(cardType string, uid [4]byte) [][]byte {
	return [][]byte{
		BuildATQAResponse(cardType),
		BuildAnticollisionResponse(uid),
		BuildSAKResponse(cardType),
	}
}

// BCC is the XOR of the UID bytes
func BCC(uid [4]byte) byte {
	return uid[0] ^ uid[1] ^ uid[2] ^ uid[3]
}

// Common UIDs for testing
var (
	// TestMIFARE1KUID is a sample MIFARE Classic 1K UID
	TestMIFARE1KUID = [4]byte{0x12, 0x34, 0x56, 0x78}

	// TestMIFARE4KUID is a sample MIFARE Classic 4K UID
	TestMIFARE4KUID = [4]byte{0xAB, 0xCD, 0xEF, 0x01}

	// TestZeroUID has a BCC of zero
	TestZeroUID = [4]byte{0x00, 0x00, 0x00, 0x00}
)

// PICC command bytes for matching recorded frames
const (
	CmdREQA        = 0x26
	CmdWUPA        = 0x52
	CmdAnticollCL1 = 0x93
	CmdHalt        = 0x50
	NVBAnticollCL1 = 0x20
	NVBSelectCL1   = 0x70
)
