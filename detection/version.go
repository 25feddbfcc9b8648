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


package detection

import "fmt"

// VersionReg values of genuine chips
const (
	VersionV1 = 0x91
	VersionV2 = 0x92
)

// ChipName maps a VersionReg value to a chip name. known is false for
// values other than the two genuine chip versions.
func ChipName(version byte) (name string, known bool) {
	switch version {
	case VersionV1:
		return "MFRC522 v1.0", true
	case VersionV2:
		return "MFRC522 v2.0", true
	default:
		return fmt.Sprintf("unknown chip (version 0x%02X)", version), false
	}
}

// Responding reports whether a VersionReg read came from a chip rather than
// a floating or shorted bus
func Responding(version byte) bool {
	return version != 0x00 && version != 0xFF
}

// ApplyVersion records a probed version on dev. A known chip raises the
// confidence to High, an unknown answer to at least Medium. It returns false
// when nothing answered.
func ApplyVersion(dev *DeviceInfo, version byte) bool {
	if !Responding(version) {
		return false
	}
	name, known := ChipName(version)
	dev.Name = name
	if dev.Metadata == nil {
		dev.Metadata = make(map[string]string)
	}
	dev.Metadata["version"] = fmt.Sprintf("0x%02X", version)
	switch {
	case known:
		dev.Confidence = High
	case dev.Confidence < Medium:
		dev.Confidence = Medium
	}
	return true
}
