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

import "testing"

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		devicePath  string
		ignorePaths []string
		expected    bool
	}{
		{name: "empty ignore list", devicePath: "/dev/spidev0.0", ignorePaths: []string{}},
		{name: "empty device path", devicePath: "", ignorePaths: []string{"/dev/spidev0.0"}},
		{name: "exact match", devicePath: "/dev/spidev0.0", ignorePaths: []string{"/dev/spidev0.0"}, expected: true},
		{name: "different chip select", devicePath: "/dev/spidev0.1", ignorePaths: []string{"/dev/spidev0.0"}},
		{name: "unclean path", devicePath: "/dev/spidev0.0", ignorePaths: []string{"/dev/../dev/spidev0.0"}, expected: true},
		{name: "case folded", devicePath: "COM3", ignorePaths: []string{"com3"}, expected: true},
		{name: "i2c address on ignored bus", devicePath: "/dev/i2c-1:0x28", ignorePaths: []string{"/dev/i2c-1"}, expected: true},
		{name: "i2c exact address", devicePath: "/dev/i2c-1:0x28", ignorePaths: []string{"/dev/i2c-1:0x28"}, expected: true},
		{name: "i2c other address", devicePath: "/dev/i2c-1:0x28", ignorePaths: []string{"/dev/i2c-1:0x29"}},
		{name: "blank entries skipped", devicePath: "/dev/ttyUSB0", ignorePaths: []string{"", "/dev/ttyUSB1"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsPathIgnored(tt.devicePath, tt.ignorePaths); got != tt.expected {
				t.Errorf("IsPathIgnored(%q, %v) = %v, want %v", tt.devicePath, tt.ignorePaths, got, tt.expected)
			}
		})
	}
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	blocklist := []string{"1a86:7523", " 10C4:EA60 "}
	if !IsBlocked("1A86:7523", blocklist) {
		t.Error("case-insensitive match failed")
	}
	if !IsBlocked(VIDPID("10c4", "ea60"), blocklist) {
		t.Error("trimmed match failed")
	}
	if IsBlocked("0403:6001", blocklist) {
		t.Error("unlisted adapter blocked")
	}
	if IsBlocked(VIDPID("", "6001"), blocklist) {
		t.Error("missing VID blocked")
	}
}
