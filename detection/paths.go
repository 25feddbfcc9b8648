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

import (
	"path/filepath"
	"strings"
)

// DefaultBlocklist returns USB serial adapters, as VID:PID in hex, that
// UART detection never opens
func DefaultBlocklist() []string {
	return []string{}
}

// VIDPID formats a USB vendor and product id pair for blocklist matching
func VIDPID(vid, pid string) string {
	if vid == "" || pid == "" {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(vid)) + ":" + strings.ToUpper(strings.TrimSpace(pid))
}

// IsBlocked checks if a USB device is in the blocklist.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	if vidpid == "" {
		return false
	}

	for _, blocked := range blocklist {
		if vidpid == strings.ToUpper(strings.TrimSpace(blocked)) {
			return true
		}
	}
	return false
}

// IsPathIgnored checks if a device path should be ignored. Paths are
// compared after cleaning and case folding. An I2C path with an address
// suffix ("/dev/i2c-1:0x28") is also ignored when its bus is.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}

	device := normalizedPath(devicePath)
	bus := device
	if i := strings.LastIndex(device, ":0x"); i > 0 {
		bus = device[:i]
	}

	for _, ignorePath := range ignorePaths {
		if ignorePath == "" {
			continue
		}
		ignored := normalizedPath(ignorePath)
		if device == ignored || bus == ignored {
			return true
		}
	}
	return false
}

func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
