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
	"fmt"
	"log"
	"sync/atomic"
)

var debugEnabled atomic.Bool

// SetDebugEnabled turns debug output on or off for the whole library
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugEnabled reports whether debug output is on
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// Debugf prints a debug message when debug output is enabled. Sub-packages
// log through this so a single switch controls the library.
func Debugf(format string, args ...any) {
	if debugEnabled.Load() {
		log.Printf("[mfrc522] "+format, args...)
	}
}

func debugf(format string, args ...any) {
	Debugf(format, args...)
}

func debugln(args ...any) {
	if debugEnabled.Load() {
		log.Print("[mfrc522] " + fmt.Sprintln(args...))
	}
}
