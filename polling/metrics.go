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


package polling

import (
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters of a Monitor
type Metrics struct {
	PollCycles      int64         // Total number of scan cycles
	PollErrors      int64         // Cycles that ended in a bus error
	CardsDetected   int64         // New or changed cards reported
	CardsRemoved    int64         // Removals reported
	CallbackErrors  int64         // Errors returned by callbacks
	LastPollLatency time.Duration // Duration of the last scan cycle
}

type metrics struct {
	pollCycles      atomic.Int64
	pollErrors      atomic.Int64
	cardsDetected   atomic.Int64
	cardsRemoved    atomic.Int64
	callbackErrors  atomic.Int64
	lastPollLatency atomic.Int64 // in nanoseconds
}

func (m *metrics) snapshot() Metrics {
	return Metrics{
		PollCycles:      m.pollCycles.Load(),
		PollErrors:      m.pollErrors.Load(),
		CardsDetected:   m.cardsDetected.Load(),
		CardsRemoved:    m.cardsRemoved.Load(),
		CallbackErrors:  m.callbackErrors.Load(),
		LastPollLatency: time.Duration(m.lastPollLatency.Load()),
	}
}
