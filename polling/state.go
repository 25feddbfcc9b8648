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
	"fmt"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
)

// CardDetectionState represents the finite state machine for card detection
type CardDetectionState int

const (
	// StateIdle means no card is in the field
	StateIdle CardDetectionState = iota
	// StateTagDetected means a card was seen within the removal timeout
	StateTagDetected
)

func (s CardDetectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTagDetected:
		return "detected"
	default:
		return fmt.Sprintf("CardDetectionState(%d)", int(s))
	}
}

// CardState tracks the state of a card on a reader
type CardState struct {
	DetectedAt     time.Time
	LastSeenTime   time.Time
	LastCard       mfrc522.Card
	DetectionState CardDetectionState
	Present        bool
}

// TransitionToDetected records a sighting of card at now
func (cs *CardState) TransitionToDetected(card mfrc522.Card, now time.Time) {
	if !cs.Present || cs.LastCard.UID != card.UID {
		cs.DetectedAt = now
	}
	cs.DetectionState = StateTagDetected
	cs.Present = true
	cs.LastCard = card
	cs.LastSeenTime = now
}

// TransitionToIdle resets to idle state
func (cs *CardState) TransitionToIdle() {
	*cs = CardState{}
}

// Expired reports whether a present card has gone unseen for at least timeout
func (cs *CardState) Expired(now time.Time, timeout time.Duration) bool {
	return cs.Present && now.Sub(cs.LastSeenTime) >= timeout
}
