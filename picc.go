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
	"encoding/hex"
	"fmt"
)

// ATQA is the 2-byte answer of a card to REQA or WUPA
type ATQA [2]byte

func (a ATQA) String() string {
	return hex.EncodeToString(a[:])
}

// UID is a single-size (cascade level 1) card identifier
type UID [4]byte

func (u UID) String() string {
	return hex.EncodeToString(u[:])
}

// BCC returns the block check character of the UID (XOR of its bytes)
func (u UID) BCC() byte {
	return bcc(u[:])
}

// Card is the result of a successful request, anticollision and select
type Card struct {
	ATQA ATQA
	UID  UID
	SAK  byte
}

func (c *Card) String() string {
	return fmt.Sprintf("UID %s (ATQA %s, SAK %02x)", c.UID, c.ATQA, c.SAK)
}

func bcc(in []byte) byte {
	var out byte
	for _, b := range in {
		out ^= b
	}
	return out
}

// RequestCard sends REQA or WUPA as a 7-bit short frame. ok is false when no
// card answered with exactly two bytes; that is the normal empty-field case.
func (d *Device) RequestCard(mode RequestMode) (atqa ATQA, ok bool, err error) {
	if err := d.WriteRegister(BitFramingReg, shortFrameBits); err != nil {
		return ATQA{}, false, err
	}

	result, err := d.Transceive(CommandTransceive, []byte{byte(mode)})
	if err != nil {
		return ATQA{}, false, fmt.Errorf("%s: %w", mode, err)
	}
	if !result.OK || len(result.Data) != len(atqa) {
		return ATQA{}, false, nil
	}

	copy(atqa[:], result.Data)
	return atqa, true, nil
}

// Anticollision reads the UID of the card at cascade level 1. ok is false if
// the card did not answer with UID+BCC or the BCC does not match, which
// catches collided or corrupted reads.
func (d *Device) Anticollision() (uid UID, ok bool, err error) {
	if err := d.WriteRegister(BitFramingReg, 0x00); err != nil {
		return UID{}, false, err
	}

	result, err := d.Transceive(CommandTransceive, []byte{piccAnticollCL1, nvbAnticoll})
	if err != nil {
		return UID{}, false, fmt.Errorf("anticollision: %w", err)
	}
	if !result.OK || len(result.Data) != len(uid)+1 {
		return UID{}, false, nil
	}

	copy(uid[:], result.Data)
	if uid.BCC() != result.Data[len(uid)] {
		debugf("anticollision: BCC mismatch for %s: got %02x, want %02x",
			uid, result.Data[len(uid)], uid.BCC())
		return UID{}, false, nil
	}

	return uid, true, nil
}

// SelectTag selects the card with the given UID. It succeeds when the card
// answers with a single SAK byte; the SAK value itself is not checked.
func (d *Device) SelectTag(uid UID) (bool, error) {
	_, ok, err := d.SelectTagSAK(uid)
	return ok, err
}

// SelectTagSAK is SelectTag that also returns the SAK byte
func (d *Device) SelectTagSAK(uid UID) (sak byte, ok bool, err error) {
	payload := make([]byte, 0, 7)
	payload = append(payload, piccAnticollCL1, nvbSelect)
	payload = append(payload, uid[:]...)
	payload = append(payload, uid.BCC())

	result, err := d.Transceive(CommandTransceive, payload)
	if err != nil {
		return 0, false, fmt.Errorf("select %s: %w", uid, err)
	}
	if !result.OK || len(result.Data) != 1 {
		return 0, false, nil
	}
	return result.Data[0], true, nil
}

// Halt puts the selected card into the HALT state. Whether the chip reports
// success is ignored; only bus errors are returned.
func (d *Device) Halt() error {
	if _, err := d.Transceive(CommandTransceive, []byte{piccHalt, 0x00}); err != nil {
		return fmt.Errorf("halt: %w", err)
	}
	return nil
}

// ScanCard runs REQA, anticollision and select. It returns nil without an
// error when no card completes all three steps.
func (d *Device) ScanCard() (*Card, error) {
	return d.ScanCardMode(RequestIdle)
}

// ScanCardMode is ScanCard with an explicit request mode
func (d *Device) ScanCardMode(mode RequestMode) (*Card, error) {
	atqa, ok, err := d.RequestCard(mode)
	if err != nil || !ok {
		return nil, err
	}

	uid, ok, err := d.Anticollision()
	if err != nil || !ok {
		return nil, err
	}

	sak, ok, err := d.SelectTagSAK(uid)
	if err != nil || !ok {
		return nil, err
	}

	return &Card{ATQA: atqa, UID: uid, SAK: sak}, nil
}
