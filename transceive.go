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

// TransceiveResult is the outcome of one command exchange through the FIFO.
// A result with OK false is a normal outcome (no card, chip error bits, poll
// budget exhausted), not an error.
type TransceiveResult struct {
	// Data holds the bytes read back from the FIFO, empty unless OK
	Data []byte
	// Bits is the number of valid received bits
	Bits int
	// ErrorFlags is the raw ErrorReg value read after the command
	ErrorFlags ChipError
	// OK is true when the chip signalled completion without fatal errors
	OK bool
	// TimedOut is true when the poll budget ran out before any IRQ bit
	TimedOut bool
}

// Transceive loads payload into the FIFO, runs cmd and collects the response.
// It busy-polls ComIrqReg at most PollBudget times and never retries; the
// returned error covers bus failures and invalid input only.
func (d *Device) Transceive(cmd Command, payload []byte) (TransceiveResult, error) {
	if !cmd.Valid() {
		return TransceiveResult{}, fmt.Errorf("%w: 0x%02X", ErrInvalidCommand, uint8(cmd))
	}
	if len(payload) > fifoSize {
		return TransceiveResult{}, fmt.Errorf("%w: payload of %d bytes exceeds FIFO", ErrInvalidParameter, len(payload))
	}

	if err := d.startCommand(cmd, payload); err != nil {
		return TransceiveResult{}, err
	}

	completed, err := d.waitForIRQ()
	if err != nil {
		return TransceiveResult{}, err
	}

	if err := d.ClearBits(BitFramingReg, startSend); err != nil {
		return TransceiveResult{}, err
	}

	if !completed {
		debugf("%s: no IRQ after %d polls", cmd, d.config.PollBudget)
		return TransceiveResult{TimedOut: true}, nil
	}

	return d.collectResponse(cmd)
}

// startCommand resets IRQ and FIFO state, stages payload and starts cmd
func (d *Device) startCommand(cmd Command, payload []byte) error {
	if err := d.WriteRegister(ComIEnReg, irqEnableMask|irqInvert); err != nil {
		return err
	}
	if err := d.ClearBits(ComIrqReg, irqSet1); err != nil {
		return err
	}
	if err := d.SetBits(FIFOLevelReg, fifoFlushBuffer); err != nil {
		return err
	}
	if err := d.WriteRegister(CommandReg, byte(CommandIdle)); err != nil {
		return err
	}

	for _, b := range payload {
		if err := d.WriteRegister(FIFODataReg, b); err != nil {
			return err
		}
	}

	if err := d.WriteRegister(CommandReg, byte(cmd)); err != nil {
		return err
	}
	if cmd == CommandTransceive {
		return d.SetBits(BitFramingReg, startSend)
	}
	return nil
}

// waitForIRQ polls ComIrqReg until the timer, receive or idle IRQ is set.
// It returns false once PollBudget reads have passed without one. An IRQ
// first seen on the last allowed read counts as a timeout.
func (d *Device) waitForIRQ() (bool, error) {
	for polls := 1; polls <= d.config.PollBudget; polls++ {
		irq, err := d.ReadRegister(ComIrqReg)
		if err != nil {
			return false, err
		}
		if polls < d.config.PollBudget && irq&(irqTimer|irqWaitMask) != 0 {
			return true, nil
		}
	}
	return false, nil
}

// collectResponse checks ErrorReg and drains the FIFO for Transceive
func (d *Device) collectResponse(cmd Command) (TransceiveResult, error) {
	errReg, err := d.ReadRegister(ErrorReg)
	if err != nil {
		return TransceiveResult{}, err
	}

	result := TransceiveResult{ErrorFlags: ChipError(errReg)}
	if result.ErrorFlags.Fatal() {
		debugf("%s: chip error flags %s", cmd, result.ErrorFlags)
		return result, nil
	}

	result.OK = true
	if cmd != CommandTransceive {
		return result, nil
	}

	level, err := d.ReadRegister(FIFOLevelReg)
	if err != nil {
		return TransceiveResult{}, err
	}
	count := min(int(level&fifoLevelMask), fifoSize)

	result.Data = make([]byte, 0, count)
	for i := 0; i < count; i++ {
		b, err := d.ReadRegister(FIFODataReg)
		if err != nil {
			return TransceiveResult{}, err
		}
		result.Data = append(result.Data, b)
	}

	control, err := d.ReadRegister(ControlReg)
	if err != nil {
		return TransceiveResult{}, err
	}
	result.Bits = receivedBits(count, control&rxLastBitsMask)

	return result, nil
}

// receivedBits computes the bit length of a response whose last byte
// carries lastBits valid bits (0 meaning a whole byte)
func receivedBits(count int, lastBits byte) int {
	if count == 0 {
		return 0
	}
	if lastBits == 0 {
		return count * 8
	}
	return (count-1)*8 + int(lastBits)
}
