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
	"bytes"
	"sync"
)

// RegisterWrite records one register write seen by MockTransport
type RegisterWrite struct {
	Reg   Register
	Value byte
}

// VirtualCard is an ISO14443-A card with a 4-byte UID placed in the field of
// a MockTransport
type VirtualCard struct {
	ATQA ATQA
	UID  UID
	SAK  byte
	// BadBCC makes the card answer anticollision with a wrong check byte
	BadBCC bool

	ready  bool
	halted bool
}

// NewVirtualCard creates a MIFARE Classic 1K style card with the given UID
func NewVirtualCard(uid UID) *VirtualCard {
	return &VirtualCard{
		ATQA: ATQA{0x04, 0x00},
		UID:  uid,
		SAK:  0x08,
	}
}

// Halted reports whether the card received HLTA
func (c *VirtualCard) Halted() bool {
	return c.halted
}

// MockTransport is a register-level model of an MFRC522 for tests. It
// implements the FIFO, the ComIrqReg Set1 write semantics, SoftReset and the
// Transceive command against an optional VirtualCard. Responses can also be
// scripted with QueueResponse. It is safe for concurrent use.
type MockTransport struct {
	card       *VirtualCard
	writeErr   error
	readErr    error
	reads      map[Register]int
	frames     [][]byte
	fifo       []byte
	responses  [][]byte
	writes     []RegisterWrite
	regs       [64]byte
	mu         sync.Mutex
	errorFlags byte
	version    byte
	silent     bool
	closed     bool
}

// NewMockTransport creates a virtual chip reporting version 0x92 with an
// empty field
func NewMockTransport() *MockTransport {
	m := &MockTransport{
		reads:   make(map[Register]int),
		version: VersionMFRC522V2,
	}
	m.resetRegisters()
	return m
}

func (m *MockTransport) resetRegisters() {
	m.regs = [64]byte{}
	m.regs[CommandReg] = byte(CommandIdle)
	m.regs[ComIEnReg] = 0x80
	m.regs[ComIrqReg] = 0x14
	m.regs[ModeReg] = 0x3F
	m.regs[TxControlReg] = 0x80
	m.regs[RFCfgReg] = 0x48
	m.regs[VersionReg] = m.version
	m.fifo = m.fifo[:0]
}

// SetVersion sets the VersionReg value
func (m *MockTransport) SetVersion(version byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version = version
	m.regs[VersionReg] = version
}

// InsertCard places card in the field
func (m *MockTransport) InsertCard(card *VirtualCard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.card = card
}

// RemoveCard empties the field
func (m *MockTransport) RemoveCard() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.card = nil
}

// QueueResponse scripts the answer to the next Transceive. A nil response
// means nothing answers and the chip timer fires. Queued responses take
// precedence over the virtual card.
func (m *MockTransport) QueueResponse(resp []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if resp != nil {
		resp = append([]byte{}, resp...)
	}
	m.responses = append(m.responses, resp)
}

// SetErrorFlags sets the ErrorReg value reported after the next command
func (m *MockTransport) SetErrorFlags(flags byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorFlags = flags
}

// SetSilent makes the chip never raise an IRQ bit, as if it hung
func (m *MockTransport) SetSilent(silent bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.silent = silent
}

// SetReadError makes every subsequent read fail with err
func (m *MockTransport) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// SetWriteError makes every subsequent write fail with err
func (m *MockTransport) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Writes returns all register writes so far
func (m *MockTransport) Writes() []RegisterWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RegisterWrite(nil), m.writes...)
}

// ReadCount returns how many times reg was read
func (m *MockTransport) ReadCount(reg Register) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads[reg]
}

// Frames returns every frame transmitted with Transceive
func (m *MockTransport) Frames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.frames))
	for i, f := range m.frames {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// Peek returns the stored value of reg without counting a read
func (m *MockTransport) Peek(reg Register) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[reg&0x3F]
}

// ClearLog forgets recorded writes, reads and frames
func (m *MockTransport) ClearLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
	m.frames = nil
	m.reads = make(map[Register]int)
}

// WriteRegister implements Transport
func (m *MockTransport) WriteRegister(reg Register, value byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrTransportClosed
	}
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes = append(m.writes, RegisterWrite{Reg: reg, Value: value})

	switch reg {
	case FIFODataReg:
		if len(m.fifo) < fifoSize {
			m.fifo = append(m.fifo, value)
		}
	case FIFOLevelReg:
		if value&fifoFlushBuffer != 0 {
			m.fifo = m.fifo[:0]
		}
	case ComIrqReg:
		if value&irqSet1 != 0 {
			m.regs[ComIrqReg] |= value &^ irqSet1
		} else {
			m.regs[ComIrqReg] &^= value
		}
	case CommandReg:
		m.regs[CommandReg] = value
		if Command(value&0x0F) == CommandSoftReset {
			m.resetRegisters()
		}
	case BitFramingReg:
		m.regs[BitFramingReg] = value
		if value&startSend != 0 && Command(m.regs[CommandReg]&0x0F) == CommandTransceive {
			m.exchange()
		}
	case VersionReg:
		// read-only
	default:
		m.regs[reg&0x3F] = value
	}
	return nil
}

// ReadRegister implements Transport
func (m *MockTransport) ReadRegister(reg Register) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrTransportClosed
	}
	if m.readErr != nil {
		return 0, m.readErr
	}
	m.reads[reg]++

	switch reg {
	case FIFODataReg:
		if len(m.fifo) == 0 {
			return 0, nil
		}
		b := m.fifo[0]
		m.fifo = m.fifo[1:]
		return b, nil
	case FIFOLevelReg:
		return byte(len(m.fifo)), nil
	default:
		return m.regs[reg&0x3F], nil
	}
}

// exchange transmits the FIFO and loads the answer. Called with mu held.
func (m *MockTransport) exchange() {
	frame := append([]byte(nil), m.fifo...)
	m.frames = append(m.frames, frame)
	m.fifo = m.fifo[:0]
	m.regs[ErrorReg] = m.errorFlags
	m.errorFlags = 0
	m.regs[ControlReg] &^= rxLastBitsMask

	if m.silent {
		return
	}

	var resp []byte
	var answered bool
	if len(m.responses) > 0 {
		resp = m.responses[0]
		m.responses = m.responses[1:]
		answered = resp != nil
	} else {
		resp, answered = m.cardResponse(frame, m.regs[BitFramingReg]&shortFrameBits)
	}

	if !answered {
		m.regs[ComIrqReg] |= irqTimer
		return
	}
	m.fifo = append(m.fifo, resp...)
	m.regs[ComIrqReg] |= irqWaitMask
}

// cardResponse plays the PICC side of ISO14443-3 for the inserted card
func (m *MockTransport) cardResponse(frame []byte, txLastBits byte) ([]byte, bool) {
	c := m.card
	if c == nil {
		return nil, false
	}

	switch {
	case len(frame) == 1 && txLastBits == shortFrameBits &&
		(frame[0] == byte(RequestIdle) || frame[0] == byte(RequestAll)):
		if c.halted && frame[0] == byte(RequestIdle) {
			return nil, false
		}
		c.halted = false
		c.ready = true
		return c.ATQA[:], true

	case bytes.Equal(frame, []byte{piccAnticollCL1, nvbAnticoll}):
		if !c.ready {
			return nil, false
		}
		check := c.UID.BCC()
		if c.BadBCC {
			check ^= 0xFF
		}
		return append(append([]byte{}, c.UID[:]...), check), true

	case len(frame) == 7 && frame[0] == piccAnticollCL1 && frame[1] == nvbSelect:
		if !c.ready || !bytes.Equal(frame[2:6], c.UID[:]) || frame[6] != c.UID.BCC() {
			return nil, false
		}
		return []byte{c.SAK}, true

	case bytes.Equal(frame, []byte{piccHalt, 0x00}):
		c.halted = true
		c.ready = false
		return nil, false

	default:
		c.ready = false
		return nil, false
	}
}

// Close implements Transport
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsConnected implements Transport
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type implements Transport
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// EchoTransport is a plain register file: every read returns the last value
// written to that address. It has none of the chip's side effects.
type EchoTransport struct {
	regs map[Register]byte
	mu   sync.Mutex
}

// NewEchoTransport creates an empty register file
func NewEchoTransport() *EchoTransport {
	return &EchoTransport{regs: make(map[Register]byte)}
}

// WriteRegister implements Transport
func (e *EchoTransport) WriteRegister(reg Register, value byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.regs[reg] = value
	return nil
}

// ReadRegister implements Transport
func (e *EchoTransport) ReadRegister(reg Register) (byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.regs[reg], nil
}

// Close implements Transport
func (*EchoTransport) Close() error { return nil }

// IsConnected implements Transport
func (*EchoTransport) IsConnected() bool { return true }

// Type implements Transport
func (*EchoTransport) Type() TransportType { return TransportMock }

var (
	_ Transport = (*MockTransport)(nil)
	_ Transport = (*EchoTransport)(nil)
)
