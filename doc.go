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

/*
Package mfrc522 provides a pure Go register-level driver for the NXP MFRC522
contactless reader chip.

The driver talks to the chip one register at a time and implements the part
of ISO14443-A needed to find a card, read its 4-byte UID and select it:
REQA/WUPA, cascade level 1 anticollision with BCC check, SELECT and HLTA.

Features:
  - SPI transport (the reference bus), plus I2C and UART transports
  - Hardware and soft reset sequencing, timer and modulation setup, antenna control
  - Generic FIFO transceive with an iteration-bounded IRQ poll
  - Optional retry of register accesses on noisy buses (WithRetryConfig)
  - Continuous polling with UID de-duplication in the polling package
  - Bus auto-detection in the detection package

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-mfrc522"
	    "github.com/ZaparooProject/go-mfrc522/transport/spi"
	    "periph.io/x/conn/v3/gpio/gpioreg"
	)

	transport, err := spi.New("/dev/spidev0.0")
	if err != nil {
	    log.Fatal(err)
	}

	device, err := mfrc522.New(transport,
	    mfrc522.WithResetPin(gpioreg.ByName("GPIO25")),
	)
	if err != nil {
	    log.Fatal(err)
	}
	defer device.Close()

	if err := device.Init(); err != nil {
	    log.Fatal(err)
	}

	card, err := device.ScanCard()
	if err != nil {
	    log.Fatal(err)
	}
	if card != nil {
	    fmt.Printf("Card detected: %s\n", card.UID)
	}

Initialization Order:

Init runs hardware reset, a version check, soft reset, Configure and
AntennaOn in that order. Callers driving the steps by hand must keep the
order; the chip usually stops answering otherwise.

Error Handling:

Not finding a card is not an error. RequestCard, Anticollision and SelectTag
report absence through their ok result; errors are reserved for bus failures
and invalid arguments. Init reports a chip that does not answer at all:

	if errors.Is(err, mfrc522.ErrChipNotResponding) {
	    // check wiring and power
	}

Thread Safety:

Device operations are not thread-safe. If you need concurrent access,
hold a mutex around each complete operation, or use polling.Monitor.
*/
package mfrc522
