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


//go:build linux

package i2c

import (
	"context"
	"fmt"
	"path/filepath"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"golang.org/x/sys/unix"
)

const (
	// i2cSlave is the ioctl command to set the I2C slave address
	i2cSlave = 0x0703

	// i2cFuncs is the ioctl command to get adapter functionality
	i2cFuncs = 0x0705

	// i2cFuncI2C indicates plain I2C support
	i2cFuncI2C = 0x00000001
)

// listBuses returns /dev/i2c-* adapters that support plain I2C transfers
func listBuses() ([]string, error) {
	matches, err := filepath.Glob("/dev/i2c-*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan for I2C devices: %w", err)
	}

	buses := make([]string, 0, len(matches))
	for _, path := range matches {
		fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
		if err != nil {
			continue
		}
		funcs, err := unix.IoctlGetUint32(fd, i2cFuncs)
		_ = unix.Close(fd)
		if err != nil || funcs&i2cFuncI2C == 0 {
			continue
		}
		buses = append(buses, path)
	}
	return buses, nil
}

// probeVersion selects addr on bus and reads VersionReg: one write of the
// register address, then a one byte read
func probeVersion(ctx context.Context, bus string, addr uint16) (byte, error) {
	fd, err := unix.Open(bus, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", bus, err)
	}
	defer func() { _ = unix.Close(fd) }()

	if err := unix.IoctlSetInt(fd, i2cSlave, int(addr)); err != nil {
		return 0, fmt.Errorf("select address 0x%02X: %w", addr, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if _, err := unix.Write(fd, []byte{byte(mfrc522.VersionReg)}); err != nil {
		return 0, fmt.Errorf("write register address: %w", err)
	}
	buf := make([]byte, 1)
	n, err := unix.Read(fd, buf)
	if err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	if n != 1 {
		return 0, fmt.Errorf("read version: got %d bytes", n)
	}
	return buf[0], nil
}
