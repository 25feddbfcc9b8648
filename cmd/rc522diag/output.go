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


package main

import (
	"fmt"
	"io"

	"github.com/ZaparooProject/go-mfrc522/detection"
)

// Output handles consistent formatting of messages
type Output struct {
	w       io.Writer
	verbose bool
}

// NewOutput creates a new output handler
func NewOutput(w io.Writer, verbose bool) *Output {
	return &Output{w: w, verbose: verbose}
}

// ReaderHeader prints the reader being diagnosed
func (o *Output) ReaderHeader(reader detection.DeviceInfo) {
	_, _ = fmt.Fprintf(o.w, "\n== %s ==\n", reader)
}

// Check prints one diagnostic result
func (o *Output) Check(c Check) {
	status := "FAIL"
	switch {
	case c.Skipped:
		status = "SKIP"
	case c.Passed:
		status = "OK"
	}
	_, _ = fmt.Fprintf(o.w, "[%-4s] %s", status, c.Name)
	if c.Detail != "" {
		_, _ = fmt.Fprintf(o.w, ": %s", c.Detail)
	}
	_, _ = fmt.Fprintln(o.w)
}

// Error prints an error message
func (o *Output) Error(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, "ERROR: "+format+"\n", args...)
}

// Info prints an info message
func (o *Output) Info(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, "INFO: "+format+"\n", args...)
}

// Verbose prints only if verbose mode is enabled
func (o *Output) Verbose(format string, args ...any) {
	if o.verbose {
		_, _ = fmt.Fprintf(o.w, "   "+format+"\n", args...)
	}
}
