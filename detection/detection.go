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


// Package detection finds MFRC522 readers attached to the host. Bus specific
// detectors live in sub-packages and register themselves when imported:
//
//	import (
//	    "github.com/ZaparooProject/go-mfrc522/detection"
//	    _ "github.com/ZaparooProject/go-mfrc522/detection/spi"
//	)
package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Detection errors
var (
	ErrNoDevicesFound      = errors.New("no MFRC522 devices found")
	ErrDetectionTimeout    = errors.New("device detection timed out")
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
)

// Mode controls how intrusive detection may be
type Mode int

const (
	// Passive only lists candidate bus paths and never talks to a device
	Passive Mode = iota
	// Safe reads VersionReg, which has no side effects on the chip
	Safe
	// Full also probes addresses and ports that are not the usual defaults
	Full
)

func (m Mode) String() string {
	switch m {
	case Passive:
		return "passive"
	case Safe:
		return "safe"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Confidence says how sure a detector is that a path leads to an MFRC522
type Confidence int

const (
	// Low means the path exists and could host a reader
	Low Confidence = iota
	// Medium means the path matches a common wiring for the chip
	Medium
	// High means VersionReg answered with a known chip version
	High
)

func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("Confidence(%d)", int(c))
	}
}

// DeviceInfo describes one detected reader
type DeviceInfo struct {
	Metadata   map[string]string
	Transport  string
	Path       string
	Name       string
	Confidence Confidence
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s:%s (%s, %s confidence)", d.Transport, d.Path, d.Name, d.Confidence)
}

// Options configures detection
type Options struct {
	// Transports limits detection to these transport names; empty means all
	Transports []string
	// IgnorePaths are device paths that are never reported or probed
	IgnorePaths []string
	// Blocklist holds USB VID:PID pairs of serial adapters to skip
	Blocklist []string
	Timeout   time.Duration
	Mode      Mode
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{
		Mode:      Safe,
		Timeout:   5 * time.Second,
		Blocklist: DefaultBlocklist(),
	}
}

// Detector finds readers on one kind of bus
type Detector interface {
	// Transport returns the transport name, e.g. "spi"
	Transport() string
	// Detect returns readers found on this bus
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	registryMu sync.RWMutex
	detectors  = make(map[string]Detector)
)

// RegisterDetector adds d to the registry, replacing any detector with the
// same transport name
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	detectors[d.Transport()] = d
}

// Detectors returns the registered detectors ordered by transport name
func Detectors() []Detector {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Detector, 0, len(detectors))
	for _, d := range detectors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Transport() < out[j].Transport() })
	return out
}

// DetectAll runs every registered detector allowed by opts
func DetectAll(opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return DetectAllContext(ctx, opts)
}

// DetectAllContext is DetectAll bounded by ctx. Results are ordered by
// confidence, highest first. A detector error only fails the call when no
// detector found anything.
func DetectAllContext(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}

	var (
		devices []DeviceInfo
		errs    []error
	)
	for _, d := range Detectors() {
		if !transportAllowed(d.Transport(), opts.Transports) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return devices, fmt.Errorf("%w: %w", ErrDetectionTimeout, err)
		}

		found, err := d.Detect(ctx, opts)
		if err != nil {
			if !errors.Is(err, ErrNoDevicesFound) && !errors.Is(err, ErrUnsupportedPlatform) {
				errs = append(errs, fmt.Errorf("%s: %w", d.Transport(), err))
			}
			continue
		}
		for _, dev := range found {
			if !IsPathIgnored(dev.Path, opts.IgnorePaths) {
				devices = append(devices, dev)
			}
		}
	}

	if len(devices) == 0 {
		if len(errs) > 0 {
			return nil, fmt.Errorf("%w: %w", ErrNoDevicesFound, errors.Join(errs...))
		}
		return nil, ErrNoDevicesFound
	}

	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].Confidence > devices[j].Confidence
	})
	return devices, nil
}

func transportAllowed(name string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == name {
			return true
		}
	}
	return false
}
