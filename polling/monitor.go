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
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
)

// Monitor handles continuous card monitoring with state machine
type Monitor struct {
	device         *mfrc522.Device
	config         *Config
	OnCardDetected func(card *mfrc522.Card) error
	OnCardChanged  func(card *mfrc522.Card) error
	OnCardRemoved  func()
	now            func() time.Time
	state          CardState
	metrics        metrics
	deviceMu       sync.Mutex
	stateMu        sync.RWMutex
	isPaused       atomic.Bool
}

// NewMonitor creates a new card monitor. The device must already be
// initialised.
func NewMonitor(device *mfrc522.Device, config *Config) *Monitor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Monitor{
		device: device,
		config: config,
		now:    time.Now,
	}
}

// Start polls until ctx is done or the transport is closed
func (m *Monitor) Start(ctx context.Context) error {
	if err := m.config.Validate(); err != nil {
		return err
	}

	ticker := time.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	for {
		if !m.isPaused.Load() {
			if err := m.pollOnce(); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// GetState returns a copy of the current card state
func (m *Monitor) GetState() CardState {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// GetDevice returns the underlying MFRC522 device. Use WithDevice to talk
// to it while the monitor is running.
func (m *Monitor) GetDevice() *mfrc522.Device {
	return m.device
}

// Metrics returns a snapshot of the monitor counters
func (m *Monitor) Metrics() Metrics {
	return m.metrics.snapshot()
}

// Pause stops scan cycles until Resume is called
func (m *Monitor) Pause() {
	m.isPaused.Store(true)
}

// Resume restarts scan cycles after Pause
func (m *Monitor) Resume() {
	m.isPaused.Store(false)
}

// IsPaused reports whether scanning is paused
func (m *Monitor) IsPaused() bool {
	return m.isPaused.Load()
}

// WithDevice runs fn with exclusive access to the device. Scan cycles wait
// until fn returns.
func (m *Monitor) WithDevice(fn func(*mfrc522.Device) error) error {
	m.deviceMu.Lock()
	defer m.deviceMu.Unlock()
	return fn(m.device)
}

// Close reports a present card as removed and closes the device
func (m *Monitor) Close() error {
	m.handleCardRemoval()

	m.deviceMu.Lock()
	defer m.deviceMu.Unlock()
	if err := m.device.Close(); err != nil {
		return fmt.Errorf("failed to close device: %w", err)
	}
	return nil
}

// scan runs one REQA/WUPA, anticollision, select and optional HLTA sequence
// while holding the device
func (m *Monitor) scan() (*mfrc522.Card, error) {
	m.deviceMu.Lock()
	defer m.deviceMu.Unlock()

	card, err := m.device.ScanCardMode(m.config.RequestMode)
	if err != nil || card == nil {
		return nil, err
	}

	if m.config.HaltAfterRead {
		if err := m.device.Halt(); err != nil {
			return nil, err
		}
	}
	return card, nil
}

// pollOnce performs a single scan cycle. Only a closed transport is
// returned as an error; other bus errors are counted and clear the card.
func (m *Monitor) pollOnce() error {
	start := m.now()
	card, err := m.scan()
	now := m.now()

	m.metrics.pollCycles.Add(1)
	m.metrics.lastPollLatency.Store(int64(now.Sub(start)))

	if err != nil {
		m.metrics.pollErrors.Add(1)
		if errors.Is(err, mfrc522.ErrTransportClosed) {
			return fmt.Errorf("polling stopped: %w", err)
		}
		mfrc522.Debugf("poll cycle failed: %v", err)
		m.handleCardRemoval()
		return nil
	}

	if card == nil {
		m.checkRemoval(now)
		return nil
	}

	m.processCard(card, now)
	return nil
}

// processCard updates the state for a sighting and fires the matching callback
func (m *Monitor) processCard(card *mfrc522.Card, now time.Time) {
	m.stateMu.Lock()
	wasPresent := m.state.Present
	previous := m.state.LastCard.UID
	m.state.TransitionToDetected(*card, now)
	m.stateMu.Unlock()

	var cb func(*mfrc522.Card) error
	switch {
	case !wasPresent:
		cb = m.OnCardDetected
	case previous != card.UID:
		cb = m.OnCardChanged
	default:
		return
	}

	m.metrics.cardsDetected.Add(1)
	if cb == nil {
		return
	}
	if err := cb(card); err != nil {
		m.metrics.callbackErrors.Add(1)
		mfrc522.Debugf("card callback for %s failed: %v", card.UID, err)
	}
}

func (m *Monitor) checkRemoval(now time.Time) {
	m.stateMu.RLock()
	expired := m.state.Expired(now, m.config.CardRemovalTimeout)
	m.stateMu.RUnlock()

	if expired {
		m.handleCardRemoval()
	}
}

// handleCardRemoval handles card removal state changes
func (m *Monitor) handleCardRemoval() {
	m.stateMu.Lock()
	present := m.state.Present
	m.state.TransitionToIdle()
	m.stateMu.Unlock()

	if !present {
		return
	}
	m.metrics.cardsRemoved.Add(1)
	if m.OnCardRemoved != nil {
		m.OnCardRemoved()
	}
}
