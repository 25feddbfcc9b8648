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
	"sync"
	"testing"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t  time.Time
	mu sync.Mutex
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// createMonitor creates a monitor over a mock chip with a manual clock
func createMonitor(t *testing.T, config *Config) (*Monitor, *mfrc522.MockTransport, *fakeClock) {
	t.Helper()
	mock := mfrc522.NewMockTransport()
	device, err := mfrc522.New(mock)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	monitor := NewMonitor(device, config)
	monitor.now = clock.Now
	return monitor, mock, clock
}

type events struct {
	detected []mfrc522.UID
	changed  []mfrc522.UID
	removed  int
	mu       sync.Mutex
}

func (e *events) attach(m *Monitor) {
	m.OnCardDetected = func(card *mfrc522.Card) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.detected = append(e.detected, card.UID)
		return nil
	}
	m.OnCardChanged = func(card *mfrc522.Card) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.changed = append(e.changed, card.UID)
		return nil
	}
	m.OnCardRemoved = func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.removed++
	}
}

func (e *events) counts() (detected, changed, removed int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.detected), len(e.changed), e.removed
}

var (
	uidA = mfrc522.UID{0x12, 0x34, 0x56, 0x78}
	uidB = mfrc522.UID{0xAB, 0xCD, 0xEF, 0x01}
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		modify  func(*Config)
		name    string
		wantErr bool
	}{
		{name: "Default", modify: func(*Config) {}},
		{name: "Zero_Interval", modify: func(c *Config) { c.PollInterval = 0 }, wantErr: true},
		{name: "Timeout_Below_Interval", modify: func(c *Config) { c.CardRemovalTimeout = 50 * time.Millisecond }, wantErr: true},
		{name: "Timeout_Equals_Interval", modify: func(c *Config) { c.CardRemovalTimeout = c.PollInterval }},
		{name: "Bad_Request_Mode", modify: func(c *Config) { c.RequestMode = 0x30 }, wantErr: true},
		{name: "REQA_With_Halt", modify: func(c *Config) { c.RequestMode = mfrc522.RequestIdle }, wantErr: true},
		{
			name: "REQA_Without_Halt",
			modify: func(c *Config) {
				c.RequestMode = mfrc522.RequestIdle
				c.HaltAfterRead = false
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewMonitor_DefaultConfig(t *testing.T) {
	t.Parallel()

	monitor, _, _ := createMonitor(t, nil)
	assert.Equal(t, DefaultConfig(), monitor.config)
	assert.NotNil(t, monitor.GetDevice())
	assert.False(t, monitor.IsPaused())
	assert.Equal(t, StateIdle, monitor.GetState().DetectionState)
}

func TestMonitor_SameCardReportedOnce(t *testing.T) {
	t.Parallel()

	monitor, mock, clock := createMonitor(t, nil)
	var ev events
	ev.attach(monitor)

	card := mfrc522.NewVirtualCard(uidA)
	mock.InsertCard(card)

	for i := 0; i < 5; i++ {
		require.NoError(t, monitor.pollOnce())
		clock.Advance(100 * time.Millisecond)
	}

	detected, changed, removed := ev.counts()
	assert.Equal(t, 1, detected)
	assert.Zero(t, changed)
	assert.Zero(t, removed)
	assert.Equal(t, []mfrc522.UID{uidA}, ev.detected)
	assert.True(t, card.Halted(), "card is halted after every read")

	state := monitor.GetState()
	assert.True(t, state.Present)
	assert.Equal(t, StateTagDetected, state.DetectionState)
	assert.Equal(t, uidA, state.LastCard.UID)
	assert.Equal(t, byte(0x08), state.LastCard.SAK)

	metrics := monitor.Metrics()
	assert.Equal(t, int64(5), metrics.PollCycles)
	assert.Equal(t, int64(1), metrics.CardsDetected)
	assert.Zero(t, metrics.PollErrors)
}

func TestMonitor_HaltFrameSent(t *testing.T) {
	t.Parallel()

	monitor, mock, _ := createMonitor(t, nil)
	mock.InsertCard(mfrc522.NewVirtualCard(uidA))

	require.NoError(t, monitor.pollOnce())
	assert.Equal(t, [][]byte{
		{0x52},
		{0x93, 0x20},
		{0x93, 0x70, 0x12, 0x34, 0x56, 0x78, 0x08},
		{0x50, 0x00},
	}, mock.Frames())
}

func TestMonitor_NoHaltWithREQA(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.RequestMode = mfrc522.RequestIdle
	cfg.HaltAfterRead = false
	monitor, mock, _ := createMonitor(t, cfg)
	card := mfrc522.NewVirtualCard(uidA)
	mock.InsertCard(card)

	require.NoError(t, monitor.pollOnce())
	require.NoError(t, monitor.pollOnce())

	assert.False(t, card.Halted())
	assert.Len(t, mock.Frames(), 6)
	assert.Equal(t, []byte{0x26}, mock.Frames()[0])
}

func TestMonitor_CardChanged(t *testing.T) {
	t.Parallel()

	monitor, mock, clock := createMonitor(t, nil)
	var ev events
	ev.attach(monitor)

	mock.InsertCard(mfrc522.NewVirtualCard(uidA))
	require.NoError(t, monitor.pollOnce())

	clock.Advance(100 * time.Millisecond)
	mock.InsertCard(mfrc522.NewVirtualCard(uidB))
	require.NoError(t, monitor.pollOnce())

	assert.Equal(t, []mfrc522.UID{uidA}, ev.detected)
	assert.Equal(t, []mfrc522.UID{uidB}, ev.changed)
	assert.Zero(t, ev.removed)
	assert.Equal(t, uidB, monitor.GetState().LastCard.UID)
	assert.Equal(t, int64(2), monitor.Metrics().CardsDetected)
}

func TestMonitor_RemovalAfterTimeout(t *testing.T) {
	t.Parallel()

	monitor, mock, clock := createMonitor(t, nil)
	var ev events
	ev.attach(monitor)

	mock.InsertCard(mfrc522.NewVirtualCard(uidA))
	require.NoError(t, monitor.pollOnce())
	mock.RemoveCard()

	clock.Advance(100 * time.Millisecond)
	require.NoError(t, monitor.pollOnce())
	clock.Advance(100 * time.Millisecond)
	require.NoError(t, monitor.pollOnce())

	_, _, removed := ev.counts()
	assert.Zero(t, removed, "card still inside the removal timeout")
	assert.True(t, monitor.GetState().Present)

	clock.Advance(100 * time.Millisecond)
	require.NoError(t, monitor.pollOnce())

	_, _, removed = ev.counts()
	assert.Equal(t, 1, removed)
	assert.False(t, monitor.GetState().Present)
	assert.Equal(t, StateIdle, monitor.GetState().DetectionState)

	clock.Advance(time.Second)
	require.NoError(t, monitor.pollOnce())
	_, _, removed = ev.counts()
	assert.Equal(t, 1, removed, "removal is reported once")
	assert.Equal(t, int64(1), monitor.Metrics().CardsRemoved)
}

func TestMonitor_ReinsertAfterRemoval(t *testing.T) {
	t.Parallel()

	monitor, mock, clock := createMonitor(t, nil)
	var ev events
	ev.attach(monitor)

	mock.InsertCard(mfrc522.NewVirtualCard(uidA))
	require.NoError(t, monitor.pollOnce())
	mock.RemoveCard()
	clock.Advance(500 * time.Millisecond)
	require.NoError(t, monitor.pollOnce())

	mock.InsertCard(mfrc522.NewVirtualCard(uidA))
	require.NoError(t, monitor.pollOnce())

	detected, changed, removed := ev.counts()
	assert.Equal(t, 2, detected)
	assert.Zero(t, changed)
	assert.Equal(t, 1, removed)
}

func TestMonitor_BusErrorClearsCard(t *testing.T) {
	t.Parallel()

	monitor, mock, _ := createMonitor(t, nil)
	var ev events
	ev.attach(monitor)

	mock.InsertCard(mfrc522.NewVirtualCard(uidA))
	require.NoError(t, monitor.pollOnce())

	mock.SetReadError(mfrc522.ErrTransportRead)
	require.NoError(t, monitor.pollOnce(), "bus errors do not stop polling")

	_, _, removed := ev.counts()
	assert.Equal(t, 1, removed)
	assert.Equal(t, int64(1), monitor.Metrics().PollErrors)

	require.NoError(t, monitor.pollOnce())
	_, _, removed = ev.counts()
	assert.Equal(t, 1, removed)
}

func TestMonitor_CallbackErrorCounted(t *testing.T) {
	t.Parallel()

	monitor, mock, _ := createMonitor(t, nil)
	monitor.OnCardDetected = func(*mfrc522.Card) error {
		return errors.New("handler failed")
	}

	mock.InsertCard(mfrc522.NewVirtualCard(uidA))
	require.NoError(t, monitor.pollOnce())

	assert.Equal(t, int64(1), monitor.Metrics().CallbackErrors)
	assert.True(t, monitor.GetState().Present, "card stays tracked when the handler fails")
}

func TestMonitor_ClosedTransportStops(t *testing.T) {
	t.Parallel()

	monitor, _, _ := createMonitor(t, nil)
	require.NoError(t, monitor.GetDevice().Close())

	err := monitor.pollOnce()
	require.ErrorIs(t, err, mfrc522.ErrTransportClosed)

	err = monitor.Start(context.Background())
	require.ErrorIs(t, err, mfrc522.ErrTransportClosed)
}

func TestMonitor_StartInvalidConfig(t *testing.T) {
	t.Parallel()

	monitor, mock, _ := createMonitor(t, &Config{})
	err := monitor.Start(context.Background())
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Empty(t, mock.Frames())
}

func TestMonitor_StartDetectsAndCancels(t *testing.T) {
	t.Parallel()

	mock := mfrc522.NewMockTransport()
	device, err := mfrc522.New(mock)
	require.NoError(t, err)

	monitor := NewMonitor(device, &Config{
		PollInterval:       5 * time.Millisecond,
		CardRemovalTimeout: 20 * time.Millisecond,
		RequestMode:        mfrc522.RequestAll,
		HaltAfterRead:      true,
	})
	var ev events
	ev.attach(monitor)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- monitor.Start(ctx) }()

	mock.InsertCard(mfrc522.NewVirtualCard(uidA))
	require.Eventually(t, func() bool {
		detected, _, _ := ev.counts()
		return detected == 1
	}, 2*time.Second, 5*time.Millisecond)

	mock.RemoveCard()
	require.Eventually(t, func() bool {
		_, _, removed := ev.counts()
		return removed == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}

func TestMonitor_PauseResume(t *testing.T) {
	t.Parallel()

	monitor, _, _ := createMonitor(t, nil)

	monitor.Pause()
	assert.True(t, monitor.IsPaused())
	monitor.Pause()
	assert.True(t, monitor.IsPaused())

	monitor.Resume()
	assert.False(t, monitor.IsPaused())
	monitor.Resume()
	assert.False(t, monitor.IsPaused())
}

func TestMonitor_PausedDoesNotScan(t *testing.T) {
	t.Parallel()

	mock := mfrc522.NewMockTransport()
	device, err := mfrc522.New(mock)
	require.NoError(t, err)
	monitor := NewMonitor(device, &Config{
		PollInterval:       2 * time.Millisecond,
		CardRemovalTimeout: 10 * time.Millisecond,
		RequestMode:        mfrc522.RequestAll,
	})
	monitor.Pause()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, monitor.Start(ctx), context.DeadlineExceeded)

	assert.Empty(t, mock.Frames())
	assert.Zero(t, monitor.Metrics().PollCycles)
}

func TestMonitor_WithDevice(t *testing.T) {
	t.Parallel()

	monitor, mock, _ := createMonitor(t, nil)

	err := monitor.WithDevice(func(d *mfrc522.Device) error {
		return d.WriteRegister(mfrc522.TxControlReg, 0x83)
	})
	require.NoError(t, err)
	assert.Equal(t, byte(0x83), mock.Peek(mfrc522.TxControlReg))

	want := errors.New("boom")
	assert.Equal(t, want, monitor.WithDevice(func(*mfrc522.Device) error { return want }))
}

func TestMonitor_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	monitor, mock, _ := createMonitor(t, nil)
	mock.InsertCard(mfrc522.NewVirtualCard(uidA))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = monitor.pollOnce()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = monitor.GetState()
				_ = monitor.WithDevice(func(d *mfrc522.Device) error {
					_, err := d.Version()
					return err
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(80), monitor.Metrics().PollCycles)
	assert.Equal(t, int64(1), monitor.Metrics().CardsDetected)
}

func TestMonitor_CloseReportsRemoval(t *testing.T) {
	t.Parallel()

	monitor, mock, _ := createMonitor(t, nil)
	var ev events
	ev.attach(monitor)

	mock.InsertCard(mfrc522.NewVirtualCard(uidA))
	require.NoError(t, monitor.pollOnce())
	require.NoError(t, monitor.Close())

	_, _, removed := ev.counts()
	assert.Equal(t, 1, removed)
	assert.False(t, mock.IsConnected())
}

func TestCardState_Transitions(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var cs CardState
	assert.False(t, cs.Expired(base, time.Millisecond), "idle state never expires")

	cs.TransitionToDetected(mfrc522.Card{UID: uidA}, base)
	assert.Equal(t, base, cs.DetectedAt)

	later := base.Add(200 * time.Millisecond)
	cs.TransitionToDetected(mfrc522.Card{UID: uidA}, later)
	assert.Equal(t, base, cs.DetectedAt, "same card keeps its detection time")
	assert.Equal(t, later, cs.LastSeenTime)

	assert.False(t, cs.Expired(later.Add(299*time.Millisecond), 300*time.Millisecond))
	assert.True(t, cs.Expired(later.Add(300*time.Millisecond), 300*time.Millisecond))

	cs.TransitionToDetected(mfrc522.Card{UID: uidB}, later)
	assert.Equal(t, later, cs.DetectedAt)

	cs.TransitionToIdle()
	assert.Equal(t, CardState{}, cs)
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "detected", StateTagDetected.String())
	assert.Equal(t, "CardDetectionState(7)", CardDetectionState(7).String())
}
