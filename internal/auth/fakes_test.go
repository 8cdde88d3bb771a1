// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/limbogate/limbogate/internal/auth"
	"github.com/limbogate/limbogate/internal/limbo"
	"github.com/limbogate/limbogate/internal/mojang"
)

// fakeStore implements auth.CredentialStore with overridable behavior.
// Unset function fields fall back to an in-memory map keyed by
// lowercase nickname.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]*auth.PlayerRecord

	findByNameFn func(ctx context.Context, nickname string) (*auth.PlayerRecord, error)
	findByIPFn   func(ctx context.Context, ip string) ([]*auth.PlayerRecord, error)
	createFn     func(ctx context.Context, rec *auth.PlayerRecord) error
	updateFn     func(ctx context.Context, rec *auth.PlayerRecord) error

	countErr    error
	updateCalls int
}

func newFakeStore(records ...*auth.PlayerRecord) *fakeStore {
	s := &fakeStore{records: make(map[string]*auth.PlayerRecord)}
	for _, rec := range records {
		s.records[rec.LowercaseNickname] = rec
	}
	return s
}

func (s *fakeStore) FindByName(ctx context.Context, nickname string) (*auth.PlayerRecord, error) {
	if s.findByNameFn != nil {
		return s.findByNameFn(ctx, nickname)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[auth.NormalizeName(nickname)]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return rec, nil
}

func (s *fakeStore) FindByUUID(_ context.Context, id string) (*auth.PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.OfflineUUID == id || rec.OnlineUUID == id {
			return rec, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s *fakeStore) FindByIP(ctx context.Context, ip string) ([]*auth.PlayerRecord, error) {
	if s.findByIPFn != nil {
		return s.findByIPFn(ctx, ip)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*auth.PlayerRecord
	for _, rec := range s.records {
		if rec.IP == ip {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakeStore) CountWithPassword(ctx context.Context, nickname string) (int64, error) {
	return s.count(ctx, nickname, true)
}

func (s *fakeStore) CountWithoutPassword(ctx context.Context, nickname string) (int64, error) {
	return s.count(ctx, nickname, false)
}

func (s *fakeStore) count(_ context.Context, nickname string, withPassword bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	rec, ok := s.records[auth.NormalizeName(nickname)]
	if !ok {
		return 0, nil
	}
	if rec.HasPassword() == withPassword {
		return 1, nil
	}
	return 0, nil
}

func (s *fakeStore) CountAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.records)), nil
}

func (s *fakeStore) Create(ctx context.Context, rec *auth.PlayerRecord) error {
	if s.createFn != nil {
		return s.createFn(ctx, rec)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.LowercaseNickname]; exists {
		return auth.ErrDuplicateName
	}
	s.records[rec.LowercaseNickname] = rec
	return nil
}

func (s *fakeStore) Update(ctx context.Context, rec *auth.PlayerRecord) error {
	s.mu.Lock()
	s.updateCalls++
	s.mu.Unlock()
	if s.updateFn != nil {
		return s.updateFn(ctx, rec)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.LowercaseNickname]; !exists {
		return auth.ErrNotFound
	}
	s.records[rec.LowercaseNickname] = rec
	return nil
}

func (s *fakeStore) Delete(_ context.Context, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lowercase := auth.NormalizeName(nickname)
	if _, exists := s.records[lowercase]; !exists {
		return auth.ErrNotFound
	}
	delete(s.records, lowercase)
	return nil
}

var _ auth.CredentialStore = (*fakeStore)(nil)

// fakeLookup implements auth.ProfileLookup.
type fakeLookup struct {
	mu     sync.Mutex
	status mojang.Status
	err    error
	calls  int
}

func (l *fakeLookup) HasPaidAccount(context.Context, string) (mojang.Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.status, l.err
}

// fakeConn implements limbo.Conn and records interactions.
type fakeConn struct {
	nickname string
	addr     string
	uuid     string

	messages     []string
	disconnected bool
	reason       string
	countdowns   int
	hidden       bool
}

func (c *fakeConn) Nickname() string                      { return c.nickname }
func (c *fakeConn) RemoteAddr() string                    { return c.addr }
func (c *fakeConn) UUID() string                          { return c.uuid }
func (c *fakeConn) SendMessage(text string)               { c.messages = append(c.messages, text) }
func (c *fakeConn) UpdateCountdown(_, _ time.Duration)    { c.countdowns++ }
func (c *fakeConn) HideCountdown()                        { c.hidden = true }
func (c *fakeConn) Disconnect(reason string) {
	c.disconnected = true
	c.reason = reason
}

// fakePlayer implements limbo.Player.
type fakePlayer struct {
	conn     limbo.Conn
	admitted bool
}

func (p *fakePlayer) Conn() limbo.Conn { return p.conn }
func (p *fakePlayer) Admit()           { p.admitted = true }

// fakeWorld implements limbo.World, capturing the spawned handler so
// tests can drive the dialogue directly.
type fakeWorld struct {
	handler limbo.SessionHandler
	passed  []limbo.Conn
	err     error
}

func (w *fakeWorld) SpawnPlayer(_ limbo.Conn, handler limbo.SessionHandler) error {
	if w.err != nil {
		return w.err
	}
	w.handler = handler
	return nil
}

func (w *fakeWorld) PassLogin(conn limbo.Conn) { w.passed = append(w.passed, conn) }

// fakeTask implements limbo.Task.
type fakeTask struct{ cancelled bool }

func (t *fakeTask) Cancel() { t.cancelled = true }

// fakeScheduler implements limbo.Scheduler, exposing the scheduled
// function so tests can tick it manually.
type fakeScheduler struct {
	fn   func()
	task *fakeTask
}

func (s *fakeScheduler) ScheduleRepeating(_ time.Duration, fn func()) limbo.Task {
	s.fn = fn
	s.task = &fakeTask{}
	return s.task
}
