// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/limbogate/limbogate/internal/limbo"
	"github.com/limbogate/limbogate/internal/observability"
)

// AuthSession drives one connection's register/login/TOTP dialogue in
// the holding world. All callbacks arrive serialized on the
// connection's dispatch context, so its fields need no locking.
type AuthSession struct {
	id     string
	engine *Engine
	conn   limbo.Conn
	record *PlayerRecord // nil until registered

	player      limbo.Player
	attempts    int
	totpPending bool
	joined      time.Time
	timer       limbo.Task
	done        bool
}

func newAuthSession(engine *Engine, conn limbo.Conn, rec *PlayerRecord) *AuthSession {
	return &AuthSession{
		id:       NewSessionID(),
		engine:   engine,
		conn:     conn,
		record:   rec,
		attempts: engine.cfg.LoginAttempts,
		joined:   time.Now(),
	}
}

// OnSpawn runs the pre-dialogue checks and starts the auth countdown.
func (s *AuthSession) OnSpawn(player limbo.Player) {
	s.player = player
	ctx := context.Background()

	s.engine.logger.DebugContext(ctx, "auth session started",
		slog.String("session_id", s.id),
		slog.String("nickname", s.conn.Nickname()),
		slog.Bool("registered", s.record != nil))

	if s.record == nil {
		if !s.engine.guard.Allow(ctx, s.conn.RemoteAddr()) {
			s.disconnect(s.engine.cfg.Messages.IPLimitKick)
			return
		}
	} else if s.conn.Nickname() != s.record.Nickname {
		// The stored display case is canonical. Admitting a different
		// case would alias two identities onto one record.
		s.disconnect(s.engine.cfg.Messages.WrongCaseKick)
		return
	}

	total := s.engine.cfg.AuthTime
	s.timer = s.engine.scheduler.ScheduleRepeating(time.Second, func() {
		elapsed := time.Since(s.joined)
		if elapsed > total {
			s.conn.Disconnect(s.engine.cfg.Messages.TimesUpKick)
			return
		}
		s.conn.UpdateCountdown(total-elapsed, total)
	})

	s.prompt()
}

// OnChat dispatches one line of player input against the current state.
func (s *AuthSession) OnChat(message string) {
	if s.done {
		return
	}
	ctx := context.Background()

	switch cmd := ParseCommand(message).(type) {
	case RegisterCommand:
		if s.totpPending || s.record != nil {
			s.prompt()
			return
		}
		s.handleRegister(ctx, cmd)
	case LoginCommand:
		if s.totpPending || s.record == nil {
			s.prompt()
			return
		}
		s.handleLogin(ctx, cmd)
	case TotpCommand:
		if !s.totpPending {
			s.prompt()
			return
		}
		if s.engine.totp.Validate(cmd.Code, s.record.TotpSecret) {
			s.finishLogin(ctx)
		} else {
			s.prompt()
		}
	default:
		s.prompt()
	}
}

// OnDisconnect releases the countdown timer and any pending
// post-admission follow-up, whatever state the dialogue was in.
func (s *AuthSession) OnDisconnect() {
	if s.timer != nil {
		s.timer.Cancel()
		s.timer = nil
	}
	s.conn.HideCountdown()
	if !s.done {
		observability.RecordAuthOutcome("disconnected")
	}
	s.engine.dropPostLoginTask(s.conn.UUID())
}

func (s *AuthSession) handleRegister(ctx context.Context, cmd RegisterCommand) {
	if cmd.HasRepeat != s.engine.cfg.RequireRepeatPassword {
		s.prompt()
		return
	}
	if cmd.HasRepeat && cmd.Password != cmd.Repeat {
		s.conn.SendMessage(s.engine.cfg.Messages.PasswordsDontMatch)
		return
	}

	switch s.engine.policy.Check(cmd.Password) {
	case PolicyTooShort:
		s.conn.SendMessage(s.engine.cfg.Messages.PasswordTooShort)
		return
	case PolicyTooLong:
		s.conn.SendMessage(s.engine.cfg.Messages.PasswordTooLong)
		return
	case PolicyUnsafe:
		s.conn.SendMessage(s.engine.cfg.Messages.PasswordUnsafe)
		return
	}

	hash, err := s.engine.verifier.HashPassword(cmd.Password)
	if err != nil {
		s.engine.logger.ErrorContext(ctx, "failed to hash registration password",
			slog.String("nickname", s.conn.Nickname()),
			slog.Any("error", err))
		s.conn.SendMessage(s.engine.cfg.Messages.StoreFailureRetry)
		return
	}

	rec := NewPlayerRecord(s.conn.Nickname(), hash, s.conn.RemoteAddr())
	if id := s.conn.UUID(); id != "" {
		rec.OfflineUUID = id
	}

	if err := s.engine.store.Create(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			// Lost a registration race for the same name.
			s.conn.SendMessage(s.engine.cfg.Messages.NameTakenRetry)
			return
		}
		s.engine.logger.ErrorContext(ctx, "failed to create player record",
			slog.String("nickname", s.conn.Nickname()),
			slog.Any("error", err))
		s.conn.SendMessage(s.engine.cfg.Messages.StoreFailureRetry)
		return
	}

	s.record = rec
	s.conn.SendMessage(s.engine.cfg.Messages.RegisterSuccessful)
	observability.RecordAuthOutcome("registered")
	s.finish(ctx)
}

func (s *AuthSession) handleLogin(ctx context.Context, cmd LoginCommand) {
	if s.engine.verifier.Check(ctx, cmd.Password, s.record) {
		if s.record.HasTotp() {
			s.totpPending = true
			s.prompt()
			return
		}
		s.finishLogin(ctx)
		return
	}

	s.attempts--
	if s.attempts > 0 {
		s.conn.SendMessage(fmt.Sprintf(s.engine.cfg.Messages.LoginWrongPassword, s.attempts))
		return
	}
	s.disconnect(s.engine.cfg.Messages.WrongPasswordKick)
}

func (s *AuthSession) finishLogin(ctx context.Context) {
	s.conn.SendMessage(s.engine.cfg.Messages.LoginSuccessful)
	observability.RecordAuthOutcome("logged_in")
	s.finish(ctx)
}

func (s *AuthSession) finish(ctx context.Context) {
	s.done = true
	s.engine.CacheSessionFor(s.conn)
	s.engine.logger.DebugContext(ctx, "auth session finished",
		slog.String("session_id", s.id),
		slog.String("nickname", s.conn.Nickname()))
	s.player.Admit()
}

func (s *AuthSession) disconnect(reason string) {
	s.conn.Disconnect(reason)
}

func (s *AuthSession) prompt() {
	switch {
	case s.totpPending:
		s.conn.SendMessage(s.engine.cfg.Messages.TotpPrompt)
	case s.record == nil:
		s.conn.SendMessage(s.engine.cfg.Messages.RegisterPrompt)
	default:
		s.conn.SendMessage(fmt.Sprintf(s.engine.cfg.Messages.LoginPrompt, s.attempts))
	}
}
