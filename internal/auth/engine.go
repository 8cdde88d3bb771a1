// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/limbogate/limbogate/internal/cache"
	"github.com/limbogate/limbogate/internal/limbo"
	"github.com/limbogate/limbogate/internal/observability"
)

// EngineConfig tunes the auth engine.
type EngineConfig struct {
	// AuthTime is the total time a connection may spend authenticating.
	AuthTime time.Duration

	// LoginAttempts is the number of wrong passwords before disconnect.
	LoginAttempts int

	// RequireRepeatPassword makes /register demand the password twice.
	RequireRepeatPassword bool

	// SaveUUID binds verified online identities to stored records
	// during profile resolution.
	SaveUUID bool

	// ForceOfflineUUID makes every profile resolve to the name-derived
	// offline UUID regardless of stored bindings.
	ForceOfflineUUID bool

	Messages Messages
}

// EngineParams collects the engine's collaborators.
type EngineParams struct {
	Store     CredentialStore
	Verifier  *Verifier
	Totp      TotpVerifier
	Premium   *PremiumResolver
	Guard     *RegistrationGuard
	Nicknames *NicknameValidator
	Passwords *PasswordPolicy

	// Sessions is the recent-session cache, normally built with
	// NewSessionCache so the entry-count gauge stays live.
	Sessions *cache.TTL[string, SessionEntry]
	World     limbo.World
	Scheduler limbo.Scheduler
	Logger    *slog.Logger
}

// Engine decides, for each connecting identity, whether it needs
// registration, password login, or can bypass on a recent session, and
// runs the per-connection auth dialogue through the holding world.
//
// All collaborators are injected at construction; the engine holds no
// global state beyond what its parameters carry.
type Engine struct {
	store     CredentialStore
	verifier  *Verifier
	totp      TotpVerifier
	premium   *PremiumResolver
	guard     *RegistrationGuard
	nicknames *NicknameValidator
	policy    *PasswordPolicy
	sessions  *cache.TTL[string, SessionEntry]
	world     limbo.World
	scheduler limbo.Scheduler
	cfg       EngineConfig
	logger    *slog.Logger

	hooks []PreAuthHook

	mu        sync.Mutex
	postLogin map[string]func()
}

// NewEngine creates an Engine. Every collaborator in params except
// Logger is required.
func NewEngine(cfg EngineConfig, params EngineParams) (*Engine, error) {
	switch {
	case params.Store == nil:
		return nil, oops.Errorf("credential store is required")
	case params.Verifier == nil:
		return nil, oops.Errorf("password verifier is required")
	case params.Totp == nil:
		return nil, oops.Errorf("totp verifier is required")
	case params.Premium == nil:
		return nil, oops.Errorf("premium resolver is required")
	case params.Guard == nil:
		return nil, oops.Errorf("registration guard is required")
	case params.Nicknames == nil:
		return nil, oops.Errorf("nickname validator is required")
	case params.Passwords == nil:
		return nil, oops.Errorf("password policy is required")
	case params.Sessions == nil:
		return nil, oops.Errorf("session cache is required")
	case params.World == nil:
		return nil, oops.Errorf("holding world is required")
	case params.Scheduler == nil:
		return nil, oops.Errorf("scheduler is required")
	}
	if params.Logger == nil {
		params.Logger = slog.New(slog.DiscardHandler)
	}
	cfg.Messages = cfg.Messages.merged()
	if cfg.AuthTime <= 0 {
		cfg.AuthTime = time.Minute
	}
	if cfg.LoginAttempts <= 0 {
		cfg.LoginAttempts = 3
	}

	return &Engine{
		store:     params.Store,
		verifier:  params.Verifier,
		totp:      params.Totp,
		premium:   params.Premium,
		guard:     params.Guard,
		nicknames: params.Nicknames,
		policy:    params.Passwords,
		sessions:  params.Sessions,
		world:     params.World,
		scheduler: params.Scheduler,
		cfg:       cfg,
		logger:    params.Logger,
		postLogin: make(map[string]func()),
	}, nil
}

// RegisterPreAuthHook appends a hook consulted before each auth
// session starts. Not safe to call after connections start arriving.
func (e *Engine) RegisterPreAuthHook(hook PreAuthHook) {
	e.hooks = append(e.hooks, hook)
}

// NeedsAuth reports whether the connection must go through the auth
// dialogue. A recent session bypasses only when both the stored
// address and the stored display name match exactly.
func (e *Engine) NeedsAuth(conn limbo.Conn) bool {
	entry, ok := e.sessions.Get(NormalizeName(conn.Nickname()))
	if !ok {
		return true
	}
	return entry.Address != conn.RemoteAddr() || entry.Nickname != conn.Nickname()
}

// CacheSessionFor records a fresh successful authentication for the
// connection, replacing any previous entry for the name.
func (e *Engine) CacheSessionFor(conn limbo.Conn) {
	e.sessions.Put(NormalizeName(conn.Nickname()), SessionEntry{
		Address:   conn.RemoteAddr(),
		Nickname:  conn.Nickname(),
		CheckedAt: time.Now(),
	})
}

// InvalidateSession evicts the recent-session entry for the name.
func (e *Engine) InvalidateSession(nickname string) {
	e.sessions.Remove(NormalizeName(nickname))
}

// IsPremium reports whether the name should go through online-mode
// verification. See PremiumResolver.IsPremium.
func (e *Engine) IsPremium(ctx context.Context, nickname string) bool {
	return e.premium.IsPremium(ctx, nickname)
}

// StartAuthSession begins the auth flow for a connection that
// NeedsAuth. onlineMode reports whether the proxy already verified the
// connection's identity centrally; such connections bypass the
// dialogue unless a password account claims their name.
func (e *Engine) StartAuthSession(ctx context.Context, conn limbo.Conn, onlineMode bool) {
	nickname := conn.Nickname()
	if !e.nicknames.Valid(nickname) {
		conn.Disconnect(e.cfg.Messages.InvalidNicknameKick)
		return
	}

	rec := e.lookupByName(ctx, nickname)
	decision := Admit()

	if onlineMode && (rec == nil || !rec.HasPassword()) {
		// A verified identity only needs the dialogue when a password
		// account is bound to its UUID.
		if byUUID := e.lookupByUUID(ctx, conn.UUID()); byUUID != nil && byUUID.HasPassword() {
			rec = byUUID
		} else {
			e.setPostLoginTask(conn.UUID(), func() {
				if msg := e.cfg.Messages.LoginPremium; msg != "" {
					conn.SendMessage(msg)
				}
			})
			decision = Bypass()
		}
	}

	for _, hook := range e.hooks {
		decision = hook(ctx, conn, rec, decision)
	}

	switch decision.Kind {
	case DecisionBypass:
		observability.RecordAuthOutcome("bypassed")
		e.world.PassLogin(conn)
	case DecisionDeny:
		conn.Disconnect(decision.Reason)
	case DecisionDefer:
		return
	default:
		if err := e.world.SpawnPlayer(conn, newAuthSession(e, conn, rec)); err != nil {
			e.logger.ErrorContext(ctx, "failed to spawn player into holding world",
				slog.String("nickname", nickname),
				slog.Any("error", err))
		}
	}
}

// TakePostLoginTask removes and returns the pending post-admission
// follow-up for the connection UUID, if any. The proxy runs it once
// the connection can receive messages.
func (e *Engine) TakePostLoginTask(uuid string) (func(), bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	task, ok := e.postLogin[uuid]
	if ok {
		delete(e.postLogin, uuid)
	}
	return task, ok
}

func (e *Engine) setPostLoginTask(uuid string, task func()) {
	if uuid == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.postLogin[uuid] = task
}

func (e *Engine) dropPostLoginTask(uuid string) {
	if uuid == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.postLogin, uuid)
}

// Unregister removes the record for the name and evicts every cache
// entry keyed by it.
func (e *Engine) Unregister(ctx context.Context, nickname string) error {
	if err := e.store.Delete(ctx, nickname); err != nil {
		return oops.Code("AUTH_UNREGISTER_FAILED").With("nickname", nickname).Wrap(err)
	}
	e.InvalidateSession(nickname)
	e.premium.Invalidate(nickname)
	return nil
}

// ChangePassword rehashes and persists a new password for the name and
// forces the player to re-authenticate.
func (e *Engine) ChangePassword(ctx context.Context, nickname, newPassword string) error {
	rec, err := e.store.FindByName(ctx, nickname)
	if err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").With("nickname", nickname).Wrap(err)
	}
	hash, err := e.verifier.HashPassword(newPassword)
	if err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").With("nickname", nickname).Wrap(err)
	}
	rec.PasswordHash = hash
	if err := e.store.Update(ctx, rec); err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").With("nickname", nickname).Wrap(err)
	}
	e.InvalidateSession(nickname)
	return nil
}

// SetTotpSecret enrolls (non-empty secret) or disables (empty secret)
// time-based one-time codes for the name.
func (e *Engine) SetTotpSecret(ctx context.Context, nickname, secret string) error {
	rec, err := e.store.FindByName(ctx, nickname)
	if err != nil {
		return oops.Code("AUTH_TOTP_UPDATE_FAILED").With("nickname", nickname).Wrap(err)
	}
	rec.TotpSecret = secret
	if err := e.store.Update(ctx, rec); err != nil {
		return oops.Code("AUTH_TOTP_UPDATE_FAILED").With("nickname", nickname).Wrap(err)
	}
	return nil
}

// CountRegistered returns the total number of registered records.
func (e *Engine) CountRegistered(ctx context.Context) (int64, error) {
	return e.store.CountAll(ctx)
}

// ResolveProfile decides which identity UUID the proxy should present
// for a resolving connection, binding verified online identities to
// stored records when SaveUUID is active. It returns the UUID to use,
// or empty to keep the proxy's own.
func (e *Engine) ResolveProfile(ctx context.Context, nickname, profileUUID string, onlineMode bool) string {
	resolved := ""

	switch {
	case e.cfg.SaveUUID:
		if rec := e.lookupByUUID(ctx, profileUUID); rec != nil {
			resolved = rec.OfflineUUID
		} else if rec := e.lookupByName(ctx, nickname); rec != nil {
			current := rec.OfflineUUID
			if onlineMode {
				rec.OnlineUUID = profileUUID
				rec.PasswordHash = ""
				if current == "" {
					rec.OfflineUUID = OfflineUUID(nickname).String()
				}
				e.updateBestEffort(ctx, rec)
				resolved = current
			} else if current == "" {
				rec.OfflineUUID = profileUUID
				e.updateBestEffort(ctx, rec)
			}
		}
	case onlineMode:
		// Without UUID binding, a centrally verified identity still
		// releases any stale password claim on the name.
		if rec := e.lookupByName(ctx, nickname); rec != nil && rec.HasPassword() {
			rec.PasswordHash = ""
			e.updateBestEffort(ctx, rec)
		}
	}

	if e.cfg.ForceOfflineUUID {
		resolved = OfflineUUID(nickname).String()
	}
	return resolved
}

func (e *Engine) lookupByName(ctx context.Context, nickname string) *PlayerRecord {
	rec, err := e.store.FindByName(ctx, nickname)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			e.logger.ErrorContext(ctx, "player record lookup failed",
				slog.String("nickname", nickname),
				slog.Any("error", err))
		}
		return nil
	}
	return rec
}

func (e *Engine) lookupByUUID(ctx context.Context, id string) *PlayerRecord {
	if id == "" {
		return nil
	}
	rec, err := e.store.FindByUUID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			e.logger.ErrorContext(ctx, "player record lookup failed",
				slog.String("uuid", id),
				slog.Any("error", err))
		}
		return nil
	}
	return rec
}

func (e *Engine) updateBestEffort(ctx context.Context, rec *PlayerRecord) {
	if err := e.store.Update(ctx, rec); err != nil {
		e.logger.ErrorContext(ctx, "failed to persist player record",
			slog.String("nickname", rec.Nickname),
			slog.Any("error", err))
	}
}
