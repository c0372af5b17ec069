package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	domsession "github.com/bryanwahyu/genefit/internal/domain/session"
)

// Manager keeps the signed-in profile of each browser. Profiles are cached in
// memory and persisted under domsession.StorageKey so they survive restarts.
type Manager struct {
	storage  domsession.Storage
	provider domsession.IdentityProvider
	logger   *zap.Logger

	mu     sync.RWMutex
	active map[string]domsession.UserSession
}

func NewManager(storage domsession.Storage, provider domsession.IdentityProvider, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		storage:  storage,
		provider: provider,
		logger:   logger,
		active:   make(map[string]domsession.UserSession),
	}
}

// Login decodes the credential and remembers the resulting profile.
// An empty credential is a no-op.
func (m *Manager) Login(ctx context.Context, owner, credential string) (domsession.UserSession, error) {
	if credential == "" {
		return m.Restore(ctx, owner), nil
	}
	user, err := m.provider.Identify(ctx, credential)
	if err != nil {
		return domsession.UserSession{}, err
	}

	body, err := json.Marshal(user)
	if err != nil {
		return domsession.UserSession{}, fmt.Errorf("encode session: %w", err)
	}
	if err := m.storage.Set(ctx, owner, domsession.StorageKey, body); err != nil {
		return domsession.UserSession{}, fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	m.active[owner] = user
	m.mu.Unlock()

	m.logger.Info("user signed in", zap.String("owner", owner), zap.String("email", user.Email))
	return user, nil
}

// Logout forgets the profile everywhere and tells the identity provider.
func (m *Manager) Logout(ctx context.Context, owner string) error {
	m.mu.Lock()
	delete(m.active, owner)
	m.mu.Unlock()

	if err := m.storage.Delete(ctx, owner, domsession.StorageKey); err != nil && !errors.Is(err, domsession.ErrNoEntry) {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := m.provider.Logout(ctx, owner); err != nil {
		m.logger.Warn("identity provider logout failed", zap.String("owner", owner), zap.Error(err))
	}
	return nil
}

// Restore returns the current profile, reading the persisted entry when the
// browser has not been seen since start-up. A corrupt entry yields an empty
// session and is left in place.
func (m *Manager) Restore(ctx context.Context, owner string) domsession.UserSession {
	m.mu.RLock()
	user, ok := m.active[owner]
	m.mu.RUnlock()
	if ok {
		return user
	}

	body, err := m.storage.Get(ctx, owner, domsession.StorageKey)
	if err != nil {
		if !errors.Is(err, domsession.ErrNoEntry) {
			m.logger.Warn("read session failed", zap.String("owner", owner), zap.Error(err))
		}
		return domsession.UserSession{}
	}
	if err := json.Unmarshal(body, &user); err != nil {
		m.logger.Warn("stored session is unreadable", zap.String("owner", owner), zap.Error(err))
		return domsession.UserSession{}
	}

	m.mu.Lock()
	m.active[owner] = user
	m.mu.Unlock()
	return user
}
