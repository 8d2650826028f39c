// Package session exposes the current login session to the rest of the client.
package session

import (
	"context"
	"sync"

	"campuscomplaint/internal/tokenstore"
)

// Listener receives the new credential after every change, or nil after logout/expiry.
type Listener func(cred *tokenstore.Credential)

// Manager is the single owner of session state. Front-ends read the session through it
// instead of consulting the token store directly.
type Manager struct {
	store *tokenstore.Store

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// NewManager wraps a token store.
func NewManager(store *tokenstore.Store) *Manager {
	return &Manager{
		store:     store,
		listeners: make(map[int]Listener),
	}
}

// Store returns the underlying token store.
func (m *Manager) Store() *tokenstore.Store {
	return m.store
}

// Current returns the valid session, if any. Validity is recomputed on every call.
func (m *Manager) Current(ctx context.Context) (*tokenstore.Credential, bool) {
	if !m.store.IsTokenValid(ctx) {
		return nil, false
	}
	cred, ok := m.store.Credential(ctx)
	if !ok {
		return nil, false
	}
	return &cred, true
}

// OnChange registers fn and returns a function that unregisters it.
func (m *Manager) OnChange(fn Listener) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// Establish persists a freshly issued pair and notifies listeners.
func (m *Manager) Establish(ctx context.Context, accessToken, refreshToken string) error {
	if err := m.store.SaveTokens(ctx, accessToken, refreshToken); err != nil {
		return err
	}
	cred, ok := m.store.Credential(ctx)
	if !ok {
		cred = tokenstore.Credential{AccessToken: accessToken, RefreshToken: refreshToken}
	}
	m.notify(&cred)
	return nil
}

// End clears the stored pair and notifies listeners with nil.
func (m *Manager) End(ctx context.Context) error {
	if err := m.store.ClearTokens(ctx); err != nil {
		return err
	}
	m.notify(nil)
	return nil
}

// AccessToken returns the token to attach to authenticated requests, or "".
// It reads the stored value without an expiry check; the server stays the authority.
func (m *Manager) AccessToken(ctx context.Context) string {
	return m.store.AccessToken(ctx)
}

// RefreshToken returns the stored refresh token, or "".
func (m *Manager) RefreshToken(ctx context.Context) string {
	return m.store.RefreshToken(ctx)
}

func (m *Manager) notify(cred *tokenstore.Credential) {
	m.mu.Lock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		if cred == nil {
			fn(nil)
			continue
		}
		copied := *cred
		fn(&copied)
	}
}
