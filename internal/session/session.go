// Package session tracks who the server says the current user is. Identity
// is only ever taken from the server; a failed check reads as logged out.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/five82/offerwatch/internal/offerapi"
)

// Role is the closed set of audiences the client distinguishes.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "ADMIN"
	}
	return "USER"
}

// ParseRole normalizes the server's role string once, at refresh time.
func ParseRole(raw string) Role {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ADMIN", "MANAGER":
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Identity is who the authority of record says we are.
type Identity struct {
	Email       string
	DisplayName string
	Role        Role
}

// State is the authenticated view other components gate on.
type State struct {
	Authenticated bool
	Identity      Identity
}

// IsAdmin reports whether the state is an authenticated administrative identity.
func (s State) IsAdmin() bool {
	return s.Authenticated && s.Identity.Role == RoleAdmin
}

// SameAudience reports whether two states would drive the same push
// subscription and polling setup.
func (s State) SameAudience(other State) bool {
	if s.Authenticated != other.Authenticated {
		return false
	}
	if !s.Authenticated {
		return true
	}
	return s.Identity.Role == other.Identity.Role &&
		strings.EqualFold(s.Identity.Email, other.Identity.Email)
}

// Authority is the subset of the offer API the session depends on.
type Authority interface {
	Me(ctx context.Context) (offerapi.Me, error)
	Logout(ctx context.Context) error
}

// Manager owns the session state. It is only mutated through Refresh and
// Logout; it never infers identity from local data.
type Manager struct {
	authority Authority
	logger    *slog.Logger

	mu    sync.RWMutex
	state State
}

// NewManager builds a Manager that starts unauthenticated.
func NewManager(authority Authority, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{authority: authority, logger: logger}
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Refresh asks the authority of record who we are. Any failure degrades to
// the unauthenticated state; it never returns an error.
func (m *Manager) Refresh(ctx context.Context) State {
	next := m.query(ctx)
	m.mu.Lock()
	m.state = next
	m.mu.Unlock()
	return next
}

// Logout requests server-side termination and then re-syncs with Refresh
// whatever the termination call returned.
func (m *Manager) Logout(ctx context.Context) State {
	if err := m.authority.Logout(ctx); err != nil {
		m.logger.Warn("logout request failed", slog.String("error", err.Error()))
	}
	return m.Refresh(ctx)
}

func (m *Manager) query(ctx context.Context) State {
	me, err := m.authority.Me(ctx)
	if err != nil {
		m.logger.Debug("identity check failed", slog.String("error", err.Error()))
		return State{}
	}
	if !me.Authenticated {
		return State{}
	}
	name := strings.TrimSpace(me.Nickname)
	if name == "" {
		name = "User"
	}
	return State{
		Authenticated: true,
		Identity: Identity{
			Email:       strings.TrimSpace(me.Email),
			DisplayName: name,
			Role:        ParseRole(me.Role),
		},
	}
}
