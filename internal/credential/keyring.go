// Package credential keeps the server session cookie in the OS keyring.
package credential

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "offerwatch"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/offerwatch/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("offerwatch-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Store reads and writes session cookies, one per server origin.
type Store struct {
	ring keyring.Keyring
}

// Open opens the system keyring.
func Open() (*Store, error) {
	ring, err := openKeyring()
	if err != nil {
		return nil, err
	}
	return &Store{ring: ring}, nil
}

// NewStore wraps an existing keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// SessionCookie returns the stored cookie for baseURL, or "" when none is stored.
func (s *Store) SessionCookie(baseURL string) (string, error) {
	key := sessionKey(baseURL)
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// SetSessionCookie stores the cookie for baseURL.
func (s *Store) SetSessionCookie(baseURL, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("session cookie is empty")
	}
	key := sessionKey(baseURL)
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "offerwatch session",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// DeleteSessionCookie removes the cookie for baseURL. A missing entry is not an error.
func (s *Store) DeleteSessionCookie(baseURL string) error {
	key := sessionKey(baseURL)
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// sessionKey scopes the entry to the server origin; each base_url host has
// its own cookie.
func sessionKey(baseURL string) string {
	origin := strings.TrimSpace(baseURL)
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		origin = strings.ToLower(u.Host)
	}
	return "session:" + origin
}
