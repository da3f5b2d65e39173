// Package session holds the operator's credential for the lifetime of the
// console process. The store is passed explicitly to every screen and to
// the HTTP client; nothing reads it from ambient state.
package session

import (
	"encoding/base64"
	"errors"
	"strings"
	"sync"
)

// ErrNoCredential is returned by Require when nobody is logged in.
var ErrNoCredential = errors.New("no session credential")

// Credential is the opaque value proving the operator authenticated.
type Credential struct {
	Token    string
	Username string
}

// NewCredential encodes username and password into a Basic-auth token.
// The encoding is reversible; it is not a secret at rest.
func NewCredential(username, password string) Credential {
	username = strings.TrimSpace(username)
	return Credential{
		Token:    base64.StdEncoding.EncodeToString([]byte(username + ":" + password)),
		Username: username,
	}
}

// Valid reports whether the credential carries a token.
func (c Credential) Valid() bool {
	return c.Token != ""
}

// Store keeps at most one credential.
type Store struct {
	mu   sync.RWMutex
	cred Credential
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the stored credential.
func (s *Store) Set(c Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = c
}

func (s *Store) Get() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, s.cred.Valid()
}

// Require returns the credential or ErrNoCredential.
func (s *Store) Require() (Credential, error) {
	c, ok := s.Get()
	if !ok {
		return Credential{}, ErrNoCredential
	}
	return c, nil
}

// Clear drops the credential, e.g. after a 401.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Credential{}
}

// Token implements client.CredentialSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Token
}

// Username returns the stored username, or "" when logged out.
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Username
}

// ExpiredMsg reports that the backend rejected the stored credential.
// Screens return it as a Bubble Tea message; the app clears the store and
// shows the login screen.
type ExpiredMsg struct {
	Err error
}
