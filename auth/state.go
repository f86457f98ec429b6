package auth

import (
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/kbukum/vimeonet/logger"
)

// ErrEmptyToken is returned when an account without an access token is installed.
var ErrEmptyToken = errors.New("auth: account has no access token")

// Mode is the authentication state.
type Mode int

const (
	ModeUnauthenticated Mode = iota
	ModeUser
	ModeClientCredentials
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "user"
	case ModeClientCredentials:
		return "client_credentials"
	default:
		return "unauthenticated"
	}
}

// ClientCredentials identify the application for Basic authentication.
type ClientCredentials struct {
	ID     string
	Secret string
}

// TokenProvider returns the current access token, if any.
type TokenProvider func() (string, bool)

// Change describes a state transition delivered to listeners.
type Change struct {
	From    Mode
	To      Mode
	Account *Account
}

// Listener observes state transitions.
type Listener interface {
	AuthenticationChanged(Change)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Change)

// AuthenticationChanged implements Listener.
func (f ListenerFunc) AuthenticationChanged(c Change) { f(c) }

type snapshot struct {
	mode    Mode
	account *Account
}

// State is the authentication state machine. Reads are lock free; writes
// are serialised and replace the current snapshot atomically.
type State struct {
	mu        sync.Mutex
	current   atomic.Pointer[snapshot]
	client    *ClientCredentials
	listeners []Listener
	log       *logger.Logger
}

// StateOption configures a State.
type StateOption func(*State)

// WithClientCredentials enables the Basic authentication fallback used
// while no token is installed.
func WithClientCredentials(id, secret string) StateOption {
	return func(s *State) {
		if id != "" || secret != "" {
			s.client = &ClientCredentials{ID: id, Secret: secret}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) StateOption {
	return func(s *State) { s.log = l }
}

// NewState creates an unauthenticated state.
func NewState(opts ...StateOption) *State {
	s := &State{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("auth")
	s.current.Store(&snapshot{mode: ModeUnauthenticated})
	return s
}

// OnAuthenticated installs account. A token bound to a user moves the state
// to ModeUser; an app token moves it to ModeClientCredentials.
func (s *State) OnAuthenticated(account Account) error {
	if account.AccessToken == "" {
		return ErrEmptyToken
	}
	mode := ModeClientCredentials
	if account.HasUser() {
		mode = ModeUser
	}
	s.transition(&snapshot{mode: mode, account: &account})
	return nil
}

// OnLoggedOut discards the installed token. Requests built afterwards fall
// back to client credentials when configured.
func (s *State) OnLoggedOut() {
	s.transition(&snapshot{mode: ModeUnauthenticated})
}

func (s *State) transition(next *snapshot) {
	s.mu.Lock()
	prev := s.current.Swap(next)
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.log.Info("authentication changed", logger.Fields(
		"from", prev.mode.String(),
		"to", next.mode.String(),
	))
	change := Change{From: prev.mode, To: next.mode, Account: next.account}
	for _, l := range listeners {
		l.AuthenticationChanged(change)
	}
}

// AddListener registers l for future transitions.
func (s *State) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Mode returns the current mode.
func (s *State) Mode() Mode { return s.current.Load().mode }

// Account returns a copy of the installed account.
func (s *State) Account() (Account, bool) {
	snap := s.current.Load()
	if snap.account == nil {
		return Account{}, false
	}
	return *snap.account, true
}

// ClientCredentials returns the configured client credentials.
func (s *State) ClientCredentials() (ClientCredentials, bool) {
	if s.client == nil {
		return ClientCredentials{}, false
	}
	return *s.client, true
}

// TokenProvider returns a function reading the token at call time.
func (s *State) TokenProvider() TokenProvider {
	return func() (string, bool) {
		snap := s.current.Load()
		if snap.account == nil {
			return "", false
		}
		return snap.account.AccessToken, true
	}
}

// Authorization returns the Authorization header value for provider with
// fallback to client credentials, or "" when neither is available.
func Authorization(provider TokenProvider, client *ClientCredentials) string {
	if provider != nil {
		if token, ok := provider(); ok && token != "" {
			return "Bearer " + token
		}
	}
	if client != nil {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(client.ID+":"+client.Secret))
	}
	return ""
}

// Authorization returns the Authorization header value for the current state.
func (s *State) Authorization() string {
	return Authorization(s.TokenProvider(), s.client)
}
