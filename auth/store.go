package auth

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/vimeonet/keychain"
)

// DefaultAccountKey is the keychain key holding the persisted account.
const DefaultAccountKey = "vimeonet.account"

// AccountStore persists an Account in a secure store.
type AccountStore struct {
	store keychain.Store
	key   string
}

// NewAccountStore creates a store writing under key (DefaultAccountKey when empty).
func NewAccountStore(store keychain.Store, key string) *AccountStore {
	if key == "" {
		key = DefaultAccountKey
	}
	return &AccountStore{store: store, key: key}
}

// Save persists a.
func (s *AccountStore) Save(a Account) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("auth: encode account: %w", err)
	}
	return s.store.Set(data, s.key)
}

// Load returns the persisted account, or nil when none is stored.
func (s *AccountStore) Load() (*Account, error) {
	data, err := s.store.Get(s.key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var a Account
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("auth: decode account: %w", err)
	}
	return &a, nil
}

// Remove deletes the persisted account. Removing a missing account is not an error.
func (s *AccountStore) Remove() error {
	return s.store.Delete(s.key)
}

// Restore loads the persisted account into state. It reports whether an
// account was found.
func (s *AccountStore) Restore(state *State) (bool, error) {
	a, err := s.Load()
	if err != nil || a == nil {
		return false, err
	}
	if err := state.OnAuthenticated(*a); err != nil {
		return false, err
	}
	return true, nil
}
