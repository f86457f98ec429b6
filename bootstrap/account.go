package bootstrap

import (
	"fmt"

	"github.com/kbukum/vimeonet/auth"
)

// Login installs account and persists it. The account stays installed for
// this process even when persisting fails.
func (a *App) Login(account auth.Account) error {
	if err := a.Auth.OnAuthenticated(account); err != nil {
		return err
	}
	if err := a.Accounts.Save(account); err != nil {
		return fmt.Errorf("persist account: %w", err)
	}
	return nil
}

// Logout forgets the persisted account and returns to client credentials,
// clearing cached responses of the previous user.
func (a *App) Logout() error {
	a.Auth.OnLoggedOut()
	if err := a.Accounts.Remove(); err != nil {
		return fmt.Errorf("remove account: %w", err)
	}
	return nil
}
