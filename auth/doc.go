// Package auth tracks who the client is acting for.
//
// State moves between three modes: Unauthenticated, User (a token bound to
// a user) and ClientCredentials (an app token or Basic client credentials).
// OnAuthenticated and OnLoggedOut drive the transitions; TokenProvider hands
// the pipeline a function that re-reads the current token on every call, so
// rotation and logout are observed by the next request without anyone
// holding a copy of the token.
//
//	state := auth.NewState(auth.WithClientCredentials("id", "secret"))
//	state.AddListener(cache)
//	_ = state.OnAuthenticated(account)
//	token, ok := state.TokenProvider()()
//
// AccountStore persists the current Account in a keychain.Store so a later
// process can restore it.
package auth
