package domain

import "golang.org/x/oauth2"

// TokenUpdateFunc persists a refreshed OAuth token for a user.
type TokenUpdateFunc func(token *oauth2.Token) error
