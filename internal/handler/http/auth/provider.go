package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned for any username/password mismatch.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is a username/password pair submitted to the token endpoint.
type Credentials struct {
	Username string `json:"username" example:"admin"`
	Password string `json:"password" example:"your_password"`
}

// Account is a configured API user.
type Account struct {
	Username string
	// Password is compared in constant time and must pass ValidatePassword.
	Password string
	// Role is a key of RolePermissions.
	Role string
}

// StaticProvider authenticates against a fixed set of accounts.
type StaticProvider struct {
	// accounts is fixed after construction, so lookups need no lock.
	accounts []Account
}

// NewStaticProvider validates every account and returns a provider for them.
// Accounts with an empty username are ignored so an optional viewer can be left unset.
func NewStaticProvider(accounts ...Account) (*StaticProvider, error) {
	p := &StaticProvider{}
	seen := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		if a.Username == "" {
			continue
		}
		if _, ok := RolePermissions[a.Role]; !ok {
			return nil, fmt.Errorf("account %q: unknown role %q", a.Username, a.Role)
		}
		if seen[a.Username] {
			return nil, fmt.Errorf("account %q: duplicate username", a.Username)
		}
		if err := ValidatePassword(a.Password); err != nil {
			return nil, fmt.Errorf("account %q: %w", a.Username, err)
		}
		seen[a.Username] = true
		p.accounts = append(p.accounts, a)
	}
	if len(p.accounts) == 0 {
		return nil, errors.New("at least one account is required")
	}
	return p, nil
}

// Authenticate returns the role of the matching account.
// Every account is compared in constant time so the response time does not reveal which usernames exist.
func (p *StaticProvider) Authenticate(_ context.Context, creds Credentials) (string, error) {
	if creds.Username == "" || creds.Password == "" {
		return "", ErrInvalidCredentials
	}
	role := ""
	for _, a := range p.accounts {
		userMatch := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(a.Username))
		passMatch := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(a.Password))
		if userMatch&passMatch == 1 {
			role = a.Role
		}
	}
	if role == "" {
		return "", ErrInvalidCredentials
	}
	return role, nil
}
