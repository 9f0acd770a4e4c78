// Package auth implements the authorization gate: resolving bearer tokens
// to admin identities and the signup/login/logout session lifecycle.
package auth

import (
	"context"
	"strings"
	"time"

	"slotpoll/internal/apperr"
	"slotpoll/internal/crypto"
	"slotpoll/internal/model"
)

// Store is the slice of the repository the gate needs.
type Store interface {
	CreateAdminWithSession(ctx context.Context, admin model.Admin, session model.AdminSession) error
	GetAdminByName(ctx context.Context, name string) (model.Admin, error)
	CreateSession(ctx context.Context, session model.AdminSession) error
	GetSessionAdmin(ctx context.Context, token string) (model.Admin, error)
	DeleteSession(ctx context.Context, token string) error
}

// Identity is a resolved admin plus the token that proved it; logout needs
// the token back.
type Identity struct {
	AdminID string
	Name    string
	Token   string
}

// Credentials is the result of signup or login.
type Credentials struct {
	Token   string
	AdminID string
	Name    string
}

type Gate struct {
	store Store
	cache *SessionCache
}

// NewGate builds a gate over store. cache may be nil, in which case every
// token resolves against the store.
func NewGate(store Store, cache *SessionCache) *Gate {
	return &Gate{store: store, cache: cache}
}

// Authenticate resolves token among live sessions. Sessions have no expiry
// beyond explicit logout; a token is valid until its row is deleted.
func (g *Gate) Authenticate(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, apperr.New(apperr.KindUnauthorized, "missing_token")
	}

	if cached, ok := g.cache.Get(ctx, token); ok {
		return Identity{AdminID: cached.AdminID, Name: cached.Name, Token: token}, nil
	}

	admin, err := g.store.GetSessionAdmin(ctx, token)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return Identity{}, apperr.New(apperr.KindUnauthorized, "invalid_token")
		}
		return Identity{}, err
	}

	g.cache.Set(ctx, token, CachedSession{AdminID: admin.ID, Name: admin.Name})
	return Identity{AdminID: admin.ID, Name: admin.Name, Token: token}, nil
}

// Signup creates the admin and its first session atomically. A taken name
// reports Conflict.
func (g *Gate) Signup(ctx context.Context, name, password string) (Credentials, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return Credentials{}, apperr.New(apperr.KindValidation, "missing_credentials")
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return Credentials{}, apperr.Wrap(apperr.KindStorage, "server_error", err)
	}
	token, err := crypto.NewSessionToken()
	if err != nil {
		return Credentials{}, apperr.Wrap(apperr.KindStorage, "server_error", err)
	}

	admin := model.NewAdmin(name, hash)
	session := model.AdminSession{ID: token, AdminID: admin.ID, CreatedAt: admin.CreatedAt}
	if err := g.store.CreateAdminWithSession(ctx, admin, session); err != nil {
		return Credentials{}, err
	}
	return Credentials{Token: token, AdminID: admin.ID, Name: admin.Name}, nil
}

// Login verifies the credentials and opens a new session. An unknown name
// and a wrong password are indistinguishable to the caller.
func (g *Gate) Login(ctx context.Context, name, password string) (Credentials, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return Credentials{}, apperr.New(apperr.KindValidation, "missing_credentials")
	}

	admin, err := g.store.GetAdminByName(ctx, name)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return Credentials{}, apperr.New(apperr.KindUnauthorized, "invalid_credentials")
		}
		return Credentials{}, err
	}
	if err := crypto.CheckPassword(admin.PasswordHash, password); err != nil {
		return Credentials{}, apperr.New(apperr.KindUnauthorized, "invalid_credentials")
	}

	token, err := crypto.NewSessionToken()
	if err != nil {
		return Credentials{}, apperr.Wrap(apperr.KindStorage, "server_error", err)
	}
	session := model.AdminSession{ID: token, AdminID: admin.ID, CreatedAt: time.Now().UTC()}
	if err := g.store.CreateSession(ctx, session); err != nil {
		return Credentials{}, err
	}
	return Credentials{Token: token, AdminID: admin.ID, Name: admin.Name}, nil
}

// Logout deletes the session. A token that was not live is a visible
// Unauthorized, not a silent no-op.
func (g *Gate) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperr.New(apperr.KindUnauthorized, "missing_token")
	}
	g.cache.Delete(ctx, token)
	if err := g.store.DeleteSession(ctx, token); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return apperr.New(apperr.KindUnauthorized, "invalid_token")
		}
		return err
	}
	return nil
}
