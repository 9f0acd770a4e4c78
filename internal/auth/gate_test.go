package auth

import (
	"context"
	"testing"

	"slotpoll/internal/apperr"
	"slotpoll/internal/crypto"
	"slotpoll/internal/model"
)

type fakeStore struct {
	admins   map[string]model.Admin        // keyed by name
	sessions map[string]model.AdminSession // keyed by token
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		admins:   map[string]model.Admin{},
		sessions: map[string]model.AdminSession{},
	}
}

func (f *fakeStore) CreateAdminWithSession(_ context.Context, admin model.Admin, session model.AdminSession) error {
	if _, exists := f.admins[admin.Name]; exists {
		return apperr.New(apperr.KindConflict, "name_taken")
	}
	f.admins[admin.Name] = admin
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeStore) GetAdminByName(_ context.Context, name string) (model.Admin, error) {
	admin, ok := f.admins[name]
	if !ok {
		return model.Admin{}, apperr.New(apperr.KindNotFound, "admin_not_found")
	}
	return admin, nil
}

func (f *fakeStore) CreateSession(_ context.Context, session model.AdminSession) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeStore) GetSessionAdmin(_ context.Context, token string) (model.Admin, error) {
	session, ok := f.sessions[token]
	if !ok {
		return model.Admin{}, apperr.New(apperr.KindNotFound, "session_not_found")
	}
	for _, admin := range f.admins {
		if admin.ID == session.AdminID {
			return admin, nil
		}
	}
	return model.Admin{}, apperr.New(apperr.KindNotFound, "session_not_found")
}

func (f *fakeStore) DeleteSession(_ context.Context, token string) error {
	if _, ok := f.sessions[token]; !ok {
		return apperr.New(apperr.KindNotFound, "session_not_found")
	}
	delete(f.sessions, token)
	return nil
}

func TestSignupValidation(t *testing.T) {
	gate := NewGate(newFakeStore(), nil)
	ctx := context.Background()

	if _, err := gate.Signup(ctx, "   ", "secret"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := gate.Signup(ctx, "alice", ""); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for empty password, got %v", err)
	}
}

func TestSignupCreatesSessionAndHashesPassword(t *testing.T) {
	store := newFakeStore()
	gate := NewGate(store, nil)
	ctx := context.Background()

	creds, err := gate.Signup(ctx, "  alice ", "secret")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if creds.Token == "" || creds.AdminID == "" {
		t.Fatalf("expected token and admin id, got %+v", creds)
	}
	if creds.Name != "alice" {
		t.Fatalf("expected trimmed name, got %q", creds.Name)
	}

	admin := store.admins["alice"]
	if admin.PasswordHash == "secret" {
		t.Fatalf("expected password to be hashed")
	}
	if err := crypto.CheckPassword(admin.PasswordHash, "secret"); err != nil {
		t.Fatalf("expected stored hash to verify: %v", err)
	}

	identity, err := gate.Authenticate(ctx, creds.Token)
	if err != nil {
		t.Fatalf("expected signup session to authenticate: %v", err)
	}
	if identity.AdminID != creds.AdminID || identity.Token != creds.Token {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestSignupDuplicateName(t *testing.T) {
	gate := NewGate(newFakeStore(), nil)
	ctx := context.Background()

	if _, err := gate.Signup(ctx, "alice", "secret"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := gate.Signup(ctx, "alice", "other"); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict for taken name, got %v", err)
	}
}

func TestLoginDoesNotLeakWhichCredentialFailed(t *testing.T) {
	gate := NewGate(newFakeStore(), nil)
	ctx := context.Background()

	if _, err := gate.Signup(ctx, "alice", "secret"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, unknownName := gate.Login(ctx, "nobody", "secret")
	_, wrongPassword := gate.Login(ctx, "alice", "wrong")
	for _, err := range []error{unknownName, wrongPassword} {
		if apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		if apperr.CodeOf(err) != "invalid_credentials" {
			t.Fatalf("expected indistinguishable error code, got %s", apperr.CodeOf(err))
		}
	}
}

func TestLoginOpensNewSession(t *testing.T) {
	gate := NewGate(newFakeStore(), nil)
	ctx := context.Background()

	signup, err := gate.Signup(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	login, err := gate.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.Token == signup.Token {
		t.Fatalf("expected a fresh session token on login")
	}

	// Both sessions stay live; multiple concurrent sessions are allowed.
	for _, token := range []string{signup.Token, login.Token} {
		if _, err := gate.Authenticate(ctx, token); err != nil {
			t.Fatalf("expected token %q to authenticate: %v", token, err)
		}
	}
}

func TestAuthenticateRejectsMissingAndUnknownTokens(t *testing.T) {
	gate := NewGate(newFakeStore(), nil)
	ctx := context.Background()

	for _, token := range []string{"", "   "} {
		if _, err := gate.Authenticate(ctx, token); apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Fatalf("expected unauthorized for token %q, got %v", token, err)
		}
	}
	if _, err := gate.Authenticate(ctx, "bogus"); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized for unknown token, got %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	gate := NewGate(newFakeStore(), nil)
	ctx := context.Background()

	creds, err := gate.Signup(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := gate.Logout(ctx, creds.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := gate.Authenticate(ctx, creds.Token); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected logged-out token to be rejected, got %v", err)
	}
	// A second logout is a visible error, not a silent no-op.
	if err := gate.Logout(ctx, creds.Token); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized for dead token, got %v", err)
	}
}
