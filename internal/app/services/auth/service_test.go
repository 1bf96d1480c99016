package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domainauth "immo/internal/domain/auth"
	domainuser "immo/internal/domain/user"
	"immo/internal/infra/storage/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type sequenceTokens struct {
	n int
}

func (g *sequenceTokens) NewToken() (string, error) {
	g.n++
	return fmt.Sprintf("token-%d", g.n), nil
}

func newService() *Service {
	return &Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  plainHasher{},
		Tokens:     &sequenceTokens{},
		SessionTTL: time.Hour,
	}
}

func validRegisterParams() RegisterParams {
	return RegisterParams{
		Email:     "Jean.Dupont@Example.com",
		FirstName: "Jean",
		LastName:  "Dupont",
		Password:  "s3cret-pass",
		Role:      "owner",
	}
}

func TestRegister(t *testing.T) {
	s := newService()

	result, err := s.Register(context.Background(), validRegisterParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.User.Email != "jean.dupont@example.com" {
		t.Errorf("email should be normalized, got %s", result.User.Email)
	}
	if result.User.Role != domainuser.RoleOwner {
		t.Errorf("expected owner role, got %s", result.User.Role)
	}
	if result.Token == "" {
		t.Error("register should open a session")
	}

	resolved, err := s.ResolveToken(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.User.ID != result.User.ID {
		t.Errorf("session resolves to the wrong user: %s", resolved.User.ID)
	}
}

func TestRegisterDefaultsToClient(t *testing.T) {
	s := newService()
	params := validRegisterParams()
	params.Role = ""

	result, err := s.Register(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.User.Role != domainuser.RoleClient {
		t.Errorf("blank role should default to client, got %s", result.User.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RegisterParams)
		want   error
	}{
		{"empty email", func(p *RegisterParams) { p.Email = "  " }, domainuser.ErrEmailRequired},
		{"short password", func(p *RegisterParams) { p.Password = "abc" }, ErrPasswordTooShort},
		{"unknown role", func(p *RegisterParams) { p.Role = "landlord" }, domainuser.ErrInvalidRole},
		{"admin role", func(p *RegisterParams) { p.Role = "admin" }, domainuser.ErrRoleNotAssignable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newService()
			params := validRegisterParams()
			tc.mutate(&params)
			if _, err := s.Register(context.Background(), params); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newService()
	if _, err := s.Register(context.Background(), validRegisterParams()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	params := validRegisterParams()
	params.Email = "JEAN.DUPONT@example.com"
	if _, err := s.Register(context.Background(), params); !errors.Is(err, domainuser.ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	s := newService()
	registered, err := s.Register(context.Background(), validRegisterParams())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := s.Login(context.Background(), LoginParams{
		Email:    "jean.dupont@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.User.ID != registered.User.ID {
		t.Errorf("login resolves to the wrong user: %s", result.User.ID)
	}
	if result.Token == registered.Token {
		t.Error("each login should issue a fresh token")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	s := newService()
	if _, err := s.Register(context.Background(), validRegisterParams()); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name   string
		params LoginParams
	}{
		{"unknown email", LoginParams{Email: "nobody@example.com", Password: "s3cret-pass"}},
		{"wrong password", LoginParams{Email: "jean.dupont@example.com", Password: "wrong"}},
		{"empty email", LoginParams{Password: "s3cret-pass"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Login(context.Background(), tc.params); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	s := newService()
	result, err := s.Register(context.Background(), validRegisterParams())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := s.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := s.ResolveToken(context.Background(), result.Token); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Errorf("token should be dead after logout, got %v", err)
	}

	// Logging out twice, or with a blank token, is a no-op.
	if err := s.Logout(context.Background(), result.Token); err != nil {
		t.Errorf("repeated logout: %v", err)
	}
	if err := s.Logout(context.Background(), "  "); err != nil {
		t.Errorf("blank token logout: %v", err)
	}
}

func TestResolveTokenExpired(t *testing.T) {
	s := newService()

	result, err := s.Register(context.Background(), validRegisterParams())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	session, err := s.Sessions.Get(context.Background(), domainauth.Token(result.Token))
	if err != nil {
		t.Fatalf("session lookup: %v", err)
	}
	session.ExpiresAt = time.Now().Add(-time.Minute)
	if err := s.Sessions.Save(context.Background(), session); err != nil {
		t.Fatalf("session save: %v", err)
	}

	if _, err := s.ResolveToken(context.Background(), result.Token); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("expired session should not resolve, got %v", err)
	}
	// The expired session is removed on first use.
	if _, err := s.Sessions.Get(context.Background(), domainauth.Token(result.Token)); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Errorf("expired session should be deleted, got %v", err)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	s := newService()
	if _, err := s.ResolveToken(context.Background(), "nope"); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}
