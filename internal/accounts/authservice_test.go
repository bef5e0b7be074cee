package accounts

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSignUpUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMockUserRepo()

	user, err := SignUpUser(ctx, repo, "Ada Lovelace", "Ada@Example.com", "9876543210", "s3cret-pass")
	if err != nil {
		t.Fatalf("SignUpUser failed: %v", err)
	}

	if user.Email != "ada@example.com" {
		t.Errorf("expected normalized email ada@example.com, got %s", user.Email)
	}
	if len(user.PasswordHash) == 0 || len(user.PasswordSalt) == 0 {
		t.Error("expected password hash and salt to be set")
	}
	if user.Admin {
		t.Error("new users must not be admins")
	}

	stored, err := repo.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored == nil {
		t.Fatal("expected user to be persisted")
	}
}

func TestSignUpUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMockUserRepo()

	if _, err := SignUpUser(ctx, repo, "Ada Lovelace", "ada@example.com", "", "s3cret-pass"); err != nil {
		t.Fatalf("first sign up failed: %v", err)
	}

	_, err := SignUpUser(ctx, repo, "Someone Else", "ADA@example.com", "", "other-pass")
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestSignInUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMockUserRepo()
	sessions := NewSessionStore(time.Hour)

	if _, err := SignUpUser(ctx, repo, "Grace Hopper", "grace@example.com", "", "correct-horse"); err != nil {
		t.Fatalf("sign up failed: %v", err)
	}

	user, token, err := SignInUser(ctx, repo, sessions, "grace@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("SignInUser failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
	if user.Name != "Grace Hopper" {
		t.Errorf("expected user Grace Hopper, got %s", user.Name)
	}

	session, err := sessions.Get(token)
	if err != nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if session.UserID != user.ID {
		t.Error("session is bound to the wrong user")
	}
}

func TestSignInUserWrongPassword(t *testing.T) {
	ctx := context.Background()
	repo := NewMockUserRepo()
	sessions := NewSessionStore(time.Hour)

	if _, err := SignUpUser(ctx, repo, "Grace Hopper", "grace@example.com", "", "correct-horse"); err != nil {
		t.Fatalf("sign up failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrongPassword", "grace@example.com", "wrong-horse"},
		{"unknownEmail", "nobody@example.com", "correct-horse"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := SignInUser(ctx, repo, sessions, tc.email, tc.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}

	if sessions.Count() != 0 {
		t.Errorf("expected no sessions after failed sign ins, got %d", sessions.Count())
	}
}
