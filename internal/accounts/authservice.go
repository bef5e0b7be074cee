package accounts

import (
	"context"
	"errors"
	"fmt"

	authpkg "github.com/appetiteclub/apt/auth"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// SignUpUser registers a new account with a salted password hash.
func SignUpUser(ctx context.Context, repo UserRepo, name, email, phone, password string) (*User, error) {
	if repo == nil {
		return nil, errors.New("user repository is required")
	}

	normalizedEmail := authpkg.NormalizeEmail(email)

	existing, err := repo.GetByEmail(ctx, normalizedEmail)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	salt := authpkg.GeneratePasswordSalt()
	passwordHash := authpkg.HashPassword([]byte(password), salt)

	user := NewUser()
	user.Name = name
	user.Email = normalizedEmail
	user.Phone = phone
	user.PasswordHash = passwordHash
	user.PasswordSalt = salt
	user.BeforeCreate()

	if err := repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// SignInUser verifies credentials and issues a session through the store.
func SignInUser(ctx context.Context, repo UserRepo, sessions *SessionStore, email, password string) (*User, string, error) {
	if repo == nil {
		return nil, "", errors.New("user repository is required")
	}
	if sessions == nil {
		return nil, "", errors.New("session store is required")
	}

	normalizedEmail := authpkg.NormalizeEmail(email)

	user, err := repo.GetByEmail(ctx, normalizedEmail)
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !authpkg.VerifyPasswordHash([]byte(password), user.PasswordHash, user.PasswordSalt) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := sessions.Create(user)
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	return user, token, nil
}
