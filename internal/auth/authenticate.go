package auth

import (
	"context"
	"errors"
	"fmt"
)

// Authenticate verifies a username/password pair against the repository.
//
// Returns ErrInvalidCredentials when the user does not exist or the
// password does not match, and ErrUserInactive for disabled accounts.
// Unknown-user and wrong-password failures are deliberately
// indistinguishable so callers cannot probe for usernames.
func Authenticate(ctx context.Context, repo UserRepository, username, password string) (*User, error) {
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
