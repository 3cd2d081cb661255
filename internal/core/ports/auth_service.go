package ports

import (
	"context"

	"github.com/revuo/reviews-api/internal/core/domain"
)

// SignupInput carries the fields required to create an account.
type SignupInput struct {
	Fullname string
	Username string
	Email    string
	Password string
}

type AuthService interface {
	// Signup creates the account and returns it together with a signed token.
	Signup(ctx context.Context, in SignupInput) (*domain.User, string, error)
	// Login verifies the credentials and returns the user and a signed token.
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
}
