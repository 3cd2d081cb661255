package ports

import (
	"context"

	"github.com/revuo/reviews-api/internal/core/domain"
)

type UserService interface {
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	// UpdateProfile applies an allow-listed partial update. Only the account
	// owner may update it.
	UpdateProfile(ctx context.Context, targetID, actorID string, fields map[string]any) (*domain.User, error)
	// Delete removes the account and cascades deletion of every authored
	// review in the same transaction.
	Delete(ctx context.Context, targetID, actorID string) error
}
