package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/revuo/reviews-api/internal/core/domain"
)

// UserRepository defines persistence for user accounts, including the
// postedReviews back-reference maintained by the review lifecycle.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*domain.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// PushPostedReview and PullPostedReview mutate the postedReviews id list.
	// Callers are expected to run them inside the same transaction as the
	// corresponding review write.
	PushPostedReview(ctx context.Context, userID, reviewID primitive.ObjectID) error
	PullPostedReview(ctx context.Context, userID, reviewID primitive.ObjectID) error
}
