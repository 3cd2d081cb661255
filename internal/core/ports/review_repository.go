package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/revuo/reviews-api/internal/core/domain"
)

// ReviewRepository defines persistence for reviews. Read methods return
// documents with the author populated; list methods sort newest first.
type ReviewRepository interface {
	Insert(ctx context.Context, review *domain.Review) (*domain.Review, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Review, error)
	FindAll(ctx context.Context) ([]domain.Review, error)
	FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]domain.Review, error)

	// CountBySubject counts reviews whose normalized subject name equals the
	// given (already normalized) name.
	CountBySubject(ctx context.Context, name string) (int64, error)

	UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*domain.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	PushImages(ctx context.Context, id primitive.ObjectID, publicIDs []string) (*domain.Review, error)
	PullImage(ctx context.Context, id primitive.ObjectID, publicID string) (*domain.Review, error)

	// DeleteByAuthor removes every review authored by the user and returns the
	// removed documents so callers can clean up hosted images afterwards.
	DeleteByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]domain.Review, error)
}
