package ports

import (
	"context"

	"github.com/revuo/reviews-api/internal/core/domain"
)

// CreateReviewInput carries the fields accepted when posting a review.
type CreateReviewInput struct {
	ReviewedName  string
	IntroText     string
	Category      string
	Website       string
	Telephone     string
	Address       string
	ReviewDetails string
}

type ReviewService interface {
	Create(ctx context.Context, actorID string, in CreateReviewInput) (*domain.Review, error)
	GetAll(ctx context.Context) ([]domain.Review, error)
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	GetByAuthor(ctx context.Context, userID string) ([]domain.Review, error)
	CountBySubject(ctx context.Context, name string) (int64, error)
	// Update applies an allow-listed partial update after re-checking
	// ownership against a fresh fetch of the target.
	Update(ctx context.Context, id, actorID string, fields map[string]any) (*domain.Review, error)
	Delete(ctx context.Context, id, actorID string) error
}
