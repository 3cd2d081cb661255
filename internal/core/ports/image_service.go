package ports

import (
	"context"

	"github.com/revuo/reviews-api/internal/core/domain"
)

type ImageService interface {
	// Attach uploads the given files to the hosting service and appends the
	// returned public identifiers to the review, preserving input order.
	Attach(ctx context.Context, reviewID, actorID string, files []ImageUpload) (*domain.Review, error)
	// Detach removes one hosted image by public identifier. A hosting-service
	// failure is logged but does not block removal from the review.
	Detach(ctx context.Context, reviewID, actorID, publicID string) (*domain.Review, error)
}
