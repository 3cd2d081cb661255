package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/revuo/reviews-api/internal/core/domain"
	"github.com/revuo/reviews-api/internal/core/ports"
)

// maxImagesPerAttach bounds one attach call.
const maxImagesPerAttach = 4

// ImageService manages the hosted images attached to a review.
type ImageService struct {
	reviews     ports.ReviewRepository
	store       ports.ImageStore
	broadcaster ports.Broadcaster
	logger      zerolog.Logger
}

func NewImageService(
	reviews ports.ReviewRepository,
	store ports.ImageStore,
	broadcaster ports.Broadcaster,
	logger zerolog.Logger,
) *ImageService {
	return &ImageService{reviews: reviews, store: store, broadcaster: broadcaster, logger: logger}
}

// Attach uploads up to maxImagesPerAttach files and appends the returned
// public identifiers to the review in input order. The first upload error
// fails the whole call; already-uploaded files are left behind on the host
// (same orphan policy as delete) and nothing is recorded on the review.
func (s *ImageService) Attach(ctx context.Context, reviewID, actorID string, files []ports.ImageUpload) (*domain.Review, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoImages
	}
	if len(files) > maxImagesPerAttach {
		return nil, domain.ErrTooManyImages
	}

	oid, err := parseID(reviewID, domain.ErrReviewNotFound)
	if err != nil {
		return nil, err
	}

	review, err := s.reviews.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(review.AuthorID, actorID); err != nil {
		return nil, err
	}

	publicIDs := make([]string, 0, len(files))
	for _, file := range files {
		publicID, err := s.store.Upload(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("upload image %q: %w", file.Filename, err)
		}
		publicIDs = append(publicIDs, publicID)
	}

	updated, err := s.reviews.PushImages(ctx, oid, publicIDs)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("review", reviewID).Int("count", len(publicIDs)).Msg("images attached")
	s.broadcaster.Publish(domain.ReviewEvent{Action: domain.ActionUpdate, Review: updated})
	return updated, nil
}

// Detach removes a single hosted image. The local image list is authoritative
// for what a review displays, so a hosting-service failure is only a warning
// and never blocks removing the identifier.
func (s *ImageService) Detach(ctx context.Context, reviewID, actorID, publicID string) (*domain.Review, error) {
	oid, err := parseID(reviewID, domain.ErrReviewNotFound)
	if err != nil {
		return nil, err
	}

	review, err := s.reviews.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(review.AuthorID, actorID); err != nil {
		return nil, err
	}

	if err := s.store.Remove(ctx, publicID); err != nil {
		s.logger.Warn().Err(err).
			Str("review", reviewID).
			Str("public_id", publicID).
			Msg("image host deletion failed, removing local reference anyway")
	}

	updated, err := s.reviews.PullImage(ctx, oid, publicID)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Publish(domain.ReviewEvent{Action: domain.ActionUpdate, Review: updated})
	return updated, nil
}
