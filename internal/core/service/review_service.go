package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/revuo/reviews-api/internal/core/domain"
	"github.com/revuo/reviews-api/internal/core/ports"
)

// updatableFields is the fixed allow-list for PATCH /api/reviews/:id. Any
// other field in the request body rejects the whole update.
var updatableFields = map[string]struct{}{
	"introText":     {},
	"category":      {},
	"likes":         {},
	"website":       {},
	"telephone":     {},
	"address":       {},
	"reviewDetails": {},
}

// ReviewService coordinates review mutations with the companion mutation of
// the author's postedReviews list. Both writes always run inside one
// transaction; hosted-image cleanup runs after commit, best effort.
type ReviewService struct {
	reviews     ports.ReviewRepository
	users       ports.UserRepository
	tx          ports.TxRunner
	images      ports.ImageStore
	broadcaster ports.Broadcaster
	logger      zerolog.Logger
}

func NewReviewService(
	reviews ports.ReviewRepository,
	users ports.UserRepository,
	tx ports.TxRunner,
	images ports.ImageStore,
	broadcaster ports.Broadcaster,
	logger zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:     reviews,
		users:       users,
		tx:          tx,
		images:      images,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Create persists a new review and appends its id to the author's
// postedReviews in the same transaction. The author must exist before
// anything is written.
func (s *ReviewService) Create(ctx context.Context, actorID string, in ports.CreateReviewInput) (*domain.Review, error) {
	authorID, err := parseID(actorID, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ReviewedName:  domain.NormalizeSubject(in.ReviewedName),
		IntroText:     in.IntroText,
		Category:      in.Category,
		Website:       in.Website,
		Telephone:     in.Telephone,
		Address:       in.Address,
		ReviewDetails: in.ReviewDetails,
		Images:        []string{},
		AuthorID:      author.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		created, err := s.reviews.Insert(ctx, review)
		if err != nil {
			return fmt.Errorf("insert review: %w", err)
		}
		review = created
		return s.users.PushPostedReview(ctx, author.ID, created.ID)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("author", actorID).Msg("create review transaction failed")
		return nil, err
	}

	review.Author = author.Profile()

	s.logger.Info().Str("review", review.ID.Hex()).Str("author", actorID).Msg("review created")
	s.broadcaster.Publish(domain.ReviewEvent{Action: domain.ActionCreate, Review: review})
	return review, nil
}

func (s *ReviewService) GetAll(ctx context.Context) ([]domain.Review, error) {
	return s.reviews.FindAll(ctx)
}

func (s *ReviewService) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	oid, err := parseID(id, domain.ErrReviewNotFound)
	if err != nil {
		return nil, err
	}
	return s.reviews.FindByID(ctx, oid)
}

func (s *ReviewService) GetByAuthor(ctx context.Context, userID string) ([]domain.Review, error) {
	oid, err := parseID(userID, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return s.reviews.FindByAuthor(ctx, oid)
}

func (s *ReviewService) CountBySubject(ctx context.Context, name string) (int64, error) {
	return s.reviews.CountBySubject(ctx, domain.NormalizeSubject(name))
}

// Update applies an allow-listed partial update. The target is re-fetched
// immediately before the ownership decision; a field outside the allow-list
// rejects the whole request and leaves the review unchanged.
func (s *ReviewService) Update(ctx context.Context, id, actorID string, fields map[string]any) (*domain.Review, error) {
	oid, err := parseID(id, domain.ErrReviewNotFound)
	if err != nil {
		return nil, err
	}

	set, err := validateUpdate(fields)
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

	set["updatedAt"] = time.Now().UTC()
	updated, err := s.reviews.UpdateFields(ctx, oid, set)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Publish(domain.ReviewEvent{Action: domain.ActionUpdate, Review: updated})
	return updated, nil
}

// Delete removes the review and pulls its id from the author's postedReviews
// in one transaction. Hosted images captured before deletion are removed
// afterwards; a hosting failure is logged and never rolls back the commit.
// Orphaned hosted images are an acceptable, recoverable cost.
func (s *ReviewService) Delete(ctx context.Context, id, actorID string) error {
	oid, err := parseID(id, domain.ErrReviewNotFound)
	if err != nil {
		return err
	}

	review, err := s.reviews.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if err := requireOwner(review.AuthorID, actorID); err != nil {
		return err
	}

	images := review.Images

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.reviews.Delete(ctx, oid); err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		return s.users.PullPostedReview(ctx, review.AuthorID, oid)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("review", id).Msg("delete review transaction failed")
		return err
	}

	s.removeHostedImages(ctx, id, images)

	s.logger.Info().Str("review", id).Str("author", actorID).Msg("review deleted")
	s.broadcaster.Publish(domain.ReviewEvent{Action: domain.ActionDelete, Review: id})
	return nil
}

// removeHostedImages best-effort deletes hosted images after the store
// transaction has committed.
func (s *ReviewService) removeHostedImages(ctx context.Context, reviewID string, publicIDs []string) {
	for _, publicID := range publicIDs {
		if err := s.images.Remove(ctx, publicID); err != nil {
			s.logger.Warn().Err(err).
				Str("review", reviewID).
				Str("public_id", publicID).
				Msg("failed to delete hosted image, leaving orphan")
		}
	}
}

// validateUpdate checks the request fields against the allow-list and coerces
// them into a storable map. likes must be numeric, everything else a string.
func validateUpdate(fields map[string]any) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, domain.ErrInvalidUpdate
	}

	set := make(map[string]any, len(fields))
	for key, value := range fields {
		if _, ok := updatableFields[key]; !ok {
			return nil, domain.ErrInvalidUpdate
		}
		if key == "likes" {
			n, err := toInt64(value)
			if err != nil {
				return nil, domain.ErrInvalidUpdate
			}
			set[key] = n
			continue
		}
		str, ok := value.(string)
		if !ok {
			return nil, domain.ErrInvalidUpdate
		}
		set[key] = str
	}
	return set, nil
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("not an integer: %v", value)
		}
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	default:
		return 0, fmt.Errorf("not a number: %v", value)
	}
}
