package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/revuo/reviews-api/internal/core/domain"
	"github.com/revuo/reviews-api/internal/core/ports"
)

// profileFields is the allow-list for PATCH /api/users/:id. Identity fields
// (username, email) carry unique indexes and are not editable.
var profileFields = map[string]struct{}{
	"fullname": {},
	"avatar":   {},
}

// UserService handles account reads, profile updates, and account deletion
// with its review cascade.
type UserService struct {
	users       ports.UserRepository
	reviews     ports.ReviewRepository
	tx          ports.TxRunner
	images      ports.ImageStore
	broadcaster ports.Broadcaster
	logger      zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	reviews ports.ReviewRepository,
	tx ports.TxRunner,
	images ports.ImageStore,
	broadcaster ports.Broadcaster,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:       users,
		reviews:     reviews,
		tx:          tx,
		images:      images,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *UserService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	oid, err := parseID(userID, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, oid)
}

// UpdateProfile applies an allow-listed update to the caller's own account.
func (s *UserService) UpdateProfile(ctx context.Context, targetID, actorID string, fields map[string]any) (*domain.User, error) {
	oid, err := parseID(targetID, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, domain.ErrInvalidUpdate
	}
	set := make(map[string]any, len(fields))
	for key, value := range fields {
		if _, ok := profileFields[key]; !ok {
			return nil, domain.ErrInvalidUpdate
		}
		str, ok := value.(string)
		if !ok {
			return nil, domain.ErrInvalidUpdate
		}
		set[key] = str
	}

	user, err := s.users.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(user.ID, actorID); err != nil {
		return nil, err
	}

	set["updatedAt"] = time.Now().UTC()
	return s.users.UpdateFields(ctx, oid, set)
}

// Delete removes the account and every review it authored in one atomic
// unit, then best-effort deletes the reviews' hosted images and announces a
// delete event for each removed review.
func (s *UserService) Delete(ctx context.Context, targetID, actorID string) error {
	oid, err := parseID(targetID, domain.ErrUserNotFound)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if err := requireOwner(user.ID, actorID); err != nil {
		return err
	}

	var removed []domain.Review
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		removed, err = s.reviews.DeleteByAuthor(ctx, oid)
		if err != nil {
			return fmt.Errorf("cascade reviews: %w", err)
		}
		return s.users.Delete(ctx, oid)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user", targetID).Msg("delete account transaction failed")
		return err
	}

	for _, review := range removed {
		id := review.ID.Hex()
		for _, publicID := range review.Images {
			if err := s.images.Remove(ctx, publicID); err != nil {
				s.logger.Warn().Err(err).
					Str("review", id).
					Str("public_id", publicID).
					Msg("failed to delete hosted image, leaving orphan")
			}
		}
		s.broadcaster.Publish(domain.ReviewEvent{Action: domain.ActionDelete, Review: id})
	}

	s.logger.Info().Str("user", targetID).Int("cascaded_reviews", len(removed)).Msg("account deleted")
	return nil
}
