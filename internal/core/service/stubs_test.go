package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/revuo/reviews-api/internal/core/domain"
	"github.com/revuo/reviews-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID map[primitive.ObjectID]*domain.User

	createErr error
	pushErr   error
	pullErr   error

	pushCalls [][2]primitive.ObjectID // [userID, reviewID]
	pullCalls [][2]primitive.ObjectID
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[primitive.ObjectID]*domain.User)}
}

func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	clone := *u
	r.byID[u.ID] = &clone
	return u
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	user.ID = primitive.NewObjectID()
	if user.PostedReviews == nil {
		user.PostedReviews = []primitive.ObjectID{}
	}
	if user.LikedReviews == nil {
		user.LikedReviews = []primitive.ObjectID{}
	}
	clone := *user
	r.byID[user.ID] = &clone
	return user, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateFields(_ context.Context, id primitive.ObjectID, fields map[string]any) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if v, ok := fields["fullname"].(string); ok {
		u.Fullname = v
	}
	if v, ok := fields["avatar"].(string); ok {
		u.Avatar = v
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) PushPostedReview(_ context.Context, userID, reviewID primitive.ObjectID) error {
	if r.pushErr != nil {
		return r.pushErr
	}
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PostedReviews = append(u.PostedReviews, reviewID)
	r.pushCalls = append(r.pushCalls, [2]primitive.ObjectID{userID, reviewID})
	return nil
}

func (r *stubUserRepo) PullPostedReview(_ context.Context, userID, reviewID primitive.ObjectID) error {
	if r.pullErr != nil {
		return r.pullErr
	}
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	kept := u.PostedReviews[:0]
	for _, id := range u.PostedReviews {
		if id != reviewID {
			kept = append(kept, id)
		}
	}
	u.PostedReviews = kept
	r.pullCalls = append(r.pullCalls, [2]primitive.ObjectID{userID, reviewID})
	return nil
}

// ---------------------------------------------------------------------------
// In-memory stub review repository
// ---------------------------------------------------------------------------

type stubReviewRepo struct {
	byID map[primitive.ObjectID]*domain.Review

	insertErr error
	updateErr error
	deleteErr error

	lastCountSubject string
	lastUpdateFields map[string]any
}

func newStubReviewRepo() *stubReviewRepo {
	return &stubReviewRepo{byID: make(map[primitive.ObjectID]*domain.Review)}
}

func (r *stubReviewRepo) seed(rev *domain.Review) *domain.Review {
	if rev.ID.IsZero() {
		rev.ID = primitive.NewObjectID()
	}
	if rev.Images == nil {
		rev.Images = []string{}
	}
	clone := *rev
	r.byID[rev.ID] = &clone
	return rev
}

func (r *stubReviewRepo) Insert(_ context.Context, review *domain.Review) (*domain.Review, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	review.ID = primitive.NewObjectID()
	clone := *review
	r.byID[review.ID] = &clone
	return review, nil
}

func (r *stubReviewRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Review, error) {
	rev, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	clone := *rev
	return &clone, nil
}

func (r *stubReviewRepo) FindAll(_ context.Context) ([]domain.Review, error) {
	out := make([]domain.Review, 0, len(r.byID))
	for _, rev := range r.byID {
		out = append(out, *rev)
	}
	return out, nil
}

func (r *stubReviewRepo) FindByAuthor(_ context.Context, authorID primitive.ObjectID) ([]domain.Review, error) {
	var out []domain.Review
	for _, rev := range r.byID {
		if rev.AuthorID == authorID {
			out = append(out, *rev)
		}
	}
	return out, nil
}

func (r *stubReviewRepo) CountBySubject(_ context.Context, name string) (int64, error) {
	r.lastCountSubject = name
	var n int64
	for _, rev := range r.byID {
		if strings.EqualFold(rev.ReviewedName, name) {
			n++
		}
	}
	return n, nil
}

func (r *stubReviewRepo) UpdateFields(_ context.Context, id primitive.ObjectID, fields map[string]any) (*domain.Review, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	rev, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	r.lastUpdateFields = fields
	if v, ok := fields["introText"].(string); ok {
		rev.IntroText = v
	}
	if v, ok := fields["category"].(string); ok {
		rev.Category = v
	}
	if v, ok := fields["likes"].(int64); ok {
		rev.Likes = v
	}
	clone := *rev
	return &clone, nil
}

func (r *stubReviewRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return domain.ErrReviewNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubReviewRepo) PushImages(_ context.Context, id primitive.ObjectID, publicIDs []string) (*domain.Review, error) {
	rev, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	rev.Images = append(rev.Images, publicIDs...)
	clone := *rev
	return &clone, nil
}

func (r *stubReviewRepo) PullImage(_ context.Context, id primitive.ObjectID, publicID string) (*domain.Review, error) {
	rev, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	kept := rev.Images[:0]
	for _, img := range rev.Images {
		if img != publicID {
			kept = append(kept, img)
		}
	}
	rev.Images = kept
	clone := *rev
	return &clone, nil
}

func (r *stubReviewRepo) DeleteByAuthor(_ context.Context, authorID primitive.ObjectID) ([]domain.Review, error) {
	if r.deleteErr != nil {
		return nil, r.deleteErr
	}
	var removed []domain.Review
	for id, rev := range r.byID {
		if rev.AuthorID == authorID {
			removed = append(removed, *rev)
			delete(r.byID, id)
		}
	}
	return removed, nil
}

// ---------------------------------------------------------------------------
// Transaction, image store, broadcaster stubs
// ---------------------------------------------------------------------------

// stubTx runs fn inline. When failWith is set, fn is skipped entirely to
// mimic a rolled-back transaction.
type stubTx struct {
	failWith error
	calls    int
}

func (t *stubTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if t.failWith != nil {
		return t.failWith
	}
	return fn(ctx)
}

type stubImageStore struct {
	uploadErr error
	removeErr error

	uploaded []string // filenames, in upload order
	removed  []string // public ids, in removal order
	nextID   int
}

func (s *stubImageStore) Upload(_ context.Context, in ports.ImageUpload) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.nextID++
	s.uploaded = append(s.uploaded, in.Filename)
	return fmt.Sprintf("img-%d", s.nextID), nil
}

func (s *stubImageStore) Remove(_ context.Context, publicID string) error {
	s.removed = append(s.removed, publicID)
	return s.removeErr
}

type recordBroadcaster struct {
	events []domain.ReviewEvent
}

func (b *recordBroadcaster) Publish(event domain.ReviewEvent) {
	b.events = append(b.events, event)
}
