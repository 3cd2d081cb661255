package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/revuo/reviews-api/internal/core/domain"
	"github.com/revuo/reviews-api/internal/core/ports"
)

func newReviewService(reviews *stubReviewRepo, users *stubUserRepo, tx *stubTx, store *stubImageStore, bc *recordBroadcaster) *ReviewService {
	return NewReviewService(reviews, users, tx, store, bc, discardLogger)
}

func createInput() ports.CreateReviewInput {
	return ports.CreateReviewInput{
		ReviewedName:  "The Best Cafe",
		IntroText:     "A hidden gem",
		Category:      "restaurant",
		ReviewDetails: "Great coffee, friendly staff.",
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestReviewService_Create_Success(t *testing.T) {
	users := newStubUserRepo()
	author := users.seed(&domain.User{Username: "max", Fullname: "Max M"})
	reviews := newStubReviewRepo()
	bc := &recordBroadcaster{}
	svc := newReviewService(reviews, users, &stubTx{}, &stubImageStore{}, bc)

	review, err := svc.Create(context.Background(), author.ID.Hex(), createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if review.ID.IsZero() {
		t.Error("expected a generated review id")
	}
	if review.ReviewedName != "the best cafe" {
		t.Errorf("subject must be normalized on write, got %q", review.ReviewedName)
	}
	if review.Images == nil || len(review.Images) != 0 {
		t.Error("a new review must start with an empty images list")
	}
	if review.Author == nil || review.Author.Username != "max" {
		t.Error("response must carry the populated author profile")
	}
}

func TestReviewService_Create_PushesPostedReviews(t *testing.T) {
	users := newStubUserRepo()
	author := users.seed(&domain.User{Username: "max"})
	reviews := newStubReviewRepo()
	svc := newReviewService(reviews, users, &stubTx{}, &stubImageStore{}, &recordBroadcaster{})

	review, err := svc.Create(context.Background(), author.ID.Hex(), createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := users.byID[author.ID]
	if len(stored.PostedReviews) != 1 || stored.PostedReviews[0] != review.ID {
		t.Errorf("postedReviews must contain the new review id, got %v", stored.PostedReviews)
	}
}

func TestReviewService_Create_PublishesCreateEvent(t *testing.T) {
	users := newStubUserRepo()
	author := users.seed(&domain.User{Username: "max"})
	bc := &recordBroadcaster{}
	svc := newReviewService(newStubReviewRepo(), users, &stubTx{}, &stubImageStore{}, bc)

	review, _ := svc.Create(context.Background(), author.ID.Hex(), createInput())

	if len(bc.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(bc.events))
	}
	if bc.events[0].Action != domain.ActionCreate {
		t.Errorf("expected action %q, got %q", domain.ActionCreate, bc.events[0].Action)
	}
	if bc.events[0].Key() != review.ID.Hex() {
		t.Errorf("event key: want %s, got %s", review.ID.Hex(), bc.events[0].Key())
	}
}

func TestReviewService_Create_UnknownAuthor(t *testing.T) {
	svc := newReviewService(newStubReviewRepo(), newStubUserRepo(), &stubTx{}, &stubImageStore{}, &recordBroadcaster{})

	_, err := svc.Create(context.Background(), primitive.NewObjectID().Hex(), createInput())
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestReviewService_Create_MalformedAuthorID(t *testing.T) {
	svc := newReviewService(newStubReviewRepo(), newStubUserRepo(), &stubTx{}, &stubImageStore{}, &recordBroadcaster{})

	_, err := svc.Create(context.Background(), "not-an-object-id", createInput())
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestReviewService_Create_TxFailure_NoEvent(t *testing.T) {
	users := newStubUserRepo()
	author := users.seed(&domain.User{Username: "max"})
	bc := &recordBroadcaster{}
	tx := &stubTx{failWith: errors.New("transient transaction error")}
	svc := newReviewService(newStubReviewRepo(), users, tx, &stubImageStore{}, bc)

	_, err := svc.Create(context.Background(), author.ID.Hex(), createInput())
	if err == nil {
		t.Fatal("expected error when transaction fails")
	}
	if len(bc.events) != 0 {
		t.Errorf("no event may be published for a rolled-back create, got %d", len(bc.events))
	}
}

func TestReviewService_Create_PushFailureRollsBack(t *testing.T) {
	users := newStubUserRepo()
	author := users.seed(&domain.User{Username: "max"})
	users.pushErr = errors.New("write conflict")
	bc := &recordBroadcaster{}
	svc := newReviewService(newStubReviewRepo(), users, &stubTx{}, &stubImageStore{}, bc)

	_, err := svc.Create(context.Background(), author.ID.Hex(), createInput())
	if err == nil {
		t.Fatal("expected error when the postedReviews push fails")
	}
	if len(bc.events) != 0 {
		t.Error("no event may be published when the transaction errors")
	}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func TestReviewService_GetByID_MalformedID(t *testing.T) {
	svc := newReviewService(newStubReviewRepo(), newStubUserRepo(), &stubTx{}, &stubImageStore{}, &recordBroadcaster{})

	_, err := svc.GetByID(context.Background(), "zzz")
	if !errors.Is(err, domain.ErrReviewNotFound) {
		t.Errorf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestReviewService_CountBySubject_Normalizes(t *testing.T) {
	reviews := newStubReviewRepo()
	svc := newReviewService(reviews, newStubUserRepo(), &stubTx{}, &stubImageStore{}, &recordBroadcaster{})

	if _, err := svc.CountBySubject(context.Background(), "  The Best Cafe  "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reviews.lastCountSubject != "the best cafe" {
		t.Errorf("count must normalize the subject, repo saw %q", reviews.lastCountSubject)
	}
}

func TestReviewService_CountBySubject_MatchesNormalizedWrites(t *testing.T) {
	users := newStubUserRepo()
	author := users.seed(&domain.User{Username: "max"})
	reviews := newStubReviewRepo()
	svc := newReviewService(reviews, users, &stubTx{}, &stubImageStore{}, &recordBroadcaster{})

	in := createInput()
	in.ReviewedName = "The Best Cafe"
	if _, err := svc.Create(context.Background(), author.ID.Hex(), in); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, err := svc.CountBySubject(context.Background(), " the BEST cafe ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected count 1 across case/whitespace variants, got %d", n)
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func seedReview(users *stubUserRepo, reviews *stubReviewRepo) (*domain.User, *domain.Review) {
	author := users.seed(&domain.User{Username: "max"})
	review := reviews.seed(&domain.Review{
		ReviewedName:  "the best cafe",
		IntroText:     "A hidden gem",
		Category:      "restaurant",
		ReviewDetails: "Great coffee.",
		AuthorID:      author.ID,
		CreatedAt:     time.Now().UTC(),
	})
	return author, review
}

func TestReviewService_Update_Success(t *testing.T) {
	users := newStubUserRepo()
	reviews := newStubReviewRepo()
	author, review := seedReview(users, reviews)
	bc := &recordBroadcaster{}
	svc := newReviewService(reviews, users, &stubTx{}, &stubImageStore{}, bc)

	updated, err := svc.Update(context.Background(), review.ID.Hex(), author.ID.Hex(), map[string]any{
		"introText": "Updated intro",
		"likes":     float64(3), // JSON numbers decode as float64
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.IntroText != "Updated intro" {
		t.Errorf("introText not applied: %q", updated.IntroText)
	}
	if updated.Likes != 3 {
		t.Errorf("likes not applied: %d", updated.Likes)
	}
	if len(bc.events) != 1 || bc.events[0].Action != domain.ActionUpdate {
		t.Error("expected exactly one update event")
	}
	if _, ok := reviews.lastUpdateFields["updatedAt"]; !ok {
		t.Error("update must bump updatedAt")
	}
}

func TestReviewService_Update_RejectsUnknownField(t *testing.T) {
	users := newStubUserRepo()
	reviews := newStubReviewRepo()
	author, review := seedReview(users, reviews)
	svc := newReviewService(reviews, users, &stubTx{}, &stubImageStore{}, &recordBroadcaster{})

	_, err := svc.Update(context.Background(), review.ID.Hex(), author.ID.Hex(), map[string]any{
		"introText":    "fine",
		"reviewedName": "not editable",
	})
	if !errors.Is(err, domain.ErrInvalidUpdate) {
		t.Fatalf("expected ErrInvalidUpdate, got %v", err)
	}

	// The whole update is rejected, nothing may be applied.
	stored := reviews.byID[review.ID]
	if stored.IntroText != "A hidden gem" {
		t.Errorf("partial update applied: %q", stored.IntroText)
	}
}

func TestReviewService_Update_RejectsEmptyBody(t *testing.T) {
	users := newStubUserRepo()
	reviews := newStubReviewRepo()
	author, review := seedReview(users, reviews)
	svc := newReviewService(reviews, users, &stubTx{}, &stubImageStore{}, &recordBroadcaster{})

	_, err := svc.Update(context.Background(), review.ID.Hex(), author.ID.Hex(), map[string]any{})
	if !errors.Is(err, domain.ErrInvalidUpdate) {
		t.Errorf("expected ErrInvalidUpdate, got %v", err)
	}
}

func TestReviewService_Update_RejectsNonNumericLikes(t *testing.T) {
	users := newStubUserRepo()
	reviews := newStubReviewRepo()
	author, review := seedReview(users, reviews)
	svc := newReviewService(reviews, users, &stubTx{}, &stubImageStore{}, &recordBroadcaster{})

	_, err := svc.Update(context.Background(), review.ID.Hex(), author.ID.Hex(), map[string]any{
		"likes": "five",
	})
	if !errors.Is(err, domain.ErrInvalidUpdate) {
		t.Errorf("expected ErrInvalidUpdate, got %v", err)
	}
}

func TestReviewService_Update_RejectsFractionalLikes(t *testing.T) {
	users := newStubUserRepo()
	reviews := newStubReviewRepo()
	author, review := seedReview(users, reviews)
	svc := newReviewService(reviews, users, &stubTx{}, &stubImageStore{}, &recordBroadcaster{})

	_, err := svc.Update(context.Background(), review.ID.Hex(), author.ID.Hex(), map[string]any{
		"likes": 3.9,
	})
	if !errors.Is(err, domain.ErrInvalidUpdate) {
		t.Fatalf("expected ErrInvalidUpdate for a fractional count, got %v", err)
	}

	// A whole-valued float is still fine, that is how JSON integers decode.
	updated, err := svc.Update(context.Background(), review.ID.Hex(), author.ID.Hex(), map[string]any{
		"likes": float64(4),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Likes != 4 {
		t.Errorf("likes not applied: %d", updated.Likes)
	}
}

func TestReviewService_Update_NonOwnerForbidden(t *testing.T) {
	users := newStubUserRepo()
	reviews := newStubReviewRepo()
	_, review := seedReview(users, reviews)
	stranger := users.seed(&domain.User{Username: "eve"})
	bc := &recordBroadcaster{}
	svc := newReviewService(reviews, users, &stubTx{}, &stubImageStore{}, bc)

	_, err := svc.Update(context.Background(), review.ID.Hex(), stranger.ID.Hex(), map[string]any{
		"introText": "hijack",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(bc.events) != 0 {
		t.Error("no event may be published for a forbidden update")
	}
}

func TestReviewService_Update_NotFound(t *testing.T) {
	svc := newReviewService(newStubReviewRepo(), newStubUserRepo(), &stubTx{}, &stubImageStore{}, &recordBroadcaster{})

	_, err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex(), map[string]any{
		"introText": "hello",
	})
	if !errors.Is(err, domain.ErrReviewNotFound) {
		t.Errorf("expected ErrReviewNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestReviewService_Delete_Success(t *testing.T) {
	users := newStubUserRepo()
	reviews := newStubReviewRepo()
	author, review := seedReview(users, reviews)
	users.byID[author.ID].PostedReviews = []primitive.ObjectID{review.ID}
	store := &stubImageStore{}
	bc := &recordBroadcaster{}
	svc := newReviewService(reviews, users, &stubTx{}, store, bc)

	if err := svc.Delete(context.Background(), review.ID.Hex(), author.ID.Hex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := reviews.byID[review.ID]; ok {
		t.Error("review still stored after delete")
	}
	if got := users.byID[author.ID].PostedReviews; len(got) != 0 {
		t.Errorf("postedReviews must be pulled, got %v", got)
	}
	if len(bc.events) != 1 || bc.events[0].Action != domain.ActionDelete {
		t.Fatal("expected exactly one delete event")
	}
	if bc.events[0].Review != review.ID.Hex() {
		t.Errorf("delete event must carry the id string, got %v", bc.events[0].Review)
	}
}

func TestReviewService_Delete_RemovesHostedImages(t *testing.T) {
	users := newStubUserRepo()
	reviews := newStubReviewRepo()
	author := users.seed(&domain.User{Username: "max"})
	review := reviews.seed(&domain.Review{
		AuthorID: author.ID,
		Images:   []string{"img-1", "img-2"},
	})
	store := &stubImageStore{}
	svc := newReviewService(reviews, users, &stubTx{}, store, &recordBroadcaster{})

	if err := svc.Delete(context.Background(), review.ID.Hex(), author.ID.Hex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.removed) != 2 {
		t.Errorf("expected 2 host deletions, got %v", store.removed)
	}
}

func TestReviewService_Delete_ImageHostFailureStillSucceeds(t *testing.T) {
	users := newStubUserRepo()
	reviews := newStubReviewRepo()
	author := users.seed(&domain.User{Username: "max"})
	review := reviews.seed(&domain.Review{
		AuthorID: author.ID,
		Images:   []string{"img-1"},
	})
	store := &stubImageStore{removeErr: errors.New("host unavailable")}
	bc := &recordBroadcaster{}
	svc := newReviewService(reviews, users, &stubTx{}, store, bc)

	if err := svc.Delete(context.Background(), review.ID.Hex(), author.ID.Hex()); err != nil {
		t.Fatalf("host failure must not fail the delete: %v", err)
	}
	if len(bc.events) != 1 {
		t.Error("delete event must still be published")
	}
}

func TestReviewService_Delete_NonOwnerForbidden(t *testing.T) {
	users := newStubUserRepo()
	reviews := newStubReviewRepo()
	_, review := seedReview(users, reviews)
	stranger := users.seed(&domain.User{Username: "eve"})
	svc := newReviewService(reviews, users, &stubTx{}, &stubImageStore{}, &recordBroadcaster{})

	err := svc.Delete(context.Background(), review.ID.Hex(), stranger.ID.Hex())
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, ok := reviews.byID[review.ID]; !ok {
		t.Error("review must survive a forbidden delete")
	}
}

func TestReviewService_Delete_TxFailure_KeepsImagesAndEvents(t *testing.T) {
	users := newStubUserRepo()
	reviews := newStubReviewRepo()
	author := users.seed(&domain.User{Username: "max"})
	review := reviews.seed(&domain.Review{
		AuthorID: author.ID,
		Images:   []string{"img-1"},
	})
	store := &stubImageStore{}
	bc := &recordBroadcaster{}
	tx := &stubTx{failWith: errors.New("write conflict")}
	svc := newReviewService(reviews, users, tx, store, bc)

	if err := svc.Delete(context.Background(), review.ID.Hex(), author.ID.Hex()); err == nil {
		t.Fatal("expected error when transaction fails")
	}
	if len(store.removed) != 0 {
		t.Error("hosted images may only be removed after commit")
	}
	if len(bc.events) != 0 {
		t.Error("no event may be published for a rolled-back delete")
	}
}
