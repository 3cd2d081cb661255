package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/revuo/reviews-api/internal/core/domain"
)

const collectionReviews = "reviews"

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(collectionReviews)}
}

// authorLookup joins the author document onto each review, mirroring the
// populate the API contract expects on reads.
func authorLookup() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "author",
			"foreignField": "_id",
			"as":           "authorDoc",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$authorDoc",
			"preserveNullAndEmptyArrays": true,
		}}},
	}
}

// Insert persists a new review document.
func (r *ReviewRepository) Insert(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	res, err := r.col.InsertOne(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}
	return review, nil
}

// FindByID returns one review with its author populated.
func (r *ReviewRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
	}, authorLookup()...)

	reviews, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, domain.ErrReviewNotFound
	}
	return &reviews[0], nil
}

// FindAll returns every review, newest first, authors populated.
func (r *ReviewRepository) FindAll(ctx context.Context) ([]domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := append(mongo.Pipeline{
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
	}, authorLookup()...)

	return r.aggregate(ctx, pipeline)
}

// FindByAuthor returns the reviews authored by one user, newest first.
func (r *ReviewRepository) FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"author": authorID}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
	}, authorLookup()...)

	return r.aggregate(ctx, pipeline)
}

func (r *ReviewRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]domain.Review, error) {
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []domain.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}

// CountBySubject counts reviews for an already-normalized subject name.
func (r *ReviewRepository) CountBySubject(ctx context.Context, name string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	count, err := r.col.CountDocuments(ctx, bson.M{"reviewedName": name})
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

// UpdateFields applies a $set of the given fields and returns the updated
// document with its author populated.
func (r *ReviewRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*domain.Review, error) {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M(fields)})
}

// PushImages appends hosted-image identifiers, preserving input order.
func (r *ReviewRepository) PushImages(ctx context.Context, id primitive.ObjectID, publicIDs []string) (*domain.Review, error) {
	return r.updateOne(ctx, id, bson.M{
		"$push": bson.M{"images": bson.M{"$each": publicIDs}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

// PullImage removes one hosted-image identifier.
func (r *ReviewRepository) PullImage(ctx context.Context, id primitive.ObjectID, publicID string) (*domain.Review, error) {
	return r.updateOne(ctx, id, bson.M{
		"$pull": bson.M{"images": publicID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *ReviewRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrReviewNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *ReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

// DeleteByAuthor removes every review by the author and returns the removed
// documents so hosted images can be cleaned up after commit.
func (r *ReviewRepository) DeleteByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]domain.Review, error) {
	filter := bson.M{"author": authorID}

	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find reviews by author: %w", err)
	}
	removed := []domain.Review{}
	if err := cursor.All(ctx, &removed); err != nil {
		return nil, fmt.Errorf("decode reviews by author: %w", err)
	}

	if _, err := r.col.DeleteMany(ctx, filter); err != nil {
		return nil, fmt.Errorf("delete reviews by author: %w", err)
	}
	return removed, nil
}

// EnsureIndexes creates the lookup indexes used by the list and count paths.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "reviewedName", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
