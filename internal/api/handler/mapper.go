package handler

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/revuo/reviews-api/internal/core/domain"
)

// --- Domain to HTTP response mapping ---

func toReviewResponse(r *domain.Review) reviewResponse {
	resp := reviewResponse{
		ID:            r.ID.Hex(),
		ReviewedName:  r.ReviewedName,
		IntroText:     r.IntroText,
		Category:      r.Category,
		Likes:         r.Likes,
		Website:       r.Website,
		Telephone:     r.Telephone,
		Address:       r.Address,
		ReviewDetails: r.ReviewDetails,
		Images:        r.Images,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	if r.Author != nil {
		resp.Author = authorResponse{
			ID:       r.Author.ID.Hex(),
			Fullname: r.Author.Fullname,
			Username: r.Author.Username,
			Avatar:   r.Author.Avatar,
		}
	} else {
		// The author account no longer exists; keep the id so clients can
		// still key on it.
		resp.Author = authorResponse{ID: r.AuthorID.Hex()}
	}
	return resp
}

func toReviewListResponse(reviews []domain.Review) []reviewResponse {
	out := make([]reviewResponse, len(reviews))
	for i := range reviews {
		out[i] = toReviewResponse(&reviews[i])
	}
	return out
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:            u.ID.Hex(),
		Fullname:      u.Fullname,
		Username:      u.Username,
		Email:         u.Email,
		Avatar:        u.Avatar,
		PostedReviews: hexIDs(u.PostedReviews),
		LikedReviews:  hexIDs(u.LikedReviews),
		CreatedAt:     u.CreatedAt,
	}
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
