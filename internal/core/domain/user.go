package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User models a registered account.
//
// PostedReviews holds the ids of every review whose author field points back
// at this user. The list is mutated exclusively by the review lifecycle,
// inside the same transaction as the review write, so the two never diverge.
type User struct {
	ID            primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Fullname      string               `json:"fullname" bson:"fullname"`
	Username      string               `json:"username" bson:"username"`
	Email         string               `json:"email" bson:"email"`
	PasswordHash  string               `json:"-" bson:"password"`
	Avatar        string               `json:"avatar" bson:"avatar"`
	PostedReviews []primitive.ObjectID `json:"postedReviews" bson:"postedReviews"`
	LikedReviews  []primitive.ObjectID `json:"likedReviews" bson:"likedReviews"`
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time            `json:"-" bson:"updatedAt"`
}

// Profile is the public slice of a user, embedded in review reads.
type Profile struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Fullname string             `json:"fullname" bson:"fullname"`
	Username string             `json:"username" bson:"username"`
	Avatar   string             `json:"avatar" bson:"avatar"`
}

// Profile projects the user into its public shape.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:       u.ID,
		Fullname: u.Fullname,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}
