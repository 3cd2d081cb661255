package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is the core aggregate: one user's review of a named place or item.
type Review struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ReviewedName  string             `json:"reviewedName" bson:"reviewedName"`
	IntroText     string             `json:"introText" bson:"introText"`
	Category      string             `json:"category" bson:"category"`
	Likes         int64              `json:"likes" bson:"likes"`
	Website       string             `json:"website,omitempty" bson:"website,omitempty"`
	Telephone     string             `json:"telephone,omitempty" bson:"telephone,omitempty"`
	Address       string             `json:"address,omitempty" bson:"address,omitempty"`
	ReviewDetails string             `json:"reviewDetails" bson:"reviewDetails"`
	Images        []string           `json:"images" bson:"images"`
	AuthorID      primitive.ObjectID `json:"-" bson:"author"`
	// Author is filled by the $lookup on reads; never written on inserts.
	Author    *Profile  `json:"author,omitempty" bson:"authorDoc,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NormalizeSubject canonicalizes a reviewed-subject name so that lookups and
// counts match case- and whitespace-insensitively.
func NormalizeSubject(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
