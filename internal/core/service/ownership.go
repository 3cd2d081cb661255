package service

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/revuo/reviews-api/internal/core/domain"
)

// requireOwner permits a mutation iff the acting user is the recorded owner
// of the target. Callers fetch the target fresh immediately before calling,
// so the decision is never made against a stale read.
func requireOwner(ownerID primitive.ObjectID, actorID string) error {
	if ownerID.Hex() != actorID {
		return domain.ErrForbidden
	}
	return nil
}

// parseID converts a path id into an ObjectID, reporting notFound for
// anything that cannot possibly resolve.
func parseID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}
