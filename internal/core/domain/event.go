package domain

// ReviewAction identifies the kind of mutation announced on the realtime channel.
type ReviewAction string

const (
	ActionCreate ReviewAction = "create"
	ActionUpdate ReviewAction = "update"
	ActionDelete ReviewAction = "delete"
)

// ReviewEvent is the payload broadcast to every connected subscriber after a
// review mutation commits. Review carries the full document for create and
// update; for delete only the id remains, so the id string is sent instead.
type ReviewEvent struct {
	Action ReviewAction `json:"action"`
	Review any          `json:"review"`
}

// Key returns the review id the event concerns, used to shard fan-out so
// events for the same review stay ordered.
func (e ReviewEvent) Key() string {
	switch v := e.Review.(type) {
	case *Review:
		return v.ID.Hex()
	case Review:
		return v.ID.Hex()
	case string:
		return v
	default:
		return ""
	}
}
