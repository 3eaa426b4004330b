package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Document is implemented by every persisted model. ActiveFilter is ANDed
// into every read so callers never special-case a collection's deletion
// convention; SoftDelete returns the $set payload that retires a record, or
// nil when the collection hard-deletes.
type Document interface {
	CollectionName() string
	ActiveFilter() bson.M
	SoftDelete(now time.Time) bson.M
}

// Entity statuses shared by cities, chapters, meetings, events and memberships.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

func notDeleted() bson.M {
	return bson.M{"is_deleted": bson.M{"$ne": true}}
}

func flagDeleted(now time.Time) bson.M {
	return bson.M{"is_deleted": true, "status": StatusInactive, "updated_at": now}
}
