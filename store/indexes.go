package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/chapter-directory-go/models"
)

// indexes backs the report joins and the CRUD lookups. members.email and
// (meeting_id, member_id) are unique.
var indexes = map[string][]mongo.IndexModel{
	models.Member{}.CollectionName(): {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	models.BusinessProfile{}.CollectionName(): {
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "city_id", Value: 1}}},
		{Keys: bson.D{{Key: "chapter_id", Value: 1}}},
	},
	models.Chapter{}.CollectionName(): {
		{Keys: bson.D{{Key: "city_id", Value: 1}}},
	},
	models.Meeting{}.CollectionName(): {
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "chapter_id", Value: 1}, {Key: "date", Value: 1}}},
	},
	models.MeetingAttendance{}.CollectionName(): {
		{Keys: bson.D{{Key: "meeting_id", Value: 1}, {Key: "member_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "member_id", Value: 1}, {Key: "created_at", Value: 1}}},
	},
	models.BusinessExchange{}.CollectionName(): {
		{Keys: bson.D{{Key: "from_member", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "to_member", Value: 1}, {Key: "created_at", Value: 1}}},
	},
	models.ReferencePass{}.CollectionName(): {
		{Keys: bson.D{{Key: "from_member", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "to_member", Value: 1}, {Key: "created_at", Value: 1}}},
	},
	models.PersonalMeeting{}.CollectionName(): {
		{Keys: bson.D{{Key: "host_member", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "visitor_member", Value: 1}, {Key: "created_at", Value: 1}}},
	},
	models.Membership{}.CollectionName(): {
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	},
}

// EnsureIndexes creates any missing index. It is safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for collection, idx := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
