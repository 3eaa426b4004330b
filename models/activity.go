package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BusinessExchange records business one member passed to another ("thank
// you for closed business"). Amount is stored as a decimal string.
type BusinessExchange struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FromMember primitive.ObjectID `bson:"from_member" json:"from_member"`
	ToMember   primitive.ObjectID `bson:"to_member" json:"to_member"`
	Amount     string             `bson:"amount" json:"amount"`
	Remarks    string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
	DeletedAt  *time.Time         `bson:"deleted_at" json:"deleted_at,omitempty"`
}

func (BusinessExchange) CollectionName() string { return "business_exchanges" }
func (BusinessExchange) ActiveFilter() bson.M   { return bson.M{"deleted_at": nil} }
func (BusinessExchange) SoftDelete(now time.Time) bson.M {
	return bson.M{"deleted_at": now, "updated_at": now}
}

func (d BusinessExchange) Version() (primitive.ObjectID, time.Time) { return d.ID, d.UpdatedAt }

type ReferencePass struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FromMember primitive.ObjectID `bson:"from_member" json:"from_member"`
	ToMember   primitive.ObjectID `bson:"to_member" json:"to_member"`
	Remarks    string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

func (ReferencePass) CollectionName() string      { return "reference_passes" }
func (ReferencePass) ActiveFilter() bson.M        { return bson.M{} }
func (ReferencePass) SoftDelete(time.Time) bson.M { return nil }

func (d ReferencePass) Version() (primitive.ObjectID, time.Time) { return d.ID, d.UpdatedAt }

// PersonalMeeting is a one-to-one between two members.
type PersonalMeeting struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HostMember    primitive.ObjectID `bson:"host_member" json:"host_member"`
	VisitorMember primitive.ObjectID `bson:"visitor_member" json:"visitor_member"`
	Remarks       string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

func (PersonalMeeting) CollectionName() string      { return "personal_meetings" }
func (PersonalMeeting) ActiveFilter() bson.M        { return bson.M{} }
func (PersonalMeeting) SoftDelete(time.Time) bson.M { return nil }

func (d PersonalMeeting) Version() (primitive.ObjectID, time.Time) { return d.ID, d.UpdatedAt }
