package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type City struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Status    string             `bson:"status" json:"status"` // active, inactive
	IsDeleted bool               `bson:"is_deleted" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (City) CollectionName() string          { return "cities" }
func (City) ActiveFilter() bson.M            { return notDeleted() }
func (City) SoftDelete(now time.Time) bson.M { return flagDeleted(now) }

func (d City) Version() (primitive.ObjectID, time.Time) { return d.ID, d.UpdatedAt }

type Chapter struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CityID    primitive.ObjectID `bson:"city_id" json:"city_id"`
	Status    string             `bson:"status" json:"status"` // active, inactive
	IsDeleted bool               `bson:"is_deleted" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (Chapter) CollectionName() string          { return "chapters" }
func (Chapter) ActiveFilter() bson.M            { return notDeleted() }
func (Chapter) SoftDelete(now time.Time) bson.M { return flagDeleted(now) }

func (d Chapter) Version() (primitive.ObjectID, time.Time) { return d.ID, d.UpdatedAt }
