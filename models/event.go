package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"` // Organizer
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Venue       string             `bson:"venue,omitempty" json:"venue,omitempty"`
	Date        time.Time          `bson:"date" json:"date"`
	CityID      primitive.ObjectID `bson:"city_id,omitempty" json:"city_id,omitempty"`
	ChapterID   primitive.ObjectID `bson:"chapter_id,omitempty" json:"chapter_id,omitempty"`
	Status      string             `bson:"status" json:"status"` // scheduled, completed, cancelled
	Photos      []string           `bson:"photos" json:"photos"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

func (Event) CollectionName() string      { return "events" }
func (Event) ActiveFilter() bson.M        { return bson.M{} }
func (Event) SoftDelete(time.Time) bson.M { return nil }

func (d Event) Version() (primitive.ObjectID, time.Time) { return d.ID, d.UpdatedAt }

// BusinessPortfolio is a showcase entry (photos of past work) on a member's
// business page.
type BusinessPortfolio struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Images      []string           `bson:"images" json:"images"`
	Status      string             `bson:"status" json:"status"`
	IsDeleted   bool               `bson:"is_deleted" json:"-"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

func (BusinessPortfolio) CollectionName() string          { return "business_portfolios" }
func (BusinessPortfolio) ActiveFilter() bson.M            { return notDeleted() }
func (BusinessPortfolio) SoftDelete(now time.Time) bson.M { return flagDeleted(now) }

func (d BusinessPortfolio) Version() (primitive.ObjectID, time.Time) { return d.ID, d.UpdatedAt }

type Membership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Plan      string             `bson:"plan" json:"plan"`
	Amount    string             `bson:"amount" json:"amount"`
	StartDate time.Time          `bson:"start_date" json:"start_date"`
	EndDate   time.Time          `bson:"end_date" json:"end_date"`
	Status    string             `bson:"status" json:"status"` // active, expired, inactive
	IsDeleted bool               `bson:"is_deleted" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (Membership) CollectionName() string          { return "memberships" }
func (Membership) ActiveFilter() bson.M            { return notDeleted() }
func (Membership) SoftDelete(now time.Time) bson.M { return flagDeleted(now) }

func (d Membership) Version() (primitive.ObjectID, time.Time) { return d.ID, d.UpdatedAt }
