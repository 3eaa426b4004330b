package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Member struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName      string             `bson:"first_name" json:"first_name"`
	LastName       string             `bson:"last_name" json:"last_name"`
	Email          string             `bson:"email" json:"email"`
	Phone          string             `bson:"phone" json:"phone"`
	DateOfBirth    *time.Time         `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Role           string             `bson:"role" json:"role"` // admin, member
	ProfilePicture string             `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	PasswordHash   string             `bson:"password_hash" json:"-"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

func (Member) CollectionName() string      { return "members" }
func (Member) ActiveFilter() bson.M        { return bson.M{} }
func (Member) SoftDelete(time.Time) bson.M { return nil }

func (d Member) Version() (primitive.ObjectID, time.Time) { return d.ID, d.UpdatedAt }

// BusinessProfile is the row the chapter and attendance reports paginate over.
// One per member by convention; nothing enforces it.
type BusinessProfile struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID              primitive.ObjectID `bson:"user_id" json:"user_id"`
	BusinessName        string             `bson:"business_name" json:"business_name"`
	BusinessCategory    string             `bson:"business_category,omitempty" json:"business_category,omitempty"`
	BusinessAddress     string             `bson:"business_address,omitempty" json:"business_address,omitempty"`
	Website             string             `bson:"website,omitempty" json:"website,omitempty"`
	Logo                string             `bson:"logo,omitempty" json:"logo,omitempty"`
	PersonalPhoneNumber string             `bson:"personal_phone_number" json:"personal_phone_number"`
	CityID              primitive.ObjectID `bson:"city_id" json:"city_id"`
	ChapterID           primitive.ObjectID `bson:"chapter_id" json:"chapter_id"`
	JoiningDate         *time.Time         `bson:"joining_date,omitempty" json:"joining_date,omitempty"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

func (BusinessProfile) CollectionName() string      { return "business_profiles" }
func (BusinessProfile) ActiveFilter() bson.M        { return bson.M{} }
func (BusinessProfile) SoftDelete(time.Time) bson.M { return nil }

func (d BusinessProfile) Version() (primitive.ObjectID, time.Time) { return d.ID, d.UpdatedAt }
