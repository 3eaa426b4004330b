package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Meeting struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Date      time.Time          `bson:"date" json:"date"`
	Venue     string             `bson:"venue,omitempty" json:"venue,omitempty"`
	ChapterID primitive.ObjectID `bson:"chapter_id" json:"chapter_id"`
	CityID    primitive.ObjectID `bson:"city_id" json:"city_id"`
	Status    string             `bson:"status" json:"status"` // scheduled, completed, cancelled
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (Meeting) CollectionName() string      { return "meetings" }
func (Meeting) ActiveFilter() bson.M        { return bson.M{} }
func (Meeting) SoftDelete(time.Time) bson.M { return nil }

func (d Meeting) Version() (primitive.ObjectID, time.Time) { return d.ID, d.UpdatedAt }

// Attendance statuses recorded by the front desk. Status is free text; the
// reports only treat the exact values below as presence.
const (
	AttendancePresent  = "present"
	AttendanceAttended = "attended"
	AttendanceAbsent   = "absent"
)

type MeetingAttendance struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MeetingID primitive.ObjectID `bson:"meeting_id" json:"meeting_id"`
	MemberID  primitive.ObjectID `bson:"member_id" json:"member_id"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (MeetingAttendance) CollectionName() string      { return "meeting_attendances" }
func (MeetingAttendance) ActiveFilter() bson.M        { return bson.M{} }
func (MeetingAttendance) SoftDelete(time.Time) bson.M { return nil }

func (d MeetingAttendance) Version() (primitive.ObjectID, time.Time) { return d.ID, d.UpdatedAt }

// IsPresent reports whether status counts as a "P" on the attendance grid.
func IsPresent(status string) bool {
	return status == AttendancePresent || status == AttendanceAttended
}
