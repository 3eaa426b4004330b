package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileQuery selects business profiles joined with their member, city and
// chapter. City and Chapter are case-insensitive substring patterns on the
// joined names. Sort is only ever a stored key; an empty Sort orders by id.
// Limit 0 returns every match.
type ProfileQuery struct {
	City    string
	Chapter string
	Sort    SortKey
	Desc    bool
	Skip    int
	Limit   int
}

// ProfileRow is one joined business profile. Fields whose join found no
// document are empty strings and a missing member leaves UserID zero.
type ProfileRow struct {
	ID             primitive.ObjectID
	UserID         primitive.ObjectID
	FullName       string
	ProfilePicture string
	BusinessName   string
	Phone          string
	CityName       string
	ChapterName    string
}

// Rollup is one member's activity inside a window.
type Rollup struct {
	BusinessGiven     decimal.Decimal
	BusinessReceived  decimal.Decimal
	OneToOneCount     int64
	AbsentCount       int64
	ReferenceGiven    int64
	ReferenceReceived int64
}

type MeetingRef struct {
	ID   primitive.ObjectID
	Date time.Time
}

type AttendanceMark struct {
	MeetingID primitive.ObjectID
	MemberID  primitive.ObjectID
	Status    string
}

// Source is the read-only store surface the reports are computed from.
// Every method applies each collection's active-record predicate.
type Source interface {
	// Profiles returns one page of joined profiles and the number of
	// profiles matching the filters before Skip and Limit.
	Profiles(ctx context.Context, q ProfileQuery) ([]ProfileRow, int64, error)

	// Rollups computes the windowed rollup of each member. Members with no
	// activity may be absent from the map.
	Rollups(ctx context.Context, members []primitive.ObjectID, w Window) (map[primitive.ObjectID]Rollup, error)

	// Meetings lists every meeting dated inside w.
	Meetings(ctx context.Context, w Window) ([]MeetingRef, error)

	// Attendance lists the attendance rows of members for the given meetings.
	Attendance(ctx context.Context, members, meetings []primitive.ObjectID) ([]AttendanceMark, error)
}
