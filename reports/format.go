package reports

import "go.mongodb.org/mongo-driver/bson/primitive"

// Placeholders used by both reports when a join found nothing.
const (
	unknownName  = "Unknown"
	missingValue = "-"
)

const (
	presentMark = "P"
	absentMark  = "A"
)

type ChapterRow struct {
	ID                  primitive.ObjectID  `json:"_id"`
	UserID              *primitive.ObjectID `json:"user_id"`
	FullName            string              `json:"full_name"`
	BusinessName        string              `json:"business_name"`
	PersonalPhoneNumber string              `json:"personal_phone_number"`
	ProfilePicture      string              `json:"profile_picture"`
	CityName            string              `json:"city_name"`
	ChapterName         string              `json:"chapter_name"`
	BusinessGiven       float64             `json:"business_given"`
	BusinessReceived    float64             `json:"business_received"`
	OneToOneCount       int64               `json:"one_to_one_count"`
	AbsentCount         int64               `json:"absent_count"`
	ReferenceGiven      int64               `json:"reference_given"`
	ReferenceReceived   int64               `json:"reference_received"`
}

type AttendanceRow struct {
	ID         primitive.ObjectID `json:"id"`
	Name       string             `json:"name"`
	Mobile     string             `json:"mobile"`
	Business   string             `json:"business"`
	City       string             `json:"city"`
	Chapter    string             `json:"chapter"`
	Attendance map[string]string  `json:"attendance"`
}

func formatChapterRow(row ProfileRow, r Rollup) ChapterRow {
	out := ChapterRow{
		ID:                  row.ID,
		FullName:            orDefault(row.FullName, unknownName),
		BusinessName:        orDefault(row.BusinessName, missingValue),
		PersonalPhoneNumber: orDefault(row.Phone, missingValue),
		ProfilePicture:      row.ProfilePicture,
		CityName:            orDefault(row.CityName, missingValue),
		ChapterName:         orDefault(row.ChapterName, missingValue),
		BusinessGiven:       r.BusinessGiven.InexactFloat64(),
		BusinessReceived:    r.BusinessReceived.InexactFloat64(),
		OneToOneCount:       r.OneToOneCount,
		AbsentCount:         r.AbsentCount,
		ReferenceGiven:      r.ReferenceGiven,
		ReferenceReceived:   r.ReferenceReceived,
	}
	if !row.UserID.IsZero() {
		uid := row.UserID
		out.UserID = &uid
	}
	return out
}

func formatAttendanceRow(row ProfileRow, grid map[string]string) AttendanceRow {
	return AttendanceRow{
		ID:         row.ID,
		Name:       orDefault(row.FullName, unknownName),
		Mobile:     orDefault(row.Phone, missingValue),
		Business:   orDefault(row.BusinessName, missingValue),
		City:       orDefault(row.CityName, missingValue),
		Chapter:    orDefault(row.ChapterName, missingValue),
		Attendance: grid,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
