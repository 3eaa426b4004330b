package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/chapter-directory-go/models"
	reports "github.com/phillip/chapter-directory-go/reports"
)

// ReportSource answers the report engine's queries with aggregation
// pipelines against the live collections.
type ReportSource struct {
	db *mongo.Database
}

func NewReportSource(db *mongo.Database) *ReportSource {
	return &ReportSource{db: db}
}

var _ reports.Source = (*ReportSource)(nil)

type profileDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	UserID         primitive.ObjectID `bson:"user_id"`
	FullName       string             `bson:"full_name"`
	ProfilePicture string             `bson:"profile_picture"`
	BusinessName   string             `bson:"business_name"`
	Phone          string             `bson:"personal_phone_number"`
	CityName       string             `bson:"city_name"`
	ChapterName    string             `bson:"chapter_name"`
}

// lookupName left-joins the active document of from whose _id equals
// localField and keeps only its name.
func lookupName[T models.Document](localField, as string) bson.D {
	var zero T
	match := bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$ref"}}}
	if active := zero.ActiveFilter(); len(active) > 0 {
		match = bson.M{"$and": bson.A{match, active}}
	}
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from": zero.CollectionName(),
		"let":  bson.M{"ref": "$" + localField},
		"pipeline": bson.A{
			bson.M{"$match": match},
			bson.M{"$project": bson.M{"name": 1}},
		},
		"as": as,
	}}}
}

// profilePipeline joins profiles with their member, city and chapter and
// applies the name filters. Missing joins keep the row.
func profilePipeline(q reports.ProfileQuery) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: models.BusinessProfile{}.ActiveFilter()}},
		lookupName[models.City]("city_id", "city"),
		lookupName[models.Chapter]("chapter_id", "chapter"),
		{{Key: "$lookup", Value: bson.M{
			"from":         models.Member{}.CollectionName(),
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "member",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"city_name":    bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$city.name", 0}}, ""}},
			"chapter_name": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$chapter.name", 0}}, ""}},
			"member":       bson.M{"$arrayElemAt": bson.A{"$member", 0}},
		}}},
		// With no member, $member._id is missing and $addFields drops
		// user_id, so the row decodes with a zero UserID.
		{{Key: "$addFields", Value: bson.M{
			"user_id": "$member._id",
			"full_name": bson.M{"$trim": bson.M{"input": bson.M{"$concat": bson.A{
				bson.M{"$ifNull": bson.A{"$member.first_name", ""}},
				" ",
				bson.M{"$ifNull": bson.A{"$member.last_name", ""}},
			}}}},
			"profile_picture": bson.M{"$ifNull": bson.A{"$member.profile_picture", ""}},
		}}},
	}

	match := bson.M{}
	if q.City != "" {
		match["city_name"] = Contains(q.City)
	}
	if q.Chapter != "" {
		match["chapter_name"] = Contains(q.Chapter)
	}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	return pipeline
}

func profileSort(q reports.ProfileQuery) bson.D {
	if q.Sort == "" || q.Sort.Computed() {
		return bson.D{{Key: "_id", Value: 1}}
	}
	dir := 1
	if q.Desc {
		dir = -1
	}
	return bson.D{{Key: string(q.Sort), Value: dir}, {Key: "_id", Value: 1}}
}

var profileProjection = bson.M{
	"user_id": 1, "full_name": 1, "profile_picture": 1, "business_name": 1,
	"personal_phone_number": 1, "city_name": 1, "chapter_name": 1,
}

func (s *ReportSource) Profiles(ctx context.Context, q reports.ProfileQuery) ([]reports.ProfileRow, int64, error) {
	col := s.db.Collection(models.BusinessProfile{}.CollectionName())
	pipeline := profilePipeline(q)
	order := bson.D{{Key: "$sort", Value: profileSort(q)}}
	project := bson.D{{Key: "$project", Value: profileProjection}}

	// Whole set: count client-side and stay clear of the $facet size limit.
	if q.Limit == 0 {
		pipeline = append(pipeline, order, project)

		var docs []profileDoc
		if err := aggregate(ctx, col, pipeline, &docs); err != nil {
			return nil, 0, err
		}
		return toRows(docs), int64(len(docs)), nil
	}

	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.M{
		"total": bson.A{bson.M{"$count": "n"}},
		"rows": bson.A{
			order,
			bson.M{"$skip": q.Skip},
			bson.M{"$limit": q.Limit},
			project,
		},
	}}})

	var out []struct {
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
		Rows []profileDoc `bson:"rows"`
	}
	if err := aggregate(ctx, col, pipeline, &out); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 {
		return []reports.ProfileRow{}, 0, nil
	}

	var total int64
	if len(out[0].Total) > 0 {
		total = out[0].Total[0].N
	}
	return toRows(out[0].Rows), total, nil
}

func toRows(docs []profileDoc) []reports.ProfileRow {
	rows := make([]reports.ProfileRow, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, reports.ProfileRow{
			ID:             d.ID,
			UserID:         d.UserID,
			FullName:       d.FullName,
			ProfilePicture: d.ProfilePicture,
			BusinessName:   d.BusinessName,
			Phone:          d.Phone,
			CityName:       d.CityName,
			ChapterName:    d.ChapterName,
		})
	}
	return rows
}

type countDoc struct {
	ID primitive.ObjectID `bson:"_id"`
	N  int64              `bson:"n"`
}

type sumDoc struct {
	ID    primitive.ObjectID   `bson:"_id"`
	Total primitive.Decimal128 `bson:"total"`
}

// Rollups runs one aggregation per source collection, each grouped by member.
func (s *ReportSource) Rollups(ctx context.Context, members []primitive.ObjectID, w reports.Window) (map[primitive.ObjectID]reports.Rollup, error) {
	out := make(map[primitive.ObjectID]reports.Rollup, len(members))
	update := func(id primitive.ObjectID, fn func(*reports.Rollup)) {
		r := out[id]
		fn(&r)
		out[id] = r
	}
	in := bson.M{"$in": members}
	window := Between(w.Start, w.End)

	given, received, err := s.exchangeSums(ctx, in, window)
	if err != nil {
		return nil, err
	}
	for id, v := range given {
		update(id, func(r *reports.Rollup) { r.BusinessGiven = v })
	}
	for id, v := range received {
		update(id, func(r *reports.Rollup) { r.BusinessReceived = v })
	}

	refGiven, refReceived, err := s.referenceCounts(ctx, in, window)
	if err != nil {
		return nil, err
	}
	for _, c := range refGiven {
		update(c.ID, func(r *reports.Rollup) { r.ReferenceGiven = c.N })
	}
	for _, c := range refReceived {
		update(c.ID, func(r *reports.Rollup) { r.ReferenceReceived = c.N })
	}

	oneToOnes, err := s.oneToOneCounts(ctx, in, window)
	if err != nil {
		return nil, err
	}
	for _, c := range oneToOnes {
		update(c.ID, func(r *reports.Rollup) { r.OneToOneCount = c.N })
	}

	absences, err := s.absenceCounts(ctx, in, window)
	if err != nil {
		return nil, err
	}
	for _, c := range absences {
		update(c.ID, func(r *reports.Rollup) { r.AbsentCount = c.N })
	}

	return out, nil
}

// decimalAmount converts the string amount to a decimal, treating
// unparseable or missing values as zero.
var decimalAmount = bson.M{"$convert": bson.M{
	"input":   "$amount",
	"to":      "decimal",
	"onError": bson.M{"$toDecimal": 0},
	"onNull":  bson.M{"$toDecimal": 0},
}}

func (s *ReportSource) exchangeSums(ctx context.Context, in, window bson.M) (given, received map[primitive.ObjectID]decimal.Decimal, err error) {
	col := s.db.Collection(models.BusinessExchange{}.CollectionName())
	active := models.BusinessExchange{}.ActiveFilter()

	sumBy := func(field string) bson.A {
		return bson.A{
			bson.M{"$match": bson.M{field: in}},
			bson.M{"$group": bson.M{"_id": "$" + field, "total": bson.M{"$sum": decimalAmount}}},
		}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$and": bson.A{active, bson.M{"created_at": window}}}}},
		{{Key: "$facet", Value: bson.M{
			"given":    sumBy("from_member"),
			"received": sumBy("to_member"),
		}}},
	}

	var res []struct {
		Given    []sumDoc `bson:"given"`
		Received []sumDoc `bson:"received"`
	}
	if err := aggregate(ctx, col, pipeline, &res); err != nil {
		return nil, nil, err
	}

	given, received = map[primitive.ObjectID]decimal.Decimal{}, map[primitive.ObjectID]decimal.Decimal{}
	if len(res) == 0 {
		return given, received, nil
	}
	for _, d := range res[0].Given {
		given[d.ID] = toDecimal(d.Total)
	}
	for _, d := range res[0].Received {
		received[d.ID] = toDecimal(d.Total)
	}
	return given, received, nil
}

func (s *ReportSource) referenceCounts(ctx context.Context, in, window bson.M) (given, received []countDoc, err error) {
	col := s.db.Collection(models.ReferencePass{}.CollectionName())
	countBy := func(field string) bson.A {
		return bson.A{
			bson.M{"$match": bson.M{field: in}},
			bson.M{"$group": bson.M{"_id": "$" + field, "n": bson.M{"$sum": 1}}},
		}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: Scope[models.ReferencePass](bson.M{"created_at": window})}},
		{{Key: "$facet", Value: bson.M{
			"given":    countBy("from_member"),
			"received": countBy("to_member"),
		}}},
	}

	var res []struct {
		Given    []countDoc `bson:"given"`
		Received []countDoc `bson:"received"`
	}
	if err := aggregate(ctx, col, pipeline, &res); err != nil {
		return nil, nil, err
	}
	if len(res) == 0 {
		return nil, nil, nil
	}
	return res[0].Given, res[0].Received, nil
}

// oneToOneCounts counts each meeting once per participating member, whether
// host or visitor.
func (s *ReportSource) oneToOneCounts(ctx context.Context, in, window bson.M) ([]countDoc, error) {
	col := s.db.Collection(models.PersonalMeeting{}.CollectionName())
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: Scope[models.PersonalMeeting](bson.M{
			"created_at": window,
			"$or":        bson.A{bson.M{"host_member": in}, bson.M{"visitor_member": in}},
		})}},
		{{Key: "$project", Value: bson.M{"members": bson.M{"$setUnion": bson.A{
			bson.A{"$host_member"}, bson.A{"$visitor_member"},
		}}}}},
		{{Key: "$unwind", Value: "$members"}},
		{{Key: "$match", Value: bson.M{"members": in}}},
		{{Key: "$group", Value: bson.M{"_id": "$members", "n": bson.M{"$sum": 1}}}},
	}

	var res []countDoc
	if err := aggregate(ctx, col, pipeline, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ReportSource) absenceCounts(ctx context.Context, in, window bson.M) ([]countDoc, error) {
	col := s.db.Collection(models.MeetingAttendance{}.CollectionName())
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: Scope[models.MeetingAttendance](bson.M{
			"member_id":  in,
			"created_at": window,
			"status":     Contains(models.AttendanceAbsent),
		})}},
		{{Key: "$group", Value: bson.M{"_id": "$member_id", "n": bson.M{"$sum": 1}}}},
	}

	var res []countDoc
	if err := aggregate(ctx, col, pipeline, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ReportSource) Meetings(ctx context.Context, w reports.Window) ([]reports.MeetingRef, error) {
	opts := options.Find().
		SetProjection(bson.M{"date": 1}).
		SetSort(bson.D{{Key: "date", Value: 1}})
	meetings, err := For[models.Meeting](s.db).Find(ctx, bson.M{"date": Between(w.Start, w.End)}, opts)
	if err != nil {
		return nil, err
	}

	refs := make([]reports.MeetingRef, 0, len(meetings))
	for _, m := range meetings {
		refs = append(refs, reports.MeetingRef{ID: m.ID, Date: m.Date})
	}
	return refs, nil
}

func (s *ReportSource) Attendance(ctx context.Context, members, meetings []primitive.ObjectID) ([]reports.AttendanceMark, error) {
	opts := options.Find().SetProjection(bson.M{"meeting_id": 1, "member_id": 1, "status": 1})
	rows, err := For[models.MeetingAttendance](s.db).Find(ctx, bson.M{
		"member_id":  bson.M{"$in": members},
		"meeting_id": bson.M{"$in": meetings},
	}, opts)
	if err != nil {
		return nil, err
	}

	marks := make([]reports.AttendanceMark, 0, len(rows))
	for _, a := range rows {
		marks = append(marks, reports.AttendanceMark{MeetingID: a.MeetingID, MemberID: a.MemberID, Status: a.Status})
	}
	return marks, nil
}

func aggregate(ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate %s: %w", col.Name(), err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", col.Name(), err)
	}
	return nil
}

func toDecimal(d primitive.Decimal128) decimal.Decimal {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero
	}
	return v
}
