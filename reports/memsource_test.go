package reports

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/chapter-directory-go/models"
)

// memSource evaluates the Source contract over plain slices.
type memSource struct {
	members    []models.Member
	profiles   []models.BusinessProfile
	cities     []models.City
	chapters   []models.Chapter
	meetings   []models.Meeting
	attendance []models.MeetingAttendance
	exchanges  []models.BusinessExchange
	references []models.ReferencePass
	oneToOnes  []models.PersonalMeeting

	failWith    error
	rollupCalls [][]primitive.ObjectID
}

func (s *memSource) Profiles(_ context.Context, q ProfileQuery) ([]ProfileRow, int64, error) {
	if s.failWith != nil {
		return nil, 0, s.failWith
	}

	var rows []ProfileRow
	for _, p := range s.profiles {
		row := ProfileRow{
			ID:           p.ID,
			BusinessName: p.BusinessName,
			Phone:        p.PersonalPhoneNumber,
		}
		for _, m := range s.members {
			if m.ID == p.UserID {
				row.UserID = m.ID
				row.FullName = m.FullName()
				row.ProfilePicture = m.ProfilePicture
			}
		}
		for _, c := range s.cities {
			if c.ID == p.CityID && !c.IsDeleted {
				row.CityName = c.Name
			}
		}
		for _, c := range s.chapters {
			if c.ID == p.ChapterID && !c.IsDeleted {
				row.ChapterName = c.Name
			}
		}
		if !containsFold(row.CityName, q.City) || !containsFold(row.ChapterName, q.Chapter) {
			continue
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := storedValue(rows[i], q.Sort), storedValue(rows[j], q.Sort)
		if a != b {
			if q.Desc {
				return a > b
			}
			return a < b
		}
		return rows[i].ID.Hex() < rows[j].ID.Hex()
	})

	return paginate(rows, q.Skip, q.Limit), int64(len(rows)), nil
}

func (s *memSource) Rollups(_ context.Context, members []primitive.ObjectID, w Window) (map[primitive.ObjectID]Rollup, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.rollupCalls = append(s.rollupCalls, members)

	wanted := map[primitive.ObjectID]bool{}
	for _, id := range members {
		wanted[id] = true
	}
	out := map[primitive.ObjectID]Rollup{}
	bump := func(id primitive.ObjectID, fn func(*Rollup)) {
		if !wanted[id] {
			return
		}
		r := out[id]
		fn(&r)
		out[id] = r
	}

	for _, ex := range s.exchanges {
		if ex.DeletedAt != nil || !w.Contains(ex.CreatedAt) {
			continue
		}
		amount, err := decimal.NewFromString(ex.Amount)
		if err != nil {
			amount = decimal.Zero
		}
		bump(ex.FromMember, func(r *Rollup) { r.BusinessGiven = r.BusinessGiven.Add(amount) })
		bump(ex.ToMember, func(r *Rollup) { r.BusinessReceived = r.BusinessReceived.Add(amount) })
	}
	for _, ref := range s.references {
		if !w.Contains(ref.CreatedAt) {
			continue
		}
		bump(ref.FromMember, func(r *Rollup) { r.ReferenceGiven++ })
		bump(ref.ToMember, func(r *Rollup) { r.ReferenceReceived++ })
	}
	for _, pm := range s.oneToOnes {
		if !w.Contains(pm.CreatedAt) {
			continue
		}
		bump(pm.HostMember, func(r *Rollup) { r.OneToOneCount++ })
		if pm.VisitorMember != pm.HostMember {
			bump(pm.VisitorMember, func(r *Rollup) { r.OneToOneCount++ })
		}
	}
	for _, a := range s.attendance {
		if !w.Contains(a.CreatedAt) || !containsFold(a.Status, "absent") {
			continue
		}
		bump(a.MemberID, func(r *Rollup) { r.AbsentCount++ })
	}
	return out, nil
}

func (s *memSource) Meetings(_ context.Context, w Window) ([]MeetingRef, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []MeetingRef
	for _, m := range s.meetings {
		if w.Contains(m.Date) {
			out = append(out, MeetingRef{ID: m.ID, Date: m.Date})
		}
	}
	return out, nil
}

func (s *memSource) Attendance(_ context.Context, members, meetings []primitive.ObjectID) ([]AttendanceMark, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	in := func(ids []primitive.ObjectID, id primitive.ObjectID) bool {
		for _, x := range ids {
			if x == id {
				return true
			}
		}
		return false
	}
	var out []AttendanceMark
	for _, a := range s.attendance {
		if in(members, a.MemberID) && in(meetings, a.MeetingID) {
			out = append(out, AttendanceMark{MeetingID: a.MeetingID, MemberID: a.MemberID, Status: a.Status})
		}
	}
	return out, nil
}

func storedValue(r ProfileRow, k SortKey) string {
	switch k {
	case SortMobile:
		return r.Phone
	case SortFullName:
		return r.FullName
	case SortCity:
		return r.CityName
	case SortChapter:
		return r.ChapterName
	case SortBusinessName:
		return r.BusinessName
	}
	return ""
}

func containsFold(s, pattern string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(pattern))
}
