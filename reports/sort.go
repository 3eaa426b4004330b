package reports

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SortKey is a column the reports may be ordered by. Only values from the
// allow-list below ever reach a query.
type SortKey string

// Stored keys exist on the joined profile document.
const (
	SortBusinessName SortKey = "business_name"
	SortMobile       SortKey = "personal_phone_number"
	SortFullName     SortKey = "full_name"
	SortCity         SortKey = "city_name"
	SortChapter      SortKey = "chapter_name"
)

// Computed keys only exist after rollups are attached.
const (
	SortBusinessGiven     SortKey = "business_given"
	SortBusinessReceived  SortKey = "business_received"
	SortOneToOneCount     SortKey = "one_to_one_count"
	SortAbsentCount       SortKey = "absent_count"
	SortReferenceGiven    SortKey = "reference_given"
	SortReferenceReceived SortKey = "reference_received"
)

var sortAliases = map[string]SortKey{
	"business_name":         SortBusinessName,
	"business":              SortBusinessName,
	"mobile":                SortMobile,
	"personal_phone_number": SortMobile,
	"name":                  SortFullName,
	"full_name":             SortFullName,
	"city":                  SortCity,
	"city_name":             SortCity,
	"chapter":               SortChapter,
	"chapter_name":          SortChapter,
	"business_given":        SortBusinessGiven,
	"business_received":     SortBusinessReceived,
	"one_to_one_count":      SortOneToOneCount,
	"absent_count":          SortAbsentCount,
	"reference_given":       SortReferenceGiven,
	"reference_received":    SortReferenceReceived,
}

// ParseSortKey maps request input through the allow-list.
func ParseSortKey(raw string) SortKey {
	if k, ok := sortAliases[raw]; ok {
		return k
	}
	return SortBusinessName
}

// Computed reports whether k needs rollups before rows can be ordered.
func (k SortKey) Computed() bool {
	switch k {
	case SortBusinessGiven, SortBusinessReceived, SortOneToOneCount,
		SortAbsentCount, SortReferenceGiven, SortReferenceReceived:
		return true
	}
	return false
}

// compare returns -1, 0 or 1 ordering a before b on k.
func (r Rollup) compare(o Rollup, k SortKey) int {
	switch k {
	case SortBusinessGiven:
		return r.BusinessGiven.Cmp(o.BusinessGiven)
	case SortBusinessReceived:
		return r.BusinessReceived.Cmp(o.BusinessReceived)
	case SortOneToOneCount:
		return cmpInt(r.OneToOneCount, o.OneToOneCount)
	case SortAbsentCount:
		return cmpInt(r.AbsentCount, o.AbsentCount)
	case SortReferenceGiven:
		return cmpInt(r.ReferenceGiven, o.ReferenceGiven)
	case SortReferenceReceived:
		return cmpInt(r.ReferenceReceived, o.ReferenceReceived)
	}
	return 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// sortByRollup orders rows on a computed key. Ties break on profile id
// ascending, the same secondary order the store applies to stored keys.
func sortByRollup(rows []ProfileRow, rollups map[primitive.ObjectID]Rollup, k SortKey, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		c := rollups[rows[i].UserID].compare(rollups[rows[j].UserID], k)
		if c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
		return rows[i].ID.Hex() < rows[j].ID.Hex()
	})
}

func paginate(rows []ProfileRow, skip, limit int) []ProfileRow {
	if skip < 0 || skip >= len(rows) {
		return nil
	}
	rows = rows[skip:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
