package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 5, 15, 14, 30, 0, 0, time.UTC)

func TestResolveWindow(t *testing.T) {
	wantEnd := time.Date(2026, 5, 15, 23, 59, 59, 999_000_000, time.UTC)

	tests := []struct {
		token string
		start time.Time
	}{
		{RangeThisWeek, time.Date(2026, 5, 8, 14, 30, 0, 0, time.UTC)},
		{RangeLastWeek, time.Date(2026, 5, 1, 14, 30, 0, 0, time.UTC)},
		{RangeLast3Months, time.Date(2026, 2, 15, 14, 30, 0, 0, time.UTC)},
		{RangeLast6Months, time.Date(2025, 11, 15, 14, 30, 0, 0, time.UTC)},
		{RangeLast12Months, time.Date(2025, 5, 15, 14, 30, 0, 0, time.UTC)},
		{"", time.Unix(0, 0).UTC()},
		{"Yesterday", time.Unix(0, 0).UTC()},
		{"this week", time.Unix(0, 0).UTC()},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			w := ResolveWindow(tt.token, testNow)
			assert.True(t, tt.start.Equal(w.Start), "start: got %s", w.Start)
			assert.True(t, wantEnd.Equal(w.End), "end: got %s", w.End)
		})
	}
}

func TestResolveWindowIsPure(t *testing.T) {
	now := testNow
	first := ResolveWindow(RangeThisWeek, now)
	second := ResolveWindow(RangeLast3Months, now)

	assert.Equal(t, testNow, now)
	assert.True(t, first.Start.After(second.Start))
	assert.Equal(t, first, ResolveWindow(RangeThisWeek, now))
}

func TestWindowContainsIsInclusive(t *testing.T) {
	w := ResolveWindow(RangeThisWeek, testNow)

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Millisecond)))
	assert.False(t, w.Contains(w.End.Add(time.Millisecond)))
}

func TestResolveFilterDefaults(t *testing.T) {
	f := ResolveFilter(Params{}, testNow)

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 0, f.Skip)
	assert.Equal(t, SortBusinessName, f.Sort)
	assert.False(t, f.Desc)
	assert.Equal(t, "asc", f.SortOrder())
}

func TestResolveFilterPagination(t *testing.T) {
	tests := []struct {
		name              string
		page, limit       string
		wantPage, wantLim int
		wantSkip          int
	}{
		{"explicit", "3", "25", 3, 25, 50},
		{"non-numeric", "abc", "ten", 1, 10, 0},
		{"zero and negative", "0", "-5", 1, 10, 0},
		{"capped limit", "2", "1000", 2, 100, 100},
		{"padded", " 2 ", " 5", 2, 5, 5},
		{"huge page", "922337203685477581", "100", maxPage, 100, (maxPage - 1) * 100},
		{"overflowing page", "99999999999999999999", "10", 1, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ResolveFilter(Params{Page: tt.page, Limit: tt.limit}, testNow)
			assert.Equal(t, tt.wantPage, f.Page)
			assert.Equal(t, tt.wantLim, f.Limit)
			assert.Equal(t, tt.wantSkip, f.Skip)
		})
	}
}

func TestResolveFilterSortOrder(t *testing.T) {
	assert.True(t, ResolveFilter(Params{SortOrder: "desc"}, testNow).Desc)
	assert.False(t, ResolveFilter(Params{SortOrder: "DESC"}, testNow).Desc)
	assert.False(t, ResolveFilter(Params{SortOrder: "descending"}, testNow).Desc)
}

func TestParseSortKey(t *testing.T) {
	tests := map[string]SortKey{
		"business_name":      SortBusinessName,
		"mobile":             SortMobile,
		"name":               SortFullName,
		"city":               SortCity,
		"chapter_name":       SortChapter,
		"business_given":     SortBusinessGiven,
		"reference_received": SortReferenceReceived,
		"":                   SortBusinessName,
		"password_hash":      SortBusinessName,
		"{$where: 1}":        SortBusinessName,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseSortKey(in), in)
	}
}

func TestSortKeyComputed(t *testing.T) {
	for _, k := range []SortKey{SortBusinessName, SortMobile, SortFullName, SortCity, SortChapter} {
		assert.False(t, k.Computed(), k)
	}
	for _, k := range []SortKey{SortBusinessGiven, SortBusinessReceived, SortOneToOneCount, SortAbsentCount, SortReferenceGiven, SortReferenceReceived} {
		assert.True(t, k.Computed(), k)
	}
}

func TestResolveFilterTrimsPatterns(t *testing.T) {
	f := ResolveFilter(Params{City: "  Pune ", Chapter: "Titans", DateRange: RangeLastWeek}, testNow)

	assert.Equal(t, "Pune", f.City)
	assert.Equal(t, "Titans", f.Chapter)
	assert.Equal(t, ResolveWindow(RangeLastWeek, testNow), f.Window)
}
