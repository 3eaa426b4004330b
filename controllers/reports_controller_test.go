package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	config "github.com/phillip/chapter-directory-go/config"
	reports "github.com/phillip/chapter-directory-go/reports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubSource serves canned rows and records the last profile query.
type stubSource struct {
	rows     []reports.ProfileRow
	rollups  map[primitive.ObjectID]reports.Rollup
	meetings []reports.MeetingRef
	marks    []reports.AttendanceMark
	err      error

	lastQuery reports.ProfileQuery
}

func (s *stubSource) Profiles(_ context.Context, q reports.ProfileQuery) ([]reports.ProfileRow, int64, error) {
	s.lastQuery = q
	if s.err != nil {
		return nil, 0, s.err
	}
	rows := s.rows
	if q.Limit > 0 {
		end := q.Skip + q.Limit
		if end > len(rows) {
			end = len(rows)
		}
		if q.Skip > len(rows) {
			rows = nil
		} else {
			rows = rows[q.Skip:end]
		}
	}
	return rows, int64(len(s.rows)), nil
}

func (s *stubSource) Rollups(context.Context, []primitive.ObjectID, reports.Window) (map[primitive.ObjectID]reports.Rollup, error) {
	return s.rollups, s.err
}

func (s *stubSource) Meetings(context.Context, reports.Window) ([]reports.MeetingRef, error) {
	return s.meetings, s.err
}

func (s *stubSource) Attendance(context.Context, []primitive.ObjectID, []primitive.ObjectID) ([]reports.AttendanceMark, error) {
	return s.marks, s.err
}

var reportNow = time.Date(2026, 5, 15, 14, 30, 0, 0, time.UTC)

func reportRouter(cfg *config.Config, src reports.Source) *gin.Engine {
	engine := reports.NewEngine(src, reports.WithClock(func() time.Time { return reportNow }))
	r := gin.New()
	r.GET("/chapter-reports", ChapterReport(cfg, engine))
	r.GET("/chapter-reports/export", ExportChapterReport(cfg, engine))
	r.GET("/attendance-reports", AttendanceReport(cfg, engine))
	return r
}

func twoProfiles() *stubSource {
	asha, ravi := primitive.NewObjectID(), primitive.NewObjectID()
	return &stubSource{
		rows: []reports.ProfileRow{
			{ID: primitive.NewObjectID(), UserID: asha, FullName: "Asha Rao", BusinessName: "Rao Prints", Phone: "9800", CityName: "Pune", ChapterName: "Titans"},
			{ID: primitive.NewObjectID(), BusinessName: "Orphan Co"},
		},
		rollups: map[primitive.ObjectID]reports.Rollup{
			asha: {BusinessGiven: decimal.RequireFromString("150.00"), ReferenceGiven: 2},
			ravi: {OneToOneCount: 9},
		},
	}
}

func TestChapterReportHandler(t *testing.T) {
	src := twoProfiles()
	r := reportRouter(&config.Config{Logger: zap.NewNop()}, src)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chapter-reports?city=pu&sortBy=mobile&sortOrder=desc&page=1&limit=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success    bool               `json:"success"`
		Pagination reports.Pagination `json:"pagination"`
		Data       []map[string]any   `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.Equal(t, reports.Pagination{TotalRecords: 2, TotalPages: 2, CurrentPage: 1, Limit: 1}, body.Pagination)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Asha Rao", body.Data[0]["full_name"])
	assert.Equal(t, 150.0, body.Data[0]["business_given"])
	assert.Equal(t, 2.0, body.Data[0]["reference_given"])

	assert.Equal(t, "pu", src.lastQuery.City)
	assert.Equal(t, reports.SortKey("personal_phone_number"), src.lastQuery.Sort)
	assert.True(t, src.lastQuery.Desc)
}

func TestChapterReportHandlerCoercesBadPagination(t *testing.T) {
	r := reportRouter(&config.Config{Logger: zap.NewNop()}, twoProfiles())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chapter-reports?page=abc&limit=-4", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Pagination reports.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Pagination.CurrentPage)
	assert.Equal(t, 10, body.Pagination.Limit)
}

func TestReportHandlersFailWithoutPartialData(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	cfg := &config.Config{Logger: zap.New(core)}
	r := reportRouter(cfg, &stubSource{err: errors.New("connection reset")})

	for _, path := range []string{"/chapter-reports?city=pune", "/attendance-reports", "/chapter-reports/export"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.NotContains(t, w.Body.String(), "data", path)
		assert.NotContains(t, w.Body.String(), "connection reset", path)
	}

	entries := logs.FilterMessage("report failed").All()
	require.Len(t, entries, 3)
	assert.Equal(t, "pune", entries[0].ContextMap()["city"])
	assert.Contains(t, entries[0].ContextMap()["error"], "connection reset")
}

func TestAttendanceReportHandler(t *testing.T) {
	src := twoProfiles()
	meeting := primitive.NewObjectID()
	src.meetings = []reports.MeetingRef{{ID: meeting, Date: time.Date(2026, 5, 13, 8, 0, 0, 0, time.UTC)}}
	src.marks = []reports.AttendanceMark{{MeetingID: meeting, MemberID: src.rows[0].UserID, Status: "present"}}
	r := reportRouter(&config.Config{Logger: zap.NewNop()}, src)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/attendance-reports?dateRange=This+Week&sortBy=name", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body reports.AttendanceReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, 200, body.Code)
	assert.Equal(t, []string{"2026-05-13"}, body.MeetingDates)
	assert.Equal(t, "This Week", body.FiltersApplied.DateRange)
	assert.Equal(t, "full_name", body.FiltersApplied.SortBy)
	assert.Equal(t, "asc", body.FiltersApplied.SortOrder)
	require.Len(t, body.Data, 2)

	marks := map[string]string{}
	for _, row := range body.Data {
		marks[row.Name] = row.Attendance["2026-05-13"]
	}
	assert.Equal(t, map[string]string{"Asha Rao": "P", "Unknown": "A"}, marks)
}

func TestExportChapterReportHandler(t *testing.T) {
	r := reportRouter(&config.Config{Logger: zap.NewNop()}, twoProfiles())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chapter-reports/export?limit=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "chapter-report-")

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
