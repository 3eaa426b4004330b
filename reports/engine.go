package reports

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/chapter-directory-go/models"
)

// Engine builds the chapter and attendance reports. It holds no state
// between calls and never writes.
type Engine struct {
	src Source
	now func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(src Source, opts ...Option) *Engine {
	e := &Engine{src: src, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve turns raw parameters into a filter against a single snapshot of now.
func (e *Engine) Resolve(p Params) Filter {
	return ResolveFilter(p, e.now())
}

type Pagination struct {
	TotalRecords int64 `json:"total_records"`
	TotalPages   int64 `json:"total_pages"`
	CurrentPage  int   `json:"current_page"`
	Limit        int   `json:"limit"`
}

func newPagination(total int64, f Filter) Pagination {
	pages := total / int64(f.Limit)
	if total%int64(f.Limit) > 0 {
		pages++
	}
	return Pagination{
		TotalRecords: total,
		TotalPages:   pages,
		CurrentPage:  f.Page,
		Limit:        f.Limit,
	}
}

type ChapterReport struct {
	Success    bool         `json:"success"`
	Pagination Pagination   `json:"pagination"`
	Data       []ChapterRow `json:"data"`
}

// ChapterReport returns one page of profiles with their windowed rollups.
func (e *Engine) ChapterReport(ctx context.Context, f Filter) (*ChapterReport, error) {
	pg, err := e.page(ctx, f, true)
	if err != nil {
		return nil, err
	}

	data := make([]ChapterRow, 0, len(pg.rows))
	for _, row := range pg.rows {
		data = append(data, formatChapterRow(row, pg.rollups[row.UserID]))
	}

	return &ChapterReport{
		Success:    true,
		Pagination: newPagination(pg.total, f),
		Data:       data,
	}, nil
}

// ChapterRows returns the whole filtered set, sorted but not paginated.
func (e *Engine) ChapterRows(ctx context.Context, f Filter) ([]ChapterRow, error) {
	f.Skip, f.Limit = 0, 0
	pg, err := e.page(ctx, f, true)
	if err != nil {
		return nil, err
	}

	data := make([]ChapterRow, 0, len(pg.rows))
	for _, row := range pg.rows {
		data = append(data, formatChapterRow(row, pg.rollups[row.UserID]))
	}
	return data, nil
}

type FiltersApplied struct {
	City      string `json:"city"`
	Chapter   string `json:"chapter"`
	DateRange string `json:"dateRange"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

type AttendanceReport struct {
	Code           int             `json:"code"`
	Success        bool            `json:"success"`
	Pagination     Pagination      `json:"pagination"`
	FiltersApplied FiltersApplied  `json:"filters_applied"`
	MeetingDates   []string        `json:"meeting_dates"`
	Data           []AttendanceRow `json:"data"`
}

// AttendanceReport returns one page of profiles with a P/A mark for every
// meeting date in the window. The date columns come from the meetings
// themselves, so a day nobody attended still gets a column.
func (e *Engine) AttendanceReport(ctx context.Context, f Filter) (*AttendanceReport, error) {
	pg, err := e.page(ctx, f, false)
	if err != nil {
		return nil, err
	}

	meetings, err := e.src.Meetings(ctx, f.Window)
	if err != nil {
		return nil, fmt.Errorf("load meetings: %w", err)
	}

	loc := f.Window.End.Location()
	dayOf := make(map[primitive.ObjectID]string, len(meetings))
	meetingIDs := make([]primitive.ObjectID, 0, len(meetings))
	seen := map[string]bool{}
	dates := []string{}
	for _, m := range meetings {
		day := m.Date.In(loc).Format(isoDate)
		dayOf[m.ID] = day
		meetingIDs = append(meetingIDs, m.ID)
		if !seen[day] {
			seen[day] = true
			dates = append(dates, day)
		}
	}
	sort.Strings(dates)

	members := memberIDs(pg.rows)
	present := map[primitive.ObjectID]map[string]bool{}
	if len(members) > 0 && len(meetingIDs) > 0 {
		marks, err := e.src.Attendance(ctx, members, meetingIDs)
		if err != nil {
			return nil, fmt.Errorf("load attendance: %w", err)
		}
		for _, mark := range marks {
			day, ok := dayOf[mark.MeetingID]
			if !ok || !models.IsPresent(mark.Status) {
				continue
			}
			if present[mark.MemberID] == nil {
				present[mark.MemberID] = map[string]bool{}
			}
			present[mark.MemberID][day] = true
		}
	}

	data := make([]AttendanceRow, 0, len(pg.rows))
	for _, row := range pg.rows {
		grid := make(map[string]string, len(dates))
		for _, day := range dates {
			grid[day] = absentMark
			if present[row.UserID][day] {
				grid[day] = presentMark
			}
		}
		data = append(data, formatAttendanceRow(row, grid))
	}

	return &AttendanceReport{
		Code:       http.StatusOK,
		Success:    true,
		Pagination: newPagination(pg.total, f),
		FiltersApplied: FiltersApplied{
			City:      f.City,
			Chapter:   f.Chapter,
			DateRange: f.DateRange,
			StartDate: f.Window.Start.Format(time.RFC3339),
			EndDate:   f.Window.End.Format(time.RFC3339),
			SortBy:    string(f.Sort),
			SortOrder: f.SortOrder(),
		},
		MeetingDates: dates,
		Data:         data,
	}, nil
}

type page struct {
	rows    []ProfileRow
	rollups map[primitive.ObjectID]Rollup
	total   int64
}

// page loads the rows of f's page. Stored sort keys are sorted and paginated
// by the store so rollups are only computed for one page; computed keys need
// rollups for the whole filtered set before anything can be ordered.
func (e *Engine) page(ctx context.Context, f Filter, withRollups bool) (*page, error) {
	q := ProfileQuery{City: f.City, Chapter: f.Chapter}

	if !f.Sort.Computed() {
		q.Sort, q.Desc, q.Skip, q.Limit = f.Sort, f.Desc, f.Skip, f.Limit
		rows, total, err := e.src.Profiles(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("load profiles: %w", err)
		}
		pg := &page{rows: rows, total: total}
		if withRollups {
			if pg.rollups, err = e.rollups(ctx, rows, f.Window); err != nil {
				return nil, err
			}
		}
		return pg, nil
	}

	rows, total, err := e.src.Profiles(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	rollups, err := e.rollups(ctx, rows, f.Window)
	if err != nil {
		return nil, err
	}
	sortByRollup(rows, rollups, f.Sort, f.Desc)

	return &page{rows: paginate(rows, f.Skip, f.Limit), rollups: rollups, total: total}, nil
}

func (e *Engine) rollups(ctx context.Context, rows []ProfileRow, w Window) (map[primitive.ObjectID]Rollup, error) {
	members := memberIDs(rows)
	if len(members) == 0 {
		return map[primitive.ObjectID]Rollup{}, nil
	}
	rollups, err := e.src.Rollups(ctx, members, w)
	if err != nil {
		return nil, fmt.Errorf("compute rollups: %w", err)
	}
	return rollups, nil
}

// memberIDs returns the distinct non-zero member ids of rows in order.
func memberIDs(rows []ProfileRow) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(rows))
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		if row.UserID.IsZero() || seen[row.UserID] {
			continue
		}
		seen[row.UserID] = true
		ids = append(ids, row.UserID)
	}
	return ids
}
