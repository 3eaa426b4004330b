package reports

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
	// maxPage keeps (page-1)*maxLimit inside int32 so skip never overflows.
	maxPage = math.MaxInt32 / maxLimit
)

// Params are the raw report query parameters, exactly as received.
type Params struct {
	City      string
	Chapter   string
	DateRange string
	Page      string
	Limit     string
	SortBy    string
	SortOrder string
}

// Filter is the resolved, validated form of Params.
type Filter struct {
	City      string
	Chapter   string
	DateRange string
	Window    Window
	Page      int
	Limit     int
	Skip      int
	Sort      SortKey
	Desc      bool
}

// ResolveFilter never fails: malformed pagination falls back to the
// defaults and unknown sort keys fall back to business_name.
func ResolveFilter(p Params, now time.Time) Filter {
	page := positiveInt(p.Page, defaultPage)
	if page > maxPage {
		page = maxPage
	}
	limit := positiveInt(p.Limit, defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}

	return Filter{
		City:      strings.TrimSpace(p.City),
		Chapter:   strings.TrimSpace(p.Chapter),
		DateRange: p.DateRange,
		Window:    ResolveWindow(p.DateRange, now),
		Page:      page,
		Limit:     limit,
		Skip:      (page - 1) * limit,
		Sort:      ParseSortKey(p.SortBy),
		Desc:      p.SortOrder == "desc",
	}
}

// SortOrder renders Desc back into its query form.
func (f Filter) SortOrder() string {
	if f.Desc {
		return "desc"
	}
	return "asc"
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}
