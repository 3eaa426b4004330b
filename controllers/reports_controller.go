package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	config "github.com/phillip/chapter-directory-go/config"
	monitoring "github.com/phillip/chapter-directory-go/monitoring"
	reports "github.com/phillip/chapter-directory-go/reports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func reportParams(c *gin.Context) reports.Params {
	return reports.Params{
		City:      c.Query("city"),
		Chapter:   c.Query("chapter"),
		DateRange: c.Query("dateRange"),
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
}

// reportFailed logs the resolved filter and answers with a generic 500.
// Nothing partial is ever written.
func reportFailed(c *gin.Context, cfg *config.Config, report string, f reports.Filter, err error) {
	monitoring.ReportFailures.WithLabelValues(report).Inc()
	cfg.Logger.Error("report failed",
		zap.String("report", report),
		zap.String("request_id", c.GetString("request_id")),
		zap.String("city", f.City),
		zap.String("chapter", f.Chapter),
		zap.String("date_range", f.DateRange),
		zap.String("sort_by", string(f.Sort)),
		zap.Int("page", f.Page),
		zap.Int("limit", f.Limit),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": "failed to generate " + report + " report",
	})
}

func observeReport(report string, start time.Time) {
	monitoring.ReportDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

// ---------------- CHAPTER REPORT ----------------
func ChapterReport(cfg *config.Config, engine *reports.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer observeReport("chapter", time.Now())

		f := engine.Resolve(reportParams(c))

		ctx, cancel := requestContext(c, reportTimeout)
		defer cancel()

		rep, err := engine.ChapterReport(ctx, f)
		if err != nil {
			reportFailed(c, cfg, "chapter", f, err)
			return
		}
		c.JSON(http.StatusOK, rep)
	}
}

// ExportChapterReport streams the whole filtered chapter report as a
// workbook; page and limit are ignored.
func ExportChapterReport(cfg *config.Config, engine *reports.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer observeReport("chapter_export", time.Now())

		f := engine.Resolve(reportParams(c))

		ctx, cancel := requestContext(c, reportTimeout)
		defer cancel()

		rows, err := engine.ChapterRows(ctx, f)
		if err != nil {
			reportFailed(c, cfg, "chapter", f, err)
			return
		}

		var buf bytes.Buffer
		if err := reports.WriteChapterWorkbook(&buf, rows); err != nil {
			reportFailed(c, cfg, "chapter", f, err)
			return
		}

		filename := fmt.Sprintf("chapter-report-%s.xlsx", time.Now().Format("20060102"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

// ---------------- ATTENDANCE REPORT ----------------
func AttendanceReport(cfg *config.Config, engine *reports.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer observeReport("attendance", time.Now())

		f := engine.Resolve(reportParams(c))

		ctx, cancel := requestContext(c, reportTimeout)
		defer cancel()

		rep, err := engine.AttendanceReport(ctx, f)
		if err != nil {
			reportFailed(c, cfg, "attendance", f, err)
			return
		}
		c.JSON(http.StatusOK, rep)
	}
}
