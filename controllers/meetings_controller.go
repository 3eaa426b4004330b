package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/phillip/chapter-directory-go/config"
	models "github.com/phillip/chapter-directory-go/models"
	store "github.com/phillip/chapter-directory-go/store"
	utils "github.com/phillip/chapter-directory-go/utils"
)

// ---------------- MEETINGS ----------------

// CreateMeeting schedules a chapter meeting; city_id is copied from the
// chapter.
func CreateMeeting(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Title     string `json:"title" binding:"required"`
			Date      string `json:"date" binding:"required"`
			Venue     string `json:"venue"`
			ChapterID string `json:"chapter_id" binding:"required"`
			Status    string `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		date, err := utils.ParseDate(input.Date)
		if err != nil {
			badRequest(c, "invalid date format, "+err.Error())
			return
		}
		chapterID, err := utils.ParseObjectID("chapter_id", input.ChapterID)
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		chapter, err := store.For[models.Chapter](cfg.DB()).FindByID(ctx, chapterID)
		if errors.Is(err, store.ErrNotFound) {
			badRequest(c, "chapter_id does not exist")
			return
		}
		if err != nil {
			storeError(c, cfg, "chapter", "fetch", err)
			return
		}

		now := time.Now()
		meeting := models.Meeting{
			ID:        primitive.NewObjectID(),
			Title:     input.Title,
			Date:      date,
			Venue:     input.Venue,
			ChapterID: chapter.ID,
			CityID:    chapter.CityID,
			Status:    orDefault(input.Status, models.StatusScheduled),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.For[models.Meeting](cfg.DB()).Insert(ctx, meeting); err != nil {
			storeError(c, cfg, "meeting", "create", err)
			return
		}
		writeOne(c, http.StatusCreated, meeting)
	}
}

// ListMeetings accepts from/to (inclusive) on top of the usual filters.
func ListMeetings(cfg *config.Config) gin.HandlerFunc {
	return listHandler[models.Meeting](cfg, "meetings", func(c *gin.Context) (bson.M, error) {
		filter, err := queryFilter(c, []string{"title", "venue"}, "chapter_id", "city_id")
		if err != nil {
			return nil, err
		}

		from, to := time.Time{}, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
		if raw := c.Query("from"); raw != "" {
			if from, err = utils.ParseDate(raw); err != nil {
				return nil, errors.New("invalid from date, " + err.Error())
			}
		}
		if raw := c.Query("to"); raw != "" {
			if to, err = utils.ParseDate(raw); err != nil {
				return nil, errors.New("invalid to date, " + err.Error())
			}
		}
		if c.Query("from") != "" || c.Query("to") != "" {
			filter["date"] = store.Between(from, to)
		}
		return filter, nil
	})
}

func GetMeeting(cfg *config.Config) gin.HandlerFunc {
	return getHandler[models.Meeting](cfg, "meeting")
}

func UpdateMeeting(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "meeting")
		if !ok {
			return
		}

		var input struct {
			Title     string `json:"title"`
			Date      string `json:"date"`
			Venue     string `json:"venue"`
			ChapterID string `json:"chapter_id"`
			Status    string `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		update := bson.M{"updated_at": time.Now()}
		setIfNotEmpty(update, "title", input.Title)
		setIfNotEmpty(update, "venue", input.Venue)
		setIfNotEmpty(update, "status", input.Status)
		if err := setDate(update, "date", input.Date); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := setRef(update, "chapter_id", input.ChapterID); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		if chapterID, ok := update["chapter_id"].(primitive.ObjectID); ok {
			chapter, err := store.For[models.Chapter](cfg.DB()).FindByID(ctx, chapterID)
			if errors.Is(err, store.ErrNotFound) {
				badRequest(c, "chapter_id does not exist")
				return
			}
			if err != nil {
				storeError(c, cfg, "chapter", "fetch", err)
				return
			}
			update["city_id"] = chapter.CityID
		}

		applyUpdate[models.Meeting](ctx, c, cfg, "meeting", id, update)
	}
}

func DeleteMeeting(cfg *config.Config) gin.HandlerFunc {
	return deleteHandler[models.Meeting](cfg, "meeting", nil)
}

// ---------------- ATTENDANCE ----------------

// RecordAttendance marks one member for one meeting. A second mark for the
// same pair is a 409.
func RecordAttendance(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			MeetingID string `json:"meeting_id" binding:"required"`
			MemberID  string `json:"member_id" binding:"required"`
			Status    string `json:"status" binding:"required,oneof=present attended absent"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		meetingID, err := utils.ParseObjectID("meeting_id", input.MeetingID)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		memberID, err := utils.ParseObjectID("member_id", input.MemberID)
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		if !ensureExists[models.Meeting](ctx, c, cfg, "meeting_id", meetingID) ||
			!ensureExists[models.Member](ctx, c, cfg, "member_id", memberID) {
			return
		}

		marks := store.For[models.MeetingAttendance](cfg.DB())
		n, err := marks.Count(ctx, bson.M{"meeting_id": meetingID, "member_id": memberID})
		if err != nil {
			storeError(c, cfg, "attendance", "check", err)
			return
		}
		if n > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "attendance already recorded for this member and meeting"})
			return
		}

		now := time.Now()
		mark := models.MeetingAttendance{
			ID:        primitive.NewObjectID(),
			MeetingID: meetingID,
			MemberID:  memberID,
			Status:    input.Status,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := marks.Insert(ctx, mark); err != nil {
			storeError(c, cfg, "attendance", "create", err)
			return
		}
		writeOne(c, http.StatusCreated, mark)
	}
}

func ListAttendance(cfg *config.Config) gin.HandlerFunc {
	return listHandler[models.MeetingAttendance](cfg, "attendance", func(c *gin.Context) (bson.M, error) {
		filter, err := queryFilter(c, nil, "meeting_id", "member_id")
		if err != nil {
			return nil, err
		}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}
		return filter, nil
	})
}

func GetAttendance(cfg *config.Config) gin.HandlerFunc {
	return getHandler[models.MeetingAttendance](cfg, "attendance")
}

func UpdateAttendance(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "attendance")
		if !ok {
			return
		}

		var input struct {
			Status string `json:"status" binding:"omitempty,oneof=present attended absent"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		update := bson.M{"updated_at": time.Now()}
		setIfNotEmpty(update, "status", input.Status)

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		applyUpdate[models.MeetingAttendance](ctx, c, cfg, "attendance", id, update)
	}
}

func DeleteAttendance(cfg *config.Config) gin.HandlerFunc {
	return deleteHandler[models.MeetingAttendance](cfg, "attendance", nil)
}
