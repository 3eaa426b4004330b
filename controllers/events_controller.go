package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	config "github.com/phillip/chapter-directory-go/config"
	models "github.com/phillip/chapter-directory-go/models"
	store "github.com/phillip/chapter-directory-go/store"
	utils "github.com/phillip/chapter-directory-go/utils"
)

// ---------------- CREATE ----------------
func CreateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// --- Authenticated user ---
		userID, ok := requester(c)
		if !ok {
			return
		}

		// --- Bind form fields ---
		var input struct {
			Title       string `form:"title" binding:"required"`
			Description string `form:"description"`
			Venue       string `form:"venue"`
			Date        string `form:"date" binding:"required"`
			CityID      string `form:"city_id"`
			ChapterID   string `form:"chapter_id"`
		}
		if err := c.ShouldBind(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		date, err := utils.ParseDate(input.Date)
		if err != nil {
			badRequest(c, "invalid date format, use RFC3339 or YYYY-MM-DD")
			return
		}

		refs := bson.M{}
		if err := setRef(refs, "city_id", input.CityID); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := setRef(refs, "chapter_id", input.ChapterID); err != nil {
			badRequest(c, err.Error())
			return
		}

		files, err := uploadedFiles(c, "photos")
		if err != nil {
			badRequest(c, "invalid form data")
			return
		}

		ctx, cancel := requestContext(c, uploadTimeout)
		defer cancel()

		event := models.Event{
			ID:          primitive.NewObjectID(),
			UserID:      userID,
			Title:       input.Title,
			Description: input.Description,
			Venue:       input.Venue,
			Date:        date,
			Status:      models.StatusScheduled,
			Photos:      []string{},
		}
		if id, ok := refs["city_id"].(primitive.ObjectID); ok {
			if !ensureExists[models.City](ctx, c, cfg, "city_id", id) {
				return
			}
			event.CityID = id
		}
		if id, ok := refs["chapter_id"].(primitive.ObjectID); ok {
			if !ensureExists[models.Chapter](ctx, c, cfg, "chapter_id", id) {
				return
			}
			event.ChapterID = id
		}

		// --- Handle file uploads ---
		urls, err := utils.UploadImages(cfg, files, utils.FolderEvents)
		if err != nil {
			cfg.Logger.Error("event photo upload failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
			return
		}
		event.Photos = append(event.Photos, urls...)

		// --- Save event ---
		now := time.Now()
		event.CreatedAt, event.UpdatedAt = now, now
		if err := store.For[models.Event](cfg.DB()).Insert(ctx, event); err != nil {
			storeError(c, cfg, "event", "create", err)
			return
		}

		writeOne(c, http.StatusCreated, event)
	}
}

// ---------------- LIST ----------------
func ListEvents(cfg *config.Config) gin.HandlerFunc {
	return listHandler[models.Event](cfg, "events", func(c *gin.Context) (bson.M, error) {
		filter, err := queryFilter(c, []string{"title", "venue"}, "city_id", "chapter_id", "user_id")
		if err != nil {
			return nil, err
		}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}
		return filter, nil
	})
}

// ---------------- GET ----------------
func GetEvent(cfg *config.Config) gin.HandlerFunc {
	return getHandler[models.Event](cfg, "event")
}

// ---------------- UPDATE ----------------
func UpdateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "event")
		if !ok {
			return
		}

		// --- Bind input (form-data for mixed text + file upload) ---
		var input struct {
			Title       string   `form:"title"`
			Description string   `form:"description"`
			Venue       string   `form:"venue"`
			Date        string   `form:"date"`
			CityID      string   `form:"city_id"`
			ChapterID   string   `form:"chapter_id"`
			Status      string   `form:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
			Photos      []string `form:"photos"` // existing photo URLs to keep
		}
		if err := c.ShouldBind(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		update := bson.M{"updated_at": time.Now()}
		setIfNotEmpty(update, "title", input.Title)
		setIfNotEmpty(update, "description", input.Description)
		setIfNotEmpty(update, "venue", input.Venue)
		setIfNotEmpty(update, "status", input.Status)
		for _, err := range []error{
			setDate(update, "date", input.Date),
			setRef(update, "city_id", input.CityID),
			setRef(update, "chapter_id", input.ChapterID),
		} {
			if err != nil {
				badRequest(c, err.Error())
				return
			}
		}

		files, err := uploadedFiles(c, "new_photos")
		if err != nil {
			badRequest(c, "invalid form data")
			return
		}

		ctx, cancel := requestContext(c, uploadTimeout)
		defer cancel()

		existing, err := store.For[models.Event](cfg.DB()).FindByID(ctx, id)
		if err != nil {
			storeError(c, cfg, "event", "fetch", err)
			return
		}
		if !canModify(c, existing.UserID) {
			forbidden(c)
			return
		}

		// --- Merge photos (keep provided + add new) ---
		urls, err := utils.UploadImages(cfg, files, utils.FolderEvents)
		if err != nil {
			cfg.Logger.Error("event photo upload failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
			return
		}
		if input.Photos != nil || len(urls) > 0 {
			update["photos"] = append(append([]string{}, input.Photos...), urls...)
		}

		applyUpdate[models.Event](ctx, c, cfg, "event", id, update)
	}
}

// ---------------- DELETE ----------------
func DeleteEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "event")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		events := store.For[models.Event](cfg.DB())
		existing, err := events.FindByID(ctx, id)
		if err != nil {
			storeError(c, cfg, "event", "fetch", err)
			return
		}
		if !canModify(c, existing.UserID) {
			forbidden(c)
			return
		}

		if err := events.Delete(ctx, id); err != nil {
			storeError(c, cfg, "event", "delete", err)
			return
		}

		// Photos are best-effort: the event is already gone.
		for _, photo := range existing.Photos {
			if err := utils.DeleteImage(cfg, photo); err != nil {
				cfg.Logger.Warn("could not delete event photo", zap.String("url", photo), zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "event deleted successfully",
			"id":      id.Hex(),
		})
	}
}
