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
func CreatePortfolio(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requester(c)
		if !ok {
			return
		}

		// --- Bind form fields ---
		var input struct {
			Title       string `form:"title" binding:"required"`
			Description string `form:"description"`
		}
		if err := c.ShouldBind(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		files, err := uploadedFiles(c, "images")
		if err != nil {
			badRequest(c, "invalid form data")
			return
		}

		urls, err := utils.UploadImages(cfg, files, utils.FolderPortfolios)
		if err != nil {
			cfg.Logger.Error("portfolio image upload failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
			return
		}

		now := time.Now()
		portfolio := models.BusinessPortfolio{
			ID:          primitive.NewObjectID(),
			UserID:      userID,
			Title:       input.Title,
			Description: input.Description,
			Images:      append([]string{}, urls...),
			Status:      models.StatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := requestContext(c, uploadTimeout)
		defer cancel()

		if err := store.For[models.BusinessPortfolio](cfg.DB()).Insert(ctx, portfolio); err != nil {
			storeError(c, cfg, "portfolio", "create", err)
			return
		}
		writeOne(c, http.StatusCreated, portfolio)
	}
}

// ---------------- LIST ----------------
func ListPortfolios(cfg *config.Config) gin.HandlerFunc {
	return listHandler[models.BusinessPortfolio](cfg, "portfolios", searchable([]string{"title", "description"}, "user_id"))
}

// ---------------- GET ----------------
func GetPortfolio(cfg *config.Config) gin.HandlerFunc {
	return getHandler[models.BusinessPortfolio](cfg, "portfolio")
}

// ---------------- UPDATE ----------------
func UpdatePortfolio(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "portfolio")
		if !ok {
			return
		}

		var input struct {
			Title       string   `form:"title"`
			Description string   `form:"description"`
			Status      string   `form:"status" binding:"omitempty,oneof=active inactive"`
			Images      []string `form:"images"` // existing image URLs to keep
		}
		if err := c.ShouldBind(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		update := bson.M{"updated_at": time.Now()}
		setIfNotEmpty(update, "title", input.Title)
		setIfNotEmpty(update, "description", input.Description)
		setIfNotEmpty(update, "status", input.Status)

		files, err := uploadedFiles(c, "new_images")
		if err != nil {
			badRequest(c, "invalid form data")
			return
		}

		ctx, cancel := requestContext(c, uploadTimeout)
		defer cancel()

		existing, err := store.For[models.BusinessPortfolio](cfg.DB()).FindByID(ctx, id)
		if err != nil {
			storeError(c, cfg, "portfolio", "fetch", err)
			return
		}
		if !canModify(c, existing.UserID) {
			forbidden(c)
			return
		}

		urls, err := utils.UploadImages(cfg, files, utils.FolderPortfolios)
		if err != nil {
			cfg.Logger.Error("portfolio image upload failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
			return
		}
		if input.Images != nil || len(urls) > 0 {
			update["images"] = append(append([]string{}, input.Images...), urls...)
		}

		applyUpdate[models.BusinessPortfolio](ctx, c, cfg, "portfolio", id, update)
	}
}

// ---------------- DELETE ----------------
// Soft delete; uploaded images are kept.
func DeletePortfolio(cfg *config.Config) gin.HandlerFunc {
	return deleteHandler(cfg, "portfolio", func(p models.BusinessPortfolio) primitive.ObjectID { return p.UserID })
}
