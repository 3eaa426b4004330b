package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/phillip/chapter-directory-go/config"
	models "github.com/phillip/chapter-directory-go/models"
	store "github.com/phillip/chapter-directory-go/store"
	utils "github.com/phillip/chapter-directory-go/utils"
)

// ---------------- CITIES ----------------

func CreateCity(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name   string `json:"name" binding:"required"`
			Status string `json:"status" binding:"omitempty,oneof=active inactive"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		now := time.Now()
		city := models.City{
			ID:        primitive.NewObjectID(),
			Name:      strings.TrimSpace(input.Name),
			Status:    orDefault(input.Status, models.StatusActive),
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		if err := store.For[models.City](cfg.DB()).Insert(ctx, city); err != nil {
			storeError(c, cfg, "city", "create", err)
			return
		}
		writeOne(c, http.StatusCreated, city)
	}
}

func ListCities(cfg *config.Config) gin.HandlerFunc {
	return listHandler[models.City](cfg, "cities", searchable([]string{"name"}))
}

func GetCity(cfg *config.Config) gin.HandlerFunc {
	return getHandler[models.City](cfg, "city")
}

func UpdateCity(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "city")
		if !ok {
			return
		}

		var input struct {
			Name   string `json:"name"`
			Status string `json:"status" binding:"omitempty,oneof=active inactive"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		update := bson.M{"updated_at": time.Now()}
		setIfNotEmpty(update, "name", strings.TrimSpace(input.Name))
		setIfNotEmpty(update, "status", input.Status)

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		applyUpdate[models.City](ctx, c, cfg, "city", id, update)
	}
}

func DeleteCity(cfg *config.Config) gin.HandlerFunc {
	return deleteHandler[models.City](cfg, "city", nil)
}

// ---------------- CHAPTERS ----------------

func CreateChapter(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name   string `json:"name" binding:"required"`
			CityID string `json:"city_id" binding:"required"`
			Status string `json:"status" binding:"omitempty,oneof=active inactive"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		cityID, err := utils.ParseObjectID("city_id", input.CityID)
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		if !ensureExists[models.City](ctx, c, cfg, "city_id", cityID) {
			return
		}

		now := time.Now()
		chapter := models.Chapter{
			ID:        primitive.NewObjectID(),
			Name:      strings.TrimSpace(input.Name),
			CityID:    cityID,
			Status:    orDefault(input.Status, models.StatusActive),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.For[models.Chapter](cfg.DB()).Insert(ctx, chapter); err != nil {
			storeError(c, cfg, "chapter", "create", err)
			return
		}
		writeOne(c, http.StatusCreated, chapter)
	}
}

func ListChapters(cfg *config.Config) gin.HandlerFunc {
	return listHandler[models.Chapter](cfg, "chapters", searchable([]string{"name"}, "city_id"))
}

func GetChapter(cfg *config.Config) gin.HandlerFunc {
	return getHandler[models.Chapter](cfg, "chapter")
}

func UpdateChapter(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "chapter")
		if !ok {
			return
		}

		var input struct {
			Name   string `json:"name"`
			CityID string `json:"city_id"`
			Status string `json:"status" binding:"omitempty,oneof=active inactive"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		update := bson.M{"updated_at": time.Now()}
		setIfNotEmpty(update, "name", strings.TrimSpace(input.Name))
		setIfNotEmpty(update, "status", input.Status)
		if err := setRef(update, "city_id", input.CityID); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		if cityID, ok := update["city_id"].(primitive.ObjectID); ok {
			if !ensureExists[models.City](ctx, c, cfg, "city_id", cityID) {
				return
			}
		}

		applyUpdate[models.Chapter](ctx, c, cfg, "chapter", id, update)
	}
}

func DeleteChapter(cfg *config.Config) gin.HandlerFunc {
	return deleteHandler[models.Chapter](cfg, "chapter", nil)
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
