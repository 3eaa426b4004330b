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

func profileOwner(p models.BusinessProfile) primitive.ObjectID { return p.UserID }

// ---------------- CREATE ----------------
// Members create their own profile; admins may pass user_id to create one
// for someone else.
func CreateBusinessProfile(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		self, ok := requester(c)
		if !ok {
			return
		}

		var input struct {
			UserID              string `json:"user_id"`
			BusinessName        string `json:"business_name" binding:"required"`
			BusinessCategory    string `json:"business_category"`
			BusinessAddress     string `json:"business_address"`
			Website             string `json:"website" binding:"omitempty,url"`
			Logo                string `json:"logo" binding:"omitempty,url"`
			PersonalPhoneNumber string `json:"personal_phone_number"`
			CityID              string `json:"city_id" binding:"required"`
			ChapterID           string `json:"chapter_id" binding:"required"`
			JoiningDate         string `json:"joining_date"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		userID := self
		if input.UserID != "" && input.UserID != self.Hex() {
			if !isAdmin(c) {
				forbidden(c)
				return
			}
			id, err := utils.ParseObjectID("user_id", input.UserID)
			if err != nil {
				badRequest(c, err.Error())
				return
			}
			userID = id
		}

		refs := bson.M{}
		for _, err := range []error{
			setRef(refs, "city_id", input.CityID),
			setRef(refs, "chapter_id", input.ChapterID),
			setDate(refs, "joining_date", input.JoiningDate),
		} {
			if err != nil {
				badRequest(c, err.Error())
				return
			}
		}
		cityID := refs["city_id"].(primitive.ObjectID)
		chapterID := refs["chapter_id"].(primitive.ObjectID)

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		if !ensureExists[models.Member](ctx, c, cfg, "user_id", userID) ||
			!ensureExists[models.City](ctx, c, cfg, "city_id", cityID) ||
			!ensureExists[models.Chapter](ctx, c, cfg, "chapter_id", chapterID) {
			return
		}

		now := time.Now()
		profile := models.BusinessProfile{
			ID:                  primitive.NewObjectID(),
			UserID:              userID,
			BusinessName:        strings.TrimSpace(input.BusinessName),
			BusinessCategory:    input.BusinessCategory,
			BusinessAddress:     input.BusinessAddress,
			Website:             input.Website,
			Logo:                input.Logo,
			PersonalPhoneNumber: input.PersonalPhoneNumber,
			CityID:              cityID,
			ChapterID:           chapterID,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if joined, ok := refs["joining_date"].(time.Time); ok {
			profile.JoiningDate = &joined
		}

		if err := store.For[models.BusinessProfile](cfg.DB()).Insert(ctx, profile); err != nil {
			storeError(c, cfg, "business profile", "create", err)
			return
		}
		writeOne(c, http.StatusCreated, profile)
	}
}

// ---------------- LIST ----------------
func ListBusinessProfiles(cfg *config.Config) gin.HandlerFunc {
	return listHandler[models.BusinessProfile](cfg, "business profiles",
		searchable([]string{"business_name", "business_category", "personal_phone_number"}, "city_id", "chapter_id", "user_id"))
}

// ---------------- GET ----------------
func GetBusinessProfile(cfg *config.Config) gin.HandlerFunc {
	return getHandler[models.BusinessProfile](cfg, "business profile")
}

// ---------------- UPDATE ----------------
func UpdateBusinessProfile(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "business profile")
		if !ok {
			return
		}

		var input struct {
			BusinessName        string `json:"business_name"`
			BusinessCategory    string `json:"business_category"`
			BusinessAddress     string `json:"business_address"`
			Website             string `json:"website" binding:"omitempty,url"`
			Logo                string `json:"logo" binding:"omitempty,url"`
			PersonalPhoneNumber string `json:"personal_phone_number"`
			CityID              string `json:"city_id"`
			ChapterID           string `json:"chapter_id"`
			JoiningDate         string `json:"joining_date"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		update := bson.M{"updated_at": time.Now()}
		setIfNotEmpty(update, "business_name", strings.TrimSpace(input.BusinessName))
		setIfNotEmpty(update, "business_category", input.BusinessCategory)
		setIfNotEmpty(update, "business_address", input.BusinessAddress)
		setIfNotEmpty(update, "website", input.Website)
		setIfNotEmpty(update, "logo", input.Logo)
		setIfNotEmpty(update, "personal_phone_number", input.PersonalPhoneNumber)
		for _, err := range []error{
			setRef(update, "city_id", input.CityID),
			setRef(update, "chapter_id", input.ChapterID),
			setDate(update, "joining_date", input.JoiningDate),
		} {
			if err != nil {
				badRequest(c, err.Error())
				return
			}
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		existing, err := store.For[models.BusinessProfile](cfg.DB()).FindByID(ctx, id)
		if err != nil {
			storeError(c, cfg, "business profile", "fetch", err)
			return
		}
		if !canModify(c, profileOwner(existing)) {
			forbidden(c)
			return
		}

		if cityID, ok := update["city_id"].(primitive.ObjectID); ok && !ensureExists[models.City](ctx, c, cfg, "city_id", cityID) {
			return
		}
		if chapterID, ok := update["chapter_id"].(primitive.ObjectID); ok && !ensureExists[models.Chapter](ctx, c, cfg, "chapter_id", chapterID) {
			return
		}

		applyUpdate[models.BusinessProfile](ctx, c, cfg, "business profile", id, update)
	}
}

// ---------------- DELETE ----------------
func DeleteBusinessProfile(cfg *config.Config) gin.HandlerFunc {
	return deleteHandler(cfg, "business profile", profileOwner)
}
