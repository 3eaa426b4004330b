package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	auth "github.com/phillip/chapter-directory-go/auth"
	config "github.com/phillip/chapter-directory-go/config"
	models "github.com/phillip/chapter-directory-go/models"
	store "github.com/phillip/chapter-directory-go/store"
	utils "github.com/phillip/chapter-directory-go/utils"
)

type memberInput struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
	Password    string `json:"password" binding:"required,min=8"`
}

// newMember validates input and builds an unsaved member with a hashed
// password. It writes the 400 itself and returns false on bad input.
func newMember(c *gin.Context, in memberInput, role string) (models.Member, bool) {
	now := time.Now()
	m := models.Member{
		ID:        primitive.NewObjectID(),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     in.Phone,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.DateOfBirth != "" {
		dob, err := utils.ParseDate(in.DateOfBirth)
		if err != nil {
			badRequest(c, "invalid date_of_birth format, "+err.Error())
			return m, false
		}
		m.DateOfBirth = &dob
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return m, false
	}
	m.PasswordHash = hash
	return m, true
}

// ---------------- CREATE ----------------
// Admin-only; self-service sign-up goes through /auth/register.
func CreateMember(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			memberInput
			Role string `json:"role" binding:"omitempty,oneof=admin member"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		member, ok := newMember(c, input.memberInput, orDefault(input.Role, models.RoleMember))
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		if err := store.For[models.Member](cfg.DB()).Insert(ctx, member); err != nil {
			storeError(c, cfg, "member", "create", err)
			return
		}
		writeOne(c, http.StatusCreated, member)
	}
}

// ---------------- LIST ----------------
func ListMembers(cfg *config.Config) gin.HandlerFunc {
	return listHandler[models.Member](cfg, "members", func(c *gin.Context) (bson.M, error) {
		filter, err := queryFilter(c, []string{"first_name", "last_name", "email", "phone"})
		if err != nil {
			return nil, err
		}
		if role := c.Query("role"); role != "" {
			filter["role"] = role
		}
		return filter, nil
	})
}

// ---------------- GET ----------------
func GetMember(cfg *config.Config) gin.HandlerFunc {
	return getHandler[models.Member](cfg, "member")
}

// ---------------- UPDATE ----------------
func UpdateMember(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "member")
		if !ok {
			return
		}
		if !canModify(c, id) {
			forbidden(c)
			return
		}

		var input struct {
			FirstName   string `json:"first_name"`
			LastName    string `json:"last_name"`
			Email       string `json:"email" binding:"omitempty,email"`
			Phone       string `json:"phone"`
			DateOfBirth string `json:"date_of_birth"`
			Role        string `json:"role" binding:"omitempty,oneof=admin member"`
			Password    string `json:"password" binding:"omitempty,min=8"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}
		if input.Role != "" && !isAdmin(c) {
			forbidden(c)
			return
		}

		update := bson.M{"updated_at": time.Now()}
		setIfNotEmpty(update, "first_name", strings.TrimSpace(input.FirstName))
		setIfNotEmpty(update, "last_name", strings.TrimSpace(input.LastName))
		setIfNotEmpty(update, "email", strings.ToLower(strings.TrimSpace(input.Email)))
		setIfNotEmpty(update, "phone", input.Phone)
		setIfNotEmpty(update, "role", input.Role)
		if err := setDate(update, "date_of_birth", input.DateOfBirth); err != nil {
			badRequest(c, err.Error())
			return
		}
		if input.Password != "" {
			hash, err := auth.HashPassword(input.Password)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
				return
			}
			update["password_hash"] = hash
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		applyUpdate[models.Member](ctx, c, cfg, "member", id, update)
	}
}

// ---------------- DELETE ----------------
func DeleteMember(cfg *config.Config) gin.HandlerFunc {
	return deleteHandler[models.Member](cfg, "member", nil)
}

// ---------------- PROFILE PICTURE ----------------
func UploadProfilePicture(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "member")
		if !ok {
			return
		}
		if !canModify(c, id) {
			forbidden(c)
			return
		}

		fileHeader, err := c.FormFile("profile_picture")
		if err != nil {
			badRequest(c, "profile_picture file is required")
			return
		}

		ctx, cancel := requestContext(c, uploadTimeout)
		defer cancel()

		members := store.For[models.Member](cfg.DB())
		existing, err := members.FindByID(ctx, id)
		if err != nil {
			storeError(c, cfg, "member", "fetch", err)
			return
		}

		url, err := utils.UploadImage(cfg, fileHeader, utils.FolderProfiles)
		if err != nil {
			cfg.Logger.Error("profile picture upload failed", zap.String("member_id", id.Hex()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
			return
		}

		updated, err := members.Update(ctx, id, bson.M{"profile_picture": url, "updated_at": time.Now()})
		if err != nil {
			storeError(c, cfg, "member", "update", err)
			return
		}

		if existing.ProfilePicture != "" {
			if err := utils.DeleteImage(cfg, existing.ProfilePicture); err != nil {
				cfg.Logger.Warn("could not delete old profile picture", zap.String("url", existing.ProfilePicture), zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "profile picture updated successfully",
			"data":    updated,
		})
	}
}
