package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	auth "github.com/phillip/chapter-directory-go/auth"
	config "github.com/phillip/chapter-directory-go/config"
	models "github.com/phillip/chapter-directory-go/models"
	store "github.com/phillip/chapter-directory-go/store"
	utils "github.com/phillip/chapter-directory-go/utils"
)

func issueTokens(c *gin.Context, cfg *config.Config, status int, m models.Member) {
	access, refresh, err := auth.GenerateTokenPair(cfg, m.ID.Hex(), m.Email, m.Role)
	if err != nil {
		cfg.Logger.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	c.JSON(status, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"member":        m,
	})
}

// ---------------- REGISTER ----------------
func Register(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input memberInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		member, ok := newMember(c, input, models.RoleMember)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		members := store.For[models.Member](cfg.DB())
		if n, err := members.Count(ctx, bson.M{"email": member.Email}); err != nil {
			storeError(c, cfg, "member", "check", err)
			return
		} else if n > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}

		if err := members.Insert(ctx, member); err != nil {
			storeError(c, cfg, "member", "create", err)
			return
		}

		go func(to, name string) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			subject, body := utils.WelcomeEmail(name)
			if err := utils.SendEmail(ctx, cfg, to, name, subject, body); err != nil {
				cfg.Logger.Warn("welcome email not sent", zap.String("to", to), zap.Error(err))
			}
		}(member.Email, member.FirstName)

		issueTokens(c, cfg, http.StatusCreated, member)
	}
}

// ---------------- LOGIN ----------------
func Login(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		email := strings.ToLower(strings.TrimSpace(input.Email))
		member, err := store.For[models.Member](cfg.DB()).FindOne(ctx, bson.M{"email": email})
		if errors.Is(err, store.ErrNotFound) || (err == nil && !auth.CheckPassword(member.PasswordHash, input.Password)) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		if err != nil {
			storeError(c, cfg, "member", "fetch", err)
			return
		}

		issueTokens(c, cfg, http.StatusOK, member)
	}
}

// ---------------- REFRESH ----------------
func RefreshToken(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		access, refresh, err := auth.RefreshTokens(cfg, input.RefreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token":  access,
			"refresh_token": refresh,
		})
	}
}
