package controllers

import (
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

// ---------------- CREATE ----------------
func CreateMembership(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			UserID    string `json:"user_id" binding:"required"`
			Plan      string `json:"plan" binding:"required"`
			Amount    string `json:"amount" binding:"required"`
			StartDate string `json:"start_date" binding:"required"`
			EndDate   string `json:"end_date" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		userID, err := utils.ParseObjectID("user_id", input.UserID)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		amount, err := utils.ParseAmount(input.Amount)
		if err != nil {
			badRequest(c, "amount "+err.Error())
			return
		}
		start, err := utils.ParseDate(input.StartDate)
		if err != nil {
			badRequest(c, "invalid start_date format, "+err.Error())
			return
		}
		end, err := utils.ParseDate(input.EndDate)
		if err != nil {
			badRequest(c, "invalid end_date format, "+err.Error())
			return
		}
		if !end.After(start) {
			badRequest(c, "end_date must be after start_date")
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		if !ensureExists[models.Member](ctx, c, cfg, "user_id", userID) {
			return
		}

		now := time.Now()
		status := models.StatusActive
		if end.Before(now) {
			status = models.StatusExpired
		}
		membership := models.Membership{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Plan:      input.Plan,
			Amount:    amount,
			StartDate: start,
			EndDate:   end,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.For[models.Membership](cfg.DB()).Insert(ctx, membership); err != nil {
			storeError(c, cfg, "membership", "create", err)
			return
		}
		writeOne(c, http.StatusCreated, membership)
	}
}

// ---------------- LIST ----------------
// Members only ever see their own memberships.
func ListMemberships(cfg *config.Config) gin.HandlerFunc {
	return listHandler[models.Membership](cfg, "memberships", func(c *gin.Context) (bson.M, error) {
		filter, err := queryFilter(c, []string{"plan"}, "user_id")
		if err != nil {
			return nil, err
		}
		if !isAdmin(c) {
			self, ok := requester(c)
			if !ok {
				return nil, nil
			}
			filter["user_id"] = self
		}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}
		return filter, nil
	})
}

// ---------------- GET ----------------
func GetMembership(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "membership")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		membership, err := store.For[models.Membership](cfg.DB()).FindByID(ctx, id)
		if err != nil {
			storeError(c, cfg, "membership", "fetch", err)
			return
		}
		if !canModify(c, membership.UserID) {
			forbidden(c)
			return
		}
		writeOne(c, http.StatusOK, membership)
	}
}

// ---------------- UPDATE ----------------
func UpdateMembership(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "membership")
		if !ok {
			return
		}

		var input struct {
			Plan      string `json:"plan"`
			Amount    string `json:"amount"`
			StartDate string `json:"start_date"`
			EndDate   string `json:"end_date"`
			Status    string `json:"status" binding:"omitempty,oneof=active expired inactive"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		update := bson.M{"updated_at": time.Now()}
		setIfNotEmpty(update, "plan", input.Plan)
		setIfNotEmpty(update, "status", input.Status)
		if input.Amount != "" {
			amount, err := utils.ParseAmount(input.Amount)
			if err != nil {
				badRequest(c, "amount "+err.Error())
				return
			}
			update["amount"] = amount
		}
		for _, err := range []error{
			setDate(update, "start_date", input.StartDate),
			setDate(update, "end_date", input.EndDate),
		} {
			if err != nil {
				badRequest(c, err.Error())
				return
			}
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		_, hasStart := update["start_date"]
		_, hasEnd := update["end_date"]
		if hasStart || hasEnd {
			existing, err := store.For[models.Membership](cfg.DB()).FindByID(ctx, id)
			if err != nil {
				storeError(c, cfg, "membership", "fetch", err)
				return
			}
			start, end := existing.StartDate, existing.EndDate
			if hasStart {
				start = update["start_date"].(time.Time)
			}
			if hasEnd {
				end = update["end_date"].(time.Time)
			}
			if !end.After(start) {
				badRequest(c, "end_date must be after start_date")
				return
			}
		}

		applyUpdate[models.Membership](ctx, c, cfg, "membership", id, update)
	}
}

// ---------------- DELETE ----------------
func DeleteMembership(cfg *config.Config) gin.HandlerFunc {
	return deleteHandler[models.Membership](cfg, "membership", nil)
}
