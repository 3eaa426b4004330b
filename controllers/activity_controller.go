package controllers

import (
	"context"
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

// memberPair resolves the giving and receiving members of an exchange,
// reference or one-to-one. Only admins may record on behalf of someone
// else; everyone else is always the giving side.
func memberPair(ctx context.Context, c *gin.Context, cfg *config.Config, fromField, toField, fromHex, toHex string) (from, to primitive.ObjectID, ok bool) {
	self, ok := requester(c)
	if !ok {
		return from, to, false
	}

	from = self
	if fromHex != "" && fromHex != self.Hex() {
		if !isAdmin(c) {
			forbidden(c)
			return from, to, false
		}
		id, err := utils.ParseObjectID(fromField, fromHex)
		if err != nil {
			badRequest(c, err.Error())
			return from, to, false
		}
		from = id
	}

	to, err := utils.ParseObjectID(toField, toHex)
	if err != nil {
		badRequest(c, err.Error())
		return from, to, false
	}
	if from == to {
		badRequest(c, toField+" must differ from "+fromField)
		return from, to, false
	}

	if !ensureExists[models.Member](ctx, c, cfg, fromField, from) ||
		!ensureExists[models.Member](ctx, c, cfg, toField, to) {
		return from, to, false
	}
	return from, to, true
}

// involving lists records where member_id is on either side.
func involving(fromField, toField string) filterBuilder {
	return func(c *gin.Context) (bson.M, error) {
		filter, err := queryFilter(c, []string{"remarks"}, fromField, toField)
		if err != nil {
			return nil, err
		}
		if raw := c.Query("member_id"); raw != "" {
			id, err := utils.ParseObjectID("member_id", raw)
			if err != nil {
				return nil, err
			}
			filter["$and"] = bson.A{bson.M{"$or": bson.A{bson.M{fromField: id}, bson.M{toField: id}}}}
		}
		return filter, nil
	}
}

// ownerUpdate loads T, checks the caller owns it and applies update.
func ownerUpdate[T versioned](cfg *config.Config, resource string, owner func(T) primitive.ObjectID, bind func(c *gin.Context, update bson.M) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, resource)
		if !ok {
			return
		}

		update := bson.M{"updated_at": time.Now()}
		if !bind(c, update) {
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		existing, err := store.For[T](cfg.DB()).FindByID(ctx, id)
		if err != nil {
			storeError(c, cfg, resource, "fetch", err)
			return
		}
		if !canModify(c, owner(existing)) {
			forbidden(c)
			return
		}

		applyUpdate[T](ctx, c, cfg, resource, id, update)
	}
}

func bindRemarks(c *gin.Context, update bson.M) bool {
	var input struct {
		Remarks string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return false
	}
	setIfNotEmpty(update, "remarks", input.Remarks)
	return true
}

func exchangeGiver(e models.BusinessExchange) primitive.ObjectID { return e.FromMember }
func referenceGiver(r models.ReferencePass) primitive.ObjectID   { return r.FromMember }
func meetingHost(p models.PersonalMeeting) primitive.ObjectID    { return p.HostMember }

// ---------------- BUSINESS EXCHANGES ----------------

func CreateExchange(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			FromMember string `json:"from_member"`
			ToMember   string `json:"to_member" binding:"required"`
			Amount     string `json:"amount" binding:"required"`
			Remarks    string `json:"remarks"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		amount, err := utils.ParseAmount(input.Amount)
		if err != nil {
			badRequest(c, "amount "+err.Error())
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		from, to, ok := memberPair(ctx, c, cfg, "from_member", "to_member", input.FromMember, input.ToMember)
		if !ok {
			return
		}

		now := time.Now()
		exchange := models.BusinessExchange{
			ID:         primitive.NewObjectID(),
			FromMember: from,
			ToMember:   to,
			Amount:     amount,
			Remarks:    input.Remarks,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := store.For[models.BusinessExchange](cfg.DB()).Insert(ctx, exchange); err != nil {
			storeError(c, cfg, "business exchange", "create", err)
			return
		}
		writeOne(c, http.StatusCreated, exchange)
	}
}

func ListExchanges(cfg *config.Config) gin.HandlerFunc {
	return listHandler[models.BusinessExchange](cfg, "business exchanges", involving("from_member", "to_member"))
}

func GetExchange(cfg *config.Config) gin.HandlerFunc {
	return getHandler[models.BusinessExchange](cfg, "business exchange")
}

func UpdateExchange(cfg *config.Config) gin.HandlerFunc {
	return ownerUpdate(cfg, "business exchange", exchangeGiver, func(c *gin.Context, update bson.M) bool {
		var input struct {
			Amount  string `json:"amount"`
			Remarks string `json:"remarks"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return false
		}
		if input.Amount != "" {
			amount, err := utils.ParseAmount(input.Amount)
			if err != nil {
				badRequest(c, "amount "+err.Error())
				return false
			}
			update["amount"] = amount
		}
		setIfNotEmpty(update, "remarks", input.Remarks)
		return true
	})
}

// DeleteExchange soft-deletes; the record drops out of every report.
func DeleteExchange(cfg *config.Config) gin.HandlerFunc {
	return deleteHandler(cfg, "business exchange", exchangeGiver)
}

// ---------------- REFERENCE PASSES ----------------

func CreateReference(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			FromMember string `json:"from_member"`
			ToMember   string `json:"to_member" binding:"required"`
			Remarks    string `json:"remarks"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		from, to, ok := memberPair(ctx, c, cfg, "from_member", "to_member", input.FromMember, input.ToMember)
		if !ok {
			return
		}

		now := time.Now()
		ref := models.ReferencePass{
			ID:         primitive.NewObjectID(),
			FromMember: from,
			ToMember:   to,
			Remarks:    input.Remarks,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := store.For[models.ReferencePass](cfg.DB()).Insert(ctx, ref); err != nil {
			storeError(c, cfg, "reference", "create", err)
			return
		}
		writeOne(c, http.StatusCreated, ref)
	}
}

func ListReferences(cfg *config.Config) gin.HandlerFunc {
	return listHandler[models.ReferencePass](cfg, "references", involving("from_member", "to_member"))
}

func GetReference(cfg *config.Config) gin.HandlerFunc {
	return getHandler[models.ReferencePass](cfg, "reference")
}

func UpdateReference(cfg *config.Config) gin.HandlerFunc {
	return ownerUpdate(cfg, "reference", referenceGiver, bindRemarks)
}

func DeleteReference(cfg *config.Config) gin.HandlerFunc {
	return deleteHandler(cfg, "reference", referenceGiver)
}

// ---------------- PERSONAL MEETINGS ----------------

func CreatePersonalMeeting(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			HostMember    string `json:"host_member"`
			VisitorMember string `json:"visitor_member" binding:"required"`
			Remarks       string `json:"remarks"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		host, visitor, ok := memberPair(ctx, c, cfg, "host_member", "visitor_member", input.HostMember, input.VisitorMember)
		if !ok {
			return
		}

		now := time.Now()
		pm := models.PersonalMeeting{
			ID:            primitive.NewObjectID(),
			HostMember:    host,
			VisitorMember: visitor,
			Remarks:       input.Remarks,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := store.For[models.PersonalMeeting](cfg.DB()).Insert(ctx, pm); err != nil {
			storeError(c, cfg, "personal meeting", "create", err)
			return
		}
		writeOne(c, http.StatusCreated, pm)
	}
}

func ListPersonalMeetings(cfg *config.Config) gin.HandlerFunc {
	return listHandler[models.PersonalMeeting](cfg, "personal meetings", involving("host_member", "visitor_member"))
}

func GetPersonalMeeting(cfg *config.Config) gin.HandlerFunc {
	return getHandler[models.PersonalMeeting](cfg, "personal meeting")
}

func UpdatePersonalMeeting(cfg *config.Config) gin.HandlerFunc {
	return ownerUpdate(cfg, "personal meeting", meetingHost, bindRemarks)
}

func DeletePersonalMeeting(cfg *config.Config) gin.HandlerFunc {
	return deleteHandler(cfg, "personal meeting", meetingHost)
}
