package controllers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	config "github.com/phillip/chapter-directory-go/config"
	models "github.com/phillip/chapter-directory-go/models"
	store "github.com/phillip/chapter-directory-go/store"
	utils "github.com/phillip/chapter-directory-go/utils"
)

const (
	crudTimeout   = 5 * time.Second
	reportTimeout = 15 * time.Second
	uploadTimeout = 90 * time.Second
)

type versioned interface {
	models.Document
	Version() (primitive.ObjectID, time.Time)
}

// filterBuilder turns query parameters into a store filter. A returned error
// is a validation message and becomes a 400; a nil filter with a nil error
// means the builder already wrote the response.
type filterBuilder func(c *gin.Context) (bson.M, error)

func requestContext(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}

func paramID(c *gin.Context, resource string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + resource + " id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// requester returns the authenticated member set by AuthMiddleware.
func requester(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func isAdmin(c *gin.Context) bool {
	return c.GetString("role") == models.RoleAdmin
}

// canModify allows admins and the record's owner.
func canModify(c *gin.Context, owner primitive.ObjectID) bool {
	return isAdmin(c) || owner.Hex() == c.GetString("user_id")
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
}

// storeError maps ErrNotFound to 404 and anything else to a logged 500.
func storeError(c *gin.Context, cfg *config.Config, resource, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
		return
	}
	if mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusConflict, gin.H{"error": resource + " already exists"})
		return
	}
	cfg.Logger.Error("store operation failed",
		zap.String("resource", resource),
		zap.String("op", op),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("could not %s %s", op, resource)})
}

// ensureExists answers 400 naming field when ref is not an active T.
func ensureExists[T models.Document](ctx context.Context, c *gin.Context, cfg *config.Config, field string, ref primitive.ObjectID) bool {
	ok, err := store.For[T](cfg.DB()).Exists(ctx, ref)
	if err != nil {
		storeError(c, cfg, field, "check", err)
		return false
	}
	if !ok {
		badRequest(c, field+" does not exist")
		return false
	}
	return true
}

func notModified(c *gin.Context, etag string) bool {
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	c.Header("ETag", etag)
	return false
}

func writeOne[T versioned](c *gin.Context, status int, doc T) {
	id, updatedAt := doc.Version()
	if status == http.StatusOK && notModified(c, utils.GenerateETag(id, updatedAt)) {
		return
	}
	c.JSON(status, doc)
}

// writeList tags the list with the most recently updated document.
func writeList[T versioned](c *gin.Context, docs []T) {
	if len(docs) == 0 {
		c.JSON(http.StatusOK, docs)
		return
	}

	latestID, latest := docs[0].Version()
	for _, d := range docs[1:] {
		if id, at := d.Version(); at.After(latest) {
			latestID, latest = id, at
		}
	}

	if notModified(c, utils.GenerateETag(latestID, latest)) {
		return
	}
	c.Header("Last-Modified", latest.UTC().Format(http.TimeFormat))
	c.JSON(http.StatusOK, docs)
}

// queryFilter applies ?q= to the search fields and each ref parameter as an
// ObjectID equality on the field of the same name.
func queryFilter(c *gin.Context, search []string, refs ...string) (bson.M, error) {
	filter := bson.M{}

	if q := c.Query("q"); q != "" && len(search) > 0 {
		or := bson.A{}
		for _, field := range search {
			or = append(or, bson.M{field: store.Contains(q)})
		}
		filter["$or"] = or
	}

	for _, ref := range refs {
		raw := c.Query(ref)
		if raw == "" {
			continue
		}
		id, err := utils.ParseObjectID(ref, raw)
		if err != nil {
			return nil, err
		}
		filter[ref] = id
	}
	return filter, nil
}

func searchable(search []string, refs ...string) filterBuilder {
	return func(c *gin.Context) (bson.M, error) {
		return queryFilter(c, search, refs...)
	}
}

// uploadedFiles returns the files under key, or nil when the request is not
// multipart.
func uploadedFiles(c *gin.Context, key string) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return form.File[key], nil
}

// ---------------- GENERIC HANDLERS ----------------

func listHandler[T versioned](cfg *config.Config, resource string, build filterBuilder) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := build(c)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		if filter == nil {
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
		docs, err := store.For[T](cfg.DB()).Find(ctx, filter, opts)
		if err != nil {
			storeError(c, cfg, resource, "fetch", err)
			return
		}
		writeList(c, docs)
	}
}

func getHandler[T versioned](cfg *config.Config, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, resource)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		doc, err := store.For[T](cfg.DB()).FindByID(ctx, id)
		if err != nil {
			storeError(c, cfg, resource, "fetch", err)
			return
		}
		writeOne(c, http.StatusOK, doc)
	}
}

// deleteHandler removes the record. When owner is non-nil only admins and
// the owner may delete; otherwise the route is expected to be admin-only.
func deleteHandler[T versioned](cfg *config.Config, resource string, owner func(T) primitive.ObjectID) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, resource)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, crudTimeout)
		defer cancel()

		acc := store.For[T](cfg.DB())
		if owner != nil {
			existing, err := acc.FindByID(ctx, id)
			if err != nil {
				storeError(c, cfg, resource, "fetch", err)
				return
			}
			if !canModify(c, owner(existing)) {
				forbidden(c)
				return
			}
		}

		if err := acc.Delete(ctx, id); err != nil {
			storeError(c, cfg, resource, "delete", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": resource + " deleted successfully",
			"id":      id.Hex(),
		})
	}
}

// applyUpdate runs a partial $set. update always carries updated_at, so a
// single entry means the caller sent nothing to change.
func applyUpdate[T versioned](ctx context.Context, c *gin.Context, cfg *config.Config, resource string, id primitive.ObjectID, update bson.M) {
	if len(update) == 1 {
		badRequest(c, "no fields to update")
		return
	}

	updated, err := store.For[T](cfg.DB()).Update(ctx, id, update)
	if err != nil {
		storeError(c, cfg, resource, "update", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": resource + " updated successfully",
		"data":    updated,
	})
}

func setIfNotEmpty(update bson.M, field, value string) {
	if value != "" {
		update[field] = value
	}
}

// setRef parses an optional ObjectID input into update.
func setRef(update bson.M, field, value string) error {
	if value == "" {
		return nil
	}
	id, err := utils.ParseObjectID(field, value)
	if err != nil {
		return err
	}
	update[field] = id
	return nil
}

func setDate(update bson.M, field, value string) error {
	if value == "" {
		return nil
	}
	t, err := utils.ParseDate(value)
	if err != nil {
		return fmt.Errorf("invalid %s format, %v", field, err)
	}
	update[field] = t
	return nil
}
