package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"findsync/internal/models"
	"findsync/internal/services"
	"findsync/internal/telemetry"
	"findsync/internal/uploads"
)

// ItemHandler serves item reporting and browsing endpoints.
type ItemHandler struct {
	items    *services.ItemService
	contacts *services.ContactService
	uploads  *uploads.Handler
	audit    *telemetry.AuditEmitter
	logger   *zap.Logger
}

// NewItemHandler builds an ItemHandler. uploads and audit may be nil.
func NewItemHandler(items *services.ItemService, contacts *services.ContactService, uploadHandler *uploads.Handler, audit *telemetry.AuditEmitter, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{
		items:    items,
		contacts: contacts,
		uploads:  uploadHandler,
		audit:    audit,
		logger:   logger,
	}
}

type createItemRequest struct {
	ItemName    string `json:"item_name" form:"item_name"`
	Description string `json:"description" form:"description"`
	Location    string `json:"location" form:"location"`
	Category    string `json:"category" form:"category"`
	Phone       string `json:"phone" form:"phone"`
	PostType    string `json:"post_type" form:"post_type"`
	ImageURL    string `json:"image_url" form:"image_url"`
}

// CreateItem accepts a JSON body or a multipart form with an optional
// "image" file part.
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	input := services.CreateItemInput{
		Identity:    identityFromContext(c),
		ItemName:    req.ItemName,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		Phone:       req.Phone,
		PostType:    req.PostType,
		ImageURL:    req.ImageURL,
	}

	if err := services.CheckCreateInput(input); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		ref, err := h.saveImage(c)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		input.UploadedImageURL = ref
	}

	item, err := h.items.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "item created id="+strconv.Itoa(item.ID), requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) saveImage(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", services.ValidationError("invalid image upload")
	}
	if h.uploads == nil {
		return "", services.ValidationError("image uploads are disabled")
	}

	ref, err := h.uploads.Save(c.Request.Context(), file)
	var uploadErr *uploads.UploadError
	if errors.As(err, &uploadErr) {
		return "", services.UpstreamError("image upload rejected", uploadErr.Reason, err)
	}
	if err != nil {
		return "", services.StorageError("failed to store image", err)
	}
	return ref, nil
}

// ListItems returns public listings, newest first.
func (h *ItemHandler) ListItems(c *gin.Context) {
	filter := models.ItemFilter{
		PostType: c.Query("post_type"),
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}

	var err error
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		badRequest(c, "invalid limit")
		return
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		badRequest(c, "invalid offset")
		return
	}

	items, err := h.items.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []models.ItemListing{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetItem returns one item with its images.
func (h *ItemHandler) GetItem(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	item, err := h.items.Get(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListMyItems returns every item the caller reported.
func (h *ItemHandler) ListMyItems(c *gin.Context) {
	items, err := h.items.ListMine(c.Request.Context(), identityFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UpdateItemStatus lets the owner move an item between open, matched and closed.
func (h *ItemHandler) UpdateItemStatus(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	item, err := h.items.UpdateStatus(c.Request.Context(), identityFromContext(c), itemID, strings.TrimSpace(req.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item owned by the caller.
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	if err := h.items.Delete(c.Request.Context(), identityFromContext(c), itemID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "item deleted id="+strconv.Itoa(itemID), requestIDFromContext(c), userIDFromContext(c))
	c.Status(http.StatusNoContent)
}

// ContactOwner opens a conversation with the owner of an item.
func (h *ItemHandler) ContactOwner(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	contact, err := h.contacts.Create(c.Request.Context(), identityFromContext(c), itemID, req.Message)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errors.New("invalid " + name)
	}
	return value, nil
}
