package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"findsync/internal/models"
	"findsync/internal/services"
)

// ContactHandler serves conversations between item owners and finders.
type ContactHandler struct {
	contacts *services.ContactService
	logger   *zap.Logger
}

// NewContactHandler builds a ContactHandler.
func NewContactHandler(contacts *services.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, logger: logger}
}

// ListContacts returns the caller's conversations, newest first.
func (h *ContactHandler) ListContacts(c *gin.Context) {
	contacts, err := h.contacts.List(c.Request.Context(), identityFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if contacts == nil {
		contacts = []models.ContactSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

// GetMessages returns a conversation and marks it read for the caller.
func (h *ContactHandler) GetMessages(c *gin.Context) {
	contactID, ok := pathID(c, "contact_id")
	if !ok {
		return
	}

	msgs, err := h.contacts.Messages(c.Request.Context(), identityFromContext(c), contactID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage replies within a conversation.
func (h *ContactHandler) PostMessage(c *gin.Context) {
	contactID, ok := pathID(c, "contact_id")
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	msg, err := h.contacts.Reply(c.Request.Context(), identityFromContext(c), contactID, req.Body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *ContactHandler) UnreadCount(c *gin.Context) {
	count, err := h.contacts.UnreadCount(c.Request.Context(), identityFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}
