// internal/handlers/contacts/contacts.go
package contacts

import (
	"net/http"
	"strconv"

	"beatreach-service/internal/domain/contact"
	xerrors "beatreach-service/internal/pkg/errors"
	"beatreach-service/internal/pkg/response"
	service "beatreach-service/internal/service/contacts"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactService *service.Service
}

func NewContactHandler(contactService *service.Service) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

// List returns a filtered, paginated contact listing for a store
func (h *ContactHandler) List(c *gin.Context) {
	storeID := c.Param("storeId")
	if storeID == "" {
		response.Error(c, http.StatusBadRequest, "store ID is required", nil)
		return
	}

	var filters contact.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	result, err := h.contactService.List(c.Request.Context(), storeID, &filters)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list contacts", err)
		return
	}

	response.Success(c, http.StatusOK, "contacts retrieved", result)
}

// Get retrieves a single contact by ID
func (h *ContactHandler) Get(c *gin.Context) {
	id := c.Param("id")

	result, err := h.contactService.Get(c.Request.Context(), id)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "contact not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load contact", err)
		return
	}

	response.Success(c, http.StatusOK, "contact retrieved", result)
}

// GetByEmail retrieves a single contact by store and email (?email=x)
func (h *ContactHandler) GetByEmail(c *gin.Context) {
	storeID := c.Param("storeId")
	email := c.Query("email")
	if email == "" {
		response.Error(c, http.StatusBadRequest, "email is required", nil)
		return
	}

	result, err := h.contactService.GetByEmail(c.Request.Context(), storeID, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "contact not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load contact", err)
		return
	}

	response.Success(c, http.StatusOK, "contact retrieved", result)
}

// Activity returns the most recent audit-log entries for a contact
func (h *ContactHandler) Activity(c *gin.Context) {
	id := c.Param("id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.contactService.Activity(c.Request.Context(), id, limit)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "contact not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load activity", err)
		return
	}

	response.Success(c, http.StatusOK, "activity retrieved", entries)
}

// RecordSent bumps a contact's send counter after a campaign delivery
func (h *ContactHandler) RecordSent(c *gin.Context) {
	id := c.Param("id")

	if err := h.contactService.RecordEmailSent(c.Request.Context(), id); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "contact not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to record send", err)
		return
	}

	response.Success(c, http.StatusOK, "send recorded", nil)
}

// Stats summarizes a store's contact list
func (h *ContactHandler) Stats(c *gin.Context) {
	storeID := c.Param("storeId")
	if storeID == "" {
		response.Error(c, http.StatusBadRequest, "store ID is required", nil)
		return
	}

	stats, err := h.contactService.Stats(c.Request.Context(), storeID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load stats", err)
		return
	}

	response.Success(c, http.StatusOK, "stats retrieved", stats)
}
