// internal/handlers/admin/admin.go
package admin

import (
	"net/http"

	"beatreach-service/internal/pkg/response"
	service "beatreach-service/internal/service/contactsync"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	syncService *service.Service
}

func NewAdminHandler(syncService *service.Service) *AdminHandler {
	return &AdminHandler{
		syncService: syncService,
	}
}

// batchRequest drives one page of a resumable batch job. Cursor is the
// NextCursor from the previous page, empty for the first call.
type batchRequest struct {
	StoreID   string `json:"store_id" binding:"required"`
	Cursor    string `json:"cursor"`
	BatchSize int    `json:"batch_size"`
}

// RetagContacts runs one page of the full-list retag job
func (h *AdminHandler) RetagContacts(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.syncService.RetagAllContacts(c.Request.Context(), req.StoreID, req.Cursor, req.BatchSize)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "retag page failed", err)
		return
	}

	response.Success(c, http.StatusOK, "retag page processed", result)
}

// TagEnrolledUsers runs one page of the enrollment tagging job
func (h *AdminHandler) TagEnrolledUsers(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.syncService.TagEnrolledUsersWithCourseTags(c.Request.Context(), req.StoreID, req.Cursor, req.BatchSize)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "enrollment tagging page failed", err)
		return
	}

	response.Success(c, http.StatusOK, "enrollment tagging page processed", result)
}
