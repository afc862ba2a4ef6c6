// internal/handlers/sync/sync.go
package sync

import (
	"net/http"

	"beatreach-service/internal/domain/contact"
	xerrors "beatreach-service/internal/pkg/errors"
	"beatreach-service/internal/pkg/response"
	service "beatreach-service/internal/service/contactsync"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncService *service.Service
}

func NewSyncHandler(syncService *service.Service) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

// FollowGate ingests a follow-gate email capture
func (h *SyncHandler) FollowGate(c *gin.Context) {
	var ev contact.FollowGateEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.syncService.SyncFromFollowGate(c.Request.Context(), ev)
	if err != nil {
		respondSyncError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "contact synced", result)
}

// Purchase ingests a completed-checkout event
func (h *SyncHandler) Purchase(c *gin.Context) {
	var ev contact.PurchaseEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.syncService.SyncFromPurchase(c.Request.Context(), ev)
	if err != nil {
		respondSyncError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "contact synced", result)
}

// Enrollment ingests a course-enrollment event
func (h *SyncHandler) Enrollment(c *gin.Context) {
	var ev contact.EnrollmentEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.syncService.SyncFromEnrollment(c.Request.Context(), ev)
	if err != nil {
		respondSyncError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "contact synced", result)
}

// Engagement ingests an email-provider webhook event. Events for unknown
// contacts are acknowledged with a null result so providers do not retry.
func (h *SyncHandler) Engagement(c *gin.Context) {
	var ev contact.EngagementEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.syncService.SyncEngagement(c.Request.Context(), ev)
	if err != nil {
		respondSyncError(c, err)
		return
	}
	if result == nil {
		response.Success(c, http.StatusOK, "no matching contact", nil)
		return
	}

	response.Success(c, http.StatusOK, "engagement recorded", result)
}

// ManualTag applies an explicit tag list to an existing contact
func (h *SyncHandler) ManualTag(c *gin.Context) {
	var req contact.ManualTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.syncService.ManualTag(c.Request.Context(), req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "contact not found")
			return
		}
		respondSyncError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "tags applied", result)
}

func respondSyncError(c *gin.Context, err error) {
	switch {
	case xerrors.Is(err, xerrors.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, "invalid event", err)
	case xerrors.Is(err, xerrors.ErrNotFound):
		response.NotFound(c, "not found")
	default:
		response.Error(c, http.StatusInternalServerError, "sync failed", err)
	}
}
