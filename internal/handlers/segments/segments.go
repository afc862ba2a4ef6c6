// internal/handlers/segments/segments.go
package segments

import (
	"net/http"

	"beatreach-service/internal/domain/tag"
	xerrors "beatreach-service/internal/pkg/errors"
	"beatreach-service/internal/pkg/response"
	service "beatreach-service/internal/service/segment"

	"github.com/gin-gonic/gin"
)

type SegmentHandler struct {
	segmentService *service.Service
}

func NewSegmentHandler(segmentService *service.Service) *SegmentHandler {
	return &SegmentHandler{
		segmentService: segmentService,
	}
}

// List returns every tag of the store as a segment summary
func (h *SegmentHandler) List(c *gin.Context) {
	storeID := c.Param("storeId")
	if storeID == "" {
		response.Error(c, http.StatusBadRequest, "store ID is required", nil)
		return
	}

	segments, err := h.segmentService.GetSegmentsByTag(c.Request.Context(), storeID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list segments", err)
		return
	}

	response.Success(c, http.StatusOK, "segments retrieved", segments)
}

// Query selects contacts by tag membership
func (h *SegmentHandler) Query(c *gin.Context) {
	var q tag.SegmentQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	members, err := h.segmentService.GetContactsByTags(c.Request.Context(), q)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, "invalid query", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to query segment", err)
		return
	}

	response.Success(c, http.StatusOK, "segment contacts retrieved", gin.H{
		"contacts": members,
		"count":    len(members),
	})
}

// CreatePrebuilt seeds the store with the standard segment tags
func (h *SegmentHandler) CreatePrebuilt(c *gin.Context) {
	storeID := c.Param("storeId")
	if storeID == "" {
		response.Error(c, http.StatusBadRequest, "store ID is required", nil)
		return
	}

	result, err := h.segmentService.CreatePrebuiltSegments(c.Request.Context(), storeID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to create prebuilt segments", err)
		return
	}

	response.Success(c, http.StatusCreated, "prebuilt segments created", result)
}
