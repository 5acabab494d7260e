package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
	"github.com/andresuchdata/fbaplan/backend-go/internal/service"
)

type LookupHandler struct {
	service *service.PlanningService
}

func NewLookupHandler(service *service.PlanningService) *LookupHandler {
	return &LookupHandler{service: service}
}

type importLookupsRequest struct {
	Clusters           map[string]string            `json:"clusters"`
	FulfillmentCenters []planning.FulfillmentCenter `json:"fulfillment_centers"`
}

// ImportLookups replaces the region cluster map and fulfillment center directory.
func (h *LookupHandler) ImportLookups(c *gin.Context) {
	var req importLookupsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lookup payload"})
		return
	}

	if err := h.service.ImportLookups(c.Request.Context(), req.Clusters, req.FulfillmentCenters); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clusters":            len(req.Clusters),
		"fulfillment_centers": len(req.FulfillmentCenters),
	})
}
