package handler

import (
	"github.com/gin-gonic/gin"

	syncapp "github.com/chonibe/coa-service/internal/application/sync"
)

// SyncHandler exposes the sync and number-assignment triggers
type SyncHandler struct {
	BaseHandler
	syncService *syncapp.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *syncapp.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// SyncResultResponse is the API shape of a sync run summary
type SyncResultResponse struct {
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Errored   int    `json:"errored"`
	Error     string `json:"error,omitempty"`
}

func syncResultResponse(result *syncapp.SyncResult) SyncResultResponse {
	resp := SyncResultResponse{
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Errored:   result.Errored,
	}
	if result.FirstError != nil {
		resp.Error = result.FirstError.Error()
	}
	return resp
}

// TriggerSync handles POST /sync
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	result, err := h.syncService.TriggerManualSync(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, syncResultResponse(result))
}

// SyncOrder handles POST /sync/orders/:orderID
func (h *SyncHandler) SyncOrder(c *gin.Context) {
	result, err := h.syncService.SyncSingleOrder(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, syncResultResponse(result))
}

// AssignEditions handles POST /products/:productID/editions/assign. With
// ?force=true the product's orders are refreshed from the upstreams before
// numbers are assigned.
func (h *SyncHandler) AssignEditions(c *gin.Context) {
	force := c.Query("force") == "true"

	result, err := h.syncService.AssignEditionNumbers(c.Request.Context(), c.Param("productID"), force)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterRoutes registers all sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("", h.TriggerSync)
		sync.POST("/orders/:orderID", h.SyncOrder)
	}

	rg.POST("/products/:productID/editions/assign", h.AssignEditions)
}
