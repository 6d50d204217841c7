package handler

import (
	"github.com/gin-gonic/gin"

	editionapp "github.com/chonibe/coa-service/internal/application/edition"
)

// EditionHandler serves the certificate and audit surface: verification,
// histories, duplicate reports, revocation and ownership operations.
type EditionHandler struct {
	BaseHandler
	verification *editionapp.VerificationService
	revocation   *editionapp.RevocationService
}

// NewEditionHandler creates a new EditionHandler
func NewEditionHandler(
	verification *editionapp.VerificationService,
	revocation *editionapp.RevocationService,
) *EditionHandler {
	return &EditionHandler{
		verification: verification,
		revocation:   revocation,
	}
}

// AuthenticateRequest is the body of POST /editions/:lineItemID/authenticate
type AuthenticateRequest struct {
	OwnerName  string `json:"owner_name" binding:"max=200"`
	OwnerEmail string `json:"owner_email" binding:"omitempty,email"`
}

// TransferRequest is the body of POST /editions/:lineItemID/transfer
type TransferRequest struct {
	FromEmail string `json:"from_email" binding:"omitempty,email"`
	ToEmail   string `json:"to_email" binding:"required,email"`
}

// ProductEditionsEntry is one roster row, optionally with its history
type ProductEditionsEntry struct {
	editionapp.EditionListEntry
	History []editionapp.HistoryEntry `json:"history,omitempty"`
}

// VerifyEdition handles GET /editions/:lineItemID
func (h *EditionHandler) VerifyEdition(c *gin.Context) {
	view, err := h.verification.VerifyEdition(c.Request.Context(), c.Param("lineItemID"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// GetHistory handles GET /editions/:lineItemID/history. With ?ownership=true
// it returns the ownership trail instead of the numbering trail.
func (h *EditionHandler) GetHistory(c *gin.Context) {
	lineItemID := c.Param("lineItemID")

	var entries []editionapp.HistoryEntry
	var err error
	if c.Query("ownership") == "true" {
		entries, err = h.verification.GetOwnershipHistory(c.Request.Context(), lineItemID)
	} else {
		entries, err = h.verification.GetEditionHistory(c.Request.Context(), lineItemID)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, len(entries))
}

// Revoke handles POST /editions/:lineItemID/revoke
func (h *EditionHandler) Revoke(c *gin.Context) {
	result, err := h.revocation.Revoke(c.Request.Context(), c.Param("lineItemID"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Authenticate handles POST /editions/:lineItemID/authenticate
func (h *EditionHandler) Authenticate(c *gin.Context) {
	var req AuthenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	err := h.verification.Authenticate(c.Request.Context(), c.Param("lineItemID"), req.OwnerName, req.OwnerEmail)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"authenticated": true})
}

// Transfer handles POST /editions/:lineItemID/transfer
func (h *EditionHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	err := h.verification.TransferOwnership(c.Request.Context(), c.Param("lineItemID"), req.FromEmail, req.ToEmail)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"transferred": true})
}

// ListProductEditions handles GET /products/:productID/editions. With
// ?include_history=true each row carries its numbering history.
func (h *EditionHandler) ListProductEditions(c *gin.Context) {
	ctx := c.Request.Context()
	productID := c.Param("productID")

	entries, err := h.verification.ListProductEditions(ctx, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	rows := make([]ProductEditionsEntry, 0, len(entries))
	includeHistory := c.Query("include_history") == "true"
	for _, entry := range entries {
		row := ProductEditionsEntry{EditionListEntry: entry}
		if includeHistory {
			history, err := h.verification.GetEditionHistory(ctx, entry.LineItemID)
			if err != nil {
				h.HandleError(c, err)
				return
			}
			row.History = history
		}
		rows = append(rows, row)
	}
	h.SuccessWithMeta(c, rows, len(rows))
}

// CheckDuplicates handles GET /products/:productID/editions/duplicates
func (h *EditionHandler) CheckDuplicates(c *gin.Context) {
	report, err := h.verification.CheckDuplicates(c.Request.Context(), c.Param("productID"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// RegisterRoutes registers all edition routes
func (h *EditionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	editions := rg.Group("/editions")
	{
		editions.GET("/:lineItemID", h.VerifyEdition)
		editions.GET("/:lineItemID/history", h.GetHistory)
		editions.POST("/:lineItemID/revoke", h.Revoke)
		editions.POST("/:lineItemID/authenticate", h.Authenticate)
		editions.POST("/:lineItemID/transfer", h.Transfer)
	}

	products := rg.Group("/products")
	{
		products.GET("/:productID/editions", h.ListProductEditions)
		products.GET("/:productID/editions/duplicates", h.CheckDuplicates)
	}
}
