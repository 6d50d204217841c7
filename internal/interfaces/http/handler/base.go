package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/domain/shared"
	"github.com/chonibe/coa-service/internal/domain/upstream"
	"github.com/chonibe/coa-service/internal/interfaces/http/dto"
	"github.com/chonibe/coa-service/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response carrying a total count
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode sends an error response, deriving the status from the code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError maps domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	code := codeForError(err)
	if code == dto.ErrCodeInternal {
		h.InternalError(c, "An unexpected error occurred")
		return
	}
	h.ErrorWithCode(c, code, err.Error())
}

// codeForError maps the known error sentinels to API error codes
func codeForError(err error) string {
	switch {
	case errors.Is(err, edition.ErrOrderNotFound),
		errors.Is(err, edition.ErrLineItemNotFound):
		return dto.ErrCodeNotFound
	case errors.Is(err, edition.ErrResequenceInProgress),
		errors.Is(err, shared.ErrLockHeld):
		return dto.ErrCodeResequenceInProgress
	case errors.Is(err, edition.ErrRevokeUnassigned):
		return dto.ErrCodeRevokeUnassigned
	case errors.Is(err, edition.ErrNoEditionNumber):
		return dto.ErrCodeNoEditionNumber
	case errors.Is(err, edition.ErrReconciliationAmbiguity):
		return dto.ErrCodeAmbiguousMatch
	case errors.Is(err, upstream.ErrUpstreamAuth):
		return dto.ErrCodeUpstreamAuth
	case errors.Is(err, upstream.ErrUpstreamUnavailable):
		return dto.ErrCodeUpstreamUnavailable
	case errors.Is(err, upstream.ErrInvalidResponse):
		return dto.ErrCodeUpstreamUnavailable
	default:
		return dto.ErrCodeInternal
	}
}
