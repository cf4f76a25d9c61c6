package cancellation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"xbooking/internal/database"
	"xbooking/internal/domain/booking"
	"xbooking/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RequestCancellation handles POST /bookings/:id/cancel.
func (h *Handler) RequestCancellation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	// The body is optional; the reason defaults to user_request.
	var req RequestCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = RequestCancellationRequest{}
	}

	result, err := h.service.RequestCancellation(c.Request.Context(), bookingID, userID, Reason(req.Reason), req.ReasonDescription)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Approve handles POST /admin/cancellations/:id/approve.
func (h *Handler) Approve(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid cancellation ID")
		return
	}

	var req ApproveCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = ApproveCancellationRequest{}
	}

	result, err := h.service.ApproveCancellation(c.Request.Context(), id, adminID, req.RefundAmount, req.AdminNotes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Reject handles POST /admin/cancellations/:id/reject.
func (h *Handler) Reject(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid cancellation ID")
		return
	}

	var req RejectCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "admin_notes is required")
		return
	}

	result, err := h.service.RejectCancellation(c.Request.Context(), id, adminID, req.AdminNotes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ListMine handles GET /cancellations/me.
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	list, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to list cancellations")
		return
	}

	response.Success(c, http.StatusOK, list)
}

// ListPending handles GET /admin/cancellations/pending.
func (h *Handler) ListPending(c *gin.Context) {
	list, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to list pending cancellations")
		return
	}

	response.Success(c, http.StatusOK, list)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, booking.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not your booking")
	case errors.Is(err, ErrAlreadyCancelled):
		response.Error(c, http.StatusConflict, "ALREADY_CANCELLED", "A cancellation already exists for this booking")
	case errors.Is(err, ErrInvalidState):
		response.Error(c, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, database.ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "Concurrent update, please retry")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Operation failed")
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString("user_id")
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
