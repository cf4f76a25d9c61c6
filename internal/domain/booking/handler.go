package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"xbooking/internal/database"
	"xbooking/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	workspaceID, _ := uuid.Parse(req.WorkspaceID)
	spaceID, _ := uuid.Parse(req.SpaceID)

	b, err := h.service.Create(c.Request.Context(), &Booking{
		UserID:      userID,
		WorkspaceID: workspaceID,
		SpaceID:     spaceID,
		CheckIn:     req.CheckIn,
		CheckOut:    req.CheckOut,
		TotalPrice:  req.TotalPrice,
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to create booking")
		return
	}

	response.Success(c, http.StatusCreated, b)
}

func (h *Handler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to get booking")
		return
	}
	if b.UserID != userID && c.GetString("role") != "admin" {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not your booking")
		return
	}

	response.Success(c, http.StatusOK, b)
}

func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	list, err := h.service.ListByUser(c.Request.Context(), userID, 20, 0)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to list bookings")
		return
	}

	response.Success(c, http.StatusOK, list)
}

func (h *Handler) Confirm(c *gin.Context) {
	h.transition(c, func(id uuid.UUID) (any, error) {
		return h.service.Confirm(c.Request.Context(), id)
	})
}

func (h *Handler) CheckIn(c *gin.Context) {
	h.transition(c, func(id uuid.UUID) (any, error) {
		return h.service.CheckIn(c.Request.Context(), id)
	})
}

func (h *Handler) CheckOut(c *gin.Context) {
	h.transition(c, func(id uuid.UUID) (any, error) {
		return h.service.CheckOut(c.Request.Context(), id)
	})
}

func (h *Handler) transition(c *gin.Context, op func(id uuid.UUID) (any, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	result, err := op(id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		case errors.Is(err, ErrInvalidState), errors.Is(err, ErrAlreadyCheckedIn), errors.Is(err, ErrAlreadyCheckedOut):
			response.Error(c, http.StatusConflict, "INVALID_STATE", err.Error())
		case errors.Is(err, database.ErrConflict):
			response.Error(c, http.StatusConflict, "CONFLICT", "Concurrent update, please retry")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "Operation failed")
		}
		return
	}

	response.Success(c, http.StatusOK, result)
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
