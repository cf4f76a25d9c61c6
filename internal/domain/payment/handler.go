package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"xbooking/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type holdRequest struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
}

// Hold records captured funds for a booking. Exposed on the admin
// surface; in production the payment provider callback calls this.
func (h *Handler) Hold(c *gin.Context) {
	var req holdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	bookingID, _ := uuid.Parse(req.BookingID)
	p, err := h.service.Hold(c.Request.Context(), bookingID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateHolding):
			response.Error(c, http.StatusConflict, "DUPLICATE_HOLDING", "A holding already exists for this booking")
		case errors.Is(err, ErrInvalidAmount):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to hold payment")
		}
		return
	}

	response.Success(c, http.StatusCreated, p)
}

// GetByBooking returns the holding for a booking.
func (h *Handler) GetByBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	p, err := h.service.Get(c.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, ErrNoHolding) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "No holding for this booking")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to get holding")
		return
	}

	response.Success(c, http.StatusOK, p)
}
