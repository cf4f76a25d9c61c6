package payment

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("/hold", h.Hold)
		payments.GET("/bookings/:id", h.GetByBooking)
	}
}
