package cancellation

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:id/cancel", h.RequestCancellation)
	rg.GET("/cancellations/me", h.ListMine)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	cancellations := rg.Group("/cancellations")
	{
		cancellations.GET("/pending", h.ListPending)
		cancellations.POST("/:id/approve", h.Approve)
		cancellations.POST("/:id/reject", h.Reject)
	}
}
