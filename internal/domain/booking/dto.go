package booking

import "time"

type CreateBookingRequest struct {
	WorkspaceID string    `json:"workspace_id" binding:"required,uuid"`
	SpaceID     string    `json:"space_id" binding:"required,uuid"`
	CheckIn     time.Time `json:"check_in" binding:"required"`
	CheckOut    time.Time `json:"check_out" binding:"required"`
	TotalPrice  int64     `json:"total_price" binding:"required,gte=0"`
}
