package response

import "github.com/gin-gonic/gin"

// Success writes the {"success": true, "data": ...} envelope.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// Error writes the {"success": false, "error": {code, message}} envelope.
// code is a stable machine-readable identifier; message is for humans.
func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
