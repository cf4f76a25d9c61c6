package wallet

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	wallets := rg.Group("/wallets")
	{
		wallets.GET("/me", h.GetMyWallet)
		wallets.POST("/me/withdraw", h.WithdrawFromMyWallet)
		wallets.GET("/me/transactions", h.ListMyTransactions)
	}
}
