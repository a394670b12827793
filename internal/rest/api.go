package rest

import "github.com/gin-gonic/gin"

func NewApi(router *gin.Engine, handler *VaultHandler) {
	vaultV1 := router.Group("vault/v1")
	{
		vaultV1.POST("/previews", handler.PostPreview)
		vaultV1.POST("/images", handler.PostImage)
		vaultV1.GET("/images/:token", handler.GetImage)
		vaultV1.GET("/images/:token/original", handler.GetOriginal)
		vaultV1.GET("/images/:token/compressed", handler.GetCompressed)
	}

	router.GET("/healthz", handler.GetHealth)
}
