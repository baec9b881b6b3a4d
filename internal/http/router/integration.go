package router

import (
	"github.com/gin-gonic/gin"

	"factlog.app/api/internal/http/handler"
)

func IntegrationRouter(rg *gin.RouterGroup, h *handler.IntegrationHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/deactivate", h.Deactivate)
	rg.POST("/slack/oauth/callback", h.SlackOAuthCallback)
}
