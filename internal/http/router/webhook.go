package router

import (
	"github.com/gin-gonic/gin"

	"factlog.app/api/internal/http/handler/webhook"
)

func WebhookRouter(rg *gin.RouterGroup, h *webhook.GitHubHandler) {
	rg.POST("/github", h.Handle)
}
