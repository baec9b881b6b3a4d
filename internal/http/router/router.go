package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"factlog.app/api/internal/http/handler"
	"factlog.app/api/internal/http/handler/webhook"
	"factlog.app/api/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	githubHandler := webhook.NewGitHubHandler(services.Ingest(), services.Settings(), nil)
	WebhookRouter(router.Group("/webhooks"), githubHandler)

	factHandler := handler.NewFactHandler(services.Facts())
	FactRouter(router.Group("/api/facts"), factHandler)

	settingHandler := handler.NewSettingHandler(services.Settings())
	SettingRouter(router.Group("/settings"), settingHandler)

	integrationHandler := handler.NewIntegrationHandler(services.Integrations(), services.SlackOAuth())
	IntegrationRouter(router.Group("/integrations"), integrationHandler)
}
