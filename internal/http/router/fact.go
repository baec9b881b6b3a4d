package router

import (
	"github.com/gin-gonic/gin"

	"factlog.app/api/internal/http/handler"
)

func FactRouter(rg *gin.RouterGroup, h *handler.FactHandler) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", h.Create)
}
