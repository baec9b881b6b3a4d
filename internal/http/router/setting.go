package router

import (
	"github.com/gin-gonic/gin"

	"factlog.app/api/internal/http/handler"
)

func SettingRouter(rg *gin.RouterGroup, h *handler.SettingHandler) {
	rg.POST("", h.Upsert)
	rg.GET("", h.List)
	rg.GET("/:provider/:settingType", h.Get)
	rg.DELETE("/:provider/:settingType", h.Delete)
}
