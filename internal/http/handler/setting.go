package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"factlog.app/api/internal/apperr"
	"factlog.app/api/internal/http/dto"
	"factlog.app/api/internal/service"
)

type SettingHandler struct {
	settings service.SettingService
}

func NewSettingHandler(settings service.SettingService) *SettingHandler {
	return &SettingHandler{settings: settings}
}

func (h *SettingHandler) Upsert(c *gin.Context) {
	var req dto.UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Render(c, apperr.Validation(err.Error()))
		return
	}

	setting, err := h.settings.Upsert(c.Request.Context(), req.Provider, req.SettingType, req.Value)
	if err != nil {
		apperr.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": setting})
}

func (h *SettingHandler) List(c *gin.Context) {
	var provider *string
	if p := c.Query("provider"); p != "" {
		provider = &p
	}

	settings, err := h.settings.List(c.Request.Context(), provider)
	if err != nil {
		apperr.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

func (h *SettingHandler) Get(c *gin.Context) {
	setting, err := h.settings.Get(c.Request.Context(), c.Param("provider"), c.Param("settingType"))
	if err != nil {
		apperr.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": setting})
}

func (h *SettingHandler) Delete(c *gin.Context) {
	if err := h.settings.Delete(c.Request.Context(), c.Param("provider"), c.Param("settingType")); err != nil {
		apperr.Render(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
