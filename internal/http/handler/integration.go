package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"factlog.app/api/internal/apperr"
	"factlog.app/api/internal/http/dto"
	"factlog.app/api/internal/model"
	"factlog.app/api/internal/service"
)

type IntegrationHandler struct {
	integrations service.IntegrationService
	slackOAuth   service.SlackOAuthService
}

func NewIntegrationHandler(integrations service.IntegrationService, slackOAuth service.SlackOAuthService) *IntegrationHandler {
	return &IntegrationHandler{integrations: integrations, slackOAuth: slackOAuth}
}

func (h *IntegrationHandler) Create(c *gin.Context) {
	var req dto.CreateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Render(c, apperr.Validation(err.Error()))
		return
	}

	integration, err := h.integrations.Upsert(c.Request.Context(), service.UpsertIntegrationParams{
		Provider:     req.Provider,
		AccountID:    req.AccountID,
		AccountName:  req.AccountName,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    req.ExpiresAt,
		Scope:        req.Scope,
	})
	if err != nil {
		apperr.Render(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": dto.ToIntegrationResponse(integration)})
}

func (h *IntegrationHandler) List(c *gin.Context) {
	var provider *string
	if p := c.Query("provider"); p != "" {
		provider = &p
	}

	integrations, err := h.integrations.List(c.Request.Context(), provider)
	if err != nil {
		apperr.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToIntegrationResponses(integrations)})
}

func (h *IntegrationHandler) Get(c *gin.Context) {
	id, ok := integrationID(c)
	if !ok {
		return
	}

	integration, err := h.integrations.Get(c.Request.Context(), id)
	if err != nil {
		apperr.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToIntegrationResponse(integration)})
}

func (h *IntegrationHandler) Update(c *gin.Context) {
	id, ok := integrationID(c)
	if !ok {
		return
	}

	var req dto.UpdateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Render(c, apperr.Validation(err.Error()))
		return
	}

	params := service.UpdateIntegrationParams{
		AccountName:  req.AccountName,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    req.ExpiresAt,
		Scope:        req.Scope,
	}
	if req.Status != nil {
		status := model.IntegrationStatus(*req.Status)
		params.Status = &status
	}

	integration, err := h.integrations.Update(c.Request.Context(), id, params)
	if err != nil {
		apperr.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToIntegrationResponse(integration)})
}

func (h *IntegrationHandler) Deactivate(c *gin.Context) {
	id, ok := integrationID(c)
	if !ok {
		return
	}

	integration, err := h.integrations.Deactivate(c.Request.Context(), id)
	if err != nil {
		apperr.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToIntegrationResponse(integration)})
}

func (h *IntegrationHandler) Delete(c *gin.Context) {
	id, ok := integrationID(c)
	if !ok {
		return
	}

	if err := h.integrations.Delete(c.Request.Context(), id); err != nil {
		apperr.Render(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *IntegrationHandler) SlackOAuthCallback(c *gin.Context) {
	var req dto.SlackOAuthCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Render(c, apperr.Validation(err.Error()))
		return
	}

	integration, err := h.slackOAuth.HandleCallback(c.Request.Context(), req.Code)
	if err != nil {
		apperr.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToIntegrationResponse(integration)})
}

func integrationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apperr.Render(c, apperr.Validation("invalid integration id"))
		return 0, false
	}
	return id, true
}
