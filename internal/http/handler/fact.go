package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"factlog.app/api/internal/apperr"
	"factlog.app/api/internal/http/dto"
	"factlog.app/api/internal/model"
	"factlog.app/api/internal/service"
)

type FactHandler struct {
	facts service.FactService
}

func NewFactHandler(facts service.FactService) *FactHandler {
	return &FactHandler{facts: facts}
}

func (h *FactHandler) List(c *gin.Context) {
	var query dto.ListFactsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apperr.Render(c, apperr.Validation(err.Error()))
		return
	}

	params := service.ListFactsParams{Limit: query.Limit}
	if query.Source != "" {
		source := model.FactSource(query.Source)
		params.Source = &source
	}
	if query.Type != "" {
		params.Type = &query.Type
	}

	var err error
	if params.From, err = parseTimeParam(query.From, "from"); err != nil {
		apperr.Render(c, err)
		return
	}
	if params.To, err = parseTimeParam(query.To, "to"); err != nil {
		apperr.Render(c, err)
		return
	}
	if query.Cursor != "" {
		cursor, err := strconv.ParseInt(query.Cursor, 10, 64)
		if err != nil {
			apperr.Render(c, apperr.Validation("invalid cursor"))
			return
		}
		params.Cursor = &cursor
	}

	page, err := h.facts.List(c.Request.Context(), params)
	if err != nil {
		apperr.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFactListResponse(page.Data, page.HasMore, page.NextCursor))
}

func (h *FactHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apperr.Render(c, apperr.Validation("invalid fact id"))
		return
	}

	fact, err := h.facts.Get(c.Request.Context(), id)
	if err != nil {
		apperr.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FactResponse{Data: fact})
}

func (h *FactHandler) Create(c *gin.Context) {
	var req dto.CreateFactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Render(c, apperr.Validation(err.Error()))
		return
	}

	fact, err := h.facts.Create(c.Request.Context(), service.CreateFactParams{
		ExternalID: req.ExternalID,
		Source:     model.FactSource(req.Source),
		SourceURL:  req.SourceURL,
		Type:       req.Type,
		Title:      req.Title,
		Summary:    req.Summary,
		Content:    req.Content,
		Metadata:   req.Metadata,
		OccurredAt: req.OccurredAt,
	})
	if err != nil {
		apperr.Render(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FactResponse{Data: fact})
}

func parseTimeParam(raw, name string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperr.Validation(name + " must be an RFC 3339 timestamp")
	}
	return &t, nil
}
