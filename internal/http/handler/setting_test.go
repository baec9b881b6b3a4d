package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"factlog.app/api/internal/apperr"
	"factlog.app/api/internal/http/handler"
	"factlog.app/api/internal/service"
)

var _ = Describe("SettingHandler", func() {
	var (
		router   *gin.Engine
		settings *mockSettingService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		settings = &mockSettingService{}
		h := handler.NewSettingHandler(settings)
		router.POST("/settings", h.Upsert)
		router.GET("/settings/:provider/:settingType", h.Get)
		router.DELETE("/settings/:provider/:settingType", h.Delete)
	})

	Describe("Upsert", func() {
		It("never echoes the stored value back", func() {
			var captured string
			settings.upsertFn = func(_ context.Context, provider, settingType, value string) (*service.SettingResponse, error) {
				captured = value
				return &service.SettingResponse{ID: 7, Provider: provider, SettingType: settingType, HasValue: true}, nil
			}

			body, _ := json.Marshal(map[string]string{
				"provider":    "github",
				"settingType": "webhook_secret",
				"value":       "hunter2",
			})
			req := httptest.NewRequest(http.MethodPost, "/settings", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(captured).To(Equal("hunter2"))
			Expect(w.Body.String()).NotTo(ContainSubstring("hunter2"))
			Expect(w.Body.String()).To(ContainSubstring(`"hasValue":true`))
		})

		It("rejects a body without a value", func() {
			body := []byte(`{"provider":"github","settingType":"webhook_secret"}`)
			req := httptest.NewRequest(http.MethodPost, "/settings", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Get", func() {
		It("maps a missing setting to the not_found envelope", func() {
			settings.getFn = func(context.Context, string, string) (*service.SettingResponse, error) {
				return nil, apperr.NotFound("setting")
			}

			req := httptest.NewRequest(http.MethodGet, "/settings/github/webhook_secret", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Delete", func() {
		It("returns 204 on success", func() {
			req := httptest.NewRequest(http.MethodDelete, "/settings/slack/target_channel_id", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNoContent))
		})
	})
})
