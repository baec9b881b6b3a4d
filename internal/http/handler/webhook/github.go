package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"factlog.app/api/internal/apperr"
	"factlog.app/api/internal/service"
)

const (
	signatureHeader = "X-Hub-Signature-256"
	eventHeader     = "X-GitHub-Event"

	webhookSecretSetting = "webhook_secret"
)

// GitHubHandler receives GitHub webhook deliveries, verifies the HMAC
// signature against the stored webhook secret and hands the raw event
// to the ingest pipeline.
type GitHubHandler struct {
	ingest   service.IngestService
	settings service.SettingService
	logger   *slog.Logger
}

func NewGitHubHandler(ingest service.IngestService, settings service.SettingService, logger *slog.Logger) *GitHubHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitHubHandler{ingest: ingest, settings: settings, logger: logger}
}

func (h *GitHubHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		apperr.Render(c, apperr.Validation("reading request body"))
		return
	}

	if err := h.verifySignature(c, body); err != nil {
		apperr.Render(c, err)
		return
	}

	eventType := c.GetHeader(eventHeader)
	if eventType == "" {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "No event type specified"})
		return
	}

	result, err := h.ingest.ProcessGitHub(c.Request.Context(), eventType, body)
	if err != nil {
		apperr.Render(c, err)
		return
	}

	switch len(result.FactIDs) {
	case 0:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Event %s acknowledged", eventType),
		})
	case 1:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"factId":  strconv.FormatInt(result.FactIDs[0], 10),
		})
	default:
		factIDs := make([]string, 0, len(result.FactIDs))
		for _, id := range result.FactIDs {
			factIDs = append(factIDs, strconv.FormatInt(id, 10))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "factIds": factIDs})
	}
}

func (h *GitHubHandler) verifySignature(c *gin.Context, body []byte) error {
	signature := c.GetHeader(signatureHeader)
	if signature == "" {
		return apperr.Unauthorized("missing webhook signature")
	}

	secret, err := h.settings.DecryptedValue(c.Request.Context(), "github", webhookSecretSetting)
	if err != nil {
		return err
	}
	if secret == "" {
		h.logger.WarnContext(c.Request.Context(), "github webhook secret is not configured")
		return apperr.Unauthorized("webhook secret is not configured")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return apperr.Unauthorized("invalid webhook signature")
	}
	return nil
}
