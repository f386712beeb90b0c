package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/study-resource-bot/internal/dto"
	"github.com/noah-isme/study-resource-bot/pkg/middleware/requestid"
	"github.com/noah-isme/study-resource-bot/pkg/response"
)

type dialogueHandler interface {
	Handle(ctx context.Context, userID, body string) string
}

// WebhookHandler receives inbound WhatsApp messages from the gateway.
type WebhookHandler struct {
	dialogue dialogueHandler
	logger   *zap.Logger
}

// NewWebhookHandler constructs a webhook handler.
func NewWebhookHandler(dialogue dialogueHandler, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{dialogue: dialogue, logger: logger}
}

// WhatsApp godoc
// @Summary Inbound WhatsApp message
// @Description Runs one dialogue turn for the sender. The reply goes out through the messaging gateway; the HTTP body is always "OK".
// @Tags Webhook
// @Accept x-www-form-urlencoded
// @Produce plain
// @Param From formData string true "Sender address"
// @Param Body formData string false "Message text"
// @Success 200 {string} string "OK"
// @Router /whatsapp [post]
func (h *WebhookHandler) WhatsApp(c *gin.Context) {
	var msg dto.InboundMessage
	if err := c.ShouldBind(&msg); err != nil {
		h.logger.Warn("malformed webhook payload", zap.String("request_id", requestid.Value(c)), zap.Error(err))
		response.Text(c, "OK")
		return
	}
	if msg.From == "" {
		h.logger.Warn("webhook without sender", zap.String("request_id", requestid.Value(c)))
		response.Text(c, "OK")
		return
	}

	// The gateway may drop the request before the reply is sent; the
	// delegate timeouts bound the work instead.
	h.dialogue.Handle(context.WithoutCancel(c.Request.Context()), msg.From, msg.Body)
	response.Text(c, "OK")
}
