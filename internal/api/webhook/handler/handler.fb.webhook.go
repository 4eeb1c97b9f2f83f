// Package webhookhdl - handler webhook Facebook Messenger.
package webhookhdl

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	basehdl "page_inbox/internal/api/base/handler"
	webhookdto "page_inbox/internal/api/webhook/dto"
	webhookmodels "page_inbox/internal/api/webhook/models"
	webhooksvc "page_inbox/internal/api/webhook/service"
	"page_inbox/internal/common"
	"page_inbox/internal/global"
	"page_inbox/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// FbWebhookHandler nhận webhook từ Facebook Messenger Platform
type FbWebhookHandler struct {
	processor         *webhooksvc.EventProcessor
	webhookLogService *webhooksvc.WebhookLogService
}

// NewFbWebhookHandler tạo mới FbWebhookHandler
func NewFbWebhookHandler() (*FbWebhookHandler, error) {
	processor, err := webhooksvc.NewEventProcessor()
	if err != nil {
		return nil, fmt.Errorf("failed to create event processor: %v", err)
	}
	webhookLogService, err := webhooksvc.NewWebhookLogService()
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook log service: %v", err)
	}
	return &FbWebhookHandler{
		processor:         processor,
		webhookLogService: webhookLogService,
	}, nil
}

// HandleVerify xử lý GET verify khi đăng ký webhook với Facebook:
// mode phải là "subscribe" và verify token phải khớp cấu hình
func (h *FbWebhookHandler) HandleVerify(c fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == global.ServerConfig.FbVerifyToken {
		logger.GetAppLogger().Info("🔔 [FB WEBHOOK] Webhook verified")
		return c.Status(common.StatusOK).SendString(challenge)
	}
	return c.Status(common.StatusForbidden).SendString("Forbidden")
}

// VerifySignature kiểm tra chữ ký HMAC-SHA1 của webhook.
// Header có dạng "sha1=<hex digest>" tính trên raw body với app secret.
func VerifySignature(appSecret string, body []byte, header string) bool {
	mac := hmac.New(sha1.New, []byte(appSecret))
	mac.Write(body)
	expected := "sha1=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}

// HandleReceive xử lý POST webhook từ Facebook
func (h *FbWebhookHandler) HandleReceive(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		log := logger.GetAppLogger()
		ctx := c.Context()
		rawBody := c.Body()

		// Chỉ bỏ qua kiểm tra chữ ký khi app secret chưa được cấu hình
		if secret := global.ServerConfig.FbAppSecret; secret != "" {
			if !VerifySignature(secret, rawBody, c.Get("X-Hub-Signature")) {
				log.Warn("🔔 [FB WEBHOOK] Chữ ký không hợp lệ, từ chối webhook")
				return c.Status(common.StatusForbidden).SendString("Invalid signature")
			}
		}

		var payload webhookdto.FbWebhookPayload
		parseErr := json.Unmarshal(rawBody, &payload)

		webhookLog, logErr := h.saveWebhookLog(ctx, c, payload, string(rawBody), parseErr)
		if logErr != nil {
			log.WithError(logErr).Warn("🔔 [FB WEBHOOK] Không thể lưu webhook log")
		}

		if parseErr != nil {
			log.WithError(parseErr).Warn("🔔 [FB WEBHOOK] Body không parse được, chỉ lưu log")
			return c.Status(common.StatusOK).SendString("EVENT_RECEIVED")
		}

		// Webhook không thuộc Messenger Platform
		if payload.Object != "page" {
			return c.Status(common.StatusNotFound).SendString("Not Found")
		}

		processErr := h.processor.ProcessPayload(ctx, payload)
		if webhookLog != nil {
			errorMsg := ""
			if processErr != nil {
				errorMsg = processErr.Error()
			}
			_ = h.webhookLogService.UpdateProcessedStatus(ctx, webhookLog.ID, processErr == nil, errorMsg)
		}
		if processErr != nil {
			log.WithError(processErr).Error("🔔 [FB WEBHOOK] Lỗi khi xử lý payload")
		}

		// Luôn ack 200 để Facebook không retry dồn dập
		return c.Status(common.StatusOK).SendString("EVENT_RECEIVED")
	})
}

func (h *FbWebhookHandler) saveWebhookLog(ctx context.Context, c fiber.Ctx, payload webhookdto.FbWebhookPayload, rawBody string, parseErr error) (*webhookmodels.WebhookLog, error) {
	now := time.Now().UnixMilli()
	requestHeaders := make(map[string]string)
	c.Request().Header.VisitAll(func(key, value []byte) {
		requestHeaders[string(key)] = string(value)
	})

	requestBody := make(map[string]interface{})
	pageId := ""
	if parseErr == nil {
		requestBody = map[string]interface{}{"object": payload.Object, "entryCount": len(payload.Entry)}
		if len(payload.Entry) > 0 {
			pageId = payload.Entry[0].ID
		}
	} else {
		requestBody = map[string]interface{}{"raw": rawBody, "parseError": parseErr.Error()}
	}

	webhookLog := webhookmodels.WebhookLog{
		Source:         "facebook",
		EventType:      payload.Object,
		PageID:         pageId,
		RequestHeaders: requestHeaders,
		RequestBody:    requestBody,
		RawBody:        rawBody,
		Processed:      false,
		ProcessError: func() string {
			if parseErr != nil {
				return fmt.Sprintf("Parse error: %v", parseErr)
			}
			return ""
		}(),
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
		ReceivedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return h.webhookLogService.CreateWebhookLog(ctx, webhookLog)
}
