// Package router đăng ký các route thuộc domain Webhook: Facebook webhook (public), WebhookLog (CRUD).
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	apirouter "page_inbox/internal/api/router"
	webhookhdl "page_inbox/internal/api/webhook/handler"
)

// Register đăng ký tất cả route webhook lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	fbWebhookHandler, err := webhookhdl.NewFbWebhookHandler()
	if err != nil {
		return fmt.Errorf("failed to create facebook webhook handler: %w", err)
	}
	// Endpoint public: Facebook gọi trực tiếp, xác thực bằng verify token (GET)
	// và chữ ký HMAC (POST) thay vì auth middleware
	v1.Get("/facebook/webhook", fbWebhookHandler.HandleVerify)
	v1.Post("/facebook/webhook", fbWebhookHandler.HandleReceive)

	webhookLogHandler, err := webhookhdl.NewWebhookLogHandler()
	if err != nil {
		return fmt.Errorf("failed to create webhook log handler: %w", err)
	}
	if err := r.RegisterCRUDRoutes(v1, "webhook-log", webhookLogHandler, apirouter.ReadOnlyConfig()); err != nil {
		return err
	}
	return nil
}
