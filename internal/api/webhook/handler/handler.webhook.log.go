// Package webhookhdl chứa HTTP handler cho domain Webhook (log).
// File: basehdl.webhook.log.go
package webhookhdl

import (
	"fmt"

	basehdl "page_inbox/internal/api/base/handler"
	webhookdto "page_inbox/internal/api/webhook/dto"
	webhookmodels "page_inbox/internal/api/webhook/models"
	webhooksvc "page_inbox/internal/api/webhook/service"
)

// WebhookLogHandler xử lý các route CRUD cho webhook log
type WebhookLogHandler struct {
	*basehdl.BaseHandler[webhookmodels.WebhookLog, webhookdto.WebhookLogCreateInput, webhookdto.WebhookLogUpdateInput]
}

// NewWebhookLogHandler tạo mới WebhookLogHandler
func NewWebhookLogHandler() (*WebhookLogHandler, error) {
	webhookLogService, err := webhooksvc.NewWebhookLogService()
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook log service: %w", err)
	}

	return &WebhookLogHandler{
		BaseHandler: basehdl.NewBaseHandler[webhookmodels.WebhookLog, webhookdto.WebhookLogCreateInput, webhookdto.WebhookLogUpdateInput](webhookLogService.BaseServiceMongoImpl),
	}, nil
}
