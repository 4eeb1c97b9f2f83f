// Package webhooksvc - bộ xử lý event Facebook webhook.
// File: service.fb.event.go
package webhooksvc

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	fbclient "page_inbox/internal/api/fb/client"
	fbmodels "page_inbox/internal/api/fb/models"
	fbsvc "page_inbox/internal/api/fb/service"
	webhookdto "page_inbox/internal/api/webhook/dto"
	"page_inbox/internal/global"
	"page_inbox/internal/logger"
)

// EventProcessor nhận payload webhook đã parse và đổ dữ liệu vào store cục bộ.
// Mỗi event được xử lý độc lập: một event lỗi không chặn các event còn lại
// trong cùng payload.
type EventProcessor struct {
	pageService         *fbsvc.FbPageService
	conversationService *fbsvc.FbConversationService
	messageService      *fbsvc.FbMessageService
	resolver            *fbsvc.IdentityResolver
	log                 *logrus.Logger
}

// NewEventProcessor tạo mới EventProcessor với các store và Graph client mặc định
func NewEventProcessor() (*EventProcessor, error) {
	pageService, err := fbsvc.NewFbPageService()
	if err != nil {
		return nil, fmt.Errorf("failed to create page service: %v", err)
	}
	conversationService, err := fbsvc.NewFbConversationService()
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation service: %v", err)
	}
	messageService, err := fbsvc.NewFbMessageService()
	if err != nil {
		return nil, fmt.Errorf("failed to create message service: %v", err)
	}
	return &EventProcessor{
		pageService:         pageService,
		conversationService: conversationService,
		messageService:      messageService,
		resolver:            fbsvc.NewIdentityResolver(fbclient.NewClient(global.ServerConfig)),
		log:                 logger.GetAppLogger(),
	}, nil
}

// ProcessPayload xử lý toàn bộ entry trong một payload webhook.
// Trả về lỗi tổng hợp nếu có event thất bại, để ghi vào webhook log;
// bản thân webhook vẫn được ack 200 cho Facebook.
func (p *EventProcessor) ProcessPayload(ctx context.Context, payload webhookdto.FbWebhookPayload) error {
	var failed int
	var total int
	for _, entry := range payload.Entry {
		page, err := p.pageService.FindActiveByPageID(ctx, entry.ID)
		if err != nil {
			// Trang chưa kết nối hoặc đã ngắt: bỏ qua entry, không coi là lỗi
			p.log.WithField("pageId", entry.ID).Warn("🔔 [FB WEBHOOK] Bỏ qua entry của trang không active")
			continue
		}
		for i := range entry.Messaging {
			event := &entry.Messaging[i]
			total++
			if err := p.processEvent(ctx, page, event); err != nil {
				failed++
				p.log.WithError(err).WithFields(logrus.Fields{
					"pageId":   entry.ID,
					"senderId": event.Sender.ID,
					"kind":     event.Kind(),
				}).Error("🔔 [FB WEBHOOK] Lỗi khi xử lý event")
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d/%d event xử lý thất bại", failed, total)
	}
	return nil
}

// processEvent xử lý một messaging event theo loại của nó
func (p *EventProcessor) processEvent(ctx context.Context, page fbmodels.FbPage, event *webhookdto.FbMessagingEvent) error {
	// Echo: tin do chính trang gửi ra được webhook vọng lại, không phải tin mới
	if event.Sender.ID == page.PageId {
		return nil
	}
	if event.Message != nil && event.Message.IsEcho {
		return nil
	}

	switch event.Kind() {
	case webhookdto.EventKindMessage:
		return p.processMessage(ctx, page, event)
	case webhookdto.EventKindDelivery:
		return p.processDelivery(ctx, page, event)
	case webhookdto.EventKindRead:
		return p.processRead(ctx, page, event)
	case webhookdto.EventKindPostback:
		return p.processPostback(ctx, page, event)
	default:
		p.log.WithField("senderId", event.Sender.ID).Warn("🔔 [FB WEBHOOK] Loại event chưa được xử lý")
		return nil
	}
}

// processMessage ghi tin nhắn mới của khách vào store cục bộ
func (p *EventProcessor) processMessage(ctx context.Context, page fbmodels.FbPage, event *webhookdto.FbMessagingEvent) error {
	customerId := event.Sender.ID
	identity := p.resolver.Resolve(ctx, customerId, page, "")

	conversation, err := p.conversationService.FindOrCreate(ctx, page.PageId, customerId, identity.DisplayName(), identity.ProfilePic)
	if err != nil {
		return err
	}

	msg := event.Message
	attachments := make([]fbmodels.FbAttachment, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		attachments = append(attachments, fbmodels.FbAttachment{
			Type:    a.Type,
			Url:     a.URL(),
			Payload: a.Payload,
		})
	}

	stored := fbmodels.FbMessage{
		MessageId:      msg.Mid,
		ConversationID: conversation.ID,
		PageId:         page.PageId,
		SenderId:       customerId,
		SenderName:     identity.DisplayName(),
		Content: fbmodels.FbMessageContent{
			Text:        msg.Text,
			Attachments: attachments,
		},
		Timestamp:   event.Timestamp,
		IsFromPage:  false,
		MessageType: msg.MessageType(),
		Status:      fbmodels.MessageStatusSent,
		Metadata:    map[string]interface{}{"mid": msg.Mid},
	}
	if msg.QuickReply != nil {
		stored.Metadata["quickReplyPayload"] = msg.QuickReply.Payload
	}
	_, inserted, err := p.messageService.UpsertIncoming(ctx, stored)
	if err != nil {
		return err
	}
	if !inserted {
		// Webhook gửi lặp: tin đã có trong store, không được cộng lại
		// unreadCount hay đẩy lastMessageAt lần nữa
		p.log.WithField("mid", msg.Mid).Debug("🔔 [FB WEBHOOK] Tin nhắn đã tồn tại, bỏ qua re-delivery")
		return nil
	}

	preview := msg.Text
	if preview == "" {
		preview = "[Attachment]"
	}
	if err := p.conversationService.RecordActivity(ctx, conversation.ID, preview, event.Timestamp); err != nil {
		return err
	}
	return p.conversationService.IncrementUnread(ctx, conversation.ID)
}

// findConversation tìm hội thoại gần nhất của (pageId, customerId) cho receipt.
// Receipt có thể đến sau khi cửa sổ phiên đã đóng nên không lọc theo cửa sổ.
func (p *EventProcessor) findConversation(ctx context.Context, pageId string, customerId string) (fbmodels.FbConversation, error) {
	filter := bson.M{"pageId": pageId, "customerId": customerId}
	opts := options.FindOne().SetSort(bson.D{{Key: "lastMessageAt", Value: -1}})
	return p.conversationService.FindOne(ctx, filter, opts)
}

// processDelivery đánh dấu các tin nhắn đã giao theo danh sách mid
func (p *EventProcessor) processDelivery(ctx context.Context, page fbmodels.FbPage, event *webhookdto.FbMessagingEvent) error {
	conversation, err := p.findConversation(ctx, page.PageId, event.Sender.ID)
	if err != nil {
		// Chưa có hội thoại nào để gắn receipt, bỏ qua
		p.log.WithField("senderId", event.Sender.ID).Debug("🔔 [FB WEBHOOK] Delivery receipt không khớp hội thoại nào")
		return nil
	}
	_, err = p.messageService.ApplyDeliveryReceipt(ctx, conversation.ID, event.Delivery.Mids, event.Delivery.Watermark)
	return err
}

// processRead đánh dấu đã đọc mọi tin nhắn đến watermark
func (p *EventProcessor) processRead(ctx context.Context, page fbmodels.FbPage, event *webhookdto.FbMessagingEvent) error {
	conversation, err := p.findConversation(ctx, page.PageId, event.Sender.ID)
	if err != nil {
		p.log.WithField("senderId", event.Sender.ID).Debug("🔔 [FB WEBHOOK] Read receipt không khớp hội thoại nào")
		return nil
	}
	_, err = p.messageService.ApplyReadReceipt(ctx, conversation.ID, event.Read.Watermark)
	return err
}

// postbackMessageId sinh messageId cục bộ cho postback. Postback không có mid
// nên id phải tự đảm bảo hai tính chất: khác nhau giữa các khách hàng (hai
// người bấm nút trong cùng một mili giây không được đè nhau) và ổn định khi
// webhook gửi lặp cùng một event (để upsert theo messageId vẫn dedup được).
func postbackMessageId(customerId string, timestamp int64) string {
	return "postback_" + customerId + "_" + strconv.FormatInt(timestamp, 10)
}

// postbackText lấy nội dung hiển thị của postback: title nếu có, không thì
// rơi về payload để postback không title không thành tin nhắn rỗng
func postbackText(postback *webhookdto.FbPostbackEvent) string {
	if postback.Title != "" {
		return postback.Title
	}
	return postback.Payload
}

// processPostback ghi một lượt bấm nút postback như một tin nhắn tổng hợp
func (p *EventProcessor) processPostback(ctx context.Context, page fbmodels.FbPage, event *webhookdto.FbMessagingEvent) error {
	customerId := event.Sender.ID
	identity := p.resolver.Resolve(ctx, customerId, page, "")

	conversation, err := p.conversationService.FindOrCreate(ctx, page.PageId, customerId, identity.DisplayName(), identity.ProfilePic)
	if err != nil {
		return err
	}

	messageId := postbackMessageId(customerId, event.Timestamp)
	stored := fbmodels.FbMessage{
		MessageId:      messageId,
		ConversationID: conversation.ID,
		PageId:         page.PageId,
		SenderId:       customerId,
		SenderName:     identity.DisplayName(),
		Content: fbmodels.FbMessageContent{
			Text: postbackText(event.Postback),
		},
		Timestamp:   event.Timestamp,
		IsFromPage:  false,
		MessageType: fbmodels.MessageTypePostback,
		Status:      fbmodels.MessageStatusSent,
		Metadata: map[string]interface{}{
			"mid":     messageId,
			"payload": event.Postback.Payload,
		},
	}
	_, inserted, err := p.messageService.UpsertIncoming(ctx, stored)
	if err != nil {
		return err
	}
	if !inserted {
		p.log.WithField("messageId", messageId).Debug("🔔 [FB WEBHOOK] Postback đã tồn tại, bỏ qua re-delivery")
		return nil
	}

	preview := postbackText(event.Postback)
	if preview == "" {
		preview = "[Postback]"
	}
	if err := p.conversationService.RecordActivity(ctx, conversation.ID, preview, event.Timestamp); err != nil {
		return err
	}
	return p.conversationService.IncrementUnread(ctx, conversation.ID)
}
