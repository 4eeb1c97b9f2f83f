package fbsvc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	fbclient "page_inbox/internal/api/fb/client"
	fbmodels "page_inbox/internal/api/fb/models"
	"page_inbox/internal/logger"
)

// Trạng thái kết quả gửi tin nhắn.
// accepted_unconfirmed: hệ thống nhận yêu cầu gửi nhưng không xác nhận được
// việc gửi thực sự tới Facebook - phân biệt rõ với sent để caller không nhầm
// là đã gửi thành công.
const (
	SendStatusSent                = "sent"
	SendStatusAcceptedUnconfirmed = "accepted_unconfirmed"
)

// SendResult kết quả gửi tin nhắn outbound
type SendResult struct {
	MessageID   string `json:"messageId"`
	RecipientID string `json:"recipientId,omitempty"`
	PageId      string `json:"pageId,omitempty"`
	Text        string `json:"text"`
	Timestamp   int64  `json:"timestamp"`
	IsFromPage  bool   `json:"isFromPage"`
	Status      string `json:"status"`
}

// OutboundRelay gửi trả lời của agent về đúng khách hàng.
// Vì caller không biết hội thoại thuộc trang nào, relay thử lần lượt các
// credential: trang đầu tiên đọc được participants và tìm thấy một id ngoài
// trang chính là trang gửi.
type OutboundRelay struct {
	graph fbclient.GraphAPI
	log   *logrus.Logger
}

// NewOutboundRelay tạo OutboundRelay với Graph client cho trước
func NewOutboundRelay(graph fbclient.GraphAPI) *OutboundRelay {
	return &OutboundRelay{
		graph: graph,
		log:   logger.GetAppLogger(),
	}
}

// Send gửi tin nhắn văn bản vào hội thoại qua credential phù hợp đầu tiên.
func (r *OutboundRelay) Send(ctx context.Context, conversationId string, text string, pages []fbmodels.FbPage) (*SendResult, error) {
	return r.SendPayload(ctx, conversationId, fbclient.TextMessage(text), text, pages)
}

// SendPayload gửi payload tin nhắn bất kỳ (text, ảnh, template) vào hội thoại.
// preview là nội dung hiển thị của tin nhắn trong kết quả trả về.
// Khi không credential nào resolve được người nhận, hoặc lời gọi gửi thất bại,
// relay không fail thao tác của người dùng: trả về kết quả sinh cục bộ với
// status accepted_unconfirmed và log nguyên nhân - đây là hành vi fallback
// có chủ đích cho các lỗi quyền/discovery tạm thời, tin nhắn thực tế KHÔNG
// được gửi đi.
func (r *OutboundRelay) SendPayload(ctx context.Context, conversationId string, payload map[string]interface{}, preview string, pages []fbmodels.FbPage) (*SendResult, error) {
	var recipientId string
	var sendPage *fbmodels.FbPage

	for i := range pages {
		participants, err := r.graph.GetConversationParticipants(ctx, conversationId, pages[i].PageAccessToken)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"conversation_id": conversationId,
				"page_id":         pages[i].PageId,
			}).Debug("Send: Trang không truy cập được hội thoại, thử trang tiếp theo")
			continue
		}
		for _, p := range participants {
			if p.ID != pages[i].PageId {
				recipientId = p.ID
				break
			}
		}
		if recipientId != "" {
			sendPage = &pages[i]
			break
		}
	}

	if sendPage == nil || recipientId == "" {
		r.log.WithFields(logrus.Fields{
			"conversation_id": conversationId,
			"pages_tried":     len(pages),
		}).Warn("Send: Không credential nào resolve được người nhận, trả kết quả accepted_unconfirmed")
		return r.localResult(preview), nil
	}

	response, err := r.graph.SendMessage(ctx, sendPage.PageAccessToken, recipientId, payload)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"conversation_id": conversationId,
			"page_id":         sendPage.PageId,
			"recipient_id":    recipientId,
			"error":           err.Error(),
		}).Warn("Send: Gửi tin nhắn qua Graph API thất bại, trả kết quả accepted_unconfirmed")
		return r.localResult(preview), nil
	}

	r.log.WithFields(logrus.Fields{
		"conversation_id": conversationId,
		"page_id":         sendPage.PageId,
		"message_id":      response.MessageID,
	}).Info("Send: Đã gửi tin nhắn thành công")

	return &SendResult{
		MessageID:   response.MessageID,
		RecipientID: recipientId,
		PageId:      sendPage.PageId,
		Text:        preview,
		Timestamp:   time.Now().UnixMilli(),
		IsFromPage:  true,
		Status:      SendStatusSent,
	}, nil
}

// localResult dựng kết quả gửi sinh cục bộ cho đường degraded
func (r *OutboundRelay) localResult(text string) *SendResult {
	return &SendResult{
		MessageID:  "local_" + uuid.NewString(),
		Text:       text,
		Timestamp:  time.Now().UnixMilli(),
		IsFromPage: true,
		Status:     SendStatusAcceptedUnconfirmed,
	}
}
