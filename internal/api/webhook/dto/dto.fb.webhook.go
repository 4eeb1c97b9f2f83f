// Package webhookdto chứa DTO cho domain Webhook.
package webhookdto

// Các loại event trong một messaging entry của Facebook webhook
const (
	EventKindMessage  = "message"
	EventKindDelivery = "delivery"
	EventKindRead     = "read"
	EventKindPostback = "postback"
	EventKindUnknown  = "unknown"
)

// Các loại nội dung tin nhắn
const (
	MessageTypeText       = "text"
	MessageTypeQuickReply = "quick_reply"
)

// FbWebhookPayload là body POST từ Facebook webhook
type FbWebhookPayload struct {
	Object string           `json:"object"` // "page" với webhook Messenger
	Entry  []FbWebhookEntry `json:"entry"`
}

// FbWebhookEntry là một entry trong payload, mỗi entry thuộc về một trang
type FbWebhookEntry struct {
	ID        string             `json:"id"` // pageId của trang nhận event
	Time      int64              `json:"time"`
	Messaging []FbMessagingEvent `json:"messaging"`
}

// FbPrincipal là một phía của event (người gửi hoặc người nhận)
type FbPrincipal struct {
	ID string `json:"id"`
}

// FbQuickReply là payload quick reply đính kèm tin nhắn
type FbQuickReply struct {
	Payload string `json:"payload"`
}

// FbAttachment là một attachment trong tin nhắn
type FbAttachment struct {
	Type    string                 `json:"type"` // image, video, audio, file, template, fallback
	Payload map[string]interface{} `json:"payload"`
}

// URL lấy url tải về của attachment nếu có
func (a FbAttachment) URL() string {
	if a.Payload == nil {
		return ""
	}
	if url, ok := a.Payload["url"].(string); ok {
		return url
	}
	return ""
}

// FbMessageEvent là event tin nhắn mới
type FbMessageEvent struct {
	Mid         string         `json:"mid"`
	Text        string         `json:"text"`
	QuickReply  *FbQuickReply  `json:"quick_reply,omitempty"`
	Attachments []FbAttachment `json:"attachments,omitempty"`
	IsEcho      bool           `json:"is_echo,omitempty"`
}

// MessageType phân loại nội dung tin nhắn: loại của attachment đầu tiên,
// quick_reply, hoặc text
func (m *FbMessageEvent) MessageType() string {
	if len(m.Attachments) > 0 {
		return m.Attachments[0].Type
	}
	if m.QuickReply != nil {
		return MessageTypeQuickReply
	}
	return MessageTypeText
}

// FbDeliveryEvent là receipt báo các tin nhắn đã được giao đến thiết bị khách
type FbDeliveryEvent struct {
	Mids      []string `json:"mids"`
	Watermark int64    `json:"watermark"`
}

// FbReadEvent là receipt báo khách đã đọc mọi tin nhắn đến watermark
type FbReadEvent struct {
	Watermark int64 `json:"watermark"`
}

// FbPostbackEvent là event khách bấm nút postback
type FbPostbackEvent struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// FbMessagingEvent là một event trong entry. Facebook gửi dạng union: đúng một
// trong các field Message/Delivery/Read/Postback có giá trị.
type FbMessagingEvent struct {
	Sender    FbPrincipal      `json:"sender"`
	Recipient FbPrincipal      `json:"recipient"`
	Timestamp int64            `json:"timestamp"`
	Message   *FbMessageEvent  `json:"message,omitempty"`
	Delivery  *FbDeliveryEvent `json:"delivery,omitempty"`
	Read      *FbReadEvent     `json:"read,omitempty"`
	Postback  *FbPostbackEvent `json:"postback,omitempty"`
}

// Kind xác định loại event theo field nào của union có giá trị
func (e *FbMessagingEvent) Kind() string {
	switch {
	case e.Message != nil:
		return EventKindMessage
	case e.Delivery != nil:
		return EventKindDelivery
	case e.Read != nil:
		return EventKindRead
	case e.Postback != nil:
		return EventKindPostback
	default:
		return EventKindUnknown
	}
}
