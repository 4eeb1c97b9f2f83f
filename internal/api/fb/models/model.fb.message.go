package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái gửi của tin nhắn.
// Chuyển trạng thái chỉ tiến, không lùi: sent -> delivered -> read (hoặc -> failed).
const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
	MessageStatusFailed    = "failed"
)

// Loại tin nhắn
const (
	MessageTypeText       = "text"
	MessageTypeQuickReply = "quick_reply"
	MessageTypePostback   = "postback"
)

// FbAttachment là một file đính kèm trong tin nhắn (image/video/audio/file/location/template)
type FbAttachment struct {
	Type    string                 `json:"type" bson:"type"`                           // Loại đính kèm
	Url     string                 `json:"url,omitempty" bson:"url,omitempty"`         // URL tải nội dung
	Payload map[string]interface{} `json:"payload,omitempty" bson:"payload,omitempty"` // Payload gốc từ Facebook
}

// FbMessageContent nội dung của tin nhắn
type FbMessageContent struct {
	Text        string         `json:"text" bson:"text"`                                   // Nội dung văn bản
	Attachments []FbAttachment `json:"attachments,omitempty" bson:"attachments,omitempty"` // Danh sách đính kèm
}

// FbMessage đại diện cho một lượt chat trong hội thoại.
// MessageId là duy nhất toàn cục (unique index) - webhook gửi lặp cùng một
// event không được phép tạo thêm bản ghi.
type FbMessage struct {
	ID             primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`                // ID của bản ghi
	MessageId      string                 `json:"messageId" bson:"messageId"`                       // ID tin nhắn từ Facebook (hoặc sinh cục bộ cho postback)
	ConversationID primitive.ObjectID     `json:"conversationId" bson:"conversationId"`             // Hội thoại chứa tin nhắn
	PageId         string                 `json:"pageId" bson:"pageId"`                             // ID của trang
	SenderId       string                 `json:"senderId" bson:"senderId"`                         // ID người gửi
	SenderName     string                 `json:"senderName,omitempty" bson:"senderName,omitempty"` // Tên người gửi tại thời điểm nhận
	Content        FbMessageContent       `json:"content" bson:"content"`                           // Nội dung tin nhắn
	Timestamp      int64                  `json:"timestamp" bson:"timestamp"`                       // Thời điểm gửi (unix millis)
	IsFromPage     bool                   `json:"isFromPage" bson:"isFromPage"`                     // Tin nhắn từ phía trang hay khách hàng
	MessageType    string                 `json:"messageType" bson:"messageType"`                   // text | quick_reply | postback | <loại attachment đầu tiên>
	Status         string                 `json:"status" bson:"status"`                             // sent | delivered | read | failed
	Metadata       map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`     // mid, seq, watermark, read, payload...
	ReplyTo        string                 `json:"replyTo,omitempty" bson:"replyTo,omitempty"`       // messageId của tin được trả lời
	CreatedAt      int64                  `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt      int64                  `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
