package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái của cuộc hội thoại
const (
	ConversationStatusOpen    = "open"
	ConversationStatusPending = "pending"
	ConversationStatusClosed  = "closed"
)

// FbConversation đại diện cho một luồng chat giữa trang và một khách hàng.
// Một cặp (pageId, customerId) có thể có nhiều bản ghi theo thời gian:
// nếu khách hàng im lặng quá 24 giờ thì tin nhắn tiếp theo mở một hội thoại mới
// (theo session semantics của Messenger). SessionKey là mốc thời gian neo
// của phiên, gán một lần lúc tạo, dùng làm thành phần của unique index
// để chặn race tạo trùng hội thoại trong cùng một phiên.
type FbConversation struct {
	ID                 primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của hội thoại
	PageId             string             `json:"pageId" bson:"pageId"`              // ID của trang
	CustomerId         string             `json:"customerId" bson:"customerId"`      // ID khách hàng trên Facebook
	SessionKey         int64              `json:"sessionKey" bson:"sessionKey"`      // Mốc neo phiên 24h, gán lúc tạo
	CustomerName       string             `json:"customerName" bson:"customerName"`  // Tên khách hàng (last-known-good)
	CustomerProfilePic string             `json:"customerProfilePic,omitempty" bson:"customerProfilePic,omitempty"` // Ảnh đại diện khách hàng
	LastMessageAt      int64              `json:"lastMessageAt" bson:"lastMessageAt"`                               // Thời điểm tin nhắn gần nhất
	LastMessageText    string             `json:"lastMessageText,omitempty" bson:"lastMessageText,omitempty"`       // Preview tin nhắn gần nhất
	UnreadCount        int64              `json:"unreadCount" bson:"unreadCount"`                                   // Số tin chưa đọc
	Status             string             `json:"status" bson:"status"`                                             // open | pending | closed
	AssignedAgent      primitive.ObjectID `json:"assignedAgent,omitempty" bson:"assignedAgent,omitempty"`           // Agent được gán xử lý
	Tags               []string           `json:"tags,omitempty" bson:"tags,omitempty"`                             // Nhãn phân loại
	Notes              string             `json:"notes,omitempty" bson:"notes,omitempty"`                           // Ghi chú nội bộ
	IsActive           bool               `json:"isActive" bson:"isActive"`                                         // Hội thoại không bao giờ bị xóa, chỉ đánh dấu
	CreatedAt          int64              `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt          int64              `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
