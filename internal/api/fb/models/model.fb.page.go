package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FbPage đại diện cho một trang Facebook đã kết nối vào hệ thống.
// Mỗi pageId chỉ được phép có tối đa một bản ghi đang active (partial unique index).
// Khi ngắt kết nối chỉ set isActive=false, không xóa bản ghi để giữ lịch sử.
type FbPage struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của bản ghi
	AccountID       primitive.ObjectID `json:"accountId" bson:"accountId"`        // Tài khoản helpdesk sở hữu trang
	PageId          string             `json:"pageId" bson:"pageId"`              // ID của trang trên Facebook
	PageName        string             `json:"pageName" bson:"pageName"`          // Tên của trang
	PageAccessToken string             `json:"-" bson:"pageAccessToken"`          // Access token dài hạn của trang
	PageProfilePic  string             `json:"pageProfilePic,omitempty" bson:"pageProfilePic,omitempty"` // Ảnh đại diện của trang
	Category        string             `json:"category,omitempty" bson:"category,omitempty"`             // Danh mục của trang
	About           string             `json:"about,omitempty" bson:"about,omitempty"`                   // Mô tả trang
	Website         string             `json:"website,omitempty" bson:"website,omitempty"`               // Website của trang
	Phone           string             `json:"phone,omitempty" bson:"phone,omitempty"`                   // Số điện thoại
	Email           string             `json:"email,omitempty" bson:"email,omitempty"`                   // Email liên hệ
	WebhookVerified bool               `json:"webhookVerified" bson:"webhookVerified"`                   // Đã subscribe webhook thành công
	IsActive        bool               `json:"isActive" bson:"isActive"`                                 // Trạng thái kết nối
	LastSyncAt      int64              `json:"lastSyncAt,omitempty" bson:"lastSyncAt,omitempty"`         // Lần đồng bộ gần nhất
	DisconnectedAt  int64              `json:"disconnectedAt,omitempty" bson:"disconnectedAt,omitempty"` // Thời điểm ngắt kết nối
	CreatedAt       int64              `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt       int64              `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
