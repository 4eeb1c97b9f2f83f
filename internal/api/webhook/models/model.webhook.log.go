// Package webhookmodels chứa model cho domain Webhook.
package webhookmodels

import "go.mongodb.org/mongo-driver/bson/primitive"

// WebhookLog lưu lại mọi webhook đã nhận để phục vụ audit và replay khi cần
type WebhookLog struct {
	ID             primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	Source         string                 `json:"source" bson:"source"`       // "facebook"
	EventType      string                 `json:"eventType" bson:"eventType"` // object của payload ("page", ...)
	PageID         string                 `json:"pageId" bson:"pageId,omitempty"`
	RequestHeaders map[string]string      `json:"requestHeaders" bson:"requestHeaders,omitempty"`
	RequestBody    map[string]interface{} `json:"requestBody" bson:"requestBody"`
	RawBody        string                 `json:"rawBody" bson:"rawBody,omitempty"`
	Processed      bool                   `json:"processed" bson:"processed"`
	ProcessError   string                 `json:"processError" bson:"processError,omitempty"`
	IPAddress      string                 `json:"ipAddress" bson:"ipAddress,omitempty"`
	UserAgent      string                 `json:"userAgent" bson:"userAgent,omitempty"`
	ReceivedAt     int64                  `json:"receivedAt" bson:"receivedAt"`
	ProcessedAt    int64                  `json:"processedAt" bson:"processedAt,omitempty"`
	CreatedAt      int64                  `json:"createdAt" bson:"createdAt"`
	UpdatedAt      int64                  `json:"updatedAt" bson:"updatedAt"`
}
