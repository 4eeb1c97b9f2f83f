package webhookdto

// WebhookLogCreateInput là DTO cho tạo mới webhook log
type WebhookLogCreateInput struct {
	Source         string                 `json:"source" validate:"required"`    // "facebook"
	EventType      string                 `json:"eventType" validate:"required"` // object của payload
	PageID         string                 `json:"pageId,omitempty"`
	RequestHeaders map[string]string      `json:"requestHeaders,omitempty"`
	RequestBody    map[string]interface{} `json:"requestBody" validate:"required"`
	RawBody        string                 `json:"rawBody,omitempty"`
	IPAddress      string                 `json:"ipAddress,omitempty"`
	UserAgent      string                 `json:"userAgent,omitempty"`
}

// WebhookLogUpdateInput là DTO cho cập nhật webhook log
type WebhookLogUpdateInput struct {
	Processed    *bool   `json:"processed,omitempty"`
	ProcessError *string `json:"processError,omitempty"`
}
