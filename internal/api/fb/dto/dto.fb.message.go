package fbdto

// FbMessageCreateInput dữ liệu đầu vào cho CRUD operations
type FbMessageCreateInput struct {
	MessageId      string `json:"messageId" validate:"required"`
	ConversationId string `json:"conversationId" validate:"required"`
	PageId         string `json:"pageId" validate:"required"`
	SenderId       string `json:"senderId" validate:"required"`
	Text           string `json:"text"`
}

// FbMessageUpdateInput dữ liệu đầu vào khi cập nhật message qua CRUD
type FbMessageUpdateInput struct {
	Status string `json:"status" validate:"omitempty,oneof=sent delivered read failed"`
}

// FbSendMessageInput dữ liệu đầu vào khi agent gửi trả lời vào hội thoại.
// Chỉ một trong ba loại nội dung được dùng; text được ưu tiên khi có nhiều loại.
type FbSendMessageInput struct {
	Text     string                 `json:"text" validate:"required_without_all=ImageUrl Template"`
	ImageUrl string                 `json:"imageUrl" validate:"omitempty,url"`
	Template map[string]interface{} `json:"template" validate:"omitempty"`
}
