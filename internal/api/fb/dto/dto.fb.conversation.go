package fbdto

// FbConversationCreateInput dữ liệu đầu vào khi tạo conversation qua CRUD
type FbConversationCreateInput struct {
	PageId       string `json:"pageId" validate:"required"`
	CustomerId   string `json:"customerId" validate:"required"`
	CustomerName string `json:"customerName" validate:"required"`
}

// FbConversationUpdateInput dữ liệu đầu vào khi cập nhật conversation:
// các trường quản trị helpdesk, không đụng tới dữ liệu đồng bộ từ webhook
type FbConversationUpdateInput struct {
	Status        string   `json:"status" validate:"omitempty,oneof=open pending closed"`
	AssignedAgent string   `json:"assignedAgent"`
	Tags          []string `json:"tags"`
	Notes         string   `json:"notes"`
}
