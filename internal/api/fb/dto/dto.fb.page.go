package fbdto

// FbPageConnectInput dữ liệu đầu vào khi kết nối một trang sau OAuth
type FbPageConnectInput struct {
	AccessToken string `json:"accessToken" validate:"required"`
	PageId      string `json:"pageId" validate:"required"`
}

// FbPageAvailableInput dữ liệu đầu vào khi liệt kê các trang khả dụng (OAuth picker)
type FbPageAvailableInput struct {
	AccessToken string `json:"accessToken" validate:"required"`
}

// FbPageUpdateTokenInput dữ liệu đầu vào khi cập nhật token
type FbPageUpdateTokenInput struct {
	PageId          string `json:"pageId" validate:"required"`
	PageAccessToken string `json:"pageAccessToken" validate:"required"`
}

// FbPageUpdateInput dữ liệu đầu vào cho CRUD update
type FbPageUpdateInput struct {
	PageName string `json:"pageName"`
	Category string `json:"category"`
	About    string `json:"about"`
	Website  string `json:"website"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}
