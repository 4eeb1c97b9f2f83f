package models

// ResolvedIdentity là danh tính khách hàng sau khi tra cứu profile,
// sinh mới cho mỗi lần lookup, không bắt buộc phải lưu.
// Luôn có giá trị: mọi bước tra cứu thất bại thì trả về placeholder
// "Unknown User" thay vì báo lỗi cho caller.
type ResolvedIdentity struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Name       string `json:"name"`
	ProfilePic string `json:"profile_pic,omitempty"`
	Locale     string `json:"locale,omitempty"`
	Timezone   *int   `json:"timezone,omitempty"`
	Gender     string `json:"gender,omitempty"`
}

// DisplayName trả về tên hiển thị của danh tính, ghép first/last nếu thiếu name
func (r ResolvedIdentity) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	name := r.FirstName
	if r.LastName != "" {
		if name != "" {
			name += " "
		}
		name += r.LastName
	}
	if name == "" {
		return "Unknown User"
	}
	return name
}
