package fbsvc

import (
	"context"
	"strings"

	fbclient "page_inbox/internal/api/fb/client"
	fbmodels "page_inbox/internal/api/fb/models"
	"page_inbox/internal/logger"

	"github.com/sirupsen/logrus"
)

// IdentityResolver tra cứu danh tính khách hàng từ Graph API với chuỗi
// fallback nhiều tầng. Resolve không bao giờ trả lỗi: mọi tầng thất bại
// thì trả về placeholder "Unknown User" để caller không phải xử lý lỗi.
type IdentityResolver struct {
	graph fbclient.GraphAPI
	log   *logrus.Logger
}

// NewIdentityResolver tạo IdentityResolver với Graph client cho trước
func NewIdentityResolver(graph fbclient.GraphAPI) *IdentityResolver {
	return &IdentityResolver{
		graph: graph,
		log:   logger.GetAppLogger(),
	}
}

// profileFieldStrategy một tầng tra cứu profile trực tiếp, thử từ đầy đủ đến tối thiểu.
// Các trường profile hay bị từ chối quyền tùy theo loại kết nối của trang,
// nên tầng sau dùng tập fields hẹp hơn tầng trước.
var profileFieldStrategies = []string{
	"name,first_name,last_name,profile_pic,id",
	"name,id",
	"name",
}

// SplitDisplayName tách tên hiển thị thành first/last name.
// Token đầu là first name, phần còn lại ghép thành last name;
// thiếu phần nào thì thay bằng "Unknown"/"User".
func SplitDisplayName(fullName string) (string, string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "Unknown", "User"
	}
	firstName := parts[0]
	lastName := strings.Join(parts[1:], " ")
	if lastName == "" {
		lastName = "User"
	}
	return firstName, lastName
}

// Resolve tra cứu danh tính của customerId bằng credential của trang.
// conversationHint (ID hội thoại, có thể rỗng) cho phép đọc tên từ danh sách
// participants - rẻ hơn và đôi khi được phép ngay cả khi đọc profile trực tiếp bị chặn.
func (r *IdentityResolver) Resolve(ctx context.Context, customerId string, page fbmodels.FbPage, conversationHint string) fbmodels.ResolvedIdentity {
	identity, found := r.resolveBase(ctx, customerId, page, conversationHint)

	// Ảnh đại diện thử riêng: thường vẫn lấy được kể cả khi các field khác bị chặn
	if identity.ProfilePic == "" {
		picUrl, err := r.graph.GetProfilePicture(ctx, customerId, page.PageAccessToken)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"customer_id": customerId,
				"page_id":     page.PageId,
			}).Debug("Resolve: Không lấy được ảnh đại diện")
		} else {
			identity.ProfilePic = picUrl
		}
	}

	if !found {
		r.log.WithFields(logrus.Fields{
			"customer_id": customerId,
			"page_id":     page.PageId,
		}).Warn("Resolve: Mọi tầng tra cứu đều thất bại, dùng danh tính placeholder")
	}
	return identity
}

// resolveBase chạy chuỗi fallback (hint -> profile đầy đủ -> tối thiểu -> chỉ tên),
// dừng ở tầng thành công đầu tiên. Trả về placeholder khi tất cả thất bại.
func (r *IdentityResolver) resolveBase(ctx context.Context, customerId string, page fbmodels.FbPage, conversationHint string) (fbmodels.ResolvedIdentity, bool) {
	// Tầng 0: đọc tên từ participants của hội thoại nếu có hint
	if conversationHint != "" {
		if identity, ok := r.resolveFromConversation(ctx, customerId, page, conversationHint); ok {
			return identity, true
		}
	}

	// Tầng 1..3: đọc profile trực tiếp với tập fields thu hẹp dần
	for i, fields := range profileFieldStrategies {
		profile, err := r.graph.GetUserProfile(ctx, customerId, page.PageAccessToken, fields)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"customer_id": customerId,
				"strategy":    i + 1,
				"fields":      fields,
			}).Debug("Resolve: Tầng tra cứu profile thất bại")
			continue
		}
		if profile.Name == "" {
			continue
		}

		firstName, lastName := SplitDisplayName(profile.Name)
		if profile.FirstName != "" {
			firstName = profile.FirstName
		}
		if profile.LastName != "" {
			lastName = profile.LastName
		}
		id := profile.ID
		if id == "" {
			id = customerId
		}
		return fbmodels.ResolvedIdentity{
			ID:         id,
			FirstName:  firstName,
			LastName:   lastName,
			Name:       profile.Name,
			ProfilePic: profile.ProfilePic,
			Locale:     profile.Locale,
			Timezone:   profile.Timezone,
			Gender:     profile.Gender,
		}, true
	}

	return fbmodels.ResolvedIdentity{
		ID:        customerId,
		FirstName: "Unknown",
		LastName:  "User",
		Name:      "Unknown User",
	}, false
}

// resolveFromConversation tìm tên khách hàng trong danh sách participants của hội thoại
func (r *IdentityResolver) resolveFromConversation(ctx context.Context, customerId string, page fbmodels.FbPage, conversationId string) (fbmodels.ResolvedIdentity, bool) {
	participants, err := r.graph.GetConversationParticipants(ctx, conversationId, page.PageAccessToken)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"customer_id":     customerId,
			"conversation_id": conversationId,
		}).Debug("Resolve: Không đọc được participants từ hội thoại")
		return fbmodels.ResolvedIdentity{}, false
	}

	for _, p := range participants {
		if p.ID == customerId && p.Name != "" {
			firstName, lastName := SplitDisplayName(p.Name)
			return fbmodels.ResolvedIdentity{
				ID:        p.ID,
				FirstName: firstName,
				LastName:  lastName,
				Name:      p.Name,
			}, true
		}
	}
	return fbmodels.ResolvedIdentity{}, false
}
