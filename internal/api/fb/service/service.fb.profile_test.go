// Package fbsvc - Test chuỗi fallback tra cứu danh tính khách hàng.
package fbsvc

import (
	"context"
	"errors"
	"testing"

	fbclient "page_inbox/internal/api/fb/client"
	fbmodels "page_inbox/internal/api/fb/models"
)

// fakeGraph là GraphAPI giả cho test: method nào không gán thì trả lỗi
type fakeGraph struct {
	exchangeToken    func(ctx context.Context, shortLivedToken string) (string, error)
	listPages        func(ctx context.Context, userAccessToken string) ([]fbclient.GraphPage, error)
	getPageInfo      func(ctx context.Context, pageId, pageAccessToken string) (*fbclient.GraphPage, error)
	subscribeWebhook func(ctx context.Context, pageId, pageAccessToken string) (bool, error)
	listConvs        func(ctx context.Context, pageId, pageAccessToken string, limit int) ([]fbclient.GraphConversation, error)
	listMessages     func(ctx context.Context, conversationId, pageAccessToken string, limit int) ([]fbclient.GraphMessage, error)
	getParticipants  func(ctx context.Context, conversationId, pageAccessToken string) ([]fbclient.GraphParticipant, error)
	sendMessage      func(ctx context.Context, pageAccessToken, recipientId string, message map[string]interface{}) (*fbclient.SendResponse, error)
	getUserProfile   func(ctx context.Context, userId, pageAccessToken, fields string) (*fbclient.GraphProfile, error)
	getPicture       func(ctx context.Context, userId, pageAccessToken string) (string, error)
}

var errGraphUnavailable = errors.New("graph unavailable")

func (f *fakeGraph) ExchangeToken(ctx context.Context, t string) (string, error) {
	if f.exchangeToken != nil {
		return f.exchangeToken(ctx, t)
	}
	return "", errGraphUnavailable
}

func (f *fakeGraph) ListPagesForAccount(ctx context.Context, t string) ([]fbclient.GraphPage, error) {
	if f.listPages != nil {
		return f.listPages(ctx, t)
	}
	return nil, errGraphUnavailable
}

func (f *fakeGraph) GetPageInfo(ctx context.Context, pageId, token string) (*fbclient.GraphPage, error) {
	if f.getPageInfo != nil {
		return f.getPageInfo(ctx, pageId, token)
	}
	return nil, errGraphUnavailable
}

func (f *fakeGraph) SubscribeWebhook(ctx context.Context, pageId, token string) (bool, error) {
	if f.subscribeWebhook != nil {
		return f.subscribeWebhook(ctx, pageId, token)
	}
	return false, errGraphUnavailable
}

func (f *fakeGraph) ListConversations(ctx context.Context, pageId, token string, limit int) ([]fbclient.GraphConversation, error) {
	if f.listConvs != nil {
		return f.listConvs(ctx, pageId, token, limit)
	}
	return nil, errGraphUnavailable
}

func (f *fakeGraph) ListMessages(ctx context.Context, conversationId, token string, limit int) ([]fbclient.GraphMessage, error) {
	if f.listMessages != nil {
		return f.listMessages(ctx, conversationId, token, limit)
	}
	return nil, errGraphUnavailable
}

func (f *fakeGraph) GetConversationParticipants(ctx context.Context, conversationId, token string) ([]fbclient.GraphParticipant, error) {
	if f.getParticipants != nil {
		return f.getParticipants(ctx, conversationId, token)
	}
	return nil, errGraphUnavailable
}

func (f *fakeGraph) SendMessage(ctx context.Context, token, recipientId string, message map[string]interface{}) (*fbclient.SendResponse, error) {
	if f.sendMessage != nil {
		return f.sendMessage(ctx, token, recipientId, message)
	}
	return nil, errGraphUnavailable
}

func (f *fakeGraph) GetUserProfile(ctx context.Context, userId, token, fields string) (*fbclient.GraphProfile, error) {
	if f.getUserProfile != nil {
		return f.getUserProfile(ctx, userId, token, fields)
	}
	return nil, errGraphUnavailable
}

func (f *fakeGraph) GetProfilePicture(ctx context.Context, userId, token string) (string, error) {
	if f.getPicture != nil {
		return f.getPicture(ctx, userId, token)
	}
	return "", errGraphUnavailable
}

func testPage() fbmodels.FbPage {
	return fbmodels.FbPage{
		PageId:          "page_1",
		PageName:        "Shop ABC",
		PageAccessToken: "token_1",
	}
}

func TestResolve_AllTiersFail_ReturnsPlaceholder(t *testing.T) {
	resolver := NewIdentityResolver(&fakeGraph{})
	identity := resolver.Resolve(context.Background(), "user_9", testPage(), "")

	if identity.Name != "Unknown User" {
		t.Errorf("Name = %q, muốn \"Unknown User\"", identity.Name)
	}
	if identity.FirstName != "Unknown" || identity.LastName != "User" {
		t.Errorf("FirstName/LastName = %q/%q, muốn Unknown/User", identity.FirstName, identity.LastName)
	}
	if identity.ID != "user_9" {
		t.Errorf("ID = %q, placeholder phải giữ customerId gốc", identity.ID)
	}
}

func TestResolve_FullProfileTierSucceeds(t *testing.T) {
	graph := &fakeGraph{
		getUserProfile: func(ctx context.Context, userId, token, fields string) (*fbclient.GraphProfile, error) {
			if fields != "name,first_name,last_name,profile_pic,id" {
				return nil, errGraphUnavailable
			}
			return &fbclient.GraphProfile{
				ID:         userId,
				Name:       "Nguyen Van An",
				FirstName:  "Nguyen",
				LastName:   "Van An",
				ProfilePic: "https://pic.example/an.jpg",
			}, nil
		},
	}
	resolver := NewIdentityResolver(graph)
	identity := resolver.Resolve(context.Background(), "user_1", testPage(), "")

	if identity.Name != "Nguyen Van An" {
		t.Errorf("Name = %q", identity.Name)
	}
	if identity.FirstName != "Nguyen" || identity.LastName != "Van An" {
		t.Errorf("FirstName/LastName = %q/%q", identity.FirstName, identity.LastName)
	}
	if identity.ProfilePic != "https://pic.example/an.jpg" {
		t.Errorf("ProfilePic = %q", identity.ProfilePic)
	}
}

func TestResolve_FallsThroughToNarrowerFields(t *testing.T) {
	var tried []string
	graph := &fakeGraph{
		getUserProfile: func(ctx context.Context, userId, token, fields string) (*fbclient.GraphProfile, error) {
			tried = append(tried, fields)
			// Chỉ tầng tối thiểu "name" được phép
			if fields != "name" {
				return nil, errGraphUnavailable
			}
			return &fbclient.GraphProfile{Name: "Tran Binh"}, nil
		},
	}
	resolver := NewIdentityResolver(graph)
	identity := resolver.Resolve(context.Background(), "user_2", testPage(), "")

	if len(tried) != 3 {
		t.Fatalf("số tầng đã thử = %d, muốn 3 (thu hẹp dần)", len(tried))
	}
	if identity.Name != "Tran Binh" {
		t.Errorf("Name = %q", identity.Name)
	}
	// Tên tách từ display name khi profile không có first/last
	if identity.FirstName != "Tran" || identity.LastName != "Binh" {
		t.Errorf("FirstName/LastName = %q/%q", identity.FirstName, identity.LastName)
	}
	// Profile không trả ID thì giữ customerId
	if identity.ID != "user_2" {
		t.Errorf("ID = %q, muốn user_2", identity.ID)
	}
}

func TestResolve_ConversationHintWinsOverProfile(t *testing.T) {
	profileCalled := false
	graph := &fakeGraph{
		getParticipants: func(ctx context.Context, conversationId, token string) ([]fbclient.GraphParticipant, error) {
			return []fbclient.GraphParticipant{
				{ID: "page_1", Name: "Shop ABC"},
				{ID: "user_3", Name: "Le Thi Cam"},
			}, nil
		},
		getUserProfile: func(ctx context.Context, userId, token, fields string) (*fbclient.GraphProfile, error) {
			profileCalled = true
			return nil, errGraphUnavailable
		},
	}
	resolver := NewIdentityResolver(graph)
	identity := resolver.Resolve(context.Background(), "user_3", testPage(), "conv_1")

	if identity.Name != "Le Thi Cam" {
		t.Errorf("Name = %q, muốn lấy từ participants", identity.Name)
	}
	if profileCalled {
		t.Error("hint thành công thì không được gọi tiếp tầng profile")
	}
}

func TestResolve_PictureFetchedIndependently(t *testing.T) {
	graph := &fakeGraph{
		getPicture: func(ctx context.Context, userId, token string) (string, error) {
			return "https://pic.example/fallback.jpg", nil
		},
	}
	resolver := NewIdentityResolver(graph)
	identity := resolver.Resolve(context.Background(), "user_4", testPage(), "")

	// Mọi tầng profile thất bại nhưng ảnh đại diện vẫn lấy được
	if identity.Name != "Unknown User" {
		t.Errorf("Name = %q", identity.Name)
	}
	if identity.ProfilePic != "https://pic.example/fallback.jpg" {
		t.Errorf("ProfilePic = %q, ảnh phải được merge độc lập với profile", identity.ProfilePic)
	}
}

func TestSplitDisplayName(t *testing.T) {
	cases := []struct {
		in        string
		wantFirst string
		wantLast  string
	}{
		{"Nguyen Van An", "Nguyen", "Van An"},
		{"Madonna", "Madonna", "User"},
		{"", "Unknown", "User"},
		{"  ", "Unknown", "User"},
		{"a b c d", "a", "b c d"},
	}
	for _, c := range cases {
		first, last := SplitDisplayName(c.in)
		if first != c.wantFirst || last != c.wantLast {
			t.Errorf("SplitDisplayName(%q) = (%q, %q), muốn (%q, %q)", c.in, first, last, c.wantFirst, c.wantLast)
		}
	}
}
