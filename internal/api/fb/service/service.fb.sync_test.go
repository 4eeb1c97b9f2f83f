// Package fbsvc - Test đường reconciliation kéo hội thoại/tin nhắn từ Graph API.
package fbsvc

import (
	"context"
	"errors"
	"testing"

	fbclient "page_inbox/internal/api/fb/client"
	fbmodels "page_inbox/internal/api/fb/models"
	"page_inbox/internal/common"
)

func TestListConversations_SkipsPageOnlyConversation(t *testing.T) {
	graph := &fakeGraph{
		listConvs: func(ctx context.Context, pageId, token string, limit int) ([]fbclient.GraphConversation, error) {
			return []fbclient.GraphConversation{
				{ID: "conv_only_page", Participants: participantsOf(
					fbclient.GraphParticipant{ID: "page_1", Name: "Shop ABC"},
				)},
				{ID: "conv_ok", Participants: participantsOf(
					fbclient.GraphParticipant{ID: "page_1", Name: "Shop ABC"},
					fbclient.GraphParticipant{ID: "user_1", Name: "Khach Hang"},
				)},
			}, nil
		},
	}
	fetcher := NewConversationFetcher(graph)

	conversations, err := fetcher.ListConversations(context.Background(), testPage(), 20)
	if err != nil {
		t.Fatalf("ListConversations trả lỗi: %v", err)
	}
	if len(conversations) != 1 {
		t.Fatalf("số hội thoại = %d, hội thoại chỉ có trang phải bị bỏ qua", len(conversations))
	}
	if conversations[0].ID != "conv_ok" {
		t.Errorf("ID = %q", conversations[0].ID)
	}
}

func TestListConversations_DegradedPreviewOnMessageError(t *testing.T) {
	graph := &fakeGraph{
		listConvs: func(ctx context.Context, pageId, token string, limit int) ([]fbclient.GraphConversation, error) {
			return []fbclient.GraphConversation{
				{ID: "conv_1", UpdatedTime: "2026-08-20T10:00:00+0000", Participants: participantsOf(
					fbclient.GraphParticipant{ID: "page_1"},
					fbclient.GraphParticipant{ID: "user_1", Name: "Khach Hang"},
				)},
			}, nil
		},
		// listMessages không gán: preview lỗi nhưng hội thoại vẫn trả về
	}
	fetcher := NewConversationFetcher(graph)

	conversations, err := fetcher.ListConversations(context.Background(), testPage(), 20)
	if err != nil {
		t.Fatalf("ListConversations trả lỗi: %v", err)
	}
	if len(conversations) != 1 {
		t.Fatalf("số hội thoại = %d, enrich lỗi chỉ được degraded entry đó", len(conversations))
	}
	last := conversations[0].LastMessage
	if last == nil || last.Message != "No recent messages" {
		t.Errorf("LastMessage = %+v, muốn placeholder", last)
	}
	if last != nil && last.CreatedTime != "2026-08-20T10:00:00+0000" {
		t.Errorf("CreatedTime = %q, placeholder phải dùng updated_time của hội thoại", last.CreatedTime)
	}
}

func TestListConversations_RawParticipantNameWhenResolverFails(t *testing.T) {
	graph := &fakeGraph{
		listConvs: func(ctx context.Context, pageId, token string, limit int) ([]fbclient.GraphConversation, error) {
			return []fbclient.GraphConversation{
				{ID: "conv_1", Participants: participantsOf(
					fbclient.GraphParticipant{ID: "page_1"},
					fbclient.GraphParticipant{ID: "user_1", Name: "Pham Van Dung"},
				)},
			}, nil
		},
		// getParticipants lỗi (hint thất bại), getUserProfile lỗi: resolver chỉ còn placeholder
	}
	fetcher := NewConversationFetcher(graph)

	conversations, err := fetcher.ListConversations(context.Background(), testPage(), 20)
	if err != nil {
		t.Fatalf("ListConversations trả lỗi: %v", err)
	}
	participant := conversations[0].Participant
	if participant.Name != "Pham Van Dung" {
		t.Errorf("Name = %q, tên thô trong payload phải thắng placeholder", participant.Name)
	}
	if participant.FirstName != "Pham" || participant.LastName != "Van Dung" {
		t.Errorf("FirstName/LastName = %q/%q", participant.FirstName, participant.LastName)
	}
}

func TestListMessages_NoPages_ReturnsForbidden(t *testing.T) {
	fetcher := NewConversationFetcher(&fakeGraph{})

	_, err := fetcher.ListMessages(context.Background(), "conv_1", nil, 50)
	if err == nil {
		t.Fatal("không có trang nào thì phải trả lỗi")
	}
	var customErr *common.Error
	if !errors.As(err, &customErr) || customErr.StatusCode != common.StatusForbidden {
		t.Errorf("err = %v, muốn 403", err)
	}
}

func TestListMessages_NoPageHasAccess_DistinctError(t *testing.T) {
	pages := []fbmodels.FbPage{
		{PageId: "page_1", PageAccessToken: "token_1"},
		{PageId: "page_2", PageAccessToken: "token_2"},
	}
	fetcher := NewConversationFetcher(&fakeGraph{})

	_, err := fetcher.ListMessages(context.Background(), "conv_x", pages, 50)
	if err == nil {
		t.Fatal("không trang nào truy cập được thì phải trả lỗi")
	}
	var customErr *common.Error
	if !errors.As(err, &customErr) {
		t.Fatalf("err = %v, muốn *common.Error", err)
	}
	if customErr.StatusCode != common.StatusForbidden {
		t.Errorf("StatusCode = %d, muốn 403", customErr.StatusCode)
	}
	// Phân biệt với trường hợp chưa kết nối trang nào
	if customErr.Message == "Tài khoản chưa kết nối trang Facebook nào" {
		t.Error("thông điệp lỗi phải phân biệt \"không truy cập được\" với \"chưa kết nối trang\"")
	}
}

func TestListMessages_ReversedToChronologicalOrder(t *testing.T) {
	pages := []fbmodels.FbPage{{PageId: "page_1", PageAccessToken: "token_1", PageName: "Shop ABC"}}
	graph := &fakeGraph{
		listMessages: func(ctx context.Context, conversationId, token string, limit int) ([]fbclient.GraphMessage, error) {
			// Graph trả mới nhất trước
			return []fbclient.GraphMessage{
				{ID: "m3", Message: "moi nhat", From: &fbclient.GraphFrom{ID: "page_1"}, CreatedTime: "t3"},
				{ID: "m2", Message: "giua", From: &fbclient.GraphFrom{ID: "user_1", Name: "Khach"}, CreatedTime: "t2"},
				{ID: "m1", Message: "cu nhat", From: &fbclient.GraphFrom{ID: "user_1", Name: "Khach"}, CreatedTime: "t1"},
			}, nil
		},
	}
	fetcher := NewConversationFetcher(graph)

	messages, err := fetcher.ListMessages(context.Background(), "conv_1", pages, 50)
	if err != nil {
		t.Fatalf("ListMessages trả lỗi: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("số tin nhắn = %d", len(messages))
	}
	if messages[0].ID != "m1" || messages[2].ID != "m3" {
		t.Errorf("thứ tự = [%s %s %s], muốn thời gian tăng dần", messages[0].ID, messages[1].ID, messages[2].ID)
	}

	// Tin do trang gửi mang danh tính của trang
	pageMsg := messages[2]
	if !pageMsg.IsFromPage {
		t.Error("m3 phải là IsFromPage")
	}
	if pageMsg.From.Name != "Shop ABC" {
		t.Errorf("From.Name = %q, muốn tên trang", pageMsg.From.Name)
	}

	// Tin của khách: resolver thất bại thì giữ tên thô từ payload
	customerMsg := messages[0]
	if customerMsg.IsFromPage {
		t.Error("m1 không phải từ trang")
	}
	if customerMsg.From.Name != "Khach" {
		t.Errorf("From.Name = %q", customerMsg.From.Name)
	}
}

func TestListMessages_EmptyTextBecomesAttachmentPlaceholder(t *testing.T) {
	pages := []fbmodels.FbPage{{PageId: "page_1", PageAccessToken: "token_1"}}
	graph := &fakeGraph{
		listMessages: func(ctx context.Context, conversationId, token string, limit int) ([]fbclient.GraphMessage, error) {
			return []fbclient.GraphMessage{
				{ID: "m1", Message: "", From: &fbclient.GraphFrom{ID: "page_1"}, CreatedTime: "t1"},
			}, nil
		},
	}
	fetcher := NewConversationFetcher(graph)

	messages, err := fetcher.ListMessages(context.Background(), "conv_1", pages, 50)
	if err != nil {
		t.Fatalf("ListMessages trả lỗi: %v", err)
	}
	if messages[0].Message != "[Attachment]" {
		t.Errorf("Message = %q, muốn placeholder attachment", messages[0].Message)
	}
}

func participantsOf(items ...fbclient.GraphParticipant) fbclient.GraphParticipantList {
	return fbclient.GraphParticipantList{Data: items}
}
