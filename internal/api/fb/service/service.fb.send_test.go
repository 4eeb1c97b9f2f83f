// Package fbsvc - Test gửi tin nhắn outbound và các đường degraded của nó.
package fbsvc

import (
	"context"
	"strings"
	"testing"

	fbclient "page_inbox/internal/api/fb/client"
	fbmodels "page_inbox/internal/api/fb/models"
)

func TestSend_PicksFirstCredentialWithAccess(t *testing.T) {
	pages := []fbmodels.FbPage{
		{PageId: "page_1", PageAccessToken: "token_1"},
		{PageId: "page_2", PageAccessToken: "token_2"},
	}

	var sentWithToken string
	var sentTo string
	graph := &fakeGraph{
		getParticipants: func(ctx context.Context, conversationId, token string) ([]fbclient.GraphParticipant, error) {
			// Trang 1 không truy cập được hội thoại
			if token == "token_1" {
				return nil, errGraphUnavailable
			}
			return []fbclient.GraphParticipant{
				{ID: "page_2", Name: "Shop"},
				{ID: "customer_7", Name: "Khach"},
			}, nil
		},
		sendMessage: func(ctx context.Context, token, recipientId string, message map[string]interface{}) (*fbclient.SendResponse, error) {
			sentWithToken = token
			sentTo = recipientId
			return &fbclient.SendResponse{RecipientID: recipientId, MessageID: "mid_123"}, nil
		},
	}

	relay := NewOutboundRelay(graph)
	result, err := relay.Send(context.Background(), "conv_1", "xin chao", pages)
	if err != nil {
		t.Fatalf("Send trả lỗi: %v", err)
	}
	if result.Status != SendStatusSent {
		t.Errorf("Status = %q, muốn %q", result.Status, SendStatusSent)
	}
	if result.MessageID != "mid_123" {
		t.Errorf("MessageID = %q", result.MessageID)
	}
	if sentWithToken != "token_2" {
		t.Errorf("gửi bằng token %q, muốn token của trang truy cập được", sentWithToken)
	}
	if sentTo != "customer_7" {
		t.Errorf("người nhận = %q, phải là participant ngoài trang", sentTo)
	}
	if result.PageId != "page_2" {
		t.Errorf("PageId = %q", result.PageId)
	}
}

func TestSend_NoCredentialResolvesRecipient_AcceptedUnconfirmed(t *testing.T) {
	pages := []fbmodels.FbPage{
		{PageId: "page_1", PageAccessToken: "token_1"},
	}
	relay := NewOutboundRelay(&fakeGraph{})

	result, err := relay.Send(context.Background(), "conv_1", "noi dung", pages)
	if err != nil {
		t.Fatalf("đường degraded không được trả lỗi: %v", err)
	}
	if result.Status != SendStatusAcceptedUnconfirmed {
		t.Errorf("Status = %q, muốn %q", result.Status, SendStatusAcceptedUnconfirmed)
	}
	if !strings.HasPrefix(result.MessageID, "local_") {
		t.Errorf("MessageID = %q, kết quả sinh cục bộ phải có prefix local_", result.MessageID)
	}
	if result.Text != "noi dung" {
		t.Errorf("Text = %q", result.Text)
	}
}

func TestSend_GraphSendFails_AcceptedUnconfirmed(t *testing.T) {
	pages := []fbmodels.FbPage{
		{PageId: "page_1", PageAccessToken: "token_1"},
	}
	graph := &fakeGraph{
		getParticipants: func(ctx context.Context, conversationId, token string) ([]fbclient.GraphParticipant, error) {
			return []fbclient.GraphParticipant{
				{ID: "page_1"},
				{ID: "customer_1"},
			}, nil
		},
		// sendMessage không gán: Graph từ chối gửi
	}
	relay := NewOutboundRelay(graph)

	result, err := relay.Send(context.Background(), "conv_1", "hello", pages)
	if err != nil {
		t.Fatalf("gửi thất bại phải degraded, không trả lỗi: %v", err)
	}
	if result.Status != SendStatusAcceptedUnconfirmed {
		t.Errorf("Status = %q, muốn %q", result.Status, SendStatusAcceptedUnconfirmed)
	}
}

func TestSendPayload_ImageAttachment(t *testing.T) {
	pages := []fbmodels.FbPage{
		{PageId: "page_1", PageAccessToken: "token_1"},
	}
	var sentPayload map[string]interface{}
	graph := &fakeGraph{
		getParticipants: func(ctx context.Context, conversationId, token string) ([]fbclient.GraphParticipant, error) {
			return []fbclient.GraphParticipant{{ID: "page_1"}, {ID: "customer_1"}}, nil
		},
		sendMessage: func(ctx context.Context, token, recipientId string, message map[string]interface{}) (*fbclient.SendResponse, error) {
			sentPayload = message
			return &fbclient.SendResponse{RecipientID: recipientId, MessageID: "mid_img"}, nil
		},
	}
	relay := NewOutboundRelay(graph)

	payload := fbclient.ImageMessage("https://cdn.example/a.jpg")
	result, err := relay.SendPayload(context.Background(), "conv_1", payload, "[Attachment]", pages)
	if err != nil {
		t.Fatalf("SendPayload trả lỗi: %v", err)
	}
	if result.Status != SendStatusSent {
		t.Errorf("Status = %q", result.Status)
	}
	if result.Text != "[Attachment]" {
		t.Errorf("Text = %q, muốn preview [Attachment]", result.Text)
	}
	attachment, ok := sentPayload["attachment"].(map[string]interface{})
	if !ok || attachment["type"] != "image" {
		t.Errorf("payload gửi đi = %v, muốn attachment kiểu image", sentPayload)
	}
}

func TestSend_OnlyPageParticipant_AcceptedUnconfirmed(t *testing.T) {
	pages := []fbmodels.FbPage{
		{PageId: "page_1", PageAccessToken: "token_1"},
	}
	graph := &fakeGraph{
		getParticipants: func(ctx context.Context, conversationId, token string) ([]fbclient.GraphParticipant, error) {
			// Hội thoại chỉ có chính trang tham gia
			return []fbclient.GraphParticipant{{ID: "page_1"}}, nil
		},
	}
	relay := NewOutboundRelay(graph)

	result, err := relay.Send(context.Background(), "conv_1", "hello", pages)
	if err != nil {
		t.Fatalf("Send trả lỗi: %v", err)
	}
	if result.Status != SendStatusAcceptedUnconfirmed {
		t.Errorf("Status = %q, không có người nhận thì phải accepted_unconfirmed", result.Status)
	}
}
