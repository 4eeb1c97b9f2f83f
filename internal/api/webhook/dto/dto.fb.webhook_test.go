// Package webhookdto - Test parse payload webhook và phân loại event union.
package webhookdto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFbWebhookPayload_ParseRealisticBody(t *testing.T) {
	body := `{
		"object": "page",
		"entry": [
			{
				"id": "123456",
				"time": 1724800000000,
				"messaging": [
					{
						"sender": {"id": "user_1"},
						"recipient": {"id": "123456"},
						"timestamp": 1724800000001,
						"message": {
							"mid": "mid.abc",
							"text": "xin chao",
							"attachments": [
								{"type": "image", "payload": {"url": "https://cdn.example/a.jpg"}}
							]
						}
					},
					{
						"sender": {"id": "user_1"},
						"recipient": {"id": "123456"},
						"timestamp": 1724800000002,
						"delivery": {"mids": ["mid.abc"], "watermark": 1724800000001}
					},
					{
						"sender": {"id": "user_1"},
						"recipient": {"id": "123456"},
						"timestamp": 1724800000003,
						"read": {"watermark": 1724800000002}
					},
					{
						"sender": {"id": "user_1"},
						"recipient": {"id": "123456"},
						"timestamp": 1724800000004,
						"postback": {"title": "Bắt đầu", "payload": "GET_STARTED"}
					}
				]
			}
		]
	}`

	var payload FbWebhookPayload
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	require.Equal(t, "page", payload.Object)
	require.Len(t, payload.Entry, 1)

	entry := payload.Entry[0]
	assert.Equal(t, "123456", entry.ID)
	require.Len(t, entry.Messaging, 4)

	assert.Equal(t, EventKindMessage, entry.Messaging[0].Kind())
	assert.Equal(t, EventKindDelivery, entry.Messaging[1].Kind())
	assert.Equal(t, EventKindRead, entry.Messaging[2].Kind())
	assert.Equal(t, EventKindPostback, entry.Messaging[3].Kind())

	msg := entry.Messaging[0].Message
	assert.Equal(t, "mid.abc", msg.Mid)
	assert.Equal(t, "https://cdn.example/a.jpg", msg.Attachments[0].URL())

	assert.Equal(t, []string{"mid.abc"}, entry.Messaging[1].Delivery.Mids)
	assert.Equal(t, int64(1724800000002), entry.Messaging[2].Read.Watermark)
	assert.Equal(t, "GET_STARTED", entry.Messaging[3].Postback.Payload)
}

func TestFbMessagingEvent_Kind_EmptyUnion(t *testing.T) {
	event := FbMessagingEvent{}
	assert.Equal(t, EventKindUnknown, event.Kind())
}

func TestFbMessageEvent_MessageType(t *testing.T) {
	cases := []struct {
		name string
		msg  FbMessageEvent
		want string
	}{
		{"text thuần", FbMessageEvent{Text: "hi"}, MessageTypeText},
		{"quick reply", FbMessageEvent{Text: "hi", QuickReply: &FbQuickReply{Payload: "YES"}}, MessageTypeQuickReply},
		{
			"attachment thắng quick reply",
			FbMessageEvent{
				QuickReply:  &FbQuickReply{Payload: "YES"},
				Attachments: []FbAttachment{{Type: "video"}},
			},
			"video",
		},
		{"rỗng vẫn là text", FbMessageEvent{}, MessageTypeText},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.msg.MessageType())
		})
	}
}

func TestFbAttachment_URL_MissingPayload(t *testing.T) {
	assert.Equal(t, "", FbAttachment{Type: "fallback"}.URL())
	assert.Equal(t, "", FbAttachment{Type: "image", Payload: map[string]interface{}{}}.URL())
}
