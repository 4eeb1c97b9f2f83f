// Package webhooksvc - Test sinh messageId và nội dung cho postback.
package webhooksvc

import (
	"strings"
	"testing"

	webhookdto "page_inbox/internal/api/webhook/dto"
)

func TestPostbackMessageId_DistinctCustomersSameMillisecond(t *testing.T) {
	// Hai khách hàng bấm nút trong cùng một mili giây phải ra hai id khác nhau,
	// nếu không upsert theo messageId sẽ nuốt mất postback của người thứ hai
	a := postbackMessageId("customer_1", 1724800000004)
	b := postbackMessageId("customer_2", 1724800000004)
	if a == b {
		t.Fatalf("messageId trùng nhau giữa hai khách hàng: %q", a)
	}
	if !strings.HasPrefix(a, "postback_") {
		t.Errorf("messageId = %q, muốn prefix postback_", a)
	}
}

func TestPostbackMessageId_StableOnRedelivery(t *testing.T) {
	// Webhook gửi lặp cùng một event phải sinh lại đúng id cũ để dedup
	a := postbackMessageId("customer_1", 1724800000004)
	b := postbackMessageId("customer_1", 1724800000004)
	if a != b {
		t.Errorf("cùng một event sinh hai id khác nhau: %q / %q", a, b)
	}
}

func TestPostbackText_FallsBackToPayload(t *testing.T) {
	cases := []struct {
		name     string
		postback webhookdto.FbPostbackEvent
		want     string
	}{
		{"có title", webhookdto.FbPostbackEvent{Title: "Bắt đầu", Payload: "GET_STARTED"}, "Bắt đầu"},
		{"không title", webhookdto.FbPostbackEvent{Payload: "GET_STARTED"}, "GET_STARTED"},
		{"rỗng cả hai", webhookdto.FbPostbackEvent{}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := postbackText(&c.postback); got != c.want {
				t.Errorf("postbackText = %q, muốn %q", got, c.want)
			}
		})
	}
}
