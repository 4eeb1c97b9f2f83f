// Package fbsvc - Test filter cửa sổ phiên hội thoại 24h.
package fbsvc

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildSessionFilter_WindowBoundaryInclusive(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC).UnixMilli()
	filter := BuildSessionFilter("page_1", "user_1", now)

	if filter["pageId"] != "page_1" || filter["customerId"] != "user_1" {
		t.Errorf("filter thiếu pageId/customerId: %v", filter)
	}

	window, ok := filter["lastMessageAt"].(bson.M)
	if !ok {
		t.Fatalf("lastMessageAt = %v, muốn bson.M", filter["lastMessageAt"])
	}
	gte, ok := window["$gte"].(int64)
	if !ok {
		t.Fatalf("$gte = %v, muốn int64", window["$gte"])
	}

	// Biên cửa sổ: hội thoại có lastMessageAt đúng 24h trước vẫn thuộc phiên
	wantBoundary := now - SessionWindow.Milliseconds()
	if gte != wantBoundary {
		t.Errorf("$gte = %d, muốn %d (now - 24h)", gte, wantBoundary)
	}
}

func TestBuildSessionFilter_SeparatesCustomersAndPages(t *testing.T) {
	now := time.Now().UnixMilli()
	a := BuildSessionFilter("page_1", "user_1", now)
	b := BuildSessionFilter("page_1", "user_2", now)
	c := BuildSessionFilter("page_2", "user_1", now)

	if a["customerId"] == b["customerId"] {
		t.Error("hai khách hàng khác nhau không được chung filter")
	}
	if a["pageId"] == c["pageId"] {
		t.Error("hai trang khác nhau không được chung filter")
	}
}
