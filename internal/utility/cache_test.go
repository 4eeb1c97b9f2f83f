// Package utility - Test cache xác thực trong bộ nhớ.
package utility

import (
	"testing"
	"time"
)

func TestCache_DeleteRemovesEntry(t *testing.T) {
	cache := NewCache(5*time.Minute, 10*time.Minute)

	cache.Set("user_token:abc", "user_1")
	if _, found := cache.Get("user_token:abc"); !found {
		t.Fatal("giá trị vừa set phải đọc lại được")
	}

	// Token bị thu hồi phải biến mất ngay, không chờ chu kỳ dọn dẹp
	cache.Delete("user_token:abc")
	if _, found := cache.Get("user_token:abc"); found {
		t.Error("giá trị đã xóa vẫn còn trong cache")
	}
}

func TestCache_DeleteMissingKeyIsNoop(t *testing.T) {
	cache := NewCache(5*time.Minute, 10*time.Minute)
	cache.Delete("user_token:khong-ton-tai")

	cache.Set("k", 1)
	if _, found := cache.Get("k"); !found {
		t.Error("Delete key không tồn tại không được ảnh hưởng cache")
	}
}
