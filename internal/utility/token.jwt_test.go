// Package utility - Test tạo và giải mã JWT token đăng nhập.
package utility

import (
	"strconv"
	"testing"
	"time"
)

func TestCreateAndParseToken_Roundtrip(t *testing.T) {
	secret := "test-secret"
	issuedAt := strconv.FormatInt(time.Now().UnixMilli(), 10)

	result, err := CreateToken(secret, "user_123", issuedAt, "salt_abc")
	if err != nil {
		t.Fatalf("CreateToken lỗi: %v", err)
	}
	tokenString, ok := result["token"]
	if !ok || tokenString == "" {
		t.Fatalf("kết quả thiếu token: %v", result)
	}

	userID, err := ParseToken(secret, tokenString)
	if err != nil {
		t.Fatalf("ParseToken lỗi: %v", err)
	}
	if userID != "user_123" {
		t.Errorf("userID = %q, muốn user_123", userID)
	}
}

func TestCreateToken_DifferentSaltDifferentToken(t *testing.T) {
	issuedAt := strconv.FormatInt(time.Now().UnixMilli(), 10)

	a, err := CreateToken("secret", "user_123", issuedAt, "salt_1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := CreateToken("secret", "user_123", issuedAt, "salt_2")
	if err != nil {
		t.Fatal(err)
	}
	if a["token"] == b["token"] {
		t.Error("hai lần đăng nhập với salt khác nhau phải sinh token khác nhau")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	result, err := CreateToken("secret-a", "user_123", "0", "salt")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ParseToken("secret-b", result["token"]); err == nil {
		t.Error("token ký bằng secret khác phải bị từ chối")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken("secret", "not-a-jwt"); err == nil {
		t.Error("chuỗi không phải JWT phải bị từ chối")
	}
}
