// Package webhookhdl - Test kiểm tra chữ ký HMAC-SHA1 của webhook.
package webhookhdl

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"testing"
)

func signatureFor(secret string, body []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_Valid(t *testing.T) {
	body := []byte(`{"object":"page","entry":[]}`)
	header := signatureFor("app_secret", body)

	if !VerifySignature("app_secret", body, header) {
		t.Error("chữ ký đúng phải được chấp nhận")
	}
}

func TestVerifySignature_Rejections(t *testing.T) {
	body := []byte(`{"object":"page","entry":[]}`)

	cases := []struct {
		name   string
		secret string
		body   []byte
		header string
	}{
		{"sai secret", "app_secret", body, signatureFor("other_secret", body)},
		{"body bị sửa", "app_secret", []byte(`{"object":"page","entry":[{}]}`), signatureFor("app_secret", body)},
		{"header rỗng", "app_secret", body, ""},
		{"thiếu prefix sha1=", "app_secret", body, signatureFor("app_secret", body)[5:]},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if VerifySignature(c.secret, c.body, c.header) {
				t.Error("chữ ký không hợp lệ phải bị từ chối")
			}
		})
	}
}
