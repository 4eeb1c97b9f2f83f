// Package common - Test dịch mã lỗi Graph API sang error taxonomy của hệ thống.
package common

import (
	"errors"
	"testing"
)

func TestConvertGraphError_Mapping(t *testing.T) {
	cases := []struct {
		name       string
		fbCode     int
		wantCode   ErrorCode
		wantStatus int
	}{
		{"token hết hạn", 190, ErrCodeUpstreamToken, StatusUnauthorized},
		{"thiếu quyền", 200, ErrCodeUpstreamPermission, StatusForbidden},
		{"id không hợp lệ", 100, ErrCodeUpstreamInvalidID, StatusBadRequest},
		{"rate limit", 4, ErrCodeUpstream, StatusTooManyRequests},
		{"page rate limit", 32, ErrCodeUpstream, StatusTooManyRequests},
		{"mã lạ", 999, ErrCodeUpstream, StatusBadGateway},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ConvertGraphError(c.fbCode, "fb message")

			var customErr *Error
			if !errors.As(err, &customErr) {
				t.Fatalf("err = %T, muốn *Error", err)
			}
			if customErr.Code.Code != c.wantCode.Code {
				t.Errorf("Code = %s, muốn %s", customErr.Code.Code, c.wantCode.Code)
			}
			if customErr.StatusCode != c.wantStatus {
				t.Errorf("StatusCode = %d, muốn %d", customErr.StatusCode, c.wantStatus)
			}
			// Thông điệp gốc từ Facebook giữ trong Details để debug
			if customErr.Details != "fb message" {
				t.Errorf("Details = %v", customErr.Details)
			}
		})
	}
}

func TestConvertGraphError_MessageIsActionable(t *testing.T) {
	err := ConvertGraphError(190, "Error validating access token")
	var customErr *Error
	if !errors.As(err, &customErr) {
		t.Fatalf("err = %T", err)
	}
	if customErr.Message == "" || customErr.Message == "Error validating access token" {
		t.Error("thông điệp phải là hướng dẫn hành động, không phải message thô của Facebook")
	}
}
