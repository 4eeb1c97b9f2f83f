package utility

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"page_inbox/internal/common"
)

// Thời gian sống mặc định của token đăng nhập
const tokenLifetime = 30 * 24 * time.Hour

// CreateToken tạo JWT token đăng nhập cho người dùng.
// salt là chuỗi ngẫu nhiên để mỗi lần đăng nhập sinh ra token khác nhau.
func CreateToken(secret string, userID string, issuedAt string, salt string) (map[string]string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"time":   issuedAt,
		"salt":   salt,
		"exp":    time.Now().Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Không thể tạo token", common.StatusInternalServerError, err)
	}

	return map[string]string{"token": tokenString}, nil
}

// ParseToken giải mã và kiểm tra JWT token, trả về userId trong claims
func ParseToken(secret string, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", common.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", common.ErrTokenInvalid
	}
	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return "", common.ErrTokenInvalid
	}
	return userID, nil
}
