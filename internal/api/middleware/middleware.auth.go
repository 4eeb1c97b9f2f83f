package middleware

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	authmodels "page_inbox/internal/api/auth/models"
	authsvc "page_inbox/internal/api/auth/service"
	"page_inbox/internal/common"
	"page_inbox/internal/global"
	"page_inbox/internal/logger"
	"page_inbox/internal/utility"
)

// AuthManager quản lý xác thực người dùng
type AuthManager struct {
	UserCRUD *authsvc.UserService
	Cache    *utility.Cache
}

var (
	authManagerInstance *AuthManager
	authManagerOnce     sync.Once
)

// GetAuthManager trả về instance duy nhất của AuthManager (singleton pattern)
func GetAuthManager() *AuthManager {
	authManagerOnce.Do(func() {
		var err error
		authManagerInstance, err = newAuthManager()
		if err != nil {
			panic(err)
		}
	})
	return authManagerInstance
}

// newAuthManager khởi tạo một instance mới của AuthManager (private constructor)
func newAuthManager() (*AuthManager, error) {
	newManager := new(AuthManager)

	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}
	newManager.UserCRUD = userService

	// Khởi tạo cache với thời gian sống 5 phút và thời gian dọn dẹp 10 phút
	newManager.Cache = utility.NewCache(5*time.Minute, 10*time.Minute)

	return newManager, nil
}

// findUserByToken tìm user theo token, có cache để giảm tải query DB cho mỗi request
func (am *AuthManager) findUserByToken(ctx context.Context, token string) (authmodels.User, error) {
	cacheKey := "user_token:" + token
	if cached, found := am.Cache.Get(cacheKey); found {
		if user, ok := cached.(authmodels.User); ok {
			return user, nil
		}
	}

	user, err := am.UserCRUD.FindOne(ctx, bson.M{"token": token}, nil)
	if err != nil {
		return user, err
	}

	am.Cache.Set(cacheKey, user)
	return user, nil
}

// InvalidateToken gỡ token khỏi cache ngay khi token bị thu hồi
// (logout, khóa tài khoản), không chờ TTL hết hạn
func (am *AuthManager) InvalidateToken(token string) {
	if token == "" {
		return
	}
	am.Cache.Delete("user_token:" + token)
}

// AuthMiddleware middleware xác thực cho Fiber.
// Lấy Bearer token từ header Authorization, tìm user theo token và lưu vào context.
func AuthMiddleware() fiber.Handler {
	// Sử dụng singleton instance của AuthManager
	authManager := GetAuthManager()

	return func(c fiber.Ctx) error {
		// Lấy token từ header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			// Chỉ log khi thiếu token (lỗi quan trọng)
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("❌ [AUTH] Missing Authorization header")
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}

		// Kiểm tra định dạng token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		token := parts[1]

		// Token là JWT do server ký: loại sớm token giả mạo hoặc hỏng
		// định dạng trước khi tốn một query DB
		if _, err := utility.ParseToken(global.ServerConfig.JwtSecret, token); err != nil {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		// Tìm user có token
		user, err := authManager.findUserByToken(c.Context(), token)
		if err != nil {
			// Chỉ log khi không tìm thấy token (lỗi quan trọng)
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Warn("❌ [AUTH] Token not found in database")
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		// Kiểm tra user có bị block không
		if user.IsBlock {
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthCredentials,
				"Tài khoản đã bị khóa: "+user.BlockNote,
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		// Lưu thông tin user vào context
		c.Locals("user_id", user.ID.Hex())
		c.Locals("user", user)

		return c.Next()
	}
}
