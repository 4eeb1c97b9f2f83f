// Package router đăng ký các route thuộc domain auth: System, Auth, User.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authhdl "page_inbox/internal/api/auth/handler"
	basehdl "page_inbox/internal/api/base/handler"
	apirouter "page_inbox/internal/api/router"
)

// Register đăng ký tất cả route auth (system, auth, user) lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	if err := registerSystemRoutes(v1); err != nil {
		return err
	}
	if err := registerAuthRoutes(v1, r); err != nil {
		return err
	}
	return nil
}

func registerSystemRoutes(router fiber.Router) error {
	systemHandler, err := basehdl.NewSystemHandler()
	if err != nil {
		return fmt.Errorf("failed to create system handler: %w", err)
	}
	router.Get("/system/health", systemHandler.HandleHealth)
	return nil
}

func registerAuthRoutes(router fiber.Router, r *apirouter.Router) error {
	userHandler, err := authhdl.NewUserHandler()
	if err != nil {
		return fmt.Errorf("failed to create user handler: %w", err)
	}

	// Route công khai, không cần xác thực
	router.Post("/auth/register", userHandler.HandleRegister)
	router.Post("/auth/login", userHandler.HandleLogin)

	// Route yêu cầu xác thực
	auth := []fiber.Handler{r.AuthMiddleware()}
	apirouter.RegisterRouteWithMiddleware(router, "/auth", fiber.MethodPost, "/logout", auth, userHandler.HandleLogout)
	apirouter.RegisterRouteWithMiddleware(router, "/auth", fiber.MethodGet, "/profile", auth, userHandler.HandleGetProfile)
	apirouter.RegisterRouteWithMiddleware(router, "/auth", fiber.MethodPut, "/profile", auth, userHandler.HandleUpdateProfile)
	apirouter.RegisterRouteWithMiddleware(router, "/admin/user", fiber.MethodPost, "/block", auth, userHandler.HandleBlockUser)
	apirouter.RegisterRouteWithMiddleware(router, "/admin/user", fiber.MethodPost, "/unblock", auth, userHandler.HandleUnBlockUser)

	// CRUD chuẩn cho user (chỉ đọc)
	if err := r.RegisterCRUDRoutes(router, "user", userHandler, apirouter.ReadOnlyConfig()); err != nil {
		return err
	}
	return nil
}
