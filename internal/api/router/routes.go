package apirouter

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"page_inbox/internal/api/middleware"
	"page_inbox/internal/logger"
)

// ============================================================================
// QUAN TRỌNG: BUG FIBER V3 - CÁCH ĐĂNG KÝ MIDDLEWARE
// ============================================================================
//
// Fiber v3 beta có bug với cách đăng ký middleware trực tiếp trong route:
// middleware sẽ KHÔNG được gọi nếu truyền trực tiếp.
//
// ❌ CÁCH SAI (KHÔNG HOẠT ĐỘNG):
//    router.Get("/path", middleware.AuthMiddleware(), handler)
//
// ✅ CÁCH ĐÚNG (PHẢI DÙNG):
//    RegisterRouteWithMiddleware(router, "/prefix", "GET", "/path", []fiber.Handler{authMiddleware}, handler)
//    → Middleware được gọi đúng cách thông qua .Use() trên group riêng
//
// ============================================================================

// RoutePrefix tiền tố chung cho tất cả các route API
const RoutePrefix = "/api/v1"

// CRUDHandler định nghĩa interface cho các handler CRUD chuẩn mà BaseHandler cung cấp
type CRUDHandler interface {
	// Create
	InsertOne(c fiber.Ctx) error

	// Read
	Find(c fiber.Ctx) error
	FindOne(c fiber.Ctx) error
	FindOneById(c fiber.Ctx) error
	FindManyByIds(c fiber.Ctx) error
	FindWithPagination(c fiber.Ctx) error

	// Update
	UpdateOne(c fiber.Ctx) error
	UpdateById(c fiber.Ctx) error

	// Delete
	DeleteOne(c fiber.Ctx) error
	DeleteById(c fiber.Ctx) error

	// Utility
	CountDocuments(c fiber.Ctx) error
	Distinct(c fiber.Ctx) error
	DocumentExists(c fiber.Ctx) error
}

// CRUDConfig cấu hình bật/tắt từng route CRUD cho một resource
type CRUDConfig struct {
	InsertOne     bool
	Find          bool
	FindOne       bool
	FindById      bool
	FindManyByIds bool
	Paginate      bool
	UpdateOne     bool
	UpdateById    bool
	DeleteOne     bool
	DeleteById    bool
	Count         bool
	Distinct      bool
	Exists        bool
}

// ReadOnlyConfig trả về cấu hình chỉ cho phép các route đọc dữ liệu
func ReadOnlyConfig() CRUDConfig {
	return CRUDConfig{
		Find:          true,
		FindOne:       true,
		FindById:      true,
		FindManyByIds: true,
		Paginate:      true,
		Count:         true,
		Distinct:      true,
		Exists:        true,
	}
}

// ReadWriteConfig trả về cấu hình cho phép đầy đủ các route CRUD
func ReadWriteConfig() CRUDConfig {
	return CRUDConfig{
		InsertOne:     true,
		Find:          true,
		FindOne:       true,
		FindById:      true,
		FindManyByIds: true,
		Paginate:      true,
		UpdateOne:     true,
		UpdateById:    true,
		DeleteOne:     true,
		DeleteById:    true,
		Count:         true,
		Distinct:      true,
		Exists:        true,
	}
}

// Router quản lý việc đăng ký route cho các domain
type Router struct {
	authMiddleware fiber.Handler
}

// NewRouter tạo một Router mới với middleware xác thực mặc định
func NewRouter() *Router {
	return &Router{
		authMiddleware: middleware.AuthMiddleware(),
	}
}

// AuthMiddleware trả về middleware xác thực của router,
// dùng cho các route riêng không thuộc nhóm CRUD chuẩn
func (r *Router) AuthMiddleware() fiber.Handler {
	return r.authMiddleware
}

// RegisterRouteWithMiddleware đăng ký một route với danh sách middleware riêng.
// Xem ghi chú bug Fiber v3 ở đầu file: phải tạo Group riêng rồi Use middleware lên group đó.
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) error {
	group := router.Group(prefix + path)
	for _, mw := range middlewares {
		group.Use(mw)
	}

	switch method {
	case fiber.MethodGet:
		group.Get("", handler)
	case fiber.MethodPost:
		group.Post("", handler)
	case fiber.MethodPut:
		group.Put("", handler)
	case fiber.MethodDelete:
		group.Delete("", handler)
	default:
		return fmt.Errorf("unsupported HTTP method: %s", method)
	}
	return nil
}

// RegisterCRUDRoutes đăng ký các route CRUD chuẩn cho một resource theo cấu hình.
// Tất cả route CRUD đều yêu cầu xác thực.
func (r *Router) RegisterCRUDRoutes(router fiber.Router, resource string, handler CRUDHandler, config CRUDConfig) error {
	prefix := "/" + resource
	auth := []fiber.Handler{r.authMiddleware}

	type routeDef struct {
		enabled bool
		method  string
		path    string
		handler fiber.Handler
	}

	routes := []routeDef{
		{config.InsertOne, fiber.MethodPost, "/insert-one", handler.InsertOne},
		{config.Find, fiber.MethodGet, "/find", handler.Find},
		{config.FindOne, fiber.MethodGet, "/find-one", handler.FindOne},
		{config.FindById, fiber.MethodGet, "/find-by-id/:id", handler.FindOneById},
		{config.FindManyByIds, fiber.MethodGet, "/find-by-ids", handler.FindManyByIds},
		{config.Paginate, fiber.MethodGet, "/paginate", handler.FindWithPagination},
		{config.UpdateOne, fiber.MethodPut, "/update-one", handler.UpdateOne},
		{config.UpdateById, fiber.MethodPut, "/update-by-id/:id", handler.UpdateById},
		{config.DeleteOne, fiber.MethodDelete, "/delete-one", handler.DeleteOne},
		{config.DeleteById, fiber.MethodDelete, "/delete-by-id/:id", handler.DeleteById},
		{config.Count, fiber.MethodGet, "/count", handler.CountDocuments},
		{config.Distinct, fiber.MethodGet, "/distinct", handler.Distinct},
		{config.Exists, fiber.MethodGet, "/exists", handler.DocumentExists},
	}

	for _, route := range routes {
		if !route.enabled {
			continue
		}
		if err := RegisterRouteWithMiddleware(router, prefix, route.method, route.path, auth, route.handler); err != nil {
			return fmt.Errorf("failed to register %s %s%s: %v", route.method, prefix, route.path, err)
		}
	}

	logger.GetAppLogger().Debugf("Registered CRUD routes for resource: %s", resource)
	return nil
}

// RegisterFunc hàm đăng ký route của từng domain
type RegisterFunc func(v1 fiber.Router, r *Router) error

// SetupRoutes thiết lập toàn bộ route cho ứng dụng
func SetupRoutes(app *fiber.App, registers ...RegisterFunc) error {
	v1 := app.Group(RoutePrefix)
	router := NewRouter()

	for _, register := range registers {
		if err := register(v1, router); err != nil {
			return err
		}
	}

	return nil
}
